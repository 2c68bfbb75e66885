package amazonfps

import (
	"errors"
	"fmt"

	"github.com/MarcGrol/fpsgateway/lib/myerrors"
)

// ErrAlreadyPaid signals that another gateway or credit already covered the purchase.
var ErrAlreadyPaid = errors.New("purchase already paid")

// BuildError means an authorization request could not be constructed from the checkout.
type BuildError struct {
	Field  string
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("error building authorization request: %s %s", e.Field, e.Reason)
}

// UserMessage is what the buyer sees back on the cart page.
func (e *BuildError) UserMessage() string {
	switch e.Field {
	case "total":
		return "There is nothing left to pay with Amazon for this cart."
	default:
		return "Amazon payments could not be started for this cart. Please try again or pick another payment method."
	}
}

// TransportError means the provider could not be reached or did not answer in time.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error talking to payment provider: %s", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderResponseError means the provider answered with a failure or with an incomplete response.
type ProviderResponseError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *ProviderResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid payment provider response (http %d): %s: %s", e.StatusCode, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid payment provider response (http %d): %s", e.StatusCode, e.Reason)
}

func (e *ProviderResponseError) Unwrap() error {
	return e.Err
}

// toHTTPError attaches the http status that belongs to a domain error.
func toHTTPError(err error) error {
	var buildErr *BuildError
	var transportErr *TransportError
	var providerErr *ProviderResponseError

	switch {
	case errors.As(err, &buildErr):
		return myerrors.NewInvalidInputError(err)
	case errors.As(err, &transportErr):
		return myerrors.NewUnavailableError(err)
	case errors.As(err, &providerErr):
		return myerrors.NewBadGatewayError(err)
	default:
		return err
	}
}
