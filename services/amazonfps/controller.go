package amazonfps

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/MarcGrol/fpsgateway/lib/mylog"
	"github.com/MarcGrol/fpsgateway/lib/myuuid"
)

type State string

const (
	StateFresh            State = "FRESH"
	StateAwaitingCallback State = "AWAITING_CALLBACK"
	StateReturned         State = "RETURNED"
)

const messageQueryParam = "gb_message"

// InboundRequest carries what the controller needs from the http request.
type InboundRequest struct {
	Session         SessionIdentity
	CheckoutUID     string
	TokenID         string
	CallerReference string
	ProviderStatus  string
	CheckoutAction  CheckoutAction
	// BaseURL is scheme and host this service is reached on
	BaseURL string
}

// ReturnedFromOffsite is true when the provider sent the buyer back with a token.
func (r InboundRequest) ReturnedFromOffsite() bool {
	return r.TokenID != ""
}

type Outcome struct {
	State           State
	Skipped         bool
	RedirectURL     string
	Message         string
	Request         *AuthorizationRequest
	CallerReference string
}

// Controller decides whether a checkout goes offsite to the provider or resumes after the
// provider sent the buyer back.
type Controller struct {
	logger   mylog.Logger
	tokens   *TokenStore
	pipeline Pipeline
	settings Settings
	uuider   myuuid.UUIDer
	metrics  *Metrics
}

func NewController(logger mylog.Logger, tokens *TokenStore, pipeline Pipeline, settings Settings, uuider myuuid.UUIDer, metrics *Metrics) *Controller {
	return &Controller{
		logger:   logger,
		tokens:   tokens,
		pipeline: pipeline,
		settings: settings,
		uuider:   uuider,
		metrics:  metrics,
	}
}

func (ctl *Controller) callbackURL(inbound InboundRequest) string {
	if inbound.BaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/amazon/checkout/%s/return", inbound.BaseURL, url.PathEscape(inbound.CheckoutUID))
}

func (ctl *Controller) SendOffsite(c context.Context, inbound InboundRequest, checkout CheckoutSession) (Outcome, error) {
	if checkout.TotalInCents-checkout.CoveredByOthersInCents < MinimumChargeableUnitInCents {
		ctl.logger.Log(c, inbound.CheckoutUID, mylog.SeverityInfo, "Nothing to pay for checkout %s: skip offsite", inbound.CheckoutUID)
		ctl.metrics.redirect(StateFresh, "skipped")
		return Outcome{State: StateFresh, Skipped: true}, nil
	}

	if inbound.ReturnedFromOffsite() || checkout.Action != CheckoutActionPayment {
		state := currentState(inbound.ReturnedFromOffsite(), checkout.Action)
		ctl.metrics.redirect(state, "unchanged")
		return Outcome{State: state}, nil
	}

	settings := ctl.settings
	settings.CallbackURL = ctl.callbackURL(inbound)
	callerReference := callerReferencePrefix + ctl.uuider.Create()

	request, err := Build(checkout, settings, callerReference)
	if err != nil {
		var buildErr *BuildError
		if !errors.As(err, &buildErr) {
			return Outcome{}, err
		}
		ctl.logger.Log(c, inbound.CheckoutUID, mylog.SeverityWarn, "Checkout %s cannot go offsite: %s", inbound.CheckoutUID, err)
		ctl.metrics.redirect(StateFresh, "build_error")

		outcome := Outcome{
			State:   StateFresh,
			Message: buildErr.UserMessage(),
		}
		if cancelURL := cancelURLFor(settings, checkout); cancelURL != "" {
			outcome.RedirectURL = withQueryParam(cancelURL, messageQueryParam, outcome.Message)
		}
		return outcome, nil
	}

	redirectURL, err := ctl.pipeline.RedirectURL(&request)
	if err != nil {
		return Outcome{}, fmt.Errorf("error creating redirect for checkout %s: %w", inbound.CheckoutUID, err)
	}

	ctl.logger.Log(c, inbound.CheckoutUID, mylog.SeverityInfo, "Send checkout %s offsite for %s %s (%s)", inbound.CheckoutUID, request.Total, request.CurrencyCode, callerReference)
	ctl.metrics.redirect(StateAwaitingCallback, "redirected")

	return Outcome{
		State:           StateAwaitingCallback,
		RedirectURL:     redirectURL,
		Request:         &request,
		CallerReference: callerReference,
	}, nil
}

// BackFromOffsite stores the callback token and marks the request as a resumed checkout. A
// request without token and without checkout action starts a new checkout, so a token left
// behind by an earlier one is dropped.
func (ctl *Controller) BackFromOffsite(c context.Context, inbound InboundRequest) (InboundRequest, State, error) {
	if inbound.ReturnedFromOffsite() {
		err := ctl.tokens.Set(c, inbound.Session, inbound.TokenID)
		if err != nil {
			return inbound, StateFresh, err
		}
		ctl.logger.Log(c, inbound.CheckoutUID, mylog.SeverityInfo, "Buyer returned from offsite for checkout %s (status %s)", inbound.CheckoutUID, inbound.ProviderStatus)
		ctl.metrics.redirect(StateReturned, "returned")

		inbound.CheckoutAction = CheckoutActionBackFromAmazon
		return inbound, StateReturned, nil
	}

	if inbound.CheckoutAction == CheckoutActionNone {
		err := ctl.tokens.Clear(c, inbound.Session)
		if err != nil {
			return inbound, StateFresh, err
		}
		ctl.logger.Log(c, inbound.CheckoutUID, mylog.SeverityDebug, "Fresh checkout %s: cleared stale token", inbound.CheckoutUID)
		ctl.metrics.redirect(StateFresh, "token_cleared")
		return inbound, StateFresh, nil
	}

	return inbound, currentState(false, inbound.CheckoutAction), nil
}

func currentState(returnedFromOffsite bool, action CheckoutAction) State {
	if returnedFromOffsite || action == CheckoutActionBackFromAmazon {
		return StateReturned
	}
	return StateFresh
}

func withQueryParam(orgURL string, name string, value string) string {
	u, err := url.Parse(orgURL)
	if err != nil {
		return orgURL
	}
	params := u.Query()
	params.Set(name, value)
	u.RawQuery = params.Encode()
	return u.String()
}
