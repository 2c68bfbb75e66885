package amazonfps

import (
	"fmt"
	"net/http"
	"net/url"
)

type Mode string

const (
	ModeSandbox    Mode = "sandbox"
	ModeProduction Mode = "production"
)

const (
	cbuiProductionEndpoint = "https://authorize.payments.amazon.com/cobranded-ui/actions/start"
	cbuiSandboxEndpoint    = "https://authorize.payments-sandbox.amazon.com/cobranded-ui/actions/start"
	apiProductionEndpoint  = "https://fps.amazonaws.com/"
	apiSandboxEndpoint     = "https://fps.sandbox.amazonaws.com/"

	singleUsePipeline = "SingleUse"
)

func cbuiEndpoint(mode Mode) string {
	if mode == ModeProduction {
		return cbuiProductionEndpoint
	}
	return cbuiSandboxEndpoint
}

func apiEndpoint(mode Mode) string {
	if mode == ModeProduction {
		return apiProductionEndpoint
	}
	return apiSandboxEndpoint
}

// Pipeline turns an authorization request into a signed Co-Branded UI url for a single use token.
type Pipeline struct {
	accessKey string
	endpoint  string
	signer    Signer
}

func NewPipeline(accessKey string, mode Mode, signer Signer) Pipeline {
	return Pipeline{
		accessKey: accessKey,
		endpoint:  cbuiEndpoint(mode),
		signer:    signer,
	}
}

// RedirectURL signs the request, stores the signature on it and returns the url to send the
// buyer to.
func (p Pipeline) RedirectURL(req *AuthorizationRequest) (string, error) {
	params := url.Values{}
	params.Set("callerKey", p.accessKey)
	params.Set("callerReference", req.CallerReference)
	params.Set("pipelineName", singleUsePipeline)
	params.Set("returnURL", req.ReturnURL)
	params.Set("transactionAmount", req.Total)
	params.Set("currencyCode", req.CurrencyCode)
	params.Set("itemTotal", req.Subtotal)
	if req.ShippingInCents > 0 {
		params.Set("shipping", req.Shipping)
	}
	if req.TaxInCents > 0 {
		params.Set("tax", req.Tax)
	}
	if req.PaymentReason != "" {
		params.Set("paymentReason", req.PaymentReason)
	}
	if req.CancelURL != "" {
		params.Set("cancelURL", req.CancelURL)
	}
	if addr := req.ShippingAddress; addr != nil {
		params.Set("addressLine1", addr.Street)
		params.Set("city", addr.City)
		params.Set("state", addr.Zone)
		params.Set("zip", addr.PostalCode)
		params.Set("country", addr.Country)
	}
	params.Set("signatureMethod", signatureMethod)
	params.Set("signatureVersion", signatureVersion)

	signature, err := p.signer.Sign(http.MethodGet, p.endpoint, params)
	if err != nil {
		return "", fmt.Errorf("error signing pipeline request %s: %w", req.CallerReference, err)
	}
	req.Signature = signature
	params.Set("signature", signature)

	return p.endpoint + "?" + params.Encode(), nil
}
