package amazonfps

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/form/v4"

	"github.com/MarcGrol/fpsgateway/lib/myhttpclient"
	"github.com/MarcGrol/fpsgateway/lib/mylog"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
)

const apiVersion = "2008-09-17"

type PayRequest struct {
	SenderTokenID   string
	CallerReference string
	AmountInCents   int64
	CurrencyCode    string
}

type PayAmount struct {
	Value        string `form:"Value"`
	CurrencyCode string `form:"CurrencyCode"`
}

// PayResponse holds the name/value pairs the provider answers a Pay request with.
type PayResponse struct {
	TransactionID     string    `form:"TransactionId"`
	TransactionStatus string    `form:"TransactionStatus"`
	TransactionAmount PayAmount `form:"TransactionAmount"`
	RequestID         string    `form:"RequestId"`
	ErrorCode         string    `form:"ErrorCode"`
	ErrorMessage      string    `form:"ErrorMessage"`
	Raw               string    `form:"-"`
}

//go:generate mockgen -source=payer.go -package amazonfps -destination payer_mock.go Payer
type Payer interface {
	Pay(c context.Context, req PayRequest) (PayResponse, error)
}

type fpsPayer struct {
	logger    mylog.Logger
	accessKey string
	endpoint  string
	signer    Signer
	sender    myhttpclient.HTTPSender
	nower     mytime.Nower
	decoder   *form.Decoder
}

func NewPayer(accessKey string, mode Mode, signer Signer, sender myhttpclient.HTTPSender, nower mytime.Nower) Payer {
	return newPayerForEndpoint(accessKey, apiEndpoint(mode), signer, sender, nower)
}

func newPayerForEndpoint(accessKey string, endpoint string, signer Signer, sender myhttpclient.HTTPSender, nower mytime.Nower) *fpsPayer {
	return &fpsPayer{
		logger:    mylog.New("amazonfps-payer"),
		accessKey: accessKey,
		endpoint:  endpoint,
		signer:    signer,
		sender:    sender,
		nower:     nower,
		decoder:   form.NewDecoder(),
	}
}

func (p *fpsPayer) Pay(c context.Context, req PayRequest) (PayResponse, error) {
	params := url.Values{}
	params.Set("Action", "Pay")
	params.Set("AWSAccessKeyId", p.accessKey)
	params.Set("CallerReference", req.CallerReference)
	params.Set("SenderTokenId", req.SenderTokenID)
	params.Set("TransactionAmount.Value", formatAmount(req.AmountInCents))
	params.Set("TransactionAmount.CurrencyCode", req.CurrencyCode)
	params.Set("Timestamp", p.nower.Now().UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("Version", apiVersion)
	params.Set("SignatureMethod", signatureMethod)
	params.Set("SignatureVersion", signatureVersion)

	signature, err := p.signer.Sign(http.MethodPost, p.endpoint, params)
	if err != nil {
		return PayResponse{}, fmt.Errorf("error signing pay request %s: %w", req.CallerReference, err)
	}
	params.Set("Signature", signature)

	p.logger.Log(c, req.CallerReference, mylog.SeverityInfo, "Pay %s %s with token for %s", params.Get("TransactionAmount.Value"), req.CurrencyCode, req.CallerReference)

	httpStatus, body, err := p.sender.Send(c, http.MethodPost, p.endpoint, myhttpclient.ContentTypeForm, []byte(params.Encode()))
	if err != nil {
		return PayResponse{}, &TransportError{Err: err}
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return PayResponse{}, &ProviderResponseError{StatusCode: httpStatus, Reason: "unparsable response", Err: err}
	}

	resp := PayResponse{}
	err = p.decoder.Decode(&resp, values)
	if err != nil {
		return PayResponse{}, &ProviderResponseError{StatusCode: httpStatus, Reason: "undecodable response", Err: err}
	}
	resp.Raw = string(body)

	if httpStatus < 200 || httpStatus >= 300 {
		return resp, &ProviderResponseError{StatusCode: httpStatus, Reason: describeFailure(resp)}
	}

	return resp, nil
}

func describeFailure(resp PayResponse) string {
	if resp.ErrorCode == "" {
		return "request rejected"
	}
	return resp.ErrorCode + ": " + strconv.Quote(resp.ErrorMessage)
}
