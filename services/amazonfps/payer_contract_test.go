package amazonfps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/fpsgateway/lib/myhttpclient"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
	"github.com/MarcGrol/fpsgateway/lib/myuuid"
)

func TestFakePayer(t *testing.T) {
	PayerContract{
		payer: func(t *testing.T) (Payer, *FakePayer) {
			fake := NewFakePayer(context.Background(), myuuid.RealUUIDer{})
			return fake, fake
		},
	}.Test(t)
}

func TestHTTPPayer(t *testing.T) {
	PayerContract{
		payer: func(t *testing.T) (Payer, *FakePayer) {
			fake := NewFakePayer(context.Background(), myuuid.RealUUIDer{})
			signer := NewSigner("secret-key")

			server := httptest.NewServer(fakeFPSHandler(t, signer, fake))
			t.Cleanup(server.Close)

			return newPayerForEndpoint("AKIAEXAMPLE", server.URL+"/", signer, myhttpclient.New(myhttpclient.DefaultTimeout), mytime.RealNower{}), fake
		},
	}.Test(t)
}

// fakeFPSHandler exposes a FakePayer as the FPS name/value-pair api
func fakeFPSHandler(t *testing.T, signer Signer, fake *FakePayer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())

		expected, err := signer.Sign(http.MethodPost, "http://"+r.Host+r.URL.Path, url.Values(r.PostForm))
		assert.NoError(t, err)
		if expected != r.PostForm.Get("Signature") {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("ErrorCode=SignatureDoesNotMatch&ErrorMessage=bad+signature"))
			return
		}

		cents, err := parseAmount(r.PostForm.Get("TransactionAmount.Value"))
		assert.NoError(t, err)

		resp, err := fake.Pay(r.Context(), PayRequest{
			SenderTokenID:   r.PostForm.Get("SenderTokenId"),
			CallerReference: r.PostForm.Get("CallerReference"),
			AmountInCents:   cents,
			CurrencyCode:    r.PostForm.Get("TransactionAmount.CurrencyCode"),
		})
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(url.Values{"ErrorCode": {resp.ErrorCode}, "ErrorMessage": {resp.ErrorMessage}}.Encode()))
			return
		}

		_, _ = w.Write([]byte(url.Values{
			"TransactionId":                  {resp.TransactionID},
			"TransactionStatus":              {resp.TransactionStatus},
			"TransactionAmount.Value":        {resp.TransactionAmount.Value},
			"TransactionAmount.CurrencyCode": {resp.TransactionAmount.CurrencyCode},
			"RequestId":                      {resp.RequestID},
		}.Encode()))
	}
}

type PayerContract struct {
	payer func(t *testing.T) (Payer, *FakePayer)
}

func (pc PayerContract) Test(t *testing.T) {
	t.Run("can pay with an issued token", func(t *testing.T) {
		var (
			sut, fake = pc.payer(t)
			c         = context.Background()
		)
		require.NoError(t, fake.IssueToken(c, "TOK123"))

		resp, err := sut.Pay(c, PayRequest{SenderTokenID: "TOK123", CallerReference: "gbs_purchase-1", AmountInCents: 2500, CurrencyCode: "USD"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.TransactionID)
		assert.Equal(t, "Success", resp.TransactionStatus)
		assert.Equal(t, PayAmount{Value: "25.00", CurrencyCode: "USD"}, resp.TransactionAmount)
	})

	t.Run("a token can only be charged once", func(t *testing.T) {
		var (
			sut, fake = pc.payer(t)
			c         = context.Background()
		)
		require.NoError(t, fake.IssueToken(c, "TOK123"))

		_, err := sut.Pay(c, PayRequest{SenderTokenID: "TOK123", CallerReference: "gbs_purchase-1", AmountInCents: 2500, CurrencyCode: "USD"})
		require.NoError(t, err)

		_, err = sut.Pay(c, PayRequest{SenderTokenID: "TOK123", CallerReference: "gbs_purchase-2", AmountInCents: 2500, CurrencyCode: "USD"})
		providerErr := &ProviderResponseError{}
		require.True(t, errors.As(err, &providerErr))
		assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
		assert.Contains(t, providerErr.Reason, "TokenUsageError")
	})

	t.Run("an unknown token is rejected", func(t *testing.T) {
		var (
			sut, _ = pc.payer(t)
			c      = context.Background()
		)

		_, err := sut.Pay(c, PayRequest{SenderTokenID: "NOPE", CallerReference: "gbs_purchase-1", AmountInCents: 2500, CurrencyCode: "USD"})
		providerErr := &ProviderResponseError{}
		require.True(t, errors.As(err, &providerErr))
		assert.Contains(t, providerErr.Reason, "InvalidTokenId")
	})
}
