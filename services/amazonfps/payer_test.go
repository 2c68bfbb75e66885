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
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/fpsgateway/lib/myhttpclient"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
)

func TestPayer(t *testing.T) {
	c := context.TODO()
	payRequest := PayRequest{
		SenderTokenID:   "TOK123",
		CallerReference: "gbs_purchase-1",
		AmountInCents:   2500,
		CurrencyCode:    "USD",
	}

	t.Run("pay", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		nower := mytime.NewMockNower(ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		signer := NewSigner("secret-key")

		var endpoint string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, r.ParseForm())

			assert.Equal(t, "Pay", r.PostForm.Get("Action"))
			assert.Equal(t, "AKIAEXAMPLE", r.PostForm.Get("AWSAccessKeyId"))
			assert.Equal(t, "TOK123", r.PostForm.Get("SenderTokenId"))
			assert.Equal(t, "gbs_purchase-1", r.PostForm.Get("CallerReference"))
			assert.Equal(t, "25.00", r.PostForm.Get("TransactionAmount.Value"))
			assert.Equal(t, "USD", r.PostForm.Get("TransactionAmount.CurrencyCode"))
			assert.Equal(t, "2023-02-27T23:58:59Z", r.PostForm.Get("Timestamp"))
			assert.Equal(t, "HmacSHA256", r.PostForm.Get("SignatureMethod"))

			expected, err := signer.Sign(http.MethodPost, endpoint, url.Values(r.PostForm))
			assert.NoError(t, err)
			assert.Equal(t, expected, r.PostForm.Get("Signature"))

			_, _ = w.Write([]byte("TransactionId=tx-1&TransactionStatus=Success&TransactionAmount.Value=25.00&TransactionAmount.CurrencyCode=USD&RequestId=req-1"))
		}))
		defer server.Close()
		endpoint = server.URL + "/"

		sut := newPayerForEndpoint("AKIAEXAMPLE", endpoint, signer, myhttpclient.New(myhttpclient.DefaultTimeout), nower)

		resp, err := sut.Pay(c, payRequest)
		require.NoError(t, err)
		assert.Equal(t, "tx-1", resp.TransactionID)
		assert.Equal(t, "Success", resp.TransactionStatus)
		assert.Equal(t, PayAmount{Value: "25.00", CurrencyCode: "USD"}, resp.TransactionAmount)
		assert.Equal(t, "req-1", resp.RequestID)
		assert.Contains(t, resp.Raw, "TransactionId=tx-1")
	})

	t.Run("rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		nower := mytime.NewMockNower(ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("ErrorCode=InvalidTokenId&ErrorMessage=Token+is+used"))
		}))
		defer server.Close()

		sut := newPayerForEndpoint("AKIAEXAMPLE", server.URL+"/", NewSigner("secret-key"), myhttpclient.New(myhttpclient.DefaultTimeout), nower)

		_, err := sut.Pay(c, payRequest)
		var providerErr *ProviderResponseError
		require.True(t, errors.As(err, &providerErr))
		assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
		assert.Contains(t, providerErr.Reason, "InvalidTokenId")
	})

	t.Run("unreachable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		nower := mytime.NewMockNower(ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		endpoint := server.URL + "/"
		server.Close()

		sut := newPayerForEndpoint("AKIAEXAMPLE", endpoint, NewSigner("secret-key"), myhttpclient.New(myhttpclient.DefaultTimeout), nower)

		_, err := sut.Pay(c, payRequest)
		var transportErr *TransportError
		assert.True(t, errors.As(err, &transportErr))
	})

	t.Run("endpoint per mode", func(t *testing.T) {
		assert.Equal(t, "https://fps.amazonaws.com/", apiEndpoint(ModeProduction))
		assert.Equal(t, "https://fps.sandbox.amazonaws.com/", apiEndpoint(ModeSandbox))
		assert.Equal(t, cbuiProductionEndpoint, cbuiEndpoint(ModeProduction))
		assert.Equal(t, cbuiSandboxEndpoint, cbuiEndpoint(ModeSandbox))
	})
}
