package myhttpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	c := context.TODO()

	t.Run("form post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, ContentTypeForm, r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "Action=Pay", string(body))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("TransactionId=tx1"))
		}))
		defer server.Close()

		status, body, err := New(DefaultTimeout).Send(c, http.MethodPost, server.URL, ContentTypeForm, []byte("Action=Pay"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "TransactionId=tx1", string(body))
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		_, _, err := New(20*time.Millisecond).Send(c, http.MethodPost, server.URL, ContentTypeForm, nil)
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, _, err := New(DefaultTimeout).Send(c, http.MethodPost, "http://127.0.0.1:1", ContentTypeForm, nil)
		assert.Error(t, err)
	})
}
