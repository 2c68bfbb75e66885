package mypublisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/fpsgateway/lib/myevents"
	"github.com/MarcGrol/fpsgateway/lib/mypubsub"
	"github.com/MarcGrol/fpsgateway/lib/myqueue"
	"github.com/MarcGrol/fpsgateway/lib/mystore"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
)

type paymentAuthorized struct {
	PurchaseUID string
	Amount      int64
}

func (e paymentAuthorized) GetEventTypeName() string {
	return "payment.authorized"
}

func (e paymentAuthorized) GetAggregateName() string {
	return e.PurchaseUID
}

func TestTransactionalPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := context.TODO()

	outbox, _, err := mystore.NewInMemoryStore[myevents.EventEnvelope](c)
	require.NoError(t, err)
	queue := myqueue.NewFakeQueue()
	pubsub := mypubsub.NewMockPubSub(ctrl)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	sut := New(outbox, pubsub, queue, nower)
	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	t.Run("Publish same event twice stores one envelope", func(t *testing.T) {
		event := paymentAuthorized{PurchaseUID: "purchase_1", Amount: 2500}

		assert.NoError(t, sut.Publish(c, "payment", event))
		assert.NoError(t, sut.Publish(c, "payment", event))

		envelopes, err := outbox.List(c)
		assert.NoError(t, err)
		require.Len(t, envelopes, 1)
		assert.Equal(t, "payment", envelopes[0].Topic)
		assert.Equal(t, "purchase_1", envelopes[0].AggregateUID)
		assert.Equal(t, "payment.authorized", envelopes[0].EventTypeName)
		assert.JSONEq(t, `{"PurchaseUID":"purchase_1","Amount":2500}`, envelopes[0].EventPayload)
		assert.False(t, envelopes[0].Published)

		require.Len(t, queue.Tasks, 2)
		assert.Equal(t, "/pubsub/payment/"+envelopes[0].UID, queue.Tasks[0].WebhookURLPath)
	})

	t.Run("Trigger delivers unpublished envelopes", func(t *testing.T) {
		pubsub.EXPECT().Publish(gomock.Any(), "payment", gomock.Any()).DoAndReturn(func(c context.Context, topic string, data string) error {
			assert.True(t, strings.Contains(data, `"EventTypeName":"payment.authorized"`))
			return nil
		})

		request, err := http.NewRequest(http.MethodPut, queue.Tasks[0].WebhookURLPath, nil)
		require.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusOK, response.Code)

		envelopes, err := outbox.List(c)
		assert.NoError(t, err)
		require.Len(t, envelopes, 1)
		assert.True(t, envelopes[0].Published)
	})

	t.Run("Second trigger has nothing to deliver", func(t *testing.T) {
		assert.NoError(t, sut.ProcessTrigger(c))
	})
}
