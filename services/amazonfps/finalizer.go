package amazonfps

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MarcGrol/fpsgateway/lib/myerrors"
	"github.com/MarcGrol/fpsgateway/lib/mylog"
	"github.com/MarcGrol/fpsgateway/lib/mypublisher"
	"github.com/MarcGrol/fpsgateway/lib/mystore"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
	"github.com/MarcGrol/fpsgateway/services/paymentevents"
)

var failedTransactionStatuses = map[string]bool{
	"Failure":   true,
	"Cancelled": true,
}

// Finalizer exchanges the stored authorization token for a payment.
type Finalizer struct {
	logger          mylog.Logger
	nower           mytime.Nower
	tokens          *TokenStore
	payer           Payer
	paymentStore    mystore.Store[Payment]
	completionStore mystore.Store[PurchaseCompletion]
	publisher       mypublisher.Publisher
	currencyCode    string
	metrics         *Metrics
}

func NewFinalizer(logger mylog.Logger, nower mytime.Nower, tokens *TokenStore, payer Payer, paymentStore mystore.Store[Payment], completionStore mystore.Store[PurchaseCompletion], publisher mypublisher.Publisher, currencyCode string, metrics *Metrics) *Finalizer {
	return &Finalizer{
		logger:          logger,
		nower:           nower,
		tokens:          tokens,
		payer:           payer,
		paymentStore:    paymentStore,
		completionStore: completionStore,
		publisher:       publisher,
		currencyCode:    currencyCode,
		metrics:         metrics,
	}
}

func (f *Finalizer) Finalize(c context.Context, session SessionIdentity, checkout CheckoutSession, purchase Purchase) (Payment, error) {
	if purchase.UID == "" {
		return Payment{}, myerrors.NewInvalidInputError(fmt.Errorf("missing purchase uid"))
	}

	existing, found, err := f.paymentStore.Get(c, paymentUIDFor(purchase.UID))
	if err != nil {
		return Payment{}, myerrors.NewInternalError(fmt.Errorf("error fetching payment for purchase %s: %s", purchase.UID, err))
	}
	if found {
		f.logger.Log(c, purchase.UID, mylog.SeverityInfo, "Purchase %s already has payment %s", purchase.UID, existing.UID)
		f.metrics.payment("existing")
		return existing, nil
	}
	if purchase.GatewayAmountInCents < MinimumChargeableUnitInCents {
		f.metrics.payment("already_paid")
		return Payment{}, ErrAlreadyPaid
	}

	token, err := f.tokens.Get(c, session)
	if err != nil {
		return Payment{}, err
	}
	if token == "" {
		return Payment{}, myerrors.NewInvalidInputError(fmt.Errorf("no authorization token for purchase %s", purchase.UID))
	}

	resp, err := f.payer.Pay(c, PayRequest{
		SenderTokenID:   token,
		CallerReference: callerReferencePrefix + purchase.UID,
		AmountInCents:   purchase.GatewayAmountInCents,
		CurrencyCode:    f.currencyCode,
	})
	if err != nil {
		f.countFailure(err)
		return Payment{}, err
	}

	amount, err := interpretPayResponse(resp)
	if err != nil {
		f.countFailure(err)
		return Payment{}, err
	}

	currency := resp.TransactionAmount.CurrencyCode
	if currency == "" {
		currency = f.currencyCode
	}

	payment := Payment{
		UID:               paymentUIDFor(purchase.UID),
		PaymentMethod:     PaymentMethod,
		PurchaseUID:       purchase.UID,
		AmountInCents:     amount,
		Currency:          currency,
		TransactionID:     resp.TransactionID,
		TransactionStatus: resp.TransactionStatus,
		Status:            PaymentStatusAuthorized,
		Items:             itemsPaidWith(purchase, PaymentMethod),
		ShippingAddress:   checkout.ShippingAddress,
		ProviderResponse:  resp.Raw,
		CreatedAt:         f.nower.Now(),
	}

	err = f.paymentStore.RunInTransaction(c, func(c context.Context) error {
		stored, found, err := f.paymentStore.Get(c, payment.UID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching payment %s: %s", payment.UID, err))
		}
		if found {
			// recorded by a concurrent request for the same purchase
			payment = stored
			return nil
		}

		err = f.paymentStore.Put(c, payment.UID, payment)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing payment %s: %s", payment.UID, err))
		}

		err = f.publisher.Publish(c, paymentevents.TopicName, paymentevents.PaymentAuthorized{
			PaymentUID:    payment.UID,
			PaymentMethod: payment.PaymentMethod,
			PurchaseUID:   payment.PurchaseUID,
			AmountInCents: payment.AmountInCents,
			Currency:      payment.Currency,
			TransactionID: payment.TransactionID,
			DealUIDs:      payment.DealUIDs(),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	err = f.tokens.Clear(c, session)
	if err != nil {
		// the payment is recorded: a retry returns it without using the token again
		f.logger.Log(c, purchase.UID, mylog.SeverityError, "Error clearing token after payment %s: %s", payment.UID, err)
	}

	f.logger.Log(c, purchase.UID, mylog.SeverityInfo, "Payment %s authorized: %s %s (transaction %s)", payment.UID, formatAmount(payment.AmountInCents), payment.Currency, payment.TransactionID)
	f.metrics.payment("authorized")

	return payment, nil
}

func (f *Finalizer) countFailure(err error) {
	var transportErr *TransportError
	var providerErr *ProviderResponseError
	switch {
	case errors.As(err, &transportErr):
		f.metrics.providerFailure("transport")
	case errors.As(err, &providerErr):
		f.metrics.providerFailure("response")
	default:
		f.metrics.providerFailure("other")
	}
}

// interpretPayResponse returns the captured amount. A response without transaction id or amount
// never leads to a payment.
func interpretPayResponse(resp PayResponse) (int64, error) {
	if resp.TransactionID == "" {
		return 0, &ProviderResponseError{StatusCode: http.StatusOK, Reason: "missing TransactionId"}
	}
	if failedTransactionStatuses[resp.TransactionStatus] {
		return 0, &ProviderResponseError{StatusCode: http.StatusOK, Reason: fmt.Sprintf("transaction %s has status %s", resp.TransactionID, resp.TransactionStatus)}
	}
	if resp.TransactionAmount.Value == "" {
		return 0, &ProviderResponseError{StatusCode: http.StatusOK, Reason: "missing TransactionAmount"}
	}
	amount, err := parseAmount(resp.TransactionAmount.Value)
	if err != nil {
		return 0, &ProviderResponseError{StatusCode: http.StatusOK, Reason: "invalid TransactionAmount", Err: err}
	}
	if amount < 0 {
		return 0, &ProviderResponseError{StatusCode: http.StatusOK, Reason: "negative TransactionAmount " + resp.TransactionAmount.Value}
	}
	return amount, nil
}

func itemsPaidWith(purchase Purchase, method string) []PaymentItem {
	items := []PaymentItem{}
	for _, item := range purchase.Items {
		if !item.PaidWith(method) {
			continue
		}
		items = append(items, PaymentItem{
			DealUID:      item.DealUID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			PriceInCents: item.PriceInCents,
		})
	}
	return items
}

// CompletePurchase notifies that the payments of the purchase are captured and complete. It runs
// at most once per purchase.
func (f *Finalizer) CompletePurchase(c context.Context, purchase Purchase) error {
	if purchase.UID == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("missing purchase uid"))
	}

	return f.completionStore.RunInTransaction(c, func(c context.Context) error {
		_, found, err := f.completionStore.Get(c, purchase.UID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching completion of purchase %s: %s", purchase.UID, err))
		}
		if found {
			f.logger.Log(c, purchase.UID, mylog.SeverityInfo, "Purchase %s was already completed", purchase.UID)
			return nil
		}

		payments, err := f.paymentStore.Query(c, []mystore.Filter{{Field: "PurchaseUID", Compare: "=", Value: purchase.UID}}, "CreatedAt")
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching payments of purchase %s: %s", purchase.UID, err))
		}

		now := f.nower.Now()
		capturedDealUIDs := dealUIDsOf(purchase)
		completion := PurchaseCompletion{
			PurchaseUID: purchase.UID,
			PaymentUIDs: []string{},
			CompletedAt: now,
		}

		for _, payment := range payments {
			err = f.publisher.Publish(c, paymentevents.TopicName, paymentevents.PaymentCaptured{
				PaymentUID:       payment.UID,
				PurchaseUID:      purchase.UID,
				CapturedDealUIDs: capturedDealUIDs,
			})
			if err != nil {
				return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
			}

			err = f.publisher.Publish(c, paymentevents.TopicName, paymentevents.PaymentCompleted{
				PaymentUID:    payment.UID,
				PurchaseUID:   purchase.UID,
				AmountInCents: payment.AmountInCents,
				Currency:      payment.Currency,
			})
			if err != nil {
				return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
			}

			err = payment.TransitionTo(PaymentStatusComplete, now)
			if err != nil {
				return myerrors.NewConflictError(err)
			}
			err = f.paymentStore.Put(c, payment.UID, payment)
			if err != nil {
				return myerrors.NewInternalError(fmt.Errorf("error storing payment %s: %s", payment.UID, err))
			}
			completion.PaymentUIDs = append(completion.PaymentUIDs, payment.UID)
		}

		err = f.completionStore.Put(c, purchase.UID, completion)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing completion of purchase %s: %s", purchase.UID, err))
		}

		f.logger.Log(c, purchase.UID, mylog.SeverityInfo, "Completed purchase %s with %d payment(s)", purchase.UID, len(payments))

		return nil
	})
}

func dealUIDsOf(purchase Purchase) []string {
	uids := []string{}
	seen := map[string]bool{}
	for _, item := range purchase.Items {
		if seen[item.DealUID] {
			continue
		}
		seen[item.DealUID] = true
		uids = append(uids, item.DealUID)
	}
	return uids
}
