package paymentevents

const (
	TopicName             = "payment"
	paymentAuthorizedName = TopicName + ".authorized"
	paymentCapturedName   = TopicName + ".captured"
	paymentCompletedName  = TopicName + ".completed"
)

// PaymentAuthorized is published when the provider accepted a Pay request and a payment was
// recorded. Downstream fulfilment starts from here.
type PaymentAuthorized struct {
	PaymentUID    string
	PaymentMethod string
	PurchaseUID   string
	AmountInCents int64
	Currency      string
	TransactionID string
	DealUIDs      []string
}

func (e PaymentAuthorized) GetEventTypeName() string {
	return paymentAuthorizedName
}

func (e PaymentAuthorized) GetAggregateName() string {
	return e.PurchaseUID
}

type PaymentCaptured struct {
	PaymentUID       string
	PurchaseUID      string
	CapturedDealUIDs []string
}

func (e PaymentCaptured) GetEventTypeName() string {
	return paymentCapturedName
}

func (e PaymentCaptured) GetAggregateName() string {
	return e.PurchaseUID
}

// PaymentCompleted triggers voucher activation for the purchase.
type PaymentCompleted struct {
	PaymentUID    string
	PurchaseUID   string
	AmountInCents int64
	Currency      string
}

func (e PaymentCompleted) GetEventTypeName() string {
	return paymentCompletedName
}

func (e PaymentCompleted) GetAggregateName() string {
	return e.PurchaseUID
}
