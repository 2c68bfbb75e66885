package amazonfps

import (
	"fmt"
	"time"
)

const (
	PaymentMethod = "amazon"

	callerReferencePrefix = "gbs_"
)

type CheckoutAction string

const (
	CheckoutActionNone           CheckoutAction = ""
	CheckoutActionPayment        CheckoutAction = "payment"
	CheckoutActionBackFromAmazon CheckoutAction = "back_from_amazon"
)

type ShippingAddress struct {
	FirstName  string `form:"firstName"`
	LastName   string `form:"lastName"`
	Street     string `form:"street"`
	City       string `form:"city"`
	Zone       string `form:"zone"`
	PostalCode string `form:"postalCode"`
	Country    string `form:"country"`
}

type CartItem struct {
	DealUID      string `form:"dealUID"`
	Description  string `form:"description"`
	Quantity     int    `form:"quantity"`
	PriceInCents int64  `form:"price"`
}

// CheckoutSession is the snapshot of the cart as the host commerce core computed it.
type CheckoutSession struct {
	CheckoutUID            string           `form:"-"`
	Items                  []CartItem       `form:"items"`
	SubtotalInCents        int64            `form:"subtotal"`
	ShippingInCents        int64            `form:"shipping"`
	TaxInCents             int64            `form:"tax"`
	TotalInCents           int64            `form:"total"`
	CoveredByOthersInCents int64            `form:"coveredByOthers"`
	ShippingAddress        *ShippingAddress `form:"shippingAddress"`
	ReturnURL              string           `form:"returnUrl"`
	CancelURL              string           `form:"cancelUrl"`
	Action                 CheckoutAction   `form:"gb_checkout_action"`
}

// CheckoutAttempt remembers where to send the buyer when the provider returns.
type CheckoutAttempt struct {
	CheckoutUID     string
	CallerReference string
	TenantUID       string
	SessionUID      string
	ReturnURL       string
	CancelURL       string
	CreatedAt       time.Time
	ReturnedAt      *time.Time
}

type PurchaseItem struct {
	DealUID      string `form:"dealUID"`
	Description  string `form:"description"`
	Quantity     int    `form:"quantity"`
	PriceInCents int64  `form:"price"`
	// PaymentMethods holds the amount each gateway pays for this item
	PaymentMethods map[string]int64 `form:"paymentMethod"`
}

func (i PurchaseItem) PaidWith(method string) bool {
	_, found := i.PaymentMethods[method]
	return found
}

type Purchase struct {
	UID   string         `form:"-"`
	Items []PurchaseItem `form:"items"`
	// GatewayAmountInCents is the part of the purchase allocated to this gateway
	GatewayAmountInCents int64 `form:"gatewayAmount"`
}

type PaymentStatus string

const (
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusComplete   PaymentStatus = "complete"
)

var paymentStatusOrder = map[PaymentStatus]int{
	PaymentStatusAuthorized: 1,
	PaymentStatusComplete:   2,
}

type PaymentItem struct {
	DealUID      string
	Description  string
	Quantity     int
	PriceInCents int64
}

type DealItems struct {
	DealUID string
	Items   []PaymentItem
}

type Payment struct {
	UID               string
	PaymentMethod     string
	PurchaseUID       string
	AmountInCents     int64
	Currency          string
	TransactionID     string
	TransactionStatus string
	Status            PaymentStatus
	Items             []PaymentItem
	ShippingAddress   *ShippingAddress
	ProviderResponse  string `datastore:",noindex"`
	CreatedAt         time.Time
	LastModified      *time.Time
}

func paymentUIDFor(purchaseUID string) string {
	return purchaseUID + "_" + PaymentMethod
}

// TransitionTo moves the payment forward. Going back to an earlier status is refused.
func (p *Payment) TransitionTo(status PaymentStatus, now time.Time) error {
	to, known := paymentStatusOrder[status]
	if !known {
		return fmt.Errorf("unknown payment status '%s'", status)
	}
	if to < paymentStatusOrder[p.Status] {
		return fmt.Errorf("payment %s cannot move from %s back to %s", p.UID, p.Status, status)
	}
	p.Status = status
	p.LastModified = &now
	return nil
}

// Deals groups the items per deal, in order of first appearance of the deal.
func (p Payment) Deals() []DealItems {
	deals := []DealItems{}
	index := map[string]int{}
	for _, item := range p.Items {
		i, found := index[item.DealUID]
		if !found {
			i = len(deals)
			index[item.DealUID] = i
			deals = append(deals, DealItems{DealUID: item.DealUID})
		}
		deals[i].Items = append(deals[i].Items, item)
	}
	return deals
}

func (p Payment) DealUIDs() []string {
	uids := []string{}
	for _, deal := range p.Deals() {
		uids = append(uids, deal.DealUID)
	}
	return uids
}

// PurchaseCompletion records that the complete-purchase step ran for a purchase.
type PurchaseCompletion struct {
	PurchaseUID string
	PaymentUIDs []string
	CompletedAt time.Time
}
