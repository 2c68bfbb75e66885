package amazonfps

// Settings are the merchant settings the authorization request is built with.
// CallbackURL is where the provider sends the buyer back to, ReturnURL overrides where the
// buyer continues after that.
type Settings struct {
	CurrencyCode  string
	CallbackURL   string
	ReturnURL     string
	CancelURL     string
	PaymentReason string
}

// AuthorizationRequest holds what is sent to the provider when the buyer goes offsite.
// Amounts are kept as formatted 2-decimal strings and in cents.
type AuthorizationRequest struct {
	CallerReference string
	CurrencyCode    string
	Total           string
	Subtotal        string
	Shipping        string
	Tax             string
	TotalInCents    int64
	SubtotalInCents int64
	ShippingInCents int64
	TaxInCents      int64
	ShippingAddress *ShippingAddress
	ReturnURL       string
	CancelURL       string
	ReviewURL       string
	PaymentReason   string
	Signature       string
}

// Build maps a checkout onto an authorization request. It has no side effects.
func Build(checkout CheckoutSession, settings Settings, callerReference string) (AuthorizationRequest, error) {
	if callerReference == "" {
		return AuthorizationRequest{}, &BuildError{Field: "callerReference", Reason: "is missing"}
	}
	if settings.CallbackURL == "" {
		return AuthorizationRequest{}, &BuildError{Field: "callbackURL", Reason: "is missing"}
	}
	reviewURL := returnURLFor(settings, checkout)
	if reviewURL == "" {
		return AuthorizationRequest{}, &BuildError{Field: "returnUrl", Reason: "is missing"}
	}
	if settings.CurrencyCode == "" {
		return AuthorizationRequest{}, &BuildError{Field: "currencyCode", Reason: "is missing"}
	}
	if checkout.SubtotalInCents < 0 || checkout.ShippingInCents < 0 || checkout.TaxInCents < 0 || checkout.CoveredByOthersInCents < 0 {
		return AuthorizationRequest{}, &BuildError{Field: "amounts", Reason: "must not be negative"}
	}

	filteredTotal := checkout.TotalInCents - checkout.CoveredByOthersInCents
	if filteredTotal < MinimumChargeableUnitInCents {
		return AuthorizationRequest{}, &BuildError{Field: "total", Reason: "is below " + formatAmount(MinimumChargeableUnitInCents)}
	}

	subtotal, shipping, tax := reconcile(filteredTotal, checkout.SubtotalInCents, checkout.ShippingInCents, checkout.TaxInCents)

	// the provider rejects a zero item total, so another line takes its place
	if subtotal == 0 {
		if shipping != 0 {
			subtotal, shipping = shipping, 0
		} else if tax != 0 {
			subtotal, tax = tax, 0
		}
	}

	return AuthorizationRequest{
		CallerReference: callerReference,
		CurrencyCode:    settings.CurrencyCode,
		Total:           formatAmount(filteredTotal),
		Subtotal:        formatAmount(subtotal),
		Shipping:        formatAmount(shipping),
		Tax:             formatAmount(tax),
		TotalInCents:    filteredTotal,
		SubtotalInCents: subtotal,
		ShippingInCents: shipping,
		TaxInCents:      tax,
		ShippingAddress: checkout.ShippingAddress,
		ReturnURL:       settings.CallbackURL,
		CancelURL:       cancelURLFor(settings, checkout),
		ReviewURL:       reviewURL,
		PaymentReason:   settings.PaymentReason,
	}, nil
}

// reconcile makes subtotal+shipping+tax add up to total. An excess (credit or another gateway
// paying part of the cart) is taken from the subtotal first, then shipping, then tax. A shortfall
// is added to the subtotal.
func reconcile(total, subtotal, shipping, tax int64) (int64, int64, int64) {
	excess := subtotal + shipping + tax - total
	if excess < 0 {
		return subtotal - excess, shipping, tax
	}

	deduct := func(line int64) int64 {
		taken := min(line, excess)
		excess -= taken
		return line - taken
	}
	subtotal = deduct(subtotal)
	shipping = deduct(shipping)
	tax = deduct(tax)

	return subtotal, shipping, tax
}

// returnURLFor prefers the configured return url over the one of the checkout.
func returnURLFor(settings Settings, checkout CheckoutSession) string {
	if settings.ReturnURL != "" {
		return settings.ReturnURL
	}
	return checkout.ReturnURL
}

// cancelURLFor prefers the configured cancel url over the one of the checkout.
func cancelURLFor(settings Settings, checkout CheckoutSession) string {
	if settings.CancelURL != "" {
		return settings.CancelURL
	}
	return checkout.CancelURL
}
