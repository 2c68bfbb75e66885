package amazonfps

import (
	"context"
	"fmt"

	"github.com/MarcGrol/fpsgateway/lib/myerrors"
	"github.com/MarcGrol/fpsgateway/lib/mylog"
	"github.com/MarcGrol/fpsgateway/lib/mystore"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
)

const notAuthorizedMessage = "Your Amazon payment was not authorized. Please try again or pick another payment method."

type service struct {
	logger       mylog.Logger
	nower        mytime.Nower
	controller   *Controller
	finalizer    *Finalizer
	attemptStore mystore.Store[CheckoutAttempt]
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, nower mytime.Nower, controller *Controller, finalizer *Finalizer, attemptStore mystore.Store[CheckoutAttempt]) *service {
	return &service{
		logger:       logger,
		nower:        nower,
		controller:   controller,
		finalizer:    finalizer,
		attemptStore: attemptStore,
	}
}

// startCheckout sends the buyer offsite and remembers where to go after the provider returns
func (s *service) startCheckout(c context.Context, inbound InboundRequest, checkout CheckoutSession) (Outcome, error) {
	outcome, err := s.controller.SendOffsite(c, inbound, checkout)
	if err != nil {
		return Outcome{}, err
	}
	if outcome.State != StateAwaitingCallback {
		return outcome, nil
	}

	err = s.attemptStore.Put(c, inbound.CheckoutUID, CheckoutAttempt{
		CheckoutUID:     inbound.CheckoutUID,
		CallerReference: outcome.CallerReference,
		TenantUID:       inbound.Session.TenantUID,
		SessionUID:      inbound.Session.SessionUID,
		ReturnURL:       outcome.Request.ReviewURL,
		CancelURL:       outcome.Request.CancelURL,
		CreatedAt:       s.nower.Now(),
	})
	if err != nil {
		return Outcome{}, myerrors.NewInternalError(fmt.Errorf("error storing checkout attempt %s: %s", inbound.CheckoutUID, err))
	}

	return outcome, nil
}

// backFromOffsite handles the provider callback and returns where the buyer continues.
func (s *service) backFromOffsite(c context.Context, inbound InboundRequest) (string, error) {
	redirectURL := ""
	err := s.attemptStore.RunInTransaction(c, func(c context.Context) error {
		attempt, found, err := s.attemptStore.Get(c, inbound.CheckoutUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching checkout attempt %s: %s", inbound.CheckoutUID, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout attempt %s not found", inbound.CheckoutUID))
		}
		if inbound.CallerReference == "" || inbound.CallerReference != attempt.CallerReference {
			return myerrors.NewInvalidInputError(fmt.Errorf("caller reference '%s' does not belong to checkout %s", inbound.CallerReference, inbound.CheckoutUID))
		}
		session := SessionIdentity{TenantUID: attempt.TenantUID, SessionUID: attempt.SessionUID}
		if inbound.Session.SessionUID != "" && inbound.Session != session {
			return myerrors.NewInvalidInputError(fmt.Errorf("session %s did not start checkout %s", inbound.Session.SessionUID, inbound.CheckoutUID))
		}
		// the token belongs to the session that went offsite
		inbound.Session = session

		resumed, state, err := s.controller.BackFromOffsite(c, inbound)
		if err != nil {
			return err
		}
		if state != StateReturned {
			s.logger.Log(c, inbound.CheckoutUID, mylog.SeverityWarn, "Checkout %s returned without token (status %s)", inbound.CheckoutUID, inbound.ProviderStatus)
			cancelURL := attempt.CancelURL
			if cancelURL == "" {
				cancelURL = attempt.ReturnURL
			}
			redirectURL = withQueryParam(cancelURL, messageQueryParam, notAuthorizedMessage)
			return nil
		}

		now := s.nower.Now()
		attempt.ReturnedAt = &now
		err = s.attemptStore.Put(c, attempt.CheckoutUID, attempt)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing checkout attempt %s: %s", attempt.CheckoutUID, err))
		}

		redirectURL = withQueryParam(attempt.ReturnURL, "gb_checkout_action", string(resumed.CheckoutAction))
		return nil
	})
	if err != nil {
		return "", err
	}

	return redirectURL, nil
}

func (s *service) restartCheckout(c context.Context, inbound InboundRequest) (State, error) {
	_, state, err := s.controller.BackFromOffsite(c, inbound)
	if err != nil {
		return StateFresh, err
	}
	return state, nil
}

func (s *service) pay(c context.Context, session SessionIdentity, checkout CheckoutSession, purchase Purchase) (Payment, error) {
	return s.finalizer.Finalize(c, session, checkout, purchase)
}

func (s *service) completePurchase(c context.Context, purchase Purchase) error {
	return s.finalizer.CompletePurchase(c, purchase)
}
