package amazonfps

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/fpsgateway/lib/mycontext"
	"github.com/MarcGrol/fpsgateway/lib/myerrors"
	"github.com/MarcGrol/fpsgateway/lib/myhttp"
	"github.com/MarcGrol/fpsgateway/lib/mylog"
	"github.com/MarcGrol/fpsgateway/lib/mypublisher"
	"github.com/MarcGrol/fpsgateway/lib/mystore"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
	"github.com/MarcGrol/fpsgateway/lib/myuuid"
)

const (
	sessionCookieName = "gb_session"
	sessionHeaderName = "X-Session-UID"
	tenantHeaderName  = "X-Tenant-UID"
)

type CheckoutResponse struct {
	State   State
	Skipped bool
	Message string `json:",omitempty"`
}

type RestartResponse struct {
	State State
}

// AlreadyPaidResponse answers a pay request when nothing is left for this gateway to charge.
type AlreadyPaidResponse struct {
	AlreadyPaid bool
	Message     string
}

type payForm struct {
	Checkout CheckoutSession `form:"checkout"`
	Purchase Purchase        `form:"purchase"`
}

type webService struct {
	logger           mylog.Logger
	service          *service
	decoder          *form.Decoder
	defaultTenantUID string
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(cfg Config, nower mytime.Nower, uuider myuuid.UUIDer, tokens *TokenStore, payer Payer, attemptStore mystore.Store[CheckoutAttempt], paymentStore mystore.Store[Payment], completionStore mystore.Store[PurchaseCompletion], publisher mypublisher.Publisher, metrics *Metrics) *webService {
	logger := mylog.New("amazonfps")

	pipeline := NewPipeline(cfg.AccessKey, cfg.Mode, NewSigner(cfg.SecretKey))
	controller := NewController(logger, tokens, pipeline, cfg.Settings(), uuider, metrics)
	finalizer := NewFinalizer(logger, nower, tokens, payer, paymentStore, completionStore, publisher, cfg.CurrencyCode, metrics)

	return &webService{
		logger:           logger,
		service:          newService(logger, nower, controller, finalizer, attemptStore),
		decoder:          form.NewDecoder(),
		defaultTenantUID: cfg.DefaultTenantUID,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/amazon/checkout/{checkoutUID}", s.startCheckoutPage()).Methods("POST")
	router.HandleFunc("/amazon/checkout/{checkoutUID}/return", s.returnFromOffsitePage()).Methods("GET")
	router.HandleFunc("/amazon/checkout/{checkoutUID}/restart", s.restartCheckoutPage()).Methods("GET")

	router.HandleFunc("/amazon/purchase/{purchaseUID}/pay", s.payPage()).Methods("POST")
	router.HandleFunc("/amazon/purchase/{purchaseUID}/complete", s.completePurchasePage()).Methods("PUT")

	return nil
}

// startCheckoutPage sends the buyer to the Amazon authorization page
func (s *webService) startCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		checkout := CheckoutSession{}
		err = s.decoder.Decode(&checkout, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error parsing checkout: %s", err)))
			return
		}
		checkout.CheckoutUID = mux.Vars(r)["checkoutUID"]

		outcome, err := s.service.startCheckout(c, s.inboundFrom(r), checkout)
		if err != nil {
			errorWriter.WriteError(c, w, 3, toHTTPError(err))
			return
		}

		if outcome.RedirectURL != "" {
			http.Redirect(w, r, outcome.RedirectURL, http.StatusSeeOther)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, CheckoutResponse{
			State:   outcome.State,
			Skipped: outcome.Skipped,
			Message: outcome.Message,
		})
	}
}

// returnFromOffsitePage is where Amazon sends the buyer back to
func (s *webService) returnFromOffsitePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		redirectURL, err := s.service.backFromOffsite(c, s.inboundFrom(r))
		if err != nil {
			errorWriter.WriteError(c, w, 1, toHTTPError(err))
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

func (s *webService) restartCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		state, err := s.service.restartCheckout(c, s.inboundFrom(r))
		if err != nil {
			errorWriter.WriteError(c, w, 1, toHTTPError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, RestartResponse{
			State: state,
		})
	}
}

func (s *webService) payPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		req := payForm{}
		err = s.decoder.Decode(&req, r.PostForm)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error parsing payment request: %s", err)))
			return
		}
		req.Purchase.UID = mux.Vars(r)["purchaseUID"]

		payment, err := s.service.pay(c, s.inboundFrom(r).Session, req.Checkout, req.Purchase)
		if errors.Is(err, ErrAlreadyPaid) {
			errorWriter.Write(c, w, http.StatusOK, AlreadyPaidResponse{
				AlreadyPaid: true,
				Message:     fmt.Sprintf("Purchase %s needs no Amazon payment", req.Purchase.UID),
			})
			return
		}
		if err != nil {
			errorWriter.WriteError(c, w, 3, toHTTPError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, payment)
	}
}

func (s *webService) completePurchasePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		purchase := Purchase{}
		err = s.decoder.Decode(&purchase, r.PostForm)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error parsing purchase: %s", err)))
			return
		}
		purchase.UID = mux.Vars(r)["purchaseUID"]

		err = s.service.completePurchase(c, purchase)
		if err != nil {
			errorWriter.WriteError(c, w, 3, toHTTPError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Purchase %s completed", purchase.UID),
		})
	}
}

func (s *webService) inboundFrom(r *http.Request) InboundRequest {
	query := r.URL.Query()
	return InboundRequest{
		Session:         s.sessionFrom(r),
		CheckoutUID:     mux.Vars(r)["checkoutUID"],
		TokenID:         query.Get("tokenID"),
		CallerReference: query.Get("callerReference"),
		ProviderStatus:  query.Get("status"),
		CheckoutAction:  CheckoutAction(r.FormValue("gb_checkout_action")),
		BaseURL:         myhttp.HostnameWithScheme(r),
	}
}

func (s *webService) sessionFrom(r *http.Request) SessionIdentity {
	session := SessionIdentity{
		TenantUID:  r.Header.Get(tenantHeaderName),
		SessionUID: r.Header.Get(sessionHeaderName),
	}
	if session.TenantUID == "" {
		session.TenantUID = s.defaultTenantUID
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		session.SessionUID = cookie.Value
	}
	return session
}
