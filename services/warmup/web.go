package warmup

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/fpsgateway/lib/mycontext"
	"github.com/MarcGrol/fpsgateway/lib/myerrors"
	"github.com/MarcGrol/fpsgateway/lib/myhttp"
	"github.com/MarcGrol/fpsgateway/lib/mylog"
	"github.com/MarcGrol/fpsgateway/lib/myvault"
)

const probeKey = "warmup_probe"

type webService struct {
	logger mylog.Logger
	vault  myvault.VaultReader[string]
}

// NewService checks on warmup that the token vault answers before traffic is routed to the instance
func NewService(vault myvault.VaultReader[string]) *webService {
	return &webService{
		logger: mylog.New("warmup"),
		vault:  vault,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		_, _, err := s.vault.Get(c, probeKey)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityError, "Token vault not reachable: %s", err)
			writer.WriteError(c, w, 1, myerrors.NewUnavailableError(fmt.Errorf("token vault not reachable: %s", err)))
			return
		}

		writer.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
