package amazonfps

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MarcGrol/fpsgateway/lib/mystore"
	"github.com/MarcGrol/fpsgateway/lib/myuuid"
)

type fakeToken struct {
	TokenID string
	Used    bool
}

// FakePayer behaves like the FPS Pay action for single-use tokens it has issued itself.
type FakePayer struct {
	uuider myuuid.UUIDer
	Tokens *mystore.InMemoryStore[fakeToken]
}

func NewFakePayer(c context.Context, uuider myuuid.UUIDer) *FakePayer {
	store, _, _ := mystore.NewInMemoryStore[fakeToken](c)
	return &FakePayer{
		uuider: uuider,
		Tokens: store,
	}
}

// IssueToken mimics a completed CBUI pipeline.
func (p *FakePayer) IssueToken(c context.Context, tokenID string) error {
	return p.Tokens.Put(c, tokenID, fakeToken{TokenID: tokenID})
}

func (p *FakePayer) Pay(c context.Context, req PayRequest) (PayResponse, error) {
	resp := PayResponse{}
	err := p.Tokens.RunInTransaction(c, func(c context.Context) error {
		token, exists, err := p.Tokens.Get(c, req.SenderTokenID)
		if err != nil {
			return err
		}
		if !exists {
			resp = rejection("InvalidTokenId", "The sender token is invalid")
			return &ProviderResponseError{StatusCode: http.StatusBadRequest, Reason: describeFailure(resp)}
		}
		if token.Used {
			resp = rejection("TokenUsageError", "The token has already been used")
			return &ProviderResponseError{StatusCode: http.StatusBadRequest, Reason: describeFailure(resp)}
		}
		if req.AmountInCents < MinimumChargeableUnitInCents {
			resp = rejection("InvalidParams", "TransactionAmount is below the minimum")
			return &ProviderResponseError{StatusCode: http.StatusBadRequest, Reason: describeFailure(resp)}
		}

		token.Used = true
		err = p.Tokens.Put(c, token.TokenID, token)
		if err != nil {
			return fmt.Errorf("error marking token %s used: %w", token.TokenID, err)
		}

		resp = PayResponse{
			TransactionID:     p.uuider.Create(),
			TransactionStatus: "Success",
			TransactionAmount: PayAmount{
				Value:        formatAmount(req.AmountInCents),
				CurrencyCode: req.CurrencyCode,
			},
			RequestID: p.uuider.Create(),
		}
		return nil
	})
	return resp, err
}

func rejection(code string, message string) PayResponse {
	return PayResponse{
		ErrorCode:    code,
		ErrorMessage: message,
	}
}
