package amazonfps

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcGrol/fpsgateway/lib/myerrors"
	"github.com/MarcGrol/fpsgateway/lib/myvault"
)

const (
	tokenKeySuffix  = "amazon_token"
	DefaultTokenTTL = time.Hour
)

// SessionIdentity scopes a token to one buyer session of one tenant.
type SessionIdentity struct {
	TenantUID  string
	SessionUID string
}

func (s SessionIdentity) tokenKey() (string, error) {
	if s.SessionUID == "" {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("missing session"))
	}
	return fmt.Sprintf("%s_%s_%s", s.TenantUID, s.SessionUID, tokenKeySuffix), nil
}

// TokenStore holds the authorization token the provider issued for a session.
type TokenStore struct {
	vault myvault.VaultReadWriter[string]
	ttl   time.Duration
}

func NewTokenStore(vault myvault.VaultReadWriter[string], ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenStore{
		vault: vault,
		ttl:   ttl,
	}
}

func (ts *TokenStore) Set(c context.Context, session SessionIdentity, token string) error {
	key, err := session.tokenKey()
	if err != nil {
		return err
	}
	err = ts.vault.Put(c, key, token, ts.ttl)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing token: %w", err))
	}
	return nil
}

// Get returns an empty token when there is none or when it expired.
func (ts *TokenStore) Get(c context.Context, session SessionIdentity) (string, error) {
	key, err := session.tokenKey()
	if err != nil {
		return "", err
	}
	token, found, err := ts.vault.Get(c, key)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error fetching token: %w", err))
	}
	if !found {
		return "", nil
	}
	return token, nil
}

func (ts *TokenStore) Clear(c context.Context, session SessionIdentity) error {
	key, err := session.tokenKey()
	if err != nil {
		return err
	}
	err = ts.vault.Delete(c, key)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error clearing token: %w", err))
	}
	return nil
}
