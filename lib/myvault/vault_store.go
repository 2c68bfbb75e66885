package myvault

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcGrol/fpsgateway/lib/mystore"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
)

// Secret is the envelope a value is kept in by the store backed vault.
type Secret[T any] struct {
	UID       string
	Value     T
	ExpiresAt *time.Time
}

type storeVault[T any] struct {
	store mystore.Store[Secret[T]]
	nower mytime.Nower
}

// NewStoreVault keeps secrets in a generic store. Expiry is enforced when reading.
func NewStoreVault[T any](store mystore.Store[Secret[T]], nower mytime.Nower) VaultReadWriter[T] {
	return &storeVault[T]{
		store: store,
		nower: nower,
	}
}

func (v *storeVault[T]) Get(c context.Context, uid string) (T, bool, error) {
	var empty T

	secret, found, err := v.store.Get(c, uid)
	if err != nil {
		return empty, false, fmt.Errorf("error fetching secret %s: %s", uid, err)
	}
	if !found {
		return empty, false, nil
	}
	if secret.ExpiresAt != nil && !v.nower.Now().Before(*secret.ExpiresAt) {
		return empty, false, nil
	}

	return secret.Value, true, nil
}

func (v *storeVault[T]) Put(c context.Context, uid string, value T, ttl time.Duration) error {
	secret := Secret[T]{
		UID:   uid,
		Value: value,
	}
	if ttl > 0 {
		expiresAt := v.nower.Now().Add(ttl)
		secret.ExpiresAt = &expiresAt
	}

	err := v.store.Put(c, uid, secret)
	if err != nil {
		return fmt.Errorf("error storing secret %s: %s", uid, err)
	}
	return nil
}

func (v *storeVault[T]) Delete(c context.Context, uid string) error {
	err := v.store.Delete(c, uid)
	if err != nil {
		return fmt.Errorf("error deleting secret %s: %s", uid, err)
	}
	return nil
}
