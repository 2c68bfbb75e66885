package myvault

import (
	"context"
	"time"
)

// VaultReader gives access to short-lived secrets such as provider tokens.
type VaultReader[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
}

//go:generate mockgen -source=api.go -package myvault -destination vault_mock.go VaultReadWriter
type VaultReadWriter[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
	// Put stores value under uid. A ttl of zero means the value does not expire.
	Put(c context.Context, uid string, value T, ttl time.Duration) error
	Delete(c context.Context, uid string) error
}
