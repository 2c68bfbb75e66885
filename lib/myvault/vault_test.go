package myvault

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/fpsgateway/lib/mystore"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
)

func TestStoreVault(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := context.TODO()

	store, _, err := mystore.NewInMemoryStore[Secret[string]](c)
	require.NoError(t, err)
	nower := mytime.NewMockNower(ctrl)
	sut := NewStoreVault[string](store, nower)

	t.Run("Get before put", func(t *testing.T) {
		_, found, err := sut.Get(c, "1_abc_amazon_token")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Get before expiry", func(t *testing.T) {
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(59 * time.Minute))

		assert.NoError(t, sut.Put(c, "1_abc_amazon_token", "TOK123", time.Hour))
		token, found, err := sut.Get(c, "1_abc_amazon_token")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "TOK123", token)
	})

	t.Run("Get after expiry", func(t *testing.T) {
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(time.Hour))

		_, found, err := sut.Get(c, "1_abc_amazon_token")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.NoError(t, sut.Put(c, "1_def_amazon_token", "TOK456", 0))
		assert.NoError(t, sut.Delete(c, "1_def_amazon_token"))

		_, found, err := sut.Get(c, "1_def_amazon_token")
		assert.NoError(t, err)
		assert.False(t, found)
	})
}

func TestRedisVault(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	c := context.TODO()
	sut := NewRedisVault[string](client, "vault:")

	t.Run("Put and get", func(t *testing.T) {
		assert.NoError(t, sut.Put(c, "1_abc_amazon_token", "TOK123", time.Hour))
		assert.True(t, mr.Exists("vault:1_abc_amazon_token"))

		token, found, err := sut.Get(c, "1_abc_amazon_token")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "TOK123", token)
	})

	t.Run("Expired", func(t *testing.T) {
		mr.FastForward(time.Hour)

		_, found, err := sut.Get(c, "1_abc_amazon_token")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.NoError(t, sut.Put(c, "1_def_amazon_token", "TOK456", 0))
		assert.NoError(t, sut.Delete(c, "1_def_amazon_token"))

		_, found, err := sut.Get(c, "1_def_amazon_token")
		assert.NoError(t, err)
		assert.False(t, found)
	})
}
