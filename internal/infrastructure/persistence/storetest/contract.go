// Package storetest holds the behaviour every KeyValueStore backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cyberrisk/internal/domain/repository"
)

// RunContract exercises store against the KeyValueStore contract. The store
// must start empty.
func RunContract(t *testing.T, store repository.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is absent", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k1", "v1"))
		v, ok, err := store.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v1", v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k1", "v2"))
		v, _, err := store.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, "v2", v)
	})

	t.Run("set many writes every key", func(t *testing.T) {
		require.NoError(t, store.SetMany(ctx, map[string]string{
			"token": "abc",
			"user":  `{"username":"admin"}`,
		}))
		tok, ok, err := store.Get(ctx, "token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", tok)
		user, ok, err := store.Get(ctx, "user")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"username":"admin"}`, user)
	})

	t.Run("remove clears several keys", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "token", "user", "never-set"))
		_, ok, err := store.Get(ctx, "token")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = store.Get(ctx, "user")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		assert.NoError(t, store.Remove(ctx, "token"))
		assert.NoError(t, store.Remove(ctx))
	})
}
