package persistence

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/infrastructure/persistence/memory"
	"github.com/turtacn/cyberrisk/pkg/errors"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockStore) SetMany(ctx context.Context, entries map[string]string) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *mockStore) Remove(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

func TestFailSoftStore_ReadFailureIsAbsent(t *testing.T) {
	ctx := context.Background()
	backend := new(mockStore)
	backend.On("Get", ctx, "token").Return("stale", true, stderrors.New("disk unavailable"))

	store := NewFailSoftStore(backend, logger.NewNoopLogger())
	v, ok, err := store.Get(ctx, "token")

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
	backend.AssertExpectations(t)
}

func TestFailSoftStore_WriteFailureIsStorageError(t *testing.T) {
	ctx := context.Background()
	backend := new(mockStore)
	entries := map[string]string{"token": "abc", "user": "{}"}
	backend.On("SetMany", ctx, entries).Return(stderrors.New("quota exceeded"))
	backend.On("Remove", ctx, []string{"token", "user"}).Return(stderrors.New("read-only"))

	store := NewFailSoftStore(backend, logger.NewNoopLogger())

	err := store.SetMany(ctx, entries)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindStorage))

	err = store.Remove(ctx, "token", "user")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindStorage))
}

type panickyStore struct{ mockStore }

func (p *panickyStore) Get(context.Context, string) (string, bool, error) { panic("boom") }
func (p *panickyStore) Set(context.Context, string, string) error       { panic("boom") }

func TestFailSoftStore_RecoversBackendPanics(t *testing.T) {
	ctx := context.Background()
	store := NewFailSoftStore(&panickyStore{}, logger.NewNoopLogger())

	_, ok, err := store.Get(ctx, "token")
	assert.NoError(t, err)
	assert.False(t, ok)

	err = store.Set(ctx, "token", "abc")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindStorage))
}

func TestFailSoftStore_PassesThroughHealthyBackend(t *testing.T) {
	ctx := context.Background()
	store := NewFailSoftStore(memory.NewKVStore(), logger.NewNoopLogger())

	require.NoError(t, store.Set(ctx, "token", "abc"))
	v, ok, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNoopLogger()

	t.Run("memory by default", func(t *testing.T) {
		store, err := NewStore(ctx, config.StoreConfig{}, config.RedisConfig{}, log)
		require.NoError(t, err)
		assert.IsType(t, &FailSoftStore{}, store)
		require.NoError(t, store.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "s.db")}
		store, err := NewStore(ctx, cfg, config.RedisConfig{}, log)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "token", "abc"))
		require.NoError(t, store.Close())
	})

	t.Run("unreachable redis still yields a store", func(t *testing.T) {
		cfg := config.StoreConfig{Driver: "redis", Namespace: "t:"}
		store, err := NewStore(ctx, cfg, config.RedisConfig{Address: "127.0.0.1:1"}, log)
		require.NoError(t, err)
		_, ok, err := store.Get(ctx, "token")
		assert.NoError(t, err)
		assert.False(t, ok)
		_ = store.Close()
	})

	t.Run("misconfigured redis cluster", func(t *testing.T) {
		cfg := config.StoreConfig{Driver: "redis"}
		_, err := NewStore(ctx, cfg, config.RedisConfig{Mode: "cluster"}, log)
		assert.EqualError(t, err, "cluster addresses not configured")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewStore(ctx, config.StoreConfig{Driver: "etcd"}, config.RedisConfig{}, log)
		assert.Error(t, err)
	})
}
