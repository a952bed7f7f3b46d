// Package persistence selects and decorates the KeyValueStore backend.
package persistence

import (
	"context"

	"github.com/turtacn/cyberrisk/internal/domain/repository"
	"github.com/turtacn/cyberrisk/pkg/errors"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

var _ repository.KeyValueStore = (*FailSoftStore)(nil)

// FailSoftStore keeps storage outages from crashing callers. Read failures
// are reported as absent keys; write failures are logged and returned as
// storage_error so the caller can report them without partial state.
type FailSoftStore struct {
	next repository.KeyValueStore
	log  logger.Logger
}

// NewFailSoftStore decorates next.
func NewFailSoftStore(next repository.KeyValueStore, log logger.Logger) *FailSoftStore {
	return &FailSoftStore{next: next, log: log.WithComponent("kv_store")}
}

func (s *FailSoftStore) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	defer s.recoverInto(ctx, "get", &err)

	value, ok, err = s.next.Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "storage read failed, treating key as absent", logger.String("key", key), logger.Err(err))
		return "", false, nil
	}
	return value, ok, nil
}

func (s *FailSoftStore) Set(ctx context.Context, key, value string) (err error) {
	defer s.recoverInto(ctx, "set", &err)
	return s.wrap(ctx, "set", s.next.Set(ctx, key, value))
}

func (s *FailSoftStore) SetMany(ctx context.Context, entries map[string]string) (err error) {
	defer s.recoverInto(ctx, "set", &err)
	return s.wrap(ctx, "set", s.next.SetMany(ctx, entries))
}

func (s *FailSoftStore) Remove(ctx context.Context, keys ...string) (err error) {
	defer s.recoverInto(ctx, "remove", &err)
	return s.wrap(ctx, "remove", s.next.Remove(ctx, keys...))
}

func (s *FailSoftStore) Close() error {
	return s.next.Close()
}

func (s *FailSoftStore) wrap(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	s.log.Error(ctx, "storage write failed", err, logger.String("op", op))
	return errors.ErrStorage(op, err)
}

// recoverInto converts a backend panic into a storage error.
func (s *FailSoftStore) recoverInto(ctx context.Context, op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	s.log.Error(ctx, "storage backend panicked", nil, logger.String("op", op), logger.Any("panic", r))
	if op == "get" {
		*errp = nil
		return
	}
	*errp = errors.New(errors.KindStorage, "storage "+op+" failed")
}
