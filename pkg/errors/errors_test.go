package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrHTTP_Classification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"bad request", http.StatusBadRequest, KindHTTP},
		{"unauthorized", http.StatusUnauthorized, KindAuthExpired},
		{"forbidden", http.StatusForbidden, KindHTTP},
		{"unavailable", http.StatusServiceUnavailable, KindHTTP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ErrHTTP(tt.status, "")
			assert.Equal(t, tt.kind, err.Kind())
			assert.Equal(t, tt.status, err.HTTPStatus())
		})
	}
}

func TestMessageOr(t *testing.T) {
	assert.Equal(t, "Invalid username or password",
		MessageOr(ErrHTTP(http.StatusBadRequest, "Invalid username or password"), "Login failed"))
	assert.Equal(t, "Login failed", MessageOr(ErrHTTP(http.StatusBadGateway, ""), "Login failed"))
	assert.Equal(t, "Login failed", MessageOr(ErrNetwork(context.DeadlineExceeded), "Login failed"))
	assert.Equal(t, "Passwords do not match", MessageOr(ErrValidation("Passwords do not match"), "Registration failed"))
	assert.Equal(t, "fallback", MessageOr(stderrors.New("plain"), "fallback"))
}

func TestKindHelpers_UnwrapChain(t *testing.T) {
	wrapped := fmt.Errorf("calling api: %w", ErrHTTP(http.StatusUnauthorized, "expired"))
	assert.True(t, IsAuthExpired(wrapped))
	assert.Equal(t, KindAuthExpired, KindOf(wrapped))
	assert.False(t, IsKind(nil, KindNetwork))

	netErr := ErrNetwork(context.DeadlineExceeded)
	assert.True(t, stderrors.Is(netErr, context.DeadlineExceeded))
	assert.Contains(t, netErr.Error(), "network_error")
}

func TestWithMetadata(t *testing.T) {
	err := ErrStorage("set", stderrors.New("disk full")).WithMetadata("key", "token")
	assert.Equal(t, "token", err.Metadata()["key"])
	assert.Equal(t, KindStorage, err.Kind())
}
