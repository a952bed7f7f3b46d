package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a testify mock of APIClient.
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) Get(ctx context.Context, path string, out interface{}) error {
	args := m.Called(ctx, path, out)
	return args.Error(0)
}

func (m *MockAPIClient) Post(ctx context.Context, path string, body, out interface{}) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

// respondWith decodes body into the call's out argument, which sits at
// position outIdx.
func respondWith(outIdx int, body string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		if err := json.Unmarshal([]byte(body), args.Get(outIdx)); err != nil {
			panic(err)
		}
	}
}
