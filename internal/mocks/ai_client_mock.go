package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/bryanwahyu/automaton-ux/internal/domain/ai"
)

// MockAIClient is a mock type for the ai.Client type
type MockAIClient struct {
	mock.Mock
}

// NewMockAIClient creates a MockAIClient and asserts its expectations on cleanup.
func NewMockAIClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAIClient {
	m := &MockAIClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// UploadFile provides a mock function with given fields: ctx, r, displayName, mimeType
func (_m *MockAIClient) UploadFile(ctx context.Context, r io.Reader, displayName string, mimeType string) (*ai.Asset, error) {
	ret := _m.Called(ctx, r, displayName, mimeType)

	var r0 *ai.Asset
	if rf, ok := ret.Get(0).(func(context.Context, io.Reader, string, string) *ai.Asset); ok {
		r0 = rf(ctx, r, displayName, mimeType)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ai.Asset)
	}
	return r0, ret.Error(1)
}

// GetFile provides a mock function with given fields: ctx, name
func (_m *MockAIClient) GetFile(ctx context.Context, name string) (*ai.Asset, error) {
	ret := _m.Called(ctx, name)

	var r0 *ai.Asset
	if rf, ok := ret.Get(0).(func(context.Context, string) *ai.Asset); ok {
		r0 = rf(ctx, name)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ai.Asset)
	}
	return r0, ret.Error(1)
}

// DeleteFile provides a mock function with given fields: ctx, name
func (_m *MockAIClient) DeleteFile(ctx context.Context, name string) error {
	ret := _m.Called(ctx, name)
	return ret.Error(0)
}

// Generate provides a mock function with given fields: ctx, prompt, asset
func (_m *MockAIClient) Generate(ctx context.Context, prompt string, asset *ai.Asset) (string, error) {
	ret := _m.Called(ctx, prompt, asset)
	return ret.String(0), ret.Error(1)
}

var _ ai.Client = (*MockAIClient)(nil)
