package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/postcraft/backend/internal/llm"
)

// MockCompleter is a mock type for the llm.Completer type
type MockCompleter struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, req
func (_m *MockCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	ret := _m.Called(ctx, req)

	var r0 *llm.CompletionResponse
	if rf, ok := ret.Get(0).(func(context.Context, llm.CompletionRequest) *llm.CompletionResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*llm.CompletionResponse)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, llm.CompletionRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockCompleter creates a new instance of MockCompleter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockCompleter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCompleter {
	m := &MockCompleter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ llm.Completer = (*MockCompleter)(nil)
