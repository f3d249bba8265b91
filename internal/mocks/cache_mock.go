package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/postcraft/backend/internal/auth"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/internal/style"
)

// MockStateCache is a mock type for the style.StateCache type
type MockStateCache struct {
	mock.Mock
}

// GetStyle provides a mock function with given fields: ctx, userID
func (_m *MockStateCache) GetStyle(ctx context.Context, userID string) (*models.UserStyle, bool, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.UserStyle
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.UserStyle)
	}

	return r0, ret.Bool(1), ret.Error(2)
}

// SetStyle provides a mock function with given fields: ctx, _a1
func (_m *MockStateCache) SetStyle(ctx context.Context, _a1 *models.UserStyle) error {
	ret := _m.Called(ctx, _a1)
	return ret.Error(0)
}

// SetLastGenerated provides a mock function with given fields: ctx, userID, content
func (_m *MockStateCache) SetLastGenerated(ctx context.Context, userID string, content string) error {
	ret := _m.Called(ctx, userID, content)
	return ret.Error(0)
}

// GetLastGenerated provides a mock function with given fields: ctx, userID
func (_m *MockStateCache) GetLastGenerated(ctx context.Context, userID string) (string, bool, error) {
	ret := _m.Called(ctx, userID)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

// NewMockStateCache creates a new instance of MockStateCache. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStateCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStateCache {
	m := &MockStateCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ style.StateCache = (*MockStateCache)(nil)

// MockBusyGuard is a mock type for the style.BusyGuard type
type MockBusyGuard struct {
	mock.Mock
}

// Acquire provides a mock function with given fields: ctx, key
func (_m *MockBusyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ret := _m.Called(ctx, key)
	return ret.Bool(0), ret.Error(1)
}

// Release provides a mock function with given fields: ctx, key
func (_m *MockBusyGuard) Release(ctx context.Context, key string) error {
	ret := _m.Called(ctx, key)
	return ret.Error(0)
}

// NewMockBusyGuard creates a new instance of MockBusyGuard. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockBusyGuard(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBusyGuard {
	m := &MockBusyGuard{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ style.BusyGuard = (*MockBusyGuard)(nil)

// MockSessionStore is a mock type for the auth.SessionStore type
type MockSessionStore struct {
	mock.Mock
}

// SaveSession provides a mock function with given fields: ctx, tokenID, userID, ttl
func (_m *MockSessionStore) SaveSession(ctx context.Context, tokenID string, userID string, ttl time.Duration) error {
	ret := _m.Called(ctx, tokenID, userID, ttl)
	return ret.Error(0)
}

// GetSession provides a mock function with given fields: ctx, tokenID
func (_m *MockSessionStore) GetSession(ctx context.Context, tokenID string) (string, error) {
	ret := _m.Called(ctx, tokenID)
	return ret.String(0), ret.Error(1)
}

// DeleteSession provides a mock function with given fields: ctx, tokenID
func (_m *MockSessionStore) DeleteSession(ctx context.Context, tokenID string) error {
	ret := _m.Called(ctx, tokenID)
	return ret.Error(0)
}

// NewMockSessionStore creates a new instance of MockSessionStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockSessionStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionStore {
	m := &MockSessionStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ auth.SessionStore = (*MockSessionStore)(nil)
