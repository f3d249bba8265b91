package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/postcraft/backend/internal/storage"
	"github.com/postcraft/backend/internal/storage/models"
)

// MockStyleRepository is a mock type for the style and generated content repositories
type MockStyleRepository struct {
	mock.Mock
}

// GetUserStyle provides a mock function with given fields: ctx, userID
func (_m *MockStyleRepository) GetUserStyle(ctx context.Context, userID string) (*models.UserStyle, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.UserStyle
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.UserStyle)
	}

	return r0, ret.Error(1)
}

// UpsertUserStyle provides a mock function with given fields: ctx, style
func (_m *MockStyleRepository) UpsertUserStyle(ctx context.Context, style *models.UserStyle) error {
	ret := _m.Called(ctx, style)
	return ret.Error(0)
}

// InsertGeneratedContent provides a mock function with given fields: ctx, content
func (_m *MockStyleRepository) InsertGeneratedContent(ctx context.Context, content *models.GeneratedContent) error {
	ret := _m.Called(ctx, content)
	return ret.Error(0)
}

// ListGeneratedContent provides a mock function with given fields: ctx, userID
func (_m *MockStyleRepository) ListGeneratedContent(ctx context.Context, userID string) ([]models.GeneratedContent, error) {
	ret := _m.Called(ctx, userID)

	var r0 []models.GeneratedContent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GeneratedContent)
	}

	return r0, ret.Error(1)
}

// NewMockStyleRepository creates a new instance of MockStyleRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStyleRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStyleRepository {
	m := &MockStyleRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var (
	_ storage.StyleRepository   = (*MockStyleRepository)(nil)
	_ storage.ContentRepository = (*MockStyleRepository)(nil)
)

// MockUserRepository is a mock type for the storage.UserRepository type
type MockUserRepository struct {
	mock.Mock
}

// CreateUser provides a mock function with given fields: ctx, user
func (_m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

// GetUserByEmail provides a mock function with given fields: ctx, email
func (_m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ret := _m.Called(ctx, email)

	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}

	return r0, ret.Error(1)
}

// GetUserByID provides a mock function with given fields: ctx, id
func (_m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}

	return r0, ret.Error(1)
}

// NewMockUserRepository creates a new instance of MockUserRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ storage.UserRepository = (*MockUserRepository)(nil)
