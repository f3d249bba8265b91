package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/postcraft/backend/internal/api/handlers"
	"github.com/postcraft/backend/internal/auth"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/internal/style"
)

// MockStyleService is a mock type for the handlers.StyleService type
type MockStyleService struct {
	mock.Mock
}

// LoadUserStyle provides a mock function with given fields: ctx, userID
func (_m *MockStyleService) LoadUserStyle(ctx context.Context, userID string) (*models.UserStyle, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.UserStyle
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.UserStyle)
	}

	return r0, ret.Error(1)
}

// AnalyzeStyle provides a mock function with given fields: ctx, userID, posts
func (_m *MockStyleService) AnalyzeStyle(ctx context.Context, userID string, posts []string) (*models.UserStyle, error) {
	ret := _m.Called(ctx, userID, posts)

	var r0 *models.UserStyle
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.UserStyle)
	}

	return r0, ret.Error(1)
}

// NewMockStyleService creates a new instance of MockStyleService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStyleService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStyleService {
	m := &MockStyleService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ handlers.StyleService = (*MockStyleService)(nil)

// MockContentService is a mock type for the handlers.ContentService type
type MockContentService struct {
	mock.Mock
}

// GenerateContent provides a mock function with given fields: ctx, userID, req
func (_m *MockContentService) GenerateContent(ctx context.Context, userID string, req style.GenerationRequest) (*style.GenerationResult, error) {
	ret := _m.Called(ctx, userID, req)

	var r0 *style.GenerationResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*style.GenerationResult)
	}

	return r0, ret.Error(1)
}

// ListGeneratedContent provides a mock function with given fields: ctx, userID
func (_m *MockContentService) ListGeneratedContent(ctx context.Context, userID string) ([]models.GeneratedContent, error) {
	ret := _m.Called(ctx, userID)

	var r0 []models.GeneratedContent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GeneratedContent)
	}

	return r0, ret.Error(1)
}

// LastGenerated provides a mock function with given fields: ctx, userID
func (_m *MockContentService) LastGenerated(ctx context.Context, userID string) (string, error) {
	ret := _m.Called(ctx, userID)
	return ret.String(0), ret.Error(1)
}

// NewMockContentService creates a new instance of MockContentService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockContentService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockContentService {
	m := &MockContentService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ handlers.ContentService = (*MockContentService)(nil)

// MockAuthService is a mock type for the handlers.AuthService type
type MockAuthService struct {
	mock.Mock
}

// SignUp provides a mock function with given fields: ctx, email, password
func (_m *MockAuthService) SignUp(ctx context.Context, email string, password string) (*models.User, error) {
	ret := _m.Called(ctx, email, password)

	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}

	return r0, ret.Error(1)
}

// SignIn provides a mock function with given fields: ctx, email, password
func (_m *MockAuthService) SignIn(ctx context.Context, email string, password string) (*auth.Session, error) {
	ret := _m.Called(ctx, email, password)

	var r0 *auth.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*auth.Session)
	}

	return r0, ret.Error(1)
}

// SignOut provides a mock function with given fields: ctx, token
func (_m *MockAuthService) SignOut(ctx context.Context, token string) error {
	ret := _m.Called(ctx, token)
	return ret.Error(0)
}

// CurrentUser provides a mock function with given fields: ctx, userID
func (_m *MockAuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}

	return r0, ret.Error(1)
}

// NewMockAuthService creates a new instance of MockAuthService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockAuthService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthService {
	m := &MockAuthService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ handlers.AuthService = (*MockAuthService)(nil)
