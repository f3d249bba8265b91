package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/postcraft/backend/internal/auth"
	"github.com/postcraft/backend/internal/mocks"
	"github.com/postcraft/backend/internal/storage"
	"github.com/postcraft/backend/internal/storage/models"
)

// memSessions is an in-memory auth.SessionStore.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]string)}
}

func (m *memSessions) SaveSession(_ context.Context, tokenID, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[tokenID] = userID
	return nil
}

func (m *memSessions) GetSession(_ context.Context, tokenID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.sessions[tokenID]
	if !ok {
		return "", storage.ErrNotFound
	}
	return userID, nil
}

func (m *memSessions) DeleteSession(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenID)
	return nil
}

func testConfig() auth.Config {
	return auth.Config{
		JWTSecret:      "test-secret",
		PasswordPepper: "test-pepper",
		AccessTokenTTL: time.Hour,
		Issuer:         "postcraft-test",
	}
}

// signedUpUser runs SignUp against a mock repository and returns the stored
// user so that sign-in tests can use its real password hash.
func signedUpUser(t *testing.T, email, password string) *models.User {
	t.Helper()

	users := mocks.NewMockUserRepository(t)
	var created *models.User
	users.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.User) }).
		Return(nil).Once()

	svc := auth.NewService(users, newMemSessions(), auth.NewBroadcaster(1), testConfig())
	user, err := svc.SignUp(context.Background(), email, password)
	require.NoError(t, err)
	require.Same(t, created, user)
	return user
}

func TestSignUp(t *testing.T) {
	user := signedUpUser(t, "  Ada@Example.com ", "secret-pass")

	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret-pass", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestSignUp_Validation(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	svc := auth.NewService(users, newMemSessions(), auth.NewBroadcaster(1), testConfig())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "secret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidInput)

	_, err = svc.SignUp(ctx, "ada@example.com", "12345")
	assert.ErrorIs(t, err, auth.ErrInvalidInput)

	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	users.On("CreateUser", mock.Anything, mock.Anything).Return(storage.ErrDuplicate).Once()

	svc := auth.NewService(users, newMemSessions(), auth.NewBroadcaster(1), testConfig())

	_, err := svc.SignUp(context.Background(), "ada@example.com", "secret-pass")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestSignInAuthenticateSignOut(t *testing.T) {
	user := signedUpUser(t, "ada@example.com", "secret-pass")
	ctx := context.Background()

	users := mocks.NewMockUserRepository(t)
	users.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(user, nil).Once()

	events := auth.NewBroadcaster(4)
	svc := auth.NewService(users, newMemSessions(), events, testConfig())

	stream, unsubscribe := svc.Subscribe(user.ID)
	defer unsubscribe()

	session, err := svc.SignIn(ctx, "ADA@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.NotEmpty(t, session.AccessToken)
	assert.Same(t, user, session.User)

	signedIn := <-stream
	assert.Equal(t, auth.EventSignedIn, signedIn.Type)
	assert.Equal(t, user.ID, signedIn.UserID)

	userID, err := svc.Authenticate(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	require.NoError(t, svc.SignOut(ctx, session.AccessToken))

	signedOut := <-stream
	assert.Equal(t, auth.EventSignedOut, signedOut.Type)

	_, err = svc.Authenticate(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestSignIn_WrongPassword(t *testing.T) {
	user := signedUpUser(t, "ada@example.com", "secret-pass")

	users := mocks.NewMockUserRepository(t)
	users.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(user, nil).Once()
	users.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(nil, storage.ErrNotFound).Once()

	sessions := mocks.NewMockSessionStore(t)
	svc := auth.NewService(users, sessions, auth.NewBroadcaster(1), testConfig())

	_, err := svc.SignIn(context.Background(), "ada@example.com", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.SignIn(context.Background(), "bob@example.com", "secret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	sessions.AssertNotCalled(t, "SaveSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignIn_PepperMustMatch(t *testing.T) {
	user := signedUpUser(t, "ada@example.com", "secret-pass")

	users := mocks.NewMockUserRepository(t)
	users.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(user, nil).Once()

	cfg := testConfig()
	cfg.PasswordPepper = "another-pepper"
	svc := auth.NewService(users, newMemSessions(), auth.NewBroadcaster(1), cfg)

	_, err := svc.SignIn(context.Background(), "ada@example.com", "secret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	user := signedUpUser(t, "ada@example.com", "secret-pass")
	ctx := context.Background()

	users := mocks.NewMockUserRepository(t)
	users.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(user, nil).Once()

	issuer := auth.NewService(users, newMemSessions(), auth.NewBroadcaster(1), testConfig())
	session, err := issuer.SignIn(ctx, "ada@example.com", "secret-pass")
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.JWTSecret = "other-secret"
	verifier := auth.NewService(mocks.NewMockUserRepository(t), newMemSessions(), auth.NewBroadcaster(1), otherCfg)

	_, err = verifier.Authenticate(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = issuer.Authenticate(ctx, "")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = issuer.Authenticate(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	assert.ErrorIs(t, issuer.SignOut(ctx, "not.a.jwt"), auth.ErrUnauthenticated)
}

func TestCurrentUser(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	users.On("GetUserByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil).Once()
	users.On("GetUserByID", mock.Anything, "gone").Return(nil, storage.ErrNotFound).Once()

	svc := auth.NewService(users, newMemSessions(), auth.NewBroadcaster(1), testConfig())

	user, err := svc.CurrentUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = svc.CurrentUser(context.Background(), "gone")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}
