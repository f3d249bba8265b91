package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/postcraft/backend/internal/metrics"
	"github.com/postcraft/backend/internal/storage"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/pkg/logger"
)

const MinPasswordLength = 6

var (
	ErrInvalidInput       = errors.New("invalid email or password format")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// SessionStore keeps the server side of issued tokens so that sign-out can
// revoke them before they expire.
type SessionStore interface {
	SaveSession(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (string, error)
	DeleteSession(ctx context.Context, tokenID string) error
}

type Config struct {
	JWTSecret      string
	PasswordPepper string
	AccessTokenTTL time.Duration
	Issuer         string
}

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type Service struct {
	users    storage.UserRepository
	sessions SessionStore
	events   *Broadcaster
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(users storage.UserRepository, sessions SessionStore, events *Broadcaster, cfg Config) *Service {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 24 * time.Hour
	}
	return &Service{
		users:    users,
		sessions: sessions,
		events:   events,
		cfg:      cfg,
		logger:   logger.Named("AuthService"),
		now:      time.Now,
	}
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthEvents.WithLabelValues("signup").Inc()
	s.logger.Info("User signed up", zap.String("user_id", user.ID))

	return user, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.AuthEvents.WithLabelValues("signin_failed").Inc()
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to load user", zap.Error(err))
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.checkPassword(password, user.PasswordHash) {
		metrics.AuthEvents.WithLabelValues("signin_failed").Inc()
		s.logger.Warn("Sign-in with wrong password", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	tokenID := uuid.NewString()

	token, err := s.signToken(user.ID, tokenID, now, expiresAt)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.SaveSession(ctx, tokenID, user.ID, s.cfg.AccessTokenTTL); err != nil {
		s.logger.Error("Failed to save session", zap.Error(err))
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.events.Publish(Event{Type: EventSignedIn, UserID: user.ID, At: now.UTC()})
	metrics.AuthEvents.WithLabelValues("signin").Inc()
	s.logger.Info("User signed in", zap.String("user_id", user.ID))

	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
		User:        user,
	}, nil
}

// SignOut revokes the session behind token. Signing out twice is not an
// error, but an unparseable token is.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}

	if err := s.sessions.DeleteSession(ctx, claims.ID); err != nil {
		s.logger.Error("Failed to delete session", zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.events.Publish(Event{Type: EventSignedOut, UserID: claims.UserID, At: s.now().UTC()})
	metrics.AuthEvents.WithLabelValues("signout").Inc()
	s.logger.Info("User signed out", zap.String("user_id", claims.UserID))

	return nil
}

// Authenticate returns the user id behind a live session token.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	userID, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		s.logger.Error("Failed to read session", zap.Error(err))
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	if userID != claims.UserID {
		s.logger.Warn("Session user mismatch", zap.String("token_user", claims.UserID))
		return "", ErrUnauthenticated
	}

	return userID, nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Subscribe streams session changes for userID.
func (s *Service) Subscribe(userID string) (<-chan Event, func()) {
	return s.events.Subscribe(userID)
}

func (s *Service) signToken(userID, tokenID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Service) parseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug("Expired token presented")
		} else {
			s.logger.Debug("Invalid token presented", zap.Error(err))
		}
		return nil, ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.UserID == "" {
		return nil, ErrUnauthenticated
	}

	return claims, nil
}

func (s *Service) pepper(password string) []byte {
	h := hmac.New(sha256.New, []byte(s.cfg.PasswordPepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(s.pepper(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), s.pepper(password)) == nil
}
