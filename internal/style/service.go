package style

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/llm"
	"github.com/postcraft/backend/internal/metrics"
	"github.com/postcraft/backend/internal/posttext"
	"github.com/postcraft/backend/internal/storage"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/pkg/logger"
)

const (
	MaxPosts       = 50
	MinTopicLength = 2
	DefaultTone    = "professional"
	DefaultLength  = "medium"

	templateStandard = "standard"
	templateStyled   = "styled"
)

var validLengths = map[string]bool{"short": true, "medium": true, "long": true}

// StateCache holds the per-user working state: the current style and the
// most recently generated post.
type StateCache interface {
	GetStyle(ctx context.Context, userID string) (*models.UserStyle, bool, error)
	SetStyle(ctx context.Context, style *models.UserStyle) error
	SetLastGenerated(ctx context.Context, userID, content string) error
	GetLastGenerated(ctx context.Context, userID string) (string, bool, error)
}

// BusyGuard keeps a user from running the same operation twice at once.
type BusyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Repository interface {
	storage.StyleRepository
	storage.ContentRepository
}

type GenerationRequest struct {
	Topic   string `json:"topic"`
	Tone    string `json:"tone"`
	Length  string `json:"length"`
	Context string `json:"context,omitempty"`
}

type GenerationResult struct {
	Content      *models.GeneratedContent `json:"content"`
	StyleApplied bool                     `json:"style_applied"`
	Stats        posttext.Stats           `json:"stats"`
	WithinLength bool                     `json:"within_length"`
}

type Service struct {
	repo      Repository
	cache     StateCache
	busy      BusyGuard
	completer llm.Completer
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(repo Repository, cache StateCache, busy BusyGuard, completer llm.Completer) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		busy:      busy,
		completer: completer,
		logger:    logger.Named("StyleService"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// LoadUserStyle returns nil without an error when the user has no style yet.
func (s *Service) LoadUserStyle(ctx context.Context, userID string) (*models.UserStyle, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	cached, found, err := s.cache.GetStyle(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to read style state", zap.String("user_id", userID), zap.Error(err))
	} else if found {
		metrics.CacheHits.WithLabelValues("style").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("style").Inc()

	style, err := s.repo.GetUserStyle(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to load user style", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to load user style: %w", err)
	}

	if err := s.cache.SetStyle(ctx, style); err != nil {
		s.logger.Warn("Failed to refresh style state", zap.String("user_id", userID), zap.Error(err))
	}

	return style, nil
}

// AnalyzeStyle derives a style profile from posts. A rejected LLM reply
// leaves both the cached and the stored style untouched. When only the
// final upsert fails the cached state keeps the new style and the returned
// error wraps ErrPersist.
func (s *Service) AnalyzeStyle(ctx context.Context, userID string, posts []string) (*models.UserStyle, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	if len(posts) == 0 {
		return nil, invalidRequest("at least one post is required")
	}
	if len(posts) > MaxPosts {
		return nil, invalidRequest("at most %d posts can be analyzed at once", MaxPosts)
	}
	for i, post := range posts {
		if strings.TrimSpace(post) == "" {
			return nil, invalidRequest("post %d is empty", i+1)
		}
	}

	release, err := s.acquire(ctx, "analyze", userID)
	if err != nil {
		return nil, err
	}
	defer release()

	if stats, err := posttext.Analyze(strings.Join(posts, "\n\n")); err == nil {
		s.logger.Info("Analyzing writing style",
			zap.String("user_id", userID),
			zap.Int("posts", len(posts)),
			zap.Int("words", stats.Words),
			zap.Float64("avg_sentence_length", stats.AvgSentenceLength),
		)
	}

	resp, err := s.completer.Complete(ctx, llm.CompletionRequest{
		UserPrompt: BuildAnalysisPrompt(posts),
		JSON:       true,
		Operation:  "analyze",
	})
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("llm_error").Inc()
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, &ValidationError{Reason: "empty response"}
		}
		return nil, fmt.Errorf("style analysis failed: %w", err)
	}

	analysis, err := ParseAnalysis(resp.Content)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			metrics.ValidationFailures.WithLabelValues(vErr.Field).Inc()
		}
		metrics.AnalysesTotal.WithLabelValues("invalid_response").Inc()
		s.logger.Warn("Rejected analysis response", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	style := &models.UserStyle{
		UserID:        userID,
		StyleProfile:  analysis.StyleProfile,
		Metrics:       analysis.Metrics,
		WritingStyle:  analysis.WritingStyle,
		AnalyzedPosts: append([]string(nil), posts...),
		UpdatedAt:     s.now().UTC(),
	}

	if err := s.cache.SetStyle(ctx, style); err != nil {
		s.logger.Warn("Failed to update style state", zap.String("user_id", userID), zap.Error(err))
	}

	if err := s.repo.UpsertUserStyle(ctx, style); err != nil {
		metrics.AnalysesTotal.WithLabelValues("persist_error").Inc()
		s.logger.Error("Failed to save user style", zap.String("user_id", userID), zap.Error(err))
		return style, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	s.logger.Info("Writing style analyzed", zap.String("user_id", userID))

	return style, nil
}

// GenerateContent writes a post for the request, matching the user's stored
// style when there is one. On ErrPersist the result is still returned.
func (s *Service) GenerateContent(ctx context.Context, userID string, req GenerationRequest) (*GenerationResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	req.Topic = strings.TrimSpace(req.Topic)
	req.Tone = strings.TrimSpace(req.Tone)
	req.Length = strings.ToLower(strings.TrimSpace(req.Length))
	req.Context = strings.TrimSpace(req.Context)

	if utf8.RuneCountInString(req.Topic) < MinTopicLength {
		return nil, invalidRequest("topic must be at least %d characters", MinTopicLength)
	}
	if req.Length == "" {
		req.Length = DefaultLength
	}
	if !validLengths[req.Length] {
		return nil, invalidRequest("length must be one of short, medium or long")
	}

	release, err := s.acquire(ctx, "generate", userID)
	if err != nil {
		return nil, err
	}
	defer release()

	style, err := s.LoadUserStyle(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ws *models.WritingStyle
	template := templateStandard
	if style != nil {
		ws = &style.WritingStyle
		template = templateStyled
	}

	if req.Tone == "" {
		req.Tone = DefaultTone
		if ws != nil && ws.Tone != "" {
			req.Tone = strings.ToLower(ws.Tone)
		}
	}

	resp, err := s.completer.Complete(ctx, llm.CompletionRequest{
		UserPrompt: BuildGenerationPrompt(req, ws),
		Operation:  "generate",
	})
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("llm_error", template).Inc()
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		metrics.GenerationsTotal.WithLabelValues("invalid_response", template).Inc()
		return nil, fmt.Errorf("%w: empty post", ErrInvalidResponse)
	}

	content := &models.GeneratedContent{
		ID:        s.newID(),
		UserID:    userID,
		Content:   text,
		Topic:     req.Topic,
		Tone:      req.Tone,
		Length:    req.Length,
		CreatedAt: s.now().UTC(),
	}
	if req.Context != "" {
		extra := req.Context
		content.Context = &extra
	}

	result := &GenerationResult{Content: content, StyleApplied: ws != nil}
	if stats, err := posttext.Analyze(text); err != nil {
		s.logger.Warn("Failed to compute post statistics", zap.Error(err))
	} else {
		result.Stats = stats
		result.WithinLength = posttext.FitsLength(stats.Words, req.Length)
		metrics.GeneratedWords.WithLabelValues(req.Length).Observe(float64(stats.Words))
	}

	if err := s.cache.SetLastGenerated(ctx, userID, text); err != nil {
		s.logger.Warn("Failed to update generated state", zap.String("user_id", userID), zap.Error(err))
	}

	if err := s.repo.InsertGeneratedContent(ctx, content); err != nil {
		metrics.GenerationsTotal.WithLabelValues("persist_error", template).Inc()
		s.logger.Error("Failed to save generated content", zap.String("user_id", userID), zap.Error(err))
		return result, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	metrics.GenerationsTotal.WithLabelValues("success", template).Inc()
	s.logger.Info("Content generated",
		zap.String("user_id", userID),
		zap.String("template", template),
		zap.Int("words", result.Stats.Words),
	)

	return result, nil
}

func (s *Service) ListGeneratedContent(ctx context.Context, userID string) ([]models.GeneratedContent, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	items, err := s.repo.ListGeneratedContent(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list generated content", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list generated content: %w", err)
	}
	return items, nil
}

// LastGenerated returns the most recent post kept in the state cache, or an
// empty string when there is none.
func (s *Service) LastGenerated(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}

	content, found, err := s.cache.GetLastGenerated(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to read generated state: %w", err)
	}
	if !found {
		metrics.CacheMisses.WithLabelValues("generated").Inc()
		return "", nil
	}
	metrics.CacheHits.WithLabelValues("generated").Inc()
	return content, nil
}

func (s *Service) acquire(ctx context.Context, operation, userID string) (func(), error) {
	key := operation + ":" + userID

	ok, err := s.busy.Acquire(ctx, key)
	if err != nil {
		s.logger.Error("Failed to acquire busy flag", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to acquire busy flag: %w", err)
	}
	if !ok {
		metrics.BusyRejections.WithLabelValues(operation).Inc()
		return nil, ErrBusy
	}

	return func() {
		if err := s.busy.Release(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("Failed to release busy flag", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
