package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/storage"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/pkg/logger"
)

const uniqueViolation = "23505"

var _ storage.Store = (*Client)(nil)

// Client is the hosted-database implementation of storage.Store.
type Client struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewClient(ctx context.Context, dsn string, maxConns int32) (*Client, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log := logger.Named("PgStore")
	log.Info("Postgres client initialized", zap.String("host", poolCfg.ConnConfig.Host))

	return &Client{pool: pool, logger: log}, nil
}

func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_styles (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		style_profile TEXT NOT NULL,
		metrics JSONB NOT NULL,
		writing_style JSONB NOT NULL,
		analyzed_posts JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS generated_content (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		topic TEXT NOT NULL,
		tone TEXT NOT NULL,
		length TEXT NOT NULL,
		context TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_generated_user_created ON generated_content(user_id, created_at DESC);
	`

	if _, err := c.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	c.logger.Info("Postgres schema initialized")
	return nil
}

func (c *Client) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`

	_, err := c.pool.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			c.logger.Warn("Attempted to create duplicate user", zap.String("email", user.Email))
			return storage.ErrDuplicate
		}
		c.logger.Error("Failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}

	return nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.getUser(ctx, `SELECT id::text, email, password_hash, created_at FROM users WHERE email = $1`, strings.ToLower(email))
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return c.getUser(ctx, `SELECT id::text, email, password_hash, created_at FROM users WHERE id::text = $1`, id)
}

func (c *Client) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	user := &models.User{}
	err := c.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user from postgres: %w", err)
	}
	return user, nil
}

func (c *Client) GetUserStyle(ctx context.Context, userID string) (*models.UserStyle, error) {
	query := `
		SELECT user_id::text, style_profile, metrics, writing_style, analyzed_posts, updated_at
		FROM user_styles WHERE user_id::text = $1
	`

	style := &models.UserStyle{}
	var metrics, writingStyle, posts []byte

	err := c.pool.QueryRow(ctx, query, userID).Scan(
		&style.UserID,
		&style.StyleProfile,
		&metrics,
		&writingStyle,
		&posts,
		&style.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		c.logger.Error("Failed to get user style", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get user style from postgres: %w", err)
	}

	if err := json.Unmarshal(metrics, &style.Metrics); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}
	if err := json.Unmarshal(writingStyle, &style.WritingStyle); err != nil {
		return nil, fmt.Errorf("failed to decode writing style: %w", err)
	}
	if err := json.Unmarshal(posts, &style.AnalyzedPosts); err != nil {
		return nil, fmt.Errorf("failed to decode analyzed posts: %w", err)
	}

	style.UpdatedAt = style.UpdatedAt.UTC()
	return style, nil
}

func (c *Client) UpsertUserStyle(ctx context.Context, style *models.UserStyle) error {
	metrics, err := json.Marshal(style.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	writingStyle, err := json.Marshal(style.WritingStyle)
	if err != nil {
		return fmt.Errorf("failed to encode writing style: %w", err)
	}
	posts, err := json.Marshal(style.AnalyzedPosts)
	if err != nil {
		return fmt.Errorf("failed to encode analyzed posts: %w", err)
	}

	query := `
		INSERT INTO user_styles (user_id, style_profile, metrics, writing_style, analyzed_posts, updated_at)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			style_profile = EXCLUDED.style_profile,
			metrics = EXCLUDED.metrics,
			writing_style = EXCLUDED.writing_style,
			analyzed_posts = EXCLUDED.analyzed_posts,
			updated_at = EXCLUDED.updated_at
	`

	_, err = c.pool.Exec(ctx, query,
		style.UserID,
		style.StyleProfile,
		string(metrics),
		string(writingStyle),
		string(posts),
		style.UpdatedAt,
	)
	if err != nil {
		c.logger.Error("Failed to upsert user style", zap.Error(err), zap.String("user_id", style.UserID))
		return fmt.Errorf("failed to upsert user style in postgres: %w", err)
	}

	return nil
}

func (c *Client) InsertGeneratedContent(ctx context.Context, content *models.GeneratedContent) error {
	query := `
		INSERT INTO generated_content (id, user_id, content, topic, tone, length, context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := c.pool.Exec(ctx, query,
		content.ID,
		content.UserID,
		content.Content,
		content.Topic,
		content.Tone,
		content.Length,
		content.Context,
		content.CreatedAt,
	)
	if err != nil {
		c.logger.Error("Failed to insert generated content", zap.Error(err), zap.String("user_id", content.UserID))
		return fmt.Errorf("failed to insert generated content in postgres: %w", err)
	}

	return nil
}

func (c *Client) ListGeneratedContent(ctx context.Context, userID string) ([]models.GeneratedContent, error) {
	query := `
		SELECT id::text, user_id::text, content, topic, tone, length, context, created_at
		FROM generated_content
		WHERE user_id::text = $1
		ORDER BY created_at DESC
	`

	rows, err := c.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generated content: %w", err)
	}
	defer rows.Close()

	items := make([]models.GeneratedContent, 0)
	for rows.Next() {
		var item models.GeneratedContent
		if err := rows.Scan(&item.ID, &item.UserID, &item.Content, &item.Topic, &item.Tone, &item.Length, &item.Context, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generated content: %w", err)
		}
		item.CreatedAt = item.CreatedAt.UTC()
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generated content: %w", err)
	}

	return items, nil
}
