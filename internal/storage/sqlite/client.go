package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/storage"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/pkg/logger"
)

var _ storage.Store = (*Client)(nil)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer keeps sqlite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_styles (
		user_id TEXT PRIMARY KEY,
		style_profile TEXT NOT NULL,
		metrics TEXT NOT NULL,
		writing_style TEXT NOT NULL,
		analyzed_posts TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS generated_content (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		topic TEXT NOT NULL,
		tone TEXT NOT NULL,
		length TEXT NOT NULL,
		context TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_generated_user_created ON generated_content(user_id, created_at DESC);
	`

	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt.UnixMilli())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	logger.Debug("User inserted", zap.String("user_id", user.ID))
	return nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, strings.ToLower(email))
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return c.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (c *Client) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	var createdAt int64

	err := c.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &user, nil
}

func (c *Client) GetUserStyle(ctx context.Context, userID string) (*models.UserStyle, error) {
	query := `SELECT user_id, style_profile, metrics, writing_style, analyzed_posts, updated_at FROM user_styles WHERE user_id = ?`

	var style models.UserStyle
	var metrics, writingStyle, posts string
	var updatedAt int64

	err := c.db.QueryRowContext(ctx, query, userID).Scan(
		&style.UserID,
		&style.StyleProfile,
		&metrics,
		&writingStyle,
		&posts,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user style: %w", err)
	}

	if err := json.Unmarshal([]byte(metrics), &style.Metrics); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(writingStyle), &style.WritingStyle); err != nil {
		return nil, fmt.Errorf("failed to decode writing style: %w", err)
	}
	if err := json.Unmarshal([]byte(posts), &style.AnalyzedPosts); err != nil {
		return nil, fmt.Errorf("failed to decode analyzed posts: %w", err)
	}

	style.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &style, nil
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
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			style_profile = excluded.style_profile,
			metrics = excluded.metrics,
			writing_style = excluded.writing_style,
			analyzed_posts = excluded.analyzed_posts,
			updated_at = excluded.updated_at
	`

	_, err = c.db.ExecContext(ctx, query,
		style.UserID,
		style.StyleProfile,
		string(metrics),
		string(writingStyle),
		string(posts),
		style.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user style: %w", err)
	}

	logger.Debug("User style upserted", zap.String("user_id", style.UserID))
	return nil
}

func (c *Client) InsertGeneratedContent(ctx context.Context, content *models.GeneratedContent) error {
	query := `
		INSERT INTO generated_content (id, user_id, content, topic, tone, length, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(ctx, query,
		content.ID,
		content.UserID,
		content.Content,
		content.Topic,
		content.Tone,
		content.Length,
		content.Context,
		content.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert generated content: %w", err)
	}

	logger.Debug("Generated content inserted", zap.String("content_id", content.ID), zap.String("user_id", content.UserID))
	return nil
}

func (c *Client) ListGeneratedContent(ctx context.Context, userID string) ([]models.GeneratedContent, error) {
	query := `
		SELECT id, user_id, content, topic, tone, length, context, created_at
		FROM generated_content
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := c.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generated content: %w", err)
	}
	defer rows.Close()

	items := make([]models.GeneratedContent, 0)
	for rows.Next() {
		var item models.GeneratedContent
		var extra sql.NullString
		var createdAt int64

		if err := rows.Scan(&item.ID, &item.UserID, &item.Content, &item.Topic, &item.Tone, &item.Length, &extra, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan generated content: %w", err)
		}

		if extra.Valid {
			item.Context = &extra.String
		}
		item.CreatedAt = time.UnixMilli(createdAt).UTC()
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generated content: %w", err)
	}

	return items, nil
}
