package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
)

const mysqlTimeFormat = "2006-01-02 15:04:05"

// MySQLStore is a MySQL implementation of the EpisodeStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS episodes (
			id VARCHAR(64) PRIMARY KEY,
			title TEXT NOT NULL,
			slug VARCHAR(255) NOT NULL,
			pub_date VARCHAR(64) NOT NULL,
			storage_key VARCHAR(512) NOT NULL,
			feed_slug VARCHAR(255) NOT NULL DEFAULT 'general',
			category VARCHAR(255) NOT NULL DEFAULT 'News',
			source_tag VARCHAR(255),
			preset_name VARCHAR(255) NOT NULL DEFAULT 'General Newsletter',
			source_url TEXT,
			size_bytes BIGINT NOT NULL,
			duration_seconds BIGINT,
			created_at DATETIME NOT NULL,
			INDEX idx_feed_slug (feed_slug)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create episodes table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_emails (
			storage_key VARCHAR(512) PRIMARY KEY,
			processed_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create processed_emails table: %w", err)
	}

	store := &MySQLStore{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// migrate adds columns introduced after the first release to databases
// created before them.
func (s *MySQLStore) migrate() error {
	rows, err := s.db.Query(`
		SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'episodes'
	`)
	if err != nil {
		return fmt.Errorf("failed to inspect episodes table: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan column name: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read column names: %w", err)
	}

	migrations := map[string]string{
		"feed_slug":   `ALTER TABLE episodes ADD COLUMN feed_slug VARCHAR(255) NOT NULL DEFAULT 'general'`,
		"category":    `ALTER TABLE episodes ADD COLUMN category VARCHAR(255) NOT NULL DEFAULT 'News'`,
		"source_tag":  `ALTER TABLE episodes ADD COLUMN source_tag VARCHAR(255)`,
		"preset_name": `ALTER TABLE episodes ADD COLUMN preset_name VARCHAR(255) NOT NULL DEFAULT 'General Newsletter'`,
		"source_url":  `ALTER TABLE episodes ADD COLUMN source_url TEXT`,
	}
	for column, ddl := range migrations {
		if existing[column] {
			continue
		}
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to add episodes column %s: %w", column, err)
		}
		s.logger.Info("Added episodes column", zap.String("column", column))
	}
	return nil
}

// InsertEpisode records a newly published episode
func (s *MySQLStore) InsertEpisode(ctx context.Context, episode *core.Episode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO episodes
			(`+episodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		episode.ID,
		episode.Title,
		episode.Slug,
		episode.PubDate.UTC().Format(time.RFC3339),
		episode.StorageKey,
		episode.FeedSlug,
		episode.Category,
		nullString(episode.SourceTag),
		episode.PresetName,
		nullString(episode.SourceURL),
		episode.SizeBytes,
		nullInt64(episode.DurationSeconds),
		episode.CreatedAt.UTC().Format(mysqlTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	return nil
}

// ListEpisodes returns episodes newest-first, optionally for one feed
func (s *MySQLStore) ListEpisodes(ctx context.Context, feedSlug string) ([]*core.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes ORDER BY created_at DESC, id`
	args := []any{}
	if feedSlug != "" {
		query = `SELECT ` + episodeColumns + ` FROM episodes WHERE feed_slug = ? ORDER BY created_at DESC, id`
		args = append(args, feedSlug)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*core.Episode
	for rows.Next() {
		episode, err := scanEpisodeMySQL(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read episodes: %w", err)
	}
	return episodes, nil
}

// ListFeedSlugs returns the distinct feed slugs with episodes
func (s *MySQLStore) ListFeedSlugs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT feed_slug FROM episodes ORDER BY feed_slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan feed slug: %w", err)
		}
		if slug != "" {
			slugs = append(slugs, slug)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed slugs: %w", err)
	}
	return slugs, nil
}

// IsProcessed reports whether a message key was already handled
func (s *MySQLStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM processed_emails WHERE storage_key = ?
	`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query processed state: %w", err)
	}
	return true, nil
}

// MarkProcessed records a message key as handled
func (s *MySQLStore) MarkProcessed(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_emails (storage_key, processed_at)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE processed_at = VALUES(processed_at)
	`, key, time.Now().UTC().Format(mysqlTimeFormat))
	if err != nil {
		return fmt.Errorf("failed to mark message processed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// scanEpisodeMySQL reads one episode row. pub_date is RFC 3339 text like
// the SQLite store writes; created_at comes back in MySQL's DATETIME form.
func scanEpisodeMySQL(rows *sql.Rows) (*core.Episode, error) {
	var (
		episode            core.Episode
		pubDate, createdAt string
		sourceTag          sql.NullString
		sourceURL          sql.NullString
		duration           sql.NullInt64
	)
	err := rows.Scan(
		&episode.ID, &episode.Title, &episode.Slug, &pubDate, &episode.StorageKey,
		&episode.FeedSlug, &episode.Category, &sourceTag, &episode.PresetName,
		&sourceURL, &episode.SizeBytes, &duration, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan episode: %w", err)
	}

	episode.PubDate, err = time.Parse(time.RFC3339, pubDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pub_date: %w", err)
	}
	episode.CreatedAt, err = time.Parse(mysqlTimeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	episode.SourceTag = sourceTag.String
	episode.SourceURL = sourceURL.String
	if duration.Valid {
		episode.DurationSeconds = &duration.Int64
	}
	return &episode, nil
}
