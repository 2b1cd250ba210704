package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
)

// episodeColumns is the select list shared by every episode query, in scan
// order.
const episodeColumns = `id, title, slug, pub_date, storage_key, feed_slug, category,
	source_tag, preset_name, source_url, size_bytes, duration_seconds, created_at`

// SQLiteStore is a SQLite implementation of the EpisodeStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			pub_date TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			feed_slug TEXT NOT NULL DEFAULT 'general',
			category TEXT NOT NULL DEFAULT 'News',
			source_tag TEXT,
			preset_name TEXT NOT NULL DEFAULT 'General Newsletter',
			source_url TEXT,
			size_bytes INTEGER NOT NULL,
			duration_seconds INTEGER,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create episodes table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_emails (
			storage_key TEXT PRIMARY KEY,
			processed_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create processed_emails table: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// migrate adds columns introduced after the first release to databases
// created before them. Additive only; existing rows keep the defaults.
func (s *SQLiteStore) migrate() error {
	rows, err := s.db.Query(`PRAGMA table_info(episodes)`)
	if err != nil {
		return fmt.Errorf("failed to inspect episodes table: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("failed to scan table info: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read table info: %w", err)
	}

	migrations := map[string]string{
		"feed_slug":   `ALTER TABLE episodes ADD COLUMN feed_slug TEXT NOT NULL DEFAULT 'general'`,
		"category":    `ALTER TABLE episodes ADD COLUMN category TEXT NOT NULL DEFAULT 'News'`,
		"source_tag":  `ALTER TABLE episodes ADD COLUMN source_tag TEXT`,
		"preset_name": `ALTER TABLE episodes ADD COLUMN preset_name TEXT NOT NULL DEFAULT 'General Newsletter'`,
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
func (s *SQLiteStore) InsertEpisode(ctx context.Context, episode *core.Episode) error {
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
		episode.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	return nil
}

// ListEpisodes returns episodes newest-first, optionally for one feed
func (s *SQLiteStore) ListEpisodes(ctx context.Context, feedSlug string) ([]*core.Episode, error) {
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
		episode, err := scanEpisodeRFC3339(rows)
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
func (s *SQLiteStore) ListFeedSlugs(ctx context.Context) ([]string, error) {
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
func (s *SQLiteStore) IsProcessed(ctx context.Context, key string) (bool, error) {
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
func (s *SQLiteStore) MarkProcessed(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO processed_emails (storage_key, processed_at)
		VALUES (?, ?)
	`, key, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to mark message processed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanEpisodeRFC3339 reads one episode row whose timestamps are stored as
// RFC 3339 text.
func scanEpisodeRFC3339(rows *sql.Rows) (*core.Episode, error) {
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
	episode.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
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

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
