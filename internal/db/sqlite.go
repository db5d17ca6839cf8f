package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps resolved translations in a local database file
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore opens or creates the database at path
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("no sqlite path")
	}
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	res := &SQLiteStore{db: sqlDB, ttl: ttl, now: time.Now}
	if err := res.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	n, err := res.Count(context.Background())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("count translations: %w", err)
	}
	goapp.Log.Info().Str("path", path).Str("ttl", ttl.String()).Int("translations", n).Msg("SQLite store")
	return res, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translations (
		lang TEXT NOT NULL,
		word TEXT NOT NULL,
		text TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (lang, word)
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Get implements translate.Store
func (s *SQLiteStore) Get(ctx context.Context, lang, word string) (string, bool, error) {
	var text string
	var updated int64
	err := s.db.QueryRowContext(ctx, "SELECT text, updated_at FROM translations WHERE lang = ? AND word = ?", lang, word).
		Scan(&text, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select translation: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(time.Unix(updated, 0)) > s.ttl {
		return "", false, nil
	}
	return text, true, nil
}

// Save implements translate.Store
func (s *SQLiteStore) Save(ctx context.Context, lang, word, text string) error {
	now := s.now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations (lang, word, text, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(lang, word) DO UPDATE SET text = ?, updated_at = ?`,
		lang, word, text, now, text, now,
	)
	if err != nil {
		return fmt.Errorf("save translation: %w", err)
	}
	return nil
}

// Count returns the number of stored translations
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var res int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM translations").Scan(&res); err != nil {
		return 0, err
	}
	return res, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
