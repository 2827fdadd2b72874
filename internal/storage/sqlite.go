// Package storage persists the mapping between review comments and
// generated conversation thread ids.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	_ "modernc.org/sqlite"

	"github.com/maxbolgarin/prtriage/internal/model"
)

var _ model.ThreadStore = (*SQLiteStore)(nil)

// ErrNotMapped is returned when a comment has no thread mapping yet.
var ErrNotMapped = errm.New("comment is not mapped to a thread")

const defaultPath = "prtriage.db"

const schema = `
CREATE TABLE IF NOT EXISTS review_threads (
    review_comment_id TEXT PRIMARY KEY,
    thread_id TEXT NOT NULL,
    file TEXT,
    line INTEGER,
    commit_id TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Config represents thread store configuration.
type Config struct {
	Path string `yaml:"path" env:"STORAGE_PATH"`
}

func (c *Config) PrepareAndValidate() error {
	c.Path = lang.Check(c.Path, defaultPath)
	return nil
}

// SQLiteStore implements ThreadStore on a local SQLite file. Writes go
// through a single connection to avoid lock contention under WAL.
type SQLiteStore struct {
	writer *sql.DB
	reader *sql.DB
	log    logze.Logger
}

// NewSQLiteStore opens the database, applies the schema and returns a
// ready store.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "invalid storage config")
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		cfg.Path,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errm.Wrap(err, "open writer")
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, errm.Wrap(err, "open reader")
	}
	reader.SetMaxOpenConns(4)

	if _, err := writer.Exec(schema); err != nil {
		writer.Close()
		reader.Close()
		return nil, errm.Wrap(err, "apply schema")
	}

	return &SQLiteStore{
		writer: writer,
		reader: reader,
		log:    logze.With("component", "thread_store"),
	}, nil
}

// MapThread returns the thread id for a review comment, creating and
// persisting a new mapping when none exists. Generated ids are stable:
// the same comment always maps to the same thread.
func (s *SQLiteStore) MapThread(ctx context.Context, commentID, file string, line int, commitID string) (string, error) {
	threadID, err := s.LookupThread(ctx, commentID)
	if err == nil {
		return threadID, nil
	}
	if !errm.Is(err, ErrNotMapped) {
		return "", err
	}

	threadID = "thread-" + commentID
	_, err = s.writer.ExecContext(ctx,
		`REPLACE INTO review_threads(review_comment_id, thread_id, file, line, commit_id) VALUES(?,?,?,?,?)`,
		commentID, threadID, file, line, commitID,
	)
	if err != nil {
		return "", errm.Wrap(err, "insert thread mapping")
	}

	s.log.Debug("mapped comment to thread", "comment_id", commentID, "thread_id", threadID)
	return threadID, nil
}

// LookupThread returns the thread id mapped to a comment, or ErrNotMapped.
func (s *SQLiteStore) LookupThread(ctx context.Context, commentID string) (string, error) {
	var threadID string
	err := s.reader.QueryRowContext(ctx,
		`SELECT thread_id FROM review_threads WHERE review_comment_id = ?`,
		commentID,
	).Scan(&threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotMapped
	}
	if err != nil {
		return "", errm.Wrap(err, "query thread mapping")
	}
	return threadID, nil
}

// Health verifies the database is reachable.
func (s *SQLiteStore) Health(ctx context.Context) error {
	if err := s.writer.PingContext(ctx); err != nil {
		return errm.Wrap(err, "ping writer")
	}
	return s.reader.PingContext(ctx)
}

// Close closes both connections. Returns the first error encountered.
func (s *SQLiteStore) Close() error {
	err := s.reader.Close()
	if werr := s.writer.Close(); werr != nil && err == nil {
		err = werr
	}
	return err
}
