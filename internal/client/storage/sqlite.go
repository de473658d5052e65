package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/cakelibrary/internal/client/migrations"
	"github.com/dmitrijs2005/cakelibrary/internal/dbx"
	"github.com/dmitrijs2005/cakelibrary/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type SQLiteStorage struct {
	db           *sql.DB
	q            dbx.DBTX
	pollInterval time.Duration
}

func dsn(path string) string {
	if path == MemoryPath {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	// keep migration chatter out of the REPL
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (creating it and its directory if needed) the database at
// path and migrates it.
// pollInterval is how often Watch looks for changes.
func OpenSQLite(ctx context.Context, path string, pollInterval time.Duration) (*SQLiteStorage, error) {
	if path != MemoryPath {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	// a second connection to :memory: would see an empty database
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	return &SQLiteStorage{db: db, q: db, pollInterval: pollInterval}, nil
}

func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Remove(ctx context.Context, key string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) List(ctx context.Context) (map[string]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT key, value FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("failed to list kv: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv rows: %w", err)
	}

	return result, nil
}

// Watch polls the table every poll interval and emits the differences
// between consecutive snapshots. A failed poll is skipped.
func (s *SQLiteStorage) Watch(ctx context.Context) (<-chan Change, error) {
	prev, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			next, err := s.List(ctx)
			if err != nil {
				continue
			}

			for _, c := range diff(prev, next) {
				select {
				case ch <- c:
				case <-ctx.Done():
					return
				}
			}
			prev = next
		}
	}()

	return ch, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func sortChanges(cs []Change) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Key < cs[j].Key })
}
