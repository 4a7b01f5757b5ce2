// Package history persists transfer records beyond the in-memory session
// ring, so `sona history` can show past transfers across restarts.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/ENuel20/SoNa/internal/wallet"
)

type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history lock directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history sqlite: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS transfers (
			signature TEXT PRIMARY KEY,
			asset TEXT NOT NULL,
			direction TEXT NOT NULL,
			state TEXT NOT NULL,
			submitted_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_transfers_submitted ON transfers(submitted_at DESC);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init history schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts a transfer record keyed by signature, so a later state
// resolution (submitted -> confirmed/failed) overwrites the pending row.
func (s *Store) Save(rec wallet.TransactionRecord) error {
	if strings.TrimSpace(rec.Signature) == "" {
		return fmt.Errorf("save transfer: missing signature")
	}
	locked, err := s.lock.TryLockContext(context.Background(), 5*time.Second)
	if err != nil {
		return fmt.Errorf("lock history store: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock history store: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal transfer: %w", err)
	}
	submitted := rec.Timestamp.UTC().Unix()
	if submitted <= 0 {
		submitted = time.Now().UTC().Unix()
	}

	_, err = s.db.Exec(`
		INSERT INTO transfers (signature, asset, direction, state, submitted_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(signature) DO UPDATE SET
			state=excluded.state,
			payload=excluded.payload
	`, rec.Signature, rec.Asset, string(rec.Direction), string(rec.State), submitted, payload)
	if err != nil {
		return fmt.Errorf("save transfer: %w", err)
	}
	return nil
}

// List returns persisted transfers, newest first.
func (s *Store) List(limit int) ([]wallet.TransactionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query("SELECT payload FROM transfers ORDER BY submitted_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	records := make([]wallet.TransactionRecord, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}
		var rec wallet.TransactionRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode transfer row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer rows: %w", err)
	}
	return records, nil
}
