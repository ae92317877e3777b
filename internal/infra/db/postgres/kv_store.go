package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// KVStore keeps the key-value namespace in a single kv_entries table.
type KVStore struct {
	db *sql.DB
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS kv_entries (
  k TEXT COLLATE "C" PRIMARY KEY,
  v TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);
`
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *KVStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const q = `SELECT v FROM kv_entries WHERE k = $1;`
	var v []byte
	if err := s.db.QueryRowContext(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv_entries (k, v, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (k) DO UPDATE SET
  v=EXCLUDED.v,
  updated_at=EXCLUDED.updated_at;
`
	_, err := s.db.ExecContext(ctx, q, key, string(value), time.Now().UTC())
	return err
}

func (s *KVStore) Del(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_entries WHERE k = $1;`
	_, err := s.db.ExecContext(ctx, q, key)
	return err
}

// Scan pages by key (keyset): the cursor is the last key of the previous page.
func (s *KVStore) Scan(ctx context.Context, prefix, cursor string, count int) ([]string, string, error) {
	if count <= 0 {
		count = 100
	}
	const q = `
SELECT k FROM kv_entries
WHERE k LIKE $1 ESCAPE '!' AND k > $2
ORDER BY k ASC
LIMIT $3;
`
	rows, err := s.db.QueryContext(ctx, q, likePrefix(prefix), cursor, count)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, "", err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	if len(keys) < count {
		return keys, "", nil
	}
	return keys, keys[len(keys)-1], nil
}
