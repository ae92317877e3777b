// Package kv defines the flat key-value namespace the analyses live in.
package kv

import "context"

// Store is a flat key-value namespace with cursor-based prefix enumeration.
type Store interface {
	// Get returns (nil, false, nil) when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set upserts the value; there is no expiry.
	Set(ctx context.Context, key string, value []byte) error
	// Del removes the key; an absent key is not an error.
	Del(ctx context.Context, key string) error
	// Scan returns up to roughly count keys starting with prefix after cursor.
	// Start with cursor ""; a returned next cursor of "" means exhausted.
	Scan(ctx context.Context, prefix, cursor string, count int) (keys []string, next string, err error)
	Ping(ctx context.Context) error
}

// ScanAll loops Scan until the store signals exhaustion.
func ScanAll(ctx context.Context, s Store, prefix string, count int) ([]string, error) {
	var (
		all    []string
		cursor string
		seen   = map[string]struct{}{}
	)
	for {
		keys, next, err := s.Scan(ctx, prefix, cursor, count)
		if err != nil {
			return nil, err
		}
		// redis SCAN may return a key more than once
		for _, k := range keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			all = append(all, k)
		}
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}
