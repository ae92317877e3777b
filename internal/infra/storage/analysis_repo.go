package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
	"github.com/bryanwahyu/grantsheet/internal/infra/kv"
)

const (
	DefaultPrefix    = "grant:analysis:"
	DefaultScanCount = 100
)

// AnalysisRepository implements grants.Repository on any kv.Store. One entry
// per analysis, key = prefix + id, value = the full JSON record.
type AnalysisRepository struct {
	store     kv.Store
	prefix    string
	scanCount int
}

func NewAnalysisRepository(store kv.Store, prefix string, scanCount int) *AnalysisRepository {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if scanCount <= 0 {
		scanCount = DefaultScanCount
	}
	return &AnalysisRepository{store: store, prefix: prefix, scanCount: scanCount}
}

func (r *AnalysisRepository) key(id grants.AnalysisID) string {
	return r.prefix + string(id)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", grants.ErrStorageUnavailable, op, err)
}

// Save upsert
func (r *AnalysisRepository) Save(ctx context.Context, a *grants.GrantAnalysis) error {
	b, err := json.Marshal(a)
	if err != nil {
		return unavailable("encode", err)
	}
	if err := r.store.Set(ctx, r.key(a.ID), b); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id grants.AnalysisID) (*grants.GrantAnalysis, error) {
	return r.getKey(ctx, r.key(id))
}

func (r *AnalysisRepository) getKey(ctx context.Context, key string) (*grants.GrantAnalysis, error) {
	b, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, unavailable("get", err)
	}
	if !ok {
		return nil, nil
	}
	var a grants.GrantAnalysis
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, unavailable("decode "+key, err)
	}
	return &a, nil
}

// List walks the whole namespace, then sorts newest first (id breaks ties).
// Keys that vanish between scan and get are skipped.
func (r *AnalysisRepository) List(ctx context.Context) ([]*grants.GrantAnalysis, error) {
	keys, err := kv.ScanAll(ctx, r.store, r.prefix, r.scanCount)
	if err != nil {
		return nil, unavailable("scan", err)
	}

	out := make([]*grants.GrantAnalysis, 0, len(keys))
	for _, k := range keys {
		a, err := r.getKey(ctx, k)
		if err != nil {
			return nil, err
		}
		if a != nil {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadDate.Equal(out[j].UploadDate) {
			return out[i].UploadDate.After(out[j].UploadDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *AnalysisRepository) Delete(ctx context.Context, id grants.AnalysisID) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return unavailable("del", err)
	}
	return nil
}

// UpdateNotes read-modify-write; not transactional, last write wins.
func (r *AnalysisRepository) UpdateNotes(ctx context.Context, id grants.AnalysisID, notes string) error {
	a, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("%w: %s", grants.ErrNotFound, id)
	}
	a.PersonalNotes = &notes
	return r.Save(ctx, a)
}

// Ping reports whether the backing store is reachable.
func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Unconfigured stands in when no storage backend is configured: every call
// fails with ErrStorageUnavailable, so analyses still succeed unsaved.
type Unconfigured struct{}

var errNoBackend = errors.New("no storage backend configured")

func (Unconfigured) Save(context.Context, *grants.GrantAnalysis) error {
	return unavailable("set", errNoBackend)
}

func (Unconfigured) Get(context.Context, grants.AnalysisID) (*grants.GrantAnalysis, error) {
	return nil, unavailable("get", errNoBackend)
}

func (Unconfigured) List(context.Context) ([]*grants.GrantAnalysis, error) {
	return nil, unavailable("scan", errNoBackend)
}

func (Unconfigured) Delete(context.Context, grants.AnalysisID) error {
	return unavailable("del", errNoBackend)
}

func (Unconfigured) UpdateNotes(context.Context, grants.AnalysisID, string) error {
	return unavailable("get", errNoBackend)
}

func (Unconfigured) Ping(context.Context) error { return errNoBackend }
