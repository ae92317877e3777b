package kv

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedStore serves fixed pages and repeats a key across pages, like SCAN may.
type pagedStore struct {
	pages [][]string
	calls []string
	err   error
}

func (p *pagedStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (p *pagedStore) Set(context.Context, string, []byte) error         { return nil }
func (p *pagedStore) Del(context.Context, string) error                 { return nil }
func (p *pagedStore) Ping(context.Context) error                        { return nil }

func (p *pagedStore) Scan(_ context.Context, _, cursor string, _ int) ([]string, string, error) {
	p.calls = append(p.calls, cursor)
	if p.err != nil {
		return nil, "", p.err
	}
	i := 0
	if cursor != "" {
		i, _ = strconv.Atoi(cursor)
	}
	next := ""
	if i+1 < len(p.pages) {
		next = strconv.Itoa(i + 1)
	}
	return p.pages[i], next, nil
}

func TestScanAllLoopsUntilExhausted(t *testing.T) {
	s := &pagedStore{pages: [][]string{{"p:1", "p:2"}, {}, {"p:2", "p:3"}}}

	keys, err := ScanAll(context.Background(), s, "p:", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p:1", "p:2", "p:3"}, keys)
	assert.Equal(t, []string{"", "1", "2"}, s.calls)
}

func TestScanAllPropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := ScanAll(context.Background(), &pagedStore{err: boom}, "p:", 2)
	assert.ErrorIs(t, err, boom)
}
