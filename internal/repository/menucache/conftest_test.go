package menucache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/db"
	"github.com/giuliontini/SoDiVino/internal/domain"
)

type mockExtractor struct {
	result domain.MenuExtraction
	err    error
	calls  int
}

func (m *mockExtractor) ExtractMenu(_ context.Context, _ domain.MenuImage) (domain.MenuExtraction, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestExtractor(t *testing.T, inner *mockExtractor) (*CachedExtractor, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, "sodivino:", 24*time.Hour, nil, zap.NewNop()), ms
}
