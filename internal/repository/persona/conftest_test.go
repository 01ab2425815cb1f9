package persona

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/giuliontini/SoDiVino/internal/db"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

const testPrefix = "sodivino:"

// mockStore implements the consumer interface for tests. Unset hooks fall back
// to an in-memory hash and sorted-set model.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	zrevRangeFn    func(ctx context.Context, key string, start, stop int64) ([]string, error)

	hashes map[string]map[string]string
	zsets  map[string]map[string]float64
}

func newMockStore() *mockStore {
	return &mockStore{
		hashes: map[string]map[string]string{},
		zsets:  map[string]map[string]float64{},
	}
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for _, it := range items {
		if err := m.HSet(ctx, it.Key, it.Fields); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if h, ok := m.hashes[key]; ok {
		return h, nil
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.hashes, k)
	}
	return nil
}

func (m *mockStore) ZAdd(_ context.Context, key, member string, score float64) error {
	z, ok := m.zsets[key]
	if !ok {
		z = map[string]float64{}
		m.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (m *mockStore) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.zrevRangeFn != nil {
		return m.zrevRangeFn(ctx, key, start, stop)
	}
	z := m.zsets[key]
	members := make([]string, 0, len(z))
	for member := range z {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return z[members[i]] > z[members[j]] })
	return members, nil
}

func (m *mockStore) ZRem(_ context.Context, key string, members ...string) error {
	for _, member := range members {
		delete(m.zsets[key], member)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms, testPrefix), ms
}

func testPersona(t *testing.T, id string, createdAt int64) cellar.Persona {
	t.Helper()
	minP, maxP := 25.0, 60.0
	notes := "with steak"
	p, err := cellar.NewPersona(id, "u1", cellar.PersonaInput{
		Name:            "Steak night",
		Color:           "red",
		Grapes:          []string{"Malbec", "Syrah"},
		Body:            "full",
		Tannin:          "high",
		Acidity:         "medium",
		Sweetness:       "dry",
		FoodPairingTags: []string{"beef"},
		MinPrice:        &minP,
		MaxPrice:        &maxP,
		Notes:           &notes,
		IsDefault:       true,
	}, time.UnixMilli(createdAt))
	if err != nil {
		t.Fatalf("new persona: %v", err)
	}
	return p
}
