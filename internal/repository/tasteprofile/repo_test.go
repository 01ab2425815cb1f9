package tasteprofile

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

type mockStore struct {
	hashes      map[string]map[string]string
	zadds       map[string]map[string]float64
	zrevRangeFn func(ctx context.Context, key string, start, stop int64) ([]string, error)
}

func newMockStore() *mockStore {
	return &mockStore{hashes: map[string]map[string]string{}, zadds: map[string]map[string]float64{}}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.hashes[key] = fields
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if h, ok := m.hashes[key]; ok {
		return h, nil
	}
	return map[string]string{}, nil
}

func (m *mockStore) ZAdd(_ context.Context, key, member string, score float64) error {
	if m.zadds[key] == nil {
		m.zadds[key] = map[string]float64{}
	}
	m.zadds[key][member] = score
	return nil
}

func (m *mockStore) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.zrevRangeFn != nil {
		return m.zrevRangeFn(ctx, key, start, stop)
	}
	var best string
	var bestScore float64
	for member, score := range m.zadds[key] {
		if best == "" || score > bestScore {
			best, bestScore = member, score
		}
	}
	if best == "" {
		return []string{}, nil
	}
	return []string{best}, nil
}

func testProfile(id string, at int64) cellar.TasteProfile {
	notes := "loves Etna"
	return cellar.NewTasteProfile(id, "u1", cellar.TasteProfileInput{
		ProfileName:         "Weeknights",
		PreferredStyles:     []string{"crisp_white", "light_red"},
		SweetnessPreference: "off_dry",
		Adventurousness:     "bold",
		BudgetFocus:         "value",
		OccasionTags:        []string{"pizza"},
		Notes:               &notes,
	}, time.UnixMilli(at))
}

func TestSaveGet_RoundTrip(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, "sodivino:")
	p := testProfile("t1", 1700000000000)

	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.Get(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, p)
	}
}

func TestLatest_PicksMostRecentlyUpdated(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, "sodivino:")
	ctx := context.Background()
	for _, p := range []cellar.TasteProfile{testProfile("old", 1000), testProfile("new", 2000)} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.Latest(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "new" {
		t.Errorf("Latest = %s, want new", got.ID())
	}
}

func TestLatest_None(t *testing.T) {
	repo := New(newMockStore(), "sodivino:")

	_, err := repo.Latest(context.Background(), "u1")
	if !errors.Is(err, domain.ErrTasteProfileNotFound) {
		t.Fatalf("expected ErrTasteProfileNotFound, got %v", err)
	}
}

func TestLatest_StoreError(t *testing.T) {
	ms := newMockStore()
	ms.zrevRangeFn = func(_ context.Context, _ string, _, _ int64) ([]string, error) {
		return nil, errors.New("timeout")
	}
	repo := New(ms, "sodivino:")

	_, err := repo.Latest(context.Background(), "u1")
	if err == nil || errors.Is(err, domain.ErrTasteProfileNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(newMockStore(), "sodivino:")

	_, err := repo.Get(context.Background(), "u1", "missing")
	if !errors.Is(err, domain.ErrTasteProfileNotFound) {
		t.Fatalf("expected ErrTasteProfileNotFound, got %v", err)
	}
}
