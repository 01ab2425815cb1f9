package preferences

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
	hsetFn    func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func TestSaveThenGet(t *testing.T) {
	saved := map[string]map[string]string{}
	ms := &mockStore{
		hsetFn: func(_ context.Context, key string, fields map[string]string) error {
			saved[key] = fields
			return nil
		},
		hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
			return saved[key], nil
		},
	}
	repo := New(ms, "sodivino:")

	lo := 20.0
	p := cellar.NewPreferences("u1", cellar.PreferencesInput{
		FavoriteGrapes: []string{"Nebbiolo"},
		QualityTier:    "special",
		UsualBudgetMin: &lo,
		RiskTolerance:  "adventurous",
	}, time.UnixMilli(1700000000000))

	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := saved["sodivino:user:u1:prefs"]; !ok {
		t.Fatalf("unexpected keys: %v", saved)
	}

	got, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, p)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(&mockStore{}, "sodivino:")

	_, err := repo.Get(context.Background(), "u1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	ms := &mockStore{hgetAllFn: func(_ context.Context, _ string) (map[string]string, error) {
		return nil, errors.New("connection refused")
	}}
	repo := New(ms, "sodivino:")

	_, err := repo.Get(context.Background(), "u1")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}
