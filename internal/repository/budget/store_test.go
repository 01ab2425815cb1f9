package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/giuliontini/SoDiVino/internal/db"
)

type mockStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	incrByFn func(ctx context.Context, key string, val int64) error
	expires  map[string]time.Duration
	nx       []bool
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) error {
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expires == nil {
		m.expires = map[string]time.Duration{}
	}
	m.expires[key] = ttl
	m.nx = append(m.nx, nx)
	return nil
}

func TestIncrBy_TTLByKeyShape(t *testing.T) {
	ms := &mockStore{}
	s := New(ms, 48*time.Hour, 62*24*time.Hour)
	ctx := context.Background()

	daily := "sodivino:budget:openai:daily:2026-05-01"
	monthly := "sodivino:budget:openai:monthly:2026-05"
	if err := s.IncrBy(ctx, daily, 10); err != nil {
		t.Fatal(err)
	}
	if err := s.IncrBy(ctx, monthly, 10); err != nil {
		t.Fatal(err)
	}

	if ms.expires[daily] != 48*time.Hour {
		t.Errorf("daily ttl = %v", ms.expires[daily])
	}
	if ms.expires[monthly] != 62*24*time.Hour {
		t.Errorf("monthly ttl = %v", ms.expires[monthly])
	}
	for _, nx := range ms.nx {
		if !nx {
			t.Error("EXPIRE must use NX")
		}
	}
}

func TestIncrBy_Error(t *testing.T) {
	ms := &mockStore{incrByFn: func(_ context.Context, _ string, _ int64) error { return errors.New("down") }}
	s := New(ms, time.Hour, time.Hour)

	if err := s.IncrBy(context.Background(), "k:daily:x", 1); err == nil {
		t.Fatal("expected error")
	}
	if len(ms.expires) != 0 {
		t.Error("EXPIRE must not run after a failed INCRBY")
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		getFn   func(ctx context.Context, key string) ([]byte, error)
		want    int64
		wantErr bool
	}{
		{"missing key", nil, 0, false},
		{"value", func(context.Context, string) ([]byte, error) { return []byte("1234"), nil }, 1234, false},
		{"garbage", func(context.Context, string) ([]byte, error) { return []byte("abc"), nil }, 0, true},
		{"store error", func(context.Context, string) ([]byte, error) { return nil, errors.New("down") }, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(&mockStore{getFn: tc.getFn}, time.Hour, time.Hour)
			got, err := s.Get(context.Background(), "k")
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}
