package tasteprofile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

type mockRepo struct {
	profiles map[string]cellar.TasteProfile
	latest   string
	saveErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{profiles: make(map[string]cellar.TasteProfile)}
}

func (m *mockRepo) Save(_ context.Context, p cellar.TasteProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.profiles[p.ID()] = p
	m.latest = p.ID()
	return nil
}

func (m *mockRepo) Get(_ context.Context, _, id string) (cellar.TasteProfile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return cellar.TasteProfile{}, domain.ErrTasteProfileNotFound
	}
	return p, nil
}

func (m *mockRepo) Latest(ctx context.Context, userID string) (cellar.TasteProfile, error) {
	if m.latest == "" {
		return cellar.TasteProfile{}, domain.ErrTasteProfileNotFound
	}
	return m.Get(ctx, userID, m.latest)
}

func newTestService(repo Repository) *Service {
	svc := New(repo)
	n := 0
	svc.newID = func() string {
		n++
		return "tp-" + string(rune('0'+n))
	}
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestCreate_DefaultsName(t *testing.T) {
	repo := newMockRepo()

	p, err := newTestService(repo).Create(context.Background(), "u1", cellar.TasteProfileInput{
		PreferredStyles: []string{"Bold reds", "Bold reds"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ProfileName() != cellar.DefaultTasteProfileName {
		t.Errorf("ProfileName = %q", p.ProfileName())
	}
	if len(p.PreferredStyles()) != 1 {
		t.Errorf("styles should be deduped, got %v", p.PreferredStyles())
	}
	if _, ok := repo.profiles["tp-1"]; !ok {
		t.Error("profile was not saved")
	}
}

func TestCreate_EverySubmissionIsNew(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	for range 2 {
		if _, err := svc.Create(context.Background(), "u1", cellar.TasteProfileInput{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(repo.profiles) != 2 {
		t.Errorf("expected 2 profiles, got %d", len(repo.profiles))
	}
}

func TestCreate_SaveError(t *testing.T) {
	repo := newMockRepo()
	repo.saveErr = errors.New("connection refused")

	if _, err := newTestService(repo).Create(context.Background(), "u1", cellar.TasteProfileInput{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestLatest_NoneIsNil(t *testing.T) {
	p, err := newTestService(newMockRepo()).Latest(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil profile, got %+v", p)
	}
}

func TestLatest_ReturnsNewest(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	if _, err := svc.Create(context.Background(), "u1", cellar.TasteProfileInput{ProfileName: "first"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), "u1", cellar.TasteProfileInput{ProfileName: "second"}); err != nil {
		t.Fatal(err)
	}

	p, err := svc.Latest(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || p.ProfileName() != "second" {
		t.Errorf("unexpected latest profile: %+v", p)
	}
}

func TestGet_NotFound(t *testing.T) {
	_, err := newTestService(newMockRepo()).Get(context.Background(), "u1", "missing")
	if !errors.Is(err, domain.ErrTasteProfileNotFound) {
		t.Fatalf("expected ErrTasteProfileNotFound, got %v", err)
	}
}
