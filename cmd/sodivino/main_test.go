package main

import (
	"testing"

	"github.com/giuliontini/SoDiVino/internal/config"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

func TestNewCatalogue_DefaultsWhenEmpty(t *testing.T) {
	c, err := newCatalogue(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.ByID("bold_reds"); !ok {
		t.Error("expected built-in profiles")
	}
}

func TestNewCatalogue_FromConfig(t *testing.T) {
	adv := 7
	c, err := newCatalogue([]config.ProfileConfig{{
		ID: "house_red", Label: "House Red", Color: "red", Budget: 35,
		Dislikes: []string{" Oak "}, Adventurousness: &adv,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.List()) != 1 {
		t.Fatalf("expected only configured profiles, got %d", len(c.List()))
	}
	p, ok := c.ByID("house_red")
	if !ok {
		t.Fatal("house_red missing")
	}
	if p.Color != wine.ColorRed || p.Adventurousness != 7 || p.DislikedTerms[0] != "oak" {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestNewCatalogue_InvalidProfile(t *testing.T) {
	_, err := newCatalogue([]config.ProfileConfig{{ID: "bad", Body: "chewy"}})
	if err == nil {
		t.Fatal("expected error for invalid body")
	}
}
