package cellar

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

func TestNewPersona_Valid(t *testing.T) {
	notes := "  steak night  "
	minP, maxP := 30.0, 80.0
	p, err := NewPersona("p1", "u1", PersonaInput{
		Name:            "  Bold reds ",
		Color:           "red",
		Grapes:          []string{" Syrah", "", "Malbec "},
		Body:            "full",
		Tannin:          "high",
		Acidity:         "fizzy",
		Sweetness:       "off_dry",
		FoodPairingTags: []string{"beef"},
		MinPrice:        &minP,
		MaxPrice:        &maxP,
		Notes:           &notes,
		IsDefault:       true,
	}, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Name() != "Bold reds" {
		t.Errorf("Name = %q", p.Name())
	}
	if !reflect.DeepEqual(p.Grapes(), []string{"Syrah", "Malbec"}) {
		t.Errorf("Grapes = %v", p.Grapes())
	}
	if p.Body() != BodyFull || p.Tannin() != IntensityHigh || p.Sweetness() != SweetnessOffDry {
		t.Errorf("unexpected enums: %q %q %q", p.Body(), p.Tannin(), p.Sweetness())
	}
	if p.Acidity() != IntensityUnknown {
		t.Errorf("invalid acidity must fall back to unknown, got %q", p.Acidity())
	}
	if p.Notes() == nil || *p.Notes() != "steak night" {
		t.Errorf("Notes = %v", p.Notes())
	}
	if !p.IsDefault() || p.CreatedAt() != fixedNow.UnixMilli() {
		t.Errorf("unexpected flags/timestamps: %v %d", p.IsDefault(), p.CreatedAt())
	}
}

func TestNewPersona_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   PersonaInput
		want error
	}{
		{"missing name", PersonaInput{Name: "   ", Color: "red"}, ErrNameRequired},
		{"missing color", PersonaInput{Name: "x"}, ErrInvalidColor},
		{"accented rose is not a persona color", PersonaInput{Name: "x", Color: "rosé"}, ErrInvalidColor},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPersona("p", "u", tc.in, fixedNow)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPersona_ReplaceKeepsIdentity(t *testing.T) {
	orig, _ := NewPersona("p1", "u1", PersonaInput{Name: "A", Color: "white"}, fixedNow)
	next, _ := NewPersona("", "", PersonaInput{Name: "B", Color: "red"}, fixedNow.Add(time.Hour))

	got := orig.Replace(next)
	if got.ID() != "p1" || got.UserID() != "u1" || got.CreatedAt() != orig.CreatedAt() {
		t.Errorf("identity lost: %+v", got)
	}
	if got.Name() != "B" || got.Color() != ColorRed || got.UpdatedAt() != fixedNow.Add(time.Hour).UnixMilli() {
		t.Errorf("fields not replaced: %+v", got)
	}
}

func TestParseEnums_Fallbacks(t *testing.T) {
	if ParseBody("heavy") != BodyUnknown {
		t.Error("body fallback")
	}
	if ParseIntensity("") != IntensityUnknown {
		t.Error("intensity fallback")
	}
	if ParseSweetness("off-dry") != SweetnessUnknown {
		t.Error("persona sweetness uses off_dry spelling only")
	}
	if ParseQualityTier("luxury") != QualityValue {
		t.Error("quality tier fallback")
	}
	if ParseRiskTolerance("yolo") != RiskSafe {
		t.Error("risk tolerance fallback")
	}
}

func TestDedupeStrings(t *testing.T) {
	got := DedupeStrings([]string{" red ", "red", "", "white", "red"})
	if !reflect.DeepEqual(got, []string{"red", "white"}) {
		t.Errorf("DedupeStrings = %v", got)
	}
	if got := CleanStrings(nil); got == nil || len(got) != 0 {
		t.Errorf("CleanStrings(nil) = %#v, want empty non-nil", got)
	}
}

func TestPreferences_Defaults(t *testing.T) {
	p := DefaultPreferences("u1", fixedNow)
	if p.QualityTier() != QualityValue || p.RiskTolerance() != RiskSafe {
		t.Errorf("unexpected defaults: %q %q", p.QualityTier(), p.RiskTolerance())
	}
	if p.UsualBudgetMin() != nil || p.UsualBudgetMax() != nil {
		t.Error("expected open budget")
	}
}

func TestPreferences_WithinBudget(t *testing.T) {
	lo, hi := 20.0, 50.0
	p := NewPreferences("u1", PreferencesInput{UsualBudgetMin: &lo, UsualBudgetMax: &hi}, fixedNow)

	for price, want := range map[float64]bool{19.99: false, 20: true, 35: true, 50: true, 50.5: false} {
		if got := p.WithinBudget(price); got != want {
			t.Errorf("WithinBudget(%v) = %v, want %v", price, got, want)
		}
	}
	if !DefaultPreferences("u", fixedNow).WithinBudget(1000) {
		t.Error("open budget must accept any price")
	}
}
