package wine

import "testing"

func TestNormalizeRecord_Aliases(t *testing.T) {
	raw := map[string]any{
		"wine_id":         "w-1",
		"wine_name":       "  Barolo  ",
		"varietal":        "Nebbiolo",
		"year":            "2016",
		"price_value":     "$85.50",
		"byGlassOrBottle": "Bottle",
		"raw":             "Barolo 2016 85.50",
	}

	item, ok := NormalizeRecord(raw)
	if !ok {
		t.Fatal("expected record to be accepted")
	}
	if item.ID != "w-1" || item.Name != "Barolo" {
		t.Errorf("unexpected id/name: %q %q", item.ID, item.Name)
	}
	if item.Grape != "Nebbiolo" {
		t.Errorf("Grape = %q, want Nebbiolo", item.Grape)
	}
	if item.Vintage != "2016" {
		t.Errorf("Vintage = %q, want 2016", item.Vintage)
	}
	if item.Price == nil || *item.Price != 85.5 {
		t.Errorf("Price = %v, want 85.5", item.Price)
	}
	if item.ByGlassOrBottle != ServingBottle {
		t.Errorf("ByGlassOrBottle = %q, want bottle", item.ByGlassOrBottle)
	}
	if item.RawText != "Barolo 2016 85.50" {
		t.Errorf("RawText = %q", item.RawText)
	}
}

func TestNormalizeRecord_RawTextDefaultsToName(t *testing.T) {
	item, ok := NormalizeRecord(map[string]any{"id": "a", "name": "Soave"})
	if !ok {
		t.Fatal("expected record to be accepted")
	}
	if item.RawText != "Soave" {
		t.Errorf("RawText = %q, want Soave", item.RawText)
	}
	if item.Price != nil {
		t.Errorf("expected nil price, got %v", *item.Price)
	}
	if item.ByGlassOrBottle != ServingUnknown {
		t.Errorf("ByGlassOrBottle = %q, want unknown", item.ByGlassOrBottle)
	}
}

func TestNormalizeRecord_Rejects(t *testing.T) {
	cases := []map[string]any{
		{"name": "No id"},
		{"id": "x"},
		{"id": "  ", "name": "Blank id"},
		{"id": "x", "name": "", "wine_name": nil},
	}
	for i, raw := range cases {
		if _, ok := NormalizeRecord(raw); ok {
			t.Errorf("case %d: expected rejection for %v", i, raw)
		}
	}
}

func TestNormalizeRecord_NonStringFieldsIgnored(t *testing.T) {
	if _, ok := NormalizeRecord(map[string]any{"id": 5.0, "name": "Soave"}); ok {
		t.Error("expected numeric id to be rejected")
	}
	if _, ok := NormalizeRecord(map[string]any{"id": "x", "name": 1865.0}); ok {
		t.Error("expected numeric name to be rejected")
	}

	item, ok := NormalizeRecord(map[string]any{"id": "x", "wineId": "ignored", "name": "Soave", "vintage": 2019.0, "year": "2020"})
	if !ok {
		t.Fatal("expected record to be accepted")
	}
	if item.Vintage != "2020" {
		t.Errorf("Vintage = %q, want 2020 from the string alias", item.Vintage)
	}
}

func TestNormalizeRecord_PriceStrings(t *testing.T) {
	tests := []struct {
		raw  map[string]any
		want float64 // -1 = nil
	}{
		// nothing numeric left reads as 0 and stops the alias search
		{map[string]any{"price": "market", "price_number": 30.0}, 0},
		{map[string]any{"price": "", "price_number": 30.0}, 0},
		{map[string]any{"price": "€ 1.200"}, 1.2},
		{map[string]any{"price": "-", "price_number": 30.0}, 30},
		{map[string]any{"price": "1.2.3"}, -1},
		{map[string]any{"price": true, "price_value": 12.0}, 12},
	}
	for i, tc := range tests {
		raw := map[string]any{"id": "a", "name": "b"}
		for k, v := range tc.raw {
			raw[k] = v
		}
		item, ok := NormalizeRecord(raw)
		if !ok {
			t.Fatalf("case %d: expected record to be accepted", i)
		}
		if tc.want < 0 {
			if item.Price != nil {
				t.Errorf("case %d: expected nil price, got %v", i, *item.Price)
			}
			continue
		}
		if item.Price == nil || *item.Price != tc.want {
			t.Errorf("case %d: price = %v, want %v", i, item.Price, tc.want)
		}
	}
}

func TestParseServing(t *testing.T) {
	tests := map[string]Serving{
		"glass":          ServingGlass,
		"BOTTLE":         ServingBottle,
		"both":           ServingBoth,
		"By the glass":   ServingGlass,
		"glass / bottle": ServingBoth,
		"carafe":         ServingUnknown,
		"":               ServingUnknown,
	}
	for in, want := range tests {
		if got := ParseServing(in); got != want {
			t.Errorf("ParseServing(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromLineItem_CopiesPrice(t *testing.T) {
	p := 19.0
	li := LineItem{Name: "Chianti", Price: &p}
	item := FromLineItem(li, "id-1", 2)

	p = 99
	if item.Price == nil || *item.Price != 19 {
		t.Errorf("expected copied price 19, got %v", item.Price)
	}
	if item.RawText != "Chianti" || item.Position != 2 || item.ID != "id-1" {
		t.Errorf("unexpected item: %+v", item)
	}
}
