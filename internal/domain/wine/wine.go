// Package wine holds the wine vocabulary shared by the menu parser, the scorer
// and the parsed-list storage.
package wine

import (
	"fmt"
	"strings"
)

// Color is the wine style family.
type Color string

// Color constants. Rosé keeps its accent in canonical form.
const (
	ColorRed       Color = "red"
	ColorWhite     Color = "white"
	ColorRose      Color = "rosé"
	ColorSparkling Color = "sparkling"
	ColorUnknown   Color = "unknown"
)

// IsValid checks if the color is one of the supported values.
func (c Color) IsValid() bool {
	switch c {
	case ColorRed, ColorWhite, ColorRose, ColorSparkling, ColorUnknown:
		return true
	}
	return false
}

// ParseColor validates a color at the boundary. "rose" is accepted as rosé.
func ParseColor(s string) (Color, error) {
	v := Color(strings.ToLower(strings.TrimSpace(s)))
	if v == "rose" {
		return ColorRose, nil
	}
	if !v.IsValid() {
		return "", fmt.Errorf("invalid wine color %q", s)
	}
	return v, nil
}

// Body is the perceived weight of a wine.
type Body string

// Body constants.
const (
	BodyLight  Body = "light"
	BodyMedium Body = "medium"
	BodyFull   Body = "full"
)

// IsValid checks if the body is one of the supported values.
func (b Body) IsValid() bool {
	return b == BodyLight || b == BodyMedium || b == BodyFull
}

// ParseBody validates a body value at the boundary.
func ParseBody(s string) (Body, error) {
	v := Body(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("invalid wine body %q", s)
	}
	return v, nil
}

// Sweetness is the residual sugar class.
type Sweetness string

// Sweetness constants.
const (
	SweetnessDry    Sweetness = "dry"
	SweetnessOffDry Sweetness = "off-dry"
	SweetnessSweet  Sweetness = "sweet"
)

// IsValid checks if the sweetness is one of the supported values.
func (s Sweetness) IsValid() bool {
	return s == SweetnessDry || s == SweetnessOffDry || s == SweetnessSweet
}

// ParseSweetness validates a sweetness value. "off_dry" is accepted as off-dry.
func ParseSweetness(s string) (Sweetness, error) {
	v := Sweetness(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if !v.IsValid() {
		return "", fmt.Errorf("invalid wine sweetness %q", s)
	}
	return v, nil
}

// Acidity is the perceived acidity level.
type Acidity string

// Acidity constants.
const (
	AcidityLow    Acidity = "low"
	AcidityMedium Acidity = "medium"
	AcidityHigh   Acidity = "high"
)

// IsValid checks if the acidity is one of the supported values.
func (a Acidity) IsValid() bool {
	return a == AcidityLow || a == AcidityMedium || a == AcidityHigh
}

// ParseAcidity validates an acidity value at the boundary.
func ParseAcidity(s string) (Acidity, error) {
	v := Acidity(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("invalid wine acidity %q", s)
	}
	return v, nil
}

// LineItem is one wine read off a menu, classified by keyword heuristics.
// Price is nil when the menu line carried none.
type LineItem struct {
	Name      string
	Color     Color
	Body      Body
	Sweetness Sweetness
	Acidity   Acidity
	Price     *float64
	Notes     string
}

// HasPrice reports whether the item carries a price.
func (w LineItem) HasPrice() bool {
	return w.Price != nil
}

// PriceValue returns the price or 0 when absent.
func (w LineItem) PriceValue() float64 {
	if w.Price == nil {
		return 0
	}
	return *w.Price
}
