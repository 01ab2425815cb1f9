// Package cellar holds a user's stored taste: personas, global preferences and
// the onboarding taste profile.
package cellar

// Color is the persona color vocabulary. It differs from wine.Color: personas
// can ask for orange wine or "any", and rose is spelled without the accent.
type Color string

// Persona color constants.
const (
	ColorRed       Color = "red"
	ColorWhite     Color = "white"
	ColorRose      Color = "rose"
	ColorOrange    Color = "orange"
	ColorSparkling Color = "sparkling"
	ColorAny       Color = "any"
)

// IsValid checks if the color is one of the supported values.
func (c Color) IsValid() bool {
	switch c {
	case ColorRed, ColorWhite, ColorRose, ColorOrange, ColorSparkling, ColorAny:
		return true
	}
	return false
}

// Body is the persona body preference.
type Body string

// Body constants.
const (
	BodyLight   Body = "light"
	BodyMedium  Body = "medium"
	BodyFull    Body = "full"
	BodyUnknown Body = "unknown"
)

// ParseBody coerces unknown input to BodyUnknown.
func ParseBody(s string) Body {
	switch b := Body(s); b {
	case BodyLight, BodyMedium, BodyFull:
		return b
	}
	return BodyUnknown
}

// Intensity is the tannin/acidity level.
type Intensity string

// Intensity constants.
const (
	IntensityLow     Intensity = "low"
	IntensityMedium  Intensity = "medium"
	IntensityHigh    Intensity = "high"
	IntensityUnknown Intensity = "unknown"
)

// ParseIntensity coerces unknown input to IntensityUnknown.
func ParseIntensity(s string) Intensity {
	switch i := Intensity(s); i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return i
	}
	return IntensityUnknown
}

// Sweetness is the persona sweetness preference.
type Sweetness string

// Sweetness constants.
const (
	SweetnessDry     Sweetness = "dry"
	SweetnessOffDry  Sweetness = "off_dry"
	SweetnessSweet   Sweetness = "sweet"
	SweetnessUnknown Sweetness = "unknown"
)

// ParseSweetness coerces unknown input to SweetnessUnknown.
func ParseSweetness(s string) Sweetness {
	switch v := Sweetness(s); v {
	case SweetnessDry, SweetnessOffDry, SweetnessSweet:
		return v
	}
	return SweetnessUnknown
}

// QualityTier is how much a user usually spends.
type QualityTier string

// QualityTier constants.
const (
	QualityValue    QualityTier = "value"
	QualityEveryday QualityTier = "everyday"
	QualitySpecial  QualityTier = "special"
)

// ParseQualityTier defaults to value.
func ParseQualityTier(s string) QualityTier {
	switch q := QualityTier(s); q {
	case QualityEveryday, QualitySpecial:
		return q
	}
	return QualityValue
}

// RiskTolerance is how far from their habits a user is willing to go.
type RiskTolerance string

// RiskTolerance constants.
const (
	RiskSafe         RiskTolerance = "safe"
	RiskAdventurous  RiskTolerance = "adventurous"
	RiskAnythingGoes RiskTolerance = "anything_goes"
)

// ParseRiskTolerance defaults to safe.
func ParseRiskTolerance(s string) RiskTolerance {
	switch r := RiskTolerance(s); r {
	case RiskAdventurous, RiskAnythingGoes:
		return r
	}
	return RiskSafe
}
