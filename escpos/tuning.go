package escpos

import "strings"

// Preset bundles the clarity/density tuning applied to a receipt job. The
// spacing and line-height values go into the payload; Density and Speed are
// session-level tuning reported alongside connection status.
type Preset struct {
	Name        string
	Emphasis    bool
	CharSpacing byte
	LineHeight  byte
	Density     int
	Speed       int
}

// Named presets, darkest and slowest first.
var (
	PresetHigh = Preset{
		Name:        "high",
		Emphasis:    true,
		CharSpacing: 1,
		LineHeight:  40,
		Density:     15,
		Speed:       2,
	}
	PresetStandard = Preset{
		Name:        "standard",
		Emphasis:    false,
		CharSpacing: 0,
		LineHeight:  36,
		Density:     10,
		Speed:       4,
	}
	PresetLow = Preset{
		Name:        "low",
		Emphasis:    false,
		CharSpacing: 0,
		LineHeight:  30,
		Density:     6,
		Speed:       6,
	}
)

// PresetByName resolves a named preset; unknown names fall back to the
// most conservative preset.
func PresetByName(name string) Preset {
	switch strings.ToLower(name) {
	case "high":
		return PresetHigh
	case "standard":
		return PresetStandard
	case "low":
		return PresetLow
	default:
		return PresetHigh
	}
}

// vendor tokens recognized in free-text printer model strings
var modelPresets = []struct {
	token  string
	preset Preset
}{
	{"epson", PresetStandard},
	{"star", PresetStandard},
	{"citizen", PresetStandard},
	{"bixolon", PresetStandard},
	{"rongta", PresetHigh},
	{"generic", PresetHigh},
	{"xprinter", PresetHigh},
}

// PresetForPrinter derives a preset from a free-text printer model string
// by case-insensitive substring match. No match means an unknown head, so
// the most conservative preset wins.
func PresetForPrinter(model string) Preset {
	lower := strings.ToLower(model)
	for _, mp := range modelPresets {
		if strings.Contains(lower, mp.token) {
			return mp.preset
		}
	}
	return PresetHigh
}

// RecommendDensity maps observed paper and head condition onto a density
// level ("dark", "medium" or "light"). Aged paper or a worn head always
// forces the darkest safe setting.
func RecommendDensity(paperAge, printerCondition string) string {
	age := strings.ToLower(paperAge)
	cond := strings.ToLower(printerCondition)

	if age == "old" || cond == "worn" || cond == "old" {
		return "dark"
	}
	if age == "new" && (cond == "new" || cond == "good") {
		return "light"
	}
	return "medium"
}
