package domain

import "strconv"

// ConditionsName names the classified severity field.
const ConditionsName = "rainfall_conditions"

// Severity is an ordered rainfall condition class, 1 (driest) to 7 (wettest).
type Severity int

const (
	SevereDrought Severity = iota + 1
	ModerateDrought
	MildDrought
	Normal
	MildWet
	ModerateWet
	SevereWet
)

var severityLabels = [...]string{
	SevereDrought:   "Severe drought",
	ModerateDrought: "Moderate drought",
	MildDrought:     "Mild drought",
	Normal:          "Normal",
	MildWet:         "Mild wet",
	ModerateWet:     "Moderate wet",
	SevereWet:       "Severe wet",
}

// AllSeverities returns every class in ascending order.
func AllSeverities() []Severity {
	return []Severity{SevereDrought, ModerateDrought, MildDrought, Normal, MildWet, ModerateWet, SevereWet}
}

func (s Severity) Valid() bool { return s >= SevereDrought && s <= SevereWet }

func (s Severity) String() string {
	if !s.Valid() {
		return "Severity(" + strconv.Itoa(int(s)) + ")"
	}
	return severityLabels[s]
}

// ClassifyValue maps a percentage anomaly to its class. The first matching
// band wins; see the package documentation for the boundary table.
// NaN has no class and returns 0.
func ClassifyValue(p float64) Severity {
	switch {
	case p < -30:
		return SevereDrought
	case p < -20:
		return ModerateDrought
	case p < -10:
		return MildDrought
	case p <= 10:
		return Normal
	case p <= 20:
		return MildWet
	case p <= 30:
		return ModerateWet
	case p > 30:
		return SevereWet
	}
	return 0
}

// Classify maps every valid pixel of a percentage anomaly field to its class
// code. No-data stays no-data.
func Classify(percentage *Field) *Field {
	return percentage.Map(func(p float64) (float64, bool) {
		s := ClassifyValue(p)
		return float64(s), s.Valid()
	}).Named(ConditionsName)
}
