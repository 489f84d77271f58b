package scoring

import "math"

// ClampUnit clamps v into [0,1]. NaN maps to 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// LowerBetter maps v onto [0,1] where good scores 1 and bad scores 0.
// Missing (NaN) input scores 0.
func LowerBetter(v, good, bad float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return ClampUnit(1 - (v-good)/(bad-good))
}

// HigherBetter maps v onto [0,1] where good scores 0 and bad scores 1,
// i.e. the anchors are the low and high end of the desirable range.
// Missing (NaN) input scores 0.
func HigherBetter(v, good, bad float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return ClampUnit((v - good) / (bad - good))
}

// Scaled4 is the growth/yield transform: four times the raw ratio, clamped.
func Scaled4(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return ClampUnit(v * 4)
}

// Value reads an optional upstream number. Missing values read as NaN.
func Value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// present reports whether v is a usable finite number.
func present(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
