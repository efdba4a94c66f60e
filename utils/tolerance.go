package utils

import "math"

// WeightEpsilon is the tolerance for gram weights stored as floats.
const WeightEpsilon = 0.001

func WeightsEqual(a, b float64) bool {
	return math.Abs(a-b) <= WeightEpsilon
}
