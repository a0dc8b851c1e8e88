package stats

import "math"

// TwoProportion runs a pooled two-proportion z-test and returns the probability
// that variant A's true rate exceeds variant B's. Missing data on either side
// yields 0.5.
func TwoProportion(aSuccess, aTrials, bSuccess, bTrials int64) float64 {
	if aTrials <= 0 || bTrials <= 0 {
		return 0.5
	}

	pA := float64(aSuccess) / float64(aTrials)
	pB := float64(bSuccess) / float64(bTrials)
	pooled := float64(aSuccess+bSuccess) / float64(aTrials+bTrials)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(aTrials) + 1/float64(bTrials)))
	if se == 0 {
		return sign(pA - pB)
	}
	return NormalCDF((pA - pB) / se)
}

// PoissonRate compares two event counts observed over equal exposure. Conditional
// on the total n, A's count is Binomial(n, 0.5) under the null, so the normal
// approximation gives z = (a - b) / sqrt(a + b).
func PoissonRate(aCount, bCount int64) float64 {
	n := aCount + bCount
	if n <= 0 {
		return 0.5
	}
	z := float64(aCount-bCount) / math.Sqrt(float64(n))
	return NormalCDF(z)
}

// NormalCDF is the standard normal cumulative distribution function.
func NormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func sign(d float64) float64 {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return 0
	default:
		return 0.5
	}
}
