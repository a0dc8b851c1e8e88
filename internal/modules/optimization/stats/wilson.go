package stats

import "math"

// WilsonInterval is the Wilson score interval for a binomial proportion at
// roughly 95% coverage.
func WilsonInterval(successes, trials int64) (lower, upper float64) {
	if trials <= 0 {
		return 0, 0
	}
	const z = 1.96
	p := float64(successes) / float64(trials)
	n := float64(trials)

	denominator := 1 + z*z/n
	center := (p + z*z/(2*n)) / denominator
	spread := (z / denominator) * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))

	lower = math.Max(0, center-spread)
	upper = math.Min(1, center+spread)
	return lower, upper
}
