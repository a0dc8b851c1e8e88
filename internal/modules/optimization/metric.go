package optimization

import (
	"fmt"
	"strings"

	"github.com/yungbote/autopilot-backend/internal/modules/optimization/stats"
)

// Metric selects which observed aggregate decides an A/B test.
type Metric string

const (
	MetricCTR         Metric = "ctr"
	MetricConversions Metric = "conversions"
	MetricViews       Metric = "views"
)

func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, s)
	}
	return m, nil
}

func (m Metric) Valid() bool {
	switch m {
	case MetricCTR, MetricConversions, MetricViews:
		return true
	}
	return false
}

// comparison is the outcome of one aggregator: the value per arm and the
// probability that A's underlying rate is higher.
type comparison struct {
	AValue    float64
	BValue    float64
	AInterval *Interval
	BInterval *Interval
	PAHigher  float64
}

func (m Metric) compare(a, b VariantCounts) (comparison, error) {
	switch m {
	case MetricCTR:
		return compareRates(m, a.Clicks, a.Exposures, b.Clicks, b.Exposures)
	case MetricConversions:
		return compareRates(m, a.Conversions, a.Exposures, b.Conversions, b.Exposures)
	case MetricViews:
		return comparison{
			AValue:   float64(a.Views),
			BValue:   float64(b.Views),
			PAHigher: stats.PoissonRate(a.Views, b.Views),
		}, nil
	default:
		return comparison{}, fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, string(m))
	}
}

// compareRates rejects arms with more successes than exposures; the pooled
// z-test is undefined there.
func compareRates(m Metric, aSuccess, aTrials, bSuccess, bTrials int64) (comparison, error) {
	if aSuccess > aTrials {
		return comparison{}, fmt.Errorf("variant A has %d %s over %d exposures", aSuccess, m, aTrials)
	}
	if bSuccess > bTrials {
		return comparison{}, fmt.Errorf("variant B has %d %s over %d exposures", bSuccess, m, bTrials)
	}
	return comparison{
		AValue:    ratio(aSuccess, aTrials),
		BValue:    ratio(bSuccess, bTrials),
		AInterval: wilson(aSuccess, aTrials),
		BInterval: wilson(bSuccess, bTrials),
		PAHigher:  stats.TwoProportion(aSuccess, aTrials, bSuccess, bTrials),
	}, nil
}

func wilson(successes, trials int64) *Interval {
	lo, hi := stats.WilsonInterval(successes, trials)
	return &Interval{Lower: lo, Upper: hi}
}

func ratio(num, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
