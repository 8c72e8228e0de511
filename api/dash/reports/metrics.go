package reports

import "github.com/shopspring/decimal"

// Metric is one budget-vs-actual line in a comparison report. Budget and
// Variance are nil for actual-only metrics (collection, ratios).
type Metric struct {
	Name     string   `json:"name"`
	Budget   *float64 `json:"budget"`
	Actual   *float64 `json:"actual"`
	Variance *float64 `json:"variance"`
}

// round2 rounds at the response boundary only; accumulation stays in full
// float precision.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func variance(budget, actual float64) float64 {
	return actual - budget
}

func dailyAverage(total float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return total / float64(days)
}

// growthPct is nil when the previous period is zero: growth against nothing
// is undefined, not infinite.
func growthPct(curr, prev float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := round2((curr - prev) / prev * 100)
	return &v
}

func metric(name string, budget, actual float64) Metric {
	b := round2(budget)
	a := round2(actual)
	v := round2(variance(budget, actual))
	return Metric{Name: name, Budget: &b, Actual: &a, Variance: &v}
}

func actualOnly(name string, actual float64) Metric {
	a := round2(actual)
	return Metric{Name: name, Actual: &a}
}
