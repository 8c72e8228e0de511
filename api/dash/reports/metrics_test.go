package reports

import "testing"

func TestVariance(t *testing.T) {
	t.Parallel()

	if got := variance(100, 125); got != 25 {
		t.Fatalf("variance(100, 125) = %v, want 25", got)
	}
	if got := variance(125, 100); got != -25 {
		t.Fatalf("variance(125, 100) = %v, want -25", got)
	}
}

func TestDailyAverage(t *testing.T) {
	t.Parallel()

	if got := dailyAverage(270, 27); got != 10 {
		t.Fatalf("dailyAverage(270, 27) = %v, want 10", got)
	}
	if got := dailyAverage(100, 0); got != 0 {
		t.Fatalf("dailyAverage(100, 0) = %v, want 0", got)
	}
	if got := dailyAverage(100, -1); got != 0 {
		t.Fatalf("dailyAverage(100, -1) = %v, want 0", got)
	}
}

func TestGrowthPct(t *testing.T) {
	t.Parallel()

	if got := growthPct(15, 10); got == nil || *got != 50 {
		t.Fatalf("growthPct(15, 10) = %v, want 50", got)
	}
	if got := growthPct(5, 10); got == nil || *got != -50 {
		t.Fatalf("growthPct(5, 10) = %v, want -50", got)
	}
	if got := growthPct(10, 0); got != nil {
		t.Fatalf("growthPct(10, 0) = %v, want nil", *got)
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{-1.005, -1.01},
		{10, 10},
	}
	for _, tc := range cases {
		if got := round2(tc.in); got != tc.want {
			t.Fatalf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMetricConstructors(t *testing.T) {
	t.Parallel()

	m := metric("Sales Cases", 100.239, 125.001)
	if m.Budget == nil || *m.Budget != 100.24 {
		t.Fatalf("Budget = %v, want 100.24", m.Budget)
	}
	if m.Actual == nil || *m.Actual != 125.0 {
		t.Fatalf("Actual = %v, want 125", m.Actual)
	}
	if m.Variance == nil || *m.Variance != 24.76 {
		t.Fatalf("Variance = %v, want 24.76", m.Variance)
	}

	a := actualOnly("Collection (US$)", 583286.954)
	if a.Budget != nil || a.Variance != nil {
		t.Fatal("actualOnly metric carries budget or variance, want nil")
	}
	if a.Actual == nil || *a.Actual != 583286.95 {
		t.Fatalf("Actual = %v, want 583286.95", a.Actual)
	}
}
