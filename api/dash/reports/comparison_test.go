package reports

import "testing"

func TestProductionMetrics(t *testing.T) {
	t.Parallel()

	metrics := productionMetrics(270, 250, 5400, 27)
	if len(metrics) != 4 {
		t.Fatalf("got %d metrics, want 4", len(metrics))
	}

	cases := metrics[0]
	if cases.Name != "Production Cases" {
		t.Fatalf("metric 0 = %q, want Production Cases", cases.Name)
	}
	// Case budget is the projection figure, not a production-sheet column.
	if cases.Budget == nil || *cases.Budget != 270 {
		t.Fatalf("Production Cases budget = %v, want 270", cases.Budget)
	}
	if cases.Variance == nil || *cases.Variance != -20 {
		t.Fatalf("Production Cases variance = %v, want -20", cases.Variance)
	}

	dailyCases := metrics[1]
	if dailyCases.Name != "Daily Case Avg" {
		t.Fatalf("metric 1 = %q, want Daily Case Avg", dailyCases.Name)
	}
	if dailyCases.Budget == nil || *dailyCases.Budget != 10 {
		t.Fatalf("Daily Case Avg budget = %v, want 10", dailyCases.Budget)
	}

	liters := metrics[2]
	if liters.Name != "Production in Liters" {
		t.Fatalf("metric 2 = %q, want Production in Liters", liters.Name)
	}
	if liters.Budget != nil || liters.Variance != nil {
		t.Fatal("Production in Liters carries budget or variance, want actual-only")
	}
	if liters.Actual == nil || *liters.Actual != 5400 {
		t.Fatalf("Production in Liters actual = %v, want 5400", liters.Actual)
	}

	literAvg := metrics[3]
	if literAvg.Name != "Daily Liter Avg" {
		t.Fatalf("metric 3 = %q, want Daily Liter Avg", literAvg.Name)
	}
	if literAvg.Budget != nil || literAvg.Variance != nil {
		t.Fatal("Daily Liter Avg carries budget or variance, want actual-only")
	}
	if literAvg.Actual == nil || *literAvg.Actual != 200 {
		t.Fatalf("Daily Liter Avg actual = %v, want 200", literAvg.Actual)
	}
}

func TestSalesMetrics(t *testing.T) {
	t.Parallel()

	metrics := salesMetrics(270, 250, 10000, 8000, 4000, 27)
	if len(metrics) != 5 {
		t.Fatalf("got %d metrics, want 5", len(metrics))
	}

	wantNames := []string{
		"Sales Cases",
		"Daily Case Avg",
		"Sales Amount (US$)",
		"Collection (US$)",
		"Collection Efficiency Ratio (% of Sales)",
	}
	for i, name := range wantNames {
		if metrics[i].Name != name {
			t.Fatalf("metric %d = %q, want %q", i, metrics[i].Name, name)
		}
	}

	amount := metrics[2]
	if amount.Variance == nil || *amount.Variance != -2000 {
		t.Fatalf("Sales Amount variance = %v, want -2000", amount.Variance)
	}

	collection := metrics[3]
	if collection.Budget != nil || collection.Variance != nil {
		t.Fatal("Collection carries budget or variance, want actual-only")
	}

	efficiency := metrics[4]
	if efficiency.Actual == nil || *efficiency.Actual != 50 {
		t.Fatalf("efficiency = %v, want 50", efficiency.Actual)
	}
}

func TestSalesMetricsZeroActualAmount(t *testing.T) {
	t.Parallel()

	metrics := salesMetrics(0, 0, 0, 0, 4000, 27)
	efficiency := metrics[4]
	if efficiency.Actual == nil || *efficiency.Actual != 0 {
		t.Fatalf("efficiency with zero sales = %v, want 0", efficiency.Actual)
	}
}
