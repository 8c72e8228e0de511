package ingest

import (
	"context"
	"testing"
)

// fakeResolver hands out deterministic ids without a store; ids are
// assigned in first-seen order per entity kind.
type fakeResolver struct {
	years      map[int]int64
	categories map[string]int64
	products   map[productCacheKey]int64
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		years:      make(map[int]int64),
		categories: make(map[string]int64),
		products:   make(map[productCacheKey]int64),
	}
}

func (f *fakeResolver) YearID(_ context.Context, year int) (int64, error) {
	if id, ok := f.years[year]; ok {
		return id, nil
	}
	id := int64(len(f.years) + 1)
	f.years[year] = id
	return id, nil
}

func (f *fakeResolver) MonthID(name string) int64 {
	return int64(monthNumber(name))
}

func (f *fakeResolver) CategoryID(_ context.Context, name string) (int64, error) {
	if name == "" {
		name = uncategorized
	}
	if id, ok := f.categories[name]; ok {
		return id, nil
	}
	id := int64(len(f.categories) + 1)
	f.categories[name] = id
	return id, nil
}

func (f *fakeResolver) ProductID(_ context.Context, name string, categoryID int64, _, _ string) (int64, error) {
	if name == "" {
		return 0, nil
	}
	key := productCacheKey{name, categoryID}
	if id, ok := f.products[key]; ok {
		return id, nil
	}
	id := int64(len(f.products) + 1)
	f.products[key] = id
	return id, nil
}

func salesRow(month, product, qty string) map[string]string {
	return map[string]string{
		"Month":               month,
		"Products":            product,
		"Product Category":    "Dairy",
		"Qty-Actual":          qty,
		"Amount-Actual (US$)": "100",
	}
}

func TestAccumulateSalesSumsDuplicateRows(t *testing.T) {
	t.Parallel()

	res := newFakeResolver()
	rows := []map[string]string{
		salesRow("Jul'25", "Product A", "10"),
		salesRow("Jul'25", "Product A", "15"),
	}
	out, periods, err := accumulateSales(context.Background(), res, rows)
	if err != nil {
		t.Fatalf("accumulateSales: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d aggregated rows, want 1", len(out))
	}
	for _, totals := range out {
		if totals.qtyActual != 25 {
			t.Fatalf("qtyActual = %v, want 25", totals.qtyActual)
		}
		if totals.amountActual != 200 {
			t.Fatalf("amountActual = %v, want 200", totals.amountActual)
		}
	}
	got := periods.sorted()
	if len(got) != 1 || got[0] != "July 2025" {
		t.Fatalf("periods = %v, want [July 2025]", got)
	}
}

func TestAccumulateSalesOrderIndependent(t *testing.T) {
	t.Parallel()

	rows := []map[string]string{
		salesRow("Jul'25", "Product A", "10"),
		salesRow("Aug'25", "Product B", "7"),
		salesRow("Jul'25", "Product A", "15"),
	}
	reversed := []map[string]string{rows[2], rows[1], rows[0]}

	a, _, err := accumulateSales(context.Background(), newFakeResolver(), rows)
	if err != nil {
		t.Fatalf("accumulateSales: %v", err)
	}
	b, _, err := accumulateSales(context.Background(), newFakeResolver(), reversed)
	if err != nil {
		t.Fatalf("accumulateSales reversed: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("row order changed aggregate count: %d vs %d", len(a), len(b))
	}
	var sumA, sumB float64
	for _, v := range a {
		sumA += v.qtyActual
	}
	for _, v := range b {
		sumB += v.qtyActual
	}
	if sumA != sumB {
		t.Fatalf("row order changed totals: %v vs %v", sumA, sumB)
	}
}

func TestAccumulateSalesSkipsBadRows(t *testing.T) {
	t.Parallel()

	rows := []map[string]string{
		salesRow("not-a-month", "Product A", "10"),
		salesRow("Jul'25", "", "10"),
		salesRow("Jul'25", "Product A", "abc"), // non-numeric contributes 0
	}
	out, _, err := accumulateSales(context.Background(), newFakeResolver(), rows)
	if err != nil {
		t.Fatalf("accumulateSales: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d aggregated rows, want 1", len(out))
	}
	for _, totals := range out {
		if totals.qtyActual != 0 {
			t.Fatalf("qtyActual = %v, want 0 for non-numeric cell", totals.qtyActual)
		}
	}
}

func TestAccumulateWorkingDaysLastWins(t *testing.T) {
	t.Parallel()

	rows := []map[string]string{
		{"Months": "Jul'25", "Days in months": "26"},
		{"Months": "Jul'25", "Days in months": "27"},
		{"Months": "garbage", "Days in months": "99"},
	}
	out, periods, err := accumulateWorkingDays(context.Background(), newFakeResolver(), rows)
	if err != nil {
		t.Fatalf("accumulateWorkingDays: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	for _, days := range out {
		if days != 27 {
			t.Fatalf("days = %d, want 27 (last row wins)", days)
		}
	}
	if got := periods.sorted(); len(got) != 1 || got[0] != "July 2025" {
		t.Fatalf("periods = %v, want [July 2025]", got)
	}
}

func TestAccumulateBudgetProjectionPivotsMonthColumns(t *testing.T) {
	t.Parallel()

	sheet := &SheetData{
		Headers: []string{"Products", "Product Category", "Jul'25", "Aug'25", "Jul'25.1", "Notes"},
		Rows: []map[string]string{
			{"Products": "Product A", "Product Category": "Dairy", "Jul'25": "100", "Aug'25": "120", "Jul'25.1": "999", "Notes": "x"},
			{"Products": "Product A", "Product Category": "Dairy", "Jul'25": "50", "Aug'25": "", "Jul'25.1": "999"},
			{"Products": "", "Product Category": "Dairy", "Jul'25": "1"},
		},
	}
	out, periods, err := accumulateBudgetProjection(context.Background(), newFakeResolver(), sheet)
	if err != nil {
		t.Fatalf("accumulateBudgetProjection: %v", err)
	}
	// One product, two month columns; "Jul'25.1" and "Notes" are not month
	// tokens and contribute nothing.
	if len(out) != 2 {
		t.Fatalf("got %d aggregated cells, want 2", len(out))
	}
	var total float64
	for _, v := range out {
		total += v
	}
	if total != 270 {
		t.Fatalf("total quantity = %v, want 270", total)
	}
	wantPeriods := []string{"July 2025", "August 2025"}
	got := periods.sorted()
	if len(got) != 2 || got[0] != wantPeriods[0] || got[1] != wantPeriods[1] {
		t.Fatalf("periods = %v, want %v", got, wantPeriods)
	}
}

func TestAccumulateChannelDefaultsAndSums(t *testing.T) {
	t.Parallel()

	rows := []map[string]string{
		{"Year": "2025", "Month": "Jul", "SalesMan": "Alice", "Location": "North", "Type of sales": "Retail", "Amount": "100"},
		{"Year": "2025", "Month": "Jul", "SalesMan": "Alice", "Location": "North", "Type of sales": "Retail", "Amount": "50.5"},
		{"Year": "2025", "Month": "Jul", "SalesMan": "", "Location": "", "Type of sales": "", "Amount": "10"},
		{"Year": "", "Month": "Jul", "SalesMan": "Bob", "Amount": "999"},
		{"Year": "2025", "Month": "July", "SalesMan": "Bob", "Amount": "999"}, // full name not accepted here
	}
	out, _, err := accumulateChannel(context.Background(), newFakeResolver(), rows)
	if err != nil {
		t.Fatalf("accumulateChannel: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d channel rows, want 2", len(out))
	}
	for key, amount := range out {
		switch key.salesman {
		case "Alice":
			if amount != 150.5 {
				t.Fatalf("Alice amount = %v, want 150.5", amount)
			}
		case "Unknown":
			if key.location != "Unknown" || key.typeOfSales != "Unknown" {
				t.Fatalf("blank channel fields = (%q, %q), want Unknown defaults", key.location, key.typeOfSales)
			}
			if amount != 10 {
				t.Fatalf("Unknown amount = %v, want 10", amount)
			}
		default:
			t.Fatalf("unexpected salesman %q", key.salesman)
		}
	}
}

func TestAccumulateCostPositionalRows(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Jul'25", "1,200.50", "300"},
		{"Jul'25", "999", "999"}, // last wins
		{"header text", "x", "y"},
		{"Aug'25", "10"},
	}
	out, _, err := accumulateCost(context.Background(), newFakeResolver(), rows)
	if err != nil {
		t.Fatalf("accumulateCost: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d cost rows, want 1", len(out))
	}
	for _, c := range out {
		if c.fuel != 999 || c.lec != 999 {
			t.Fatalf("cost = %+v, want last-wins 999/999", c)
		}
	}
}

func TestToFloat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
	}{
		{"1,234.5", 1234.5},
		{" 10 ", 10},
		{"", 0},
		{"abc", 0},
		{"-3.25", -3.25},
	}
	for _, tc := range cases {
		if got := toFloat(tc.in); got != tc.want {
			t.Fatalf("toFloat(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
