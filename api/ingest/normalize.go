package ingest

import (
	"context"
	"strconv"
	"strings"
)

// refResolver is what the normalizers need from RefCache; tests substitute
// an in-memory fake.
type refResolver interface {
	YearID(ctx context.Context, year int) (int64, error)
	MonthID(name string) int64
	CategoryID(ctx context.Context, name string) (int64, error)
	ProductID(ctx context.Context, name string, categoryID int64, subCategory, typeOfSales string) (int64, error)
}

// factKey scopes one accumulated fact row. productID is 0 for sheets that
// have no product dimension (working days, cost).
type factKey struct {
	yearID    int64
	monthID   int64
	productID int64
}

type channelKey struct {
	yearID      int64
	monthID     int64
	salesman    string
	location    string
	typeOfSales string
}

type salesTotals struct {
	qtyBudget    float64
	amountBudget float64
	qtyActual    float64
	amountActual float64
	litersBudget float64
	litersActual float64
}

type productionTotals struct {
	qtyBudget    float64
	litersBudget float64
	qtyActual    float64
	litersActual float64
}

type costTotals struct {
	fuel float64
	lec  float64
}

// toFloat follows the ingestion rule that any non-numeric or empty cell
// contributes 0.
func toFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func cleanStr(s, fallback string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return fallback
}

// accumulateWorkingDays keys on (year, month); duplicate month rows in one
// file are last-wins, matching the template's one-row-per-month intent.
func accumulateWorkingDays(ctx context.Context, res refResolver, rows []map[string]string) (map[factKey]int, periodSet, error) {
	out := make(map[factKey]int)
	periods := make(periodSet)
	for _, row := range rows {
		monthName, year, ok := ParseMonthToken(row["Months"])
		if !ok {
			continue
		}
		monthID := res.MonthID(monthName)
		if monthID == 0 {
			continue
		}
		yearID, err := res.YearID(ctx, year)
		if err != nil {
			return nil, nil, err
		}
		out[factKey{yearID, monthID, 0}] = int(toFloat(row["Days in months"]))
		periods.add(monthName, year)
	}
	return out, periods, nil
}

// accumulateBudgetProjection pivots the projection sheet: one row per
// product, one column per month token. Columns whose header is not a clean
// month token (spreadsheet-deduplicated duplicates like "Jul'25.1") are
// ignored.
func accumulateBudgetProjection(ctx context.Context, res refResolver, sheet *SheetData) (map[factKey]float64, periodSet, error) {
	type monthCol struct {
		header string
		name   string
		year   int
	}
	var monthCols []monthCol
	for _, h := range sheet.Headers {
		if name, year, ok := ParseMonthToken(h); ok {
			monthCols = append(monthCols, monthCol{h, name, year})
		}
	}

	out := make(map[factKey]float64)
	periods := make(periodSet)
	for _, row := range sheet.Rows {
		productName := cleanStr(row["Products"], "")
		if productName == "" {
			continue
		}
		categoryID, err := res.CategoryID(ctx, row["Product Category"])
		if err != nil {
			return nil, nil, err
		}
		productID, err := res.ProductID(ctx, productName, categoryID, row["Product Category 2"], row["Type of Sales"])
		if err != nil {
			return nil, nil, err
		}
		if productID == 0 {
			continue
		}
		for _, mc := range monthCols {
			monthID := res.MonthID(mc.name)
			if monthID == 0 {
				continue
			}
			yearID, err := res.YearID(ctx, mc.year)
			if err != nil {
				return nil, nil, err
			}
			out[factKey{yearID, monthID, productID}] += toFloat(row[mc.header])
			periods.add(mc.name, mc.year)
		}
	}
	return out, periods, nil
}

func accumulateSales(ctx context.Context, res refResolver, rows []map[string]string) (map[factKey]*salesTotals, periodSet, error) {
	out := make(map[factKey]*salesTotals)
	periods := make(periodSet)
	for _, row := range rows {
		monthName, year, ok := ParseMonthToken(row["Month"])
		if !ok {
			continue
		}
		productName := cleanStr(row["Products"], "")
		if productName == "" {
			continue
		}
		monthID := res.MonthID(monthName)
		if monthID == 0 {
			continue
		}
		yearID, err := res.YearID(ctx, year)
		if err != nil {
			return nil, nil, err
		}
		categoryID, err := res.CategoryID(ctx, row["Product Category"])
		if err != nil {
			return nil, nil, err
		}
		productID, err := res.ProductID(ctx, productName, categoryID, row["Product Category 2"], row["Type of Sales"])
		if err != nil {
			return nil, nil, err
		}
		if productID == 0 {
			continue
		}

		key := factKey{yearID, monthID, productID}
		t := out[key]
		if t == nil {
			t = &salesTotals{}
			out[key] = t
		}
		t.qtyBudget += toFloat(row["Qty-Budget"])
		t.amountBudget += toFloat(row["Amount-Budget (US$)"])
		t.qtyActual += toFloat(row["Qty-Actual"])
		t.amountActual += toFloat(row["Amount-Actual (US$)"])
		t.litersBudget += toFloat(row["Qty in Liters (Budgeted)"])
		t.litersActual += toFloat(row["Qty in Liters"])
		periods.add(monthName, year)
	}
	return out, periods, nil
}

func accumulateProduction(ctx context.Context, res refResolver, rows []map[string]string) (map[factKey]*productionTotals, periodSet, error) {
	out := make(map[factKey]*productionTotals)
	periods := make(periodSet)
	for _, row := range rows {
		monthName, year, ok := ParseMonthToken(row["Month"])
		if !ok {
			continue
		}
		productName := cleanStr(row["Products"], "")
		if productName == "" {
			continue
		}
		monthID := res.MonthID(monthName)
		if monthID == 0 {
			continue
		}
		yearID, err := res.YearID(ctx, year)
		if err != nil {
			return nil, nil, err
		}
		categoryID, err := res.CategoryID(ctx, row["Product Category"])
		if err != nil {
			return nil, nil, err
		}
		productID, err := res.ProductID(ctx, productName, categoryID, row["Product Category 2"], row["Type of Sales"])
		if err != nil {
			return nil, nil, err
		}
		if productID == 0 {
			continue
		}

		key := factKey{yearID, monthID, productID}
		t := out[key]
		if t == nil {
			t = &productionTotals{}
			out[key] = t
		}
		t.qtyBudget += toFloat(row["Qty-Budgeted"])
		t.litersBudget += toFloat(row["Qty Budgeted (In Ltrs)"])
		t.qtyActual += toFloat(row["Qty-Actual"])
		t.litersActual += toFloat(row["Qty in Liters"])
		periods.add(monthName, year)
	}
	return out, periods, nil
}

// accumulateChannel reads the salesman sheet, which carries the year as a
// separate integer column and the month as a bare short name.
func accumulateChannel(ctx context.Context, res refResolver, rows []map[string]string) (map[channelKey]float64, periodSet, error) {
	out := make(map[channelKey]float64)
	periods := make(periodSet)
	for _, row := range rows {
		year := int(toFloat(row["Year"]))
		if year == 0 {
			continue
		}
		monthName, ok := FullMonthName(row["Month"])
		if !ok {
			continue
		}
		monthID := res.MonthID(monthName)
		if monthID == 0 {
			continue
		}
		yearID, err := res.YearID(ctx, year)
		if err != nil {
			return nil, nil, err
		}

		key := channelKey{
			yearID:      yearID,
			monthID:     monthID,
			salesman:    cleanStr(row["SalesMan"], "Unknown"),
			location:    cleanStr(row["Location"], "Unknown"),
			typeOfSales: cleanStr(row["Type of sales"], "Unknown"),
		}
		out[key] += toFloat(row["Amount"])
		periods.add(monthName, year)
	}
	return out, periods, nil
}

// accumulateCost reads the positional fuel/lec block; duplicate month rows
// are last-wins.
func accumulateCost(ctx context.Context, res refResolver, rows [][]string) (map[factKey]costTotals, periodSet, error) {
	out := make(map[factKey]costTotals)
	periods := make(periodSet)
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		monthName, year, ok := ParseMonthToken(row[0])
		if !ok {
			continue
		}
		monthID := res.MonthID(monthName)
		if monthID == 0 {
			continue
		}
		yearID, err := res.YearID(ctx, year)
		if err != nil {
			return nil, nil, err
		}
		out[factKey{yearID, monthID, 0}] = costTotals{fuel: toFloat(row[1]), lec: toFloat(row[2])}
		periods.add(monthName, year)
	}
	return out, periods, nil
}
