package ingest

import (
	"sort"
	"strconv"
	"strings"
)

var monthOrder = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var shortMonthNames = map[string]string{
	"Jan": "January", "Feb": "February", "Mar": "March", "Apr": "April",
	"May": "May", "Jun": "June", "Jul": "July", "Aug": "August",
	"Sep": "September", "Oct": "October", "Nov": "November", "Dec": "December",
}

// FullMonthName resolves a three-letter abbreviation ("Jul") to its full
// month name. ok is false for anything that is not one of the 12 known
// abbreviations.
func FullMonthName(short string) (string, bool) {
	name, ok := shortMonthNames[strings.TrimSpace(short)]
	return name, ok
}

// ParseMonthToken parses workbook period tokens of the shape "Jul'25" into
// ("July", 2025). Two-digit years are anchored to 2000; the business data
// never predates it. Unknown abbreviations, a missing quote, or a year that
// is not two digits report ok=false and the caller skips the row.
func ParseMonthToken(token string) (name string, year int, ok bool) {
	short, yy, found := strings.Cut(strings.TrimSpace(token), "'")
	if !found || len(yy) != 2 {
		return "", 0, false
	}
	name, ok = shortMonthNames[short]
	if !ok {
		return "", 0, false
	}
	n, err := strconv.Atoi(yy)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return name, 2000 + n, true
}

func monthNumber(name string) int {
	for i, m := range monthOrder {
		if m == name {
			return i + 1
		}
	}
	return 0
}

// periodSet collects the "July 2025" style period labels found during one
// ingestion run.
type periodSet map[string]struct{}

func (p periodSet) add(month string, year int) {
	p[month+" "+strconv.Itoa(year)] = struct{}{}
}

func (p periodSet) merge(other periodSet) {
	for k := range other {
		p[k] = struct{}{}
	}
}

// sorted returns the period labels ordered by (year, month).
func (p periodSet) sorted() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		mi, yi, _ := strings.Cut(out[i], " ")
		mj, yj, _ := strings.Cut(out[j], " ")
		if yi != yj {
			return yi < yj
		}
		return monthNumber(mi) < monthNumber(mj)
	})
	return out
}
