package stats

import (
	"fmt"
	"sort"
	"strings"
)

// Award describes a voted season award: its voting table id on the awards page and
// the first season year it was given.
type Award struct {
	Code      string
	Name      string
	TableID   string
	Inception int
}

var awards = map[string]Award{
	"dpoy": {Code: "dpoy", Name: "Defensive Player of the Year", TableID: "dpoy", Inception: 1983},
	"mvp":  {Code: "mvp", Name: "Most Valuable Player", TableID: "mvp", Inception: 1956},
	"roy":  {Code: "roy", Name: "Rookie of the Year", TableID: "roy", Inception: 1953},
	"smoy": {Code: "smoy", Name: "Sixth Man of the Year", TableID: "smoy", Inception: 1983},
	"mip":  {Code: "mip", Name: "Most Improved Player", TableID: "mip", Inception: 1986},
}

// LookupAward returns the award for a code such as "dpoy".
func LookupAward(code string) (Award, error) {
	a, ok := awards[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Award{}, fmt.Errorf("unknown award %q (valid: %s)", code, strings.Join(AwardCodes(), ", "))
	}
	return a, nil
}

// AwardCodes returns the supported award codes in sorted order.
func AwardCodes() []string {
	codes := make([]string, 0, len(awards))
	for c := range awards {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Label is the upper-cased code used in report column names, e.g. "DPOY".
func (a Award) Label() string {
	return strings.ToUpper(a.Code)
}

// Eligible reports whether the award existed in the given season year.
func (a Award) Eligible(year int) bool {
	return year >= a.Inception
}
