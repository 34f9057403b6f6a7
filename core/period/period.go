// Package period classifies and orders calendar period keys.
package period

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/gitinsight/schema"
)

var (
	yearPattern    = regexp.MustCompile(`^\d{4}$`)
	quarterPattern = regexp.MustCompile(`^\d{4}Q[1-4]$`)
	monthPattern   = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// Classify decides which calendar granularity a key belongs to.
// Patterns are tried year, then quarter, then month. Keys matching none are
// OtherGranularity and callers drop them.
func Classify(key string) schema.Granularity {
	switch {
	case yearPattern.MatchString(key):
		return schema.YearGranularity
	case quarterPattern.MatchString(key):
		return schema.QuarterGranularity
	case monthPattern.MatchString(key):
		return schema.MonthGranularity
	default:
		return schema.OtherGranularity
	}
}

// MonthToQuarter derives the quarter key of a 1-indexed month.
// The month is expected to be within 1..12.
func MonthToQuarter(year string, month int) string {
	return fmt.Sprintf("%sQ%d", year, (month-1)/3+1)
}

// SplitMonth returns the year and month number of a month key.
// It reports false for non-month keys and months outside 1..12.
func SplitMonth(key string) (string, int, bool) {
	if Classify(key) != schema.MonthGranularity {
		return "", 0, false
	}
	month, err := strconv.Atoi(key[5:7])
	if err != nil || month < 1 || month > 12 {
		return "", 0, false
	}
	return key[:4], month, true
}

// tuple maps a key to its numeric (year, sub-period) ordering tuple.
func tuple(key string) (int, int, bool) {
	g := Classify(key)
	if g == schema.OtherGranularity {
		return 0, 0, false
	}
	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0, 0, false
	}
	switch g {
	case schema.QuarterGranularity:
		return year, int(key[5] - '0'), true
	case schema.MonthGranularity:
		month, err := strconv.Atoi(key[5:7])
		if err != nil {
			return 0, 0, false
		}
		return year, month, true
	default:
		return year, 0, true
	}
}

// Compare orders two keys of the same granularity by their numeric tuple.
// Keys that cannot be parsed fall back to string comparison.
func Compare(a, b string) int {
	ya, sa, okA := tuple(a)
	yb, sb, okB := tuple(b)
	if !okA || !okB {
		return strings.Compare(a, b)
	}
	if c := cmp.Compare(ya, yb); c != 0 {
		return c
	}
	return cmp.Compare(sa, sb)
}

// Matches reports whether key has the shape of granularity g.
func Matches(key string, g schema.Granularity) bool {
	return Classify(key) == g
}
