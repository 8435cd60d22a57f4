package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DayKey names one slot in the content calendar ("day1", "day2", ...).
// Keys are ordered by their integer suffix, not lexically.
type DayKey string

// FirstDay is the fallback slot whenever a stored key cannot be parsed.
const FirstDay DayKey = "day1"

// Ordinal returns the integer suffix of the key.
// Parameters: none.
// Returns:
//   - int: the day number.
//   - bool: false if the key is not of the form "dayN".
func (d DayKey) Ordinal() (int, bool) {
	s := string(d)
	if !strings.HasPrefix(s, "day") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "day"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Next returns the key following this one. An unparseable key advances to
// the first day rather than failing.
func (d DayKey) Next() DayKey {
	n, ok := d.Ordinal()
	if !ok {
		return FirstDay
	}
	return DayKeyFor(n + 1)
}

// Before reports whether d orders before other by numeric suffix.
// Unparseable keys order before everything.
func (d DayKey) Before(other DayKey) bool {
	a, okA := d.Ordinal()
	b, okB := other.Ordinal()
	if !okA {
		return okB
	}
	if !okB {
		return false
	}
	return a < b
}

// DayKeyFor builds the key for a day number.
func DayKeyFor(n int) DayKey {
	return DayKey(fmt.Sprintf("day%d", n))
}
