package domain

import "testing"

func TestDayKeyOrdinal(t *testing.T) {
	testCases := []struct {
		name string
		key  DayKey
		want int
		ok   bool
	}{
		{name: "first day", key: "day1", want: 1, ok: true},
		{name: "double digits", key: "day12", want: 12, ok: true},
		{name: "missing prefix", key: "12", ok: false},
		{name: "garbage suffix", key: "dayX", ok: false},
		{name: "zero", key: "day0", ok: false},
		{name: "empty", key: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.key.Ordinal()
			if ok != tc.ok {
				t.Fatalf("Ordinal(%q) ok = %v, want %v", tc.key, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("Ordinal(%q) = %d, want %d", tc.key, got, tc.want)
			}
		})
	}
}

func TestDayKeyNext(t *testing.T) {
	if got := DayKey("day3").Next(); got != "day4" {
		t.Errorf("day3.Next() = %s, want day4", got)
	}
	// Unparseable keys restart the cycle instead of failing
	if got := DayKey("banana").Next(); got != FirstDay {
		t.Errorf("banana.Next() = %s, want %s", got, FirstDay)
	}
}

func TestDayKeyBefore(t *testing.T) {
	// Numeric ordering, not lexical: day2 < day10
	if !DayKey("day2").Before("day10") {
		t.Error("day2 should order before day10")
	}
	if DayKey("day10").Before("day2") {
		t.Error("day10 should not order before day2")
	}
	if !DayKey("junk").Before("day1") {
		t.Error("unparseable keys should order before parseable ones")
	}
}
