package domain

import "testing"

func TestMaxRecordedDay(t *testing.T) {
	state := NewTrackingState()
	if _, ok := state.MaxRecordedDay(); ok {
		t.Fatal("empty state should have no recorded day")
	}

	state.AppendPost("channel1", &PostRecord{Day: "day2"})
	state.AppendPost("channel2", &PostRecord{Day: "day10"})
	state.AppendPost("channel1", &PostRecord{Day: "day3"})
	state.AppendPost("channel1", &PostRecord{Day: "broken"})

	max, ok := state.MaxRecordedDay()
	if !ok {
		t.Fatal("expected a recorded day")
	}
	if max != "day10" {
		t.Errorf("max day = %s, want day10", max)
	}
}

func TestMaxRecordedDayAllUnparseable(t *testing.T) {
	state := NewTrackingState()
	state.AppendPost("channel1", &PostRecord{Day: "???"})

	if _, ok := state.MaxRecordedDay(); ok {
		t.Error("unparseable days must not count as recorded")
	}
}

func TestUnitIDHelpers(t *testing.T) {
	unit := UnitForAccount("account3")
	if unit != "instagram_account3" {
		t.Errorf("UnitForAccount = %s", unit)
	}
	if !IsInstagramUnit(unit) {
		t.Error("tagged unit should be recognized as Instagram")
	}
	if IsInstagramUnit("channel3") {
		t.Error("channel id mistaken for Instagram unit")
	}
	if got := AccountForUnit(unit); got != "account3" {
		t.Errorf("AccountForUnit = %s, want account3", got)
	}
	if got := ChannelForAccount("account2"); got != "channel2" {
		t.Errorf("ChannelForAccount = %s, want channel2", got)
	}
}
