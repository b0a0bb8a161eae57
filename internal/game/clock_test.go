package game

import (
	"testing"
	"time"
)

func TestAdvanceClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	// At ratio 144, ten real minutes is one virtual day.
	got := AdvanceClock(start, 10*time.Minute, 144)
	if want := start.Add(24 * time.Hour); !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}

	if got := AdvanceClock(start, 0, 144); !got.Equal(start) {
		t.Fatalf("zero elapsed moved clock to %v", got)
	}
	if got := AdvanceClock(start, -time.Minute, 144); !got.Equal(start) {
		t.Fatalf("negative elapsed moved clock to %v", got)
	}
	if got := AdvanceClock(start, time.Minute, 0); !got.Equal(start) {
		t.Fatalf("zero ratio moved clock to %v", got)
	}
}

func TestDayAndMonthCrossed(t *testing.T) {
	before := time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)
	after := before.Add(2 * time.Hour)
	if !DayCrossed(before, after) {
		t.Fatal("expected day crossing")
	}
	if !MonthCrossed(before, after) {
		t.Fatal("expected month crossing")
	}

	sameDay := before.Add(30 * time.Minute)
	if DayCrossed(before, sameDay) {
		t.Fatal("unexpected day crossing")
	}
	if MonthCrossed(before, sameDay) {
		t.Fatal("unexpected month crossing")
	}
}
