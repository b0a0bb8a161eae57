package game

import (
	"testing"
	"time"
)

func TestAnnualRateForTenor(t *testing.T) {
	tests := []struct {
		years int
		want  float64
	}{
		{1, 0.07},
		{2, 0.10},
		{3, 0.15},
		{4, 0.18},
		{5, 0.21},
	}
	for _, tc := range tests {
		got, err := AnnualRateForTenor(tc.years)
		if err != nil {
			t.Fatalf("tenor %d: %v", tc.years, err)
		}
		if got != tc.want {
			t.Fatalf("tenor %d: got %v want %v", tc.years, got, tc.want)
		}
	}
	if _, err := AnnualRateForTenor(0); err == nil {
		t.Fatal("expected error for tenor 0")
	}
	if _, err := AnnualRateForTenor(6); err == nil {
		t.Fatal("expected error for tenor 6")
	}
}

func TestMonthlyInstallment(t *testing.T) {
	got := MonthlyInstallment(100_000_000, 0.15/12, 36)
	if got != 3_466_533 {
		t.Fatalf("installment got %d want 3466533", got)
	}

	got = MonthlyInstallment(12_000_000, 0.07/12, 12)
	if got != 1_038_321 {
		t.Fatalf("installment got %d want 1038321", got)
	}

	// Zero rate falls back to straight-line.
	if got := MonthlyInstallment(1_200, 0, 12); got != 100 {
		t.Fatalf("zero-rate installment got %d want 100", got)
	}
}

func TestLatePenalty(t *testing.T) {
	if got := LatePenalty(1_000_000, 0); got != 0 {
		t.Fatalf("on-time penalty got %d", got)
	}
	if got := LatePenalty(1_000_000, 10); got != 10_000 {
		t.Fatalf("10 days late got %d want 10000", got)
	}
	// Capped at 30% no matter how late.
	if got := LatePenalty(1_000_000, 5_000); got != 300_000 {
		t.Fatalf("capped penalty got %d want 300000", got)
	}
}

func TestCancelPenaltyRate(t *testing.T) {
	tests := []struct {
		progress float64
		want     float64
	}{
		{0, 0.20},
		{0.5, 0.20},
		{0.51, 0.40},
		{0.99, 0.40},
		{1.0, 0},
	}
	for _, tc := range tests {
		if got := CancelPenaltyRate(tc.progress); got != tc.want {
			t.Fatalf("progress %v: got %v want %v", tc.progress, got, tc.want)
		}
	}
}

func TestStamps(t *testing.T) {
	a := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)
	if !StampOfDay(a).Equal(StampOfDay(b)) {
		t.Fatal("same calendar day should stamp equal")
	}
	c := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if StampOfDay(a).Equal(StampOfDay(c)) {
		t.Fatal("different days should not stamp equal")
	}
	if StampOfMonth(a) != (MonthStamp{Year: 2026, Month: 3}) {
		t.Fatalf("month stamp got %+v", StampOfMonth(a))
	}
}

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		end  time.Time
		want int
	}{
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), 12},
		{time.Date(2028, 7, 1, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tc := range tests {
		if got := MonthsBetween(start, tc.end); got != tc.want {
			t.Fatalf("MonthsBetween to %v: got %d want %d", tc.end, got, tc.want)
		}
	}
}

func TestCalendarDaysBetween(t *testing.T) {
	// 23:50 to 00:10 next day is one calendar day despite 20 minutes
	// of elapsed time.
	from := time.Date(2026, 1, 1, 23, 50, 0, 0, time.UTC)
	to := time.Date(2026, 1, 2, 0, 10, 0, 0, time.UTC)
	if got := CalendarDaysBetween(from, to); got != 1 {
		t.Fatalf("got %d want 1", got)
	}
	if got := WholeDaysBetween(from, to); got != 0 {
		t.Fatalf("whole days got %d want 0", got)
	}
	if got := CalendarDaysBetween(to, from); got != 0 {
		t.Fatalf("reversed got %d want 0", got)
	}
}

func TestRoundHa(t *testing.T) {
	if got := roundHa(0.1 + 0.2); got != 0.3 {
		t.Fatalf("got %v want 0.3", got)
	}
	if got := roundHa(1.00005); got != 1.0001 {
		t.Fatalf("got %v want 1.0001", got)
	}
}
