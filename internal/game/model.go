package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// One virtual day per ten real minutes.
	DefaultTimeRatio = 144.0

	M2PerHa = 10_000

	StartingCash = int64(150_000_000_000)

	MaxOccupancyFactor = 0.97

	DailyLatePenaltyRate = 0.001
	MaxLatePenaltyRate   = 0.30

	AutoPayDayOfMonth  = 5
	AutoPayBufferDays  = 3
	CreditLimitDays    = 100
	MinLoanPrincipal   = int64(10_000_000)
	LoanDustThreshold  = int64(1_000)
	MinLoanTenorYears  = 1
	MaxLoanTenorYears  = 5
	MinLandSellM2      = int64(500)
	MaxLandSellRatio   = 1.3
	MaxPropertyRatio   = 1.9
	MinLandPurchaseHa  = 0.1
	SaveSchemaVersion  = 2
)

var (
	ErrSaveNotFound     = errors.New("save slot not found")
	ErrSaveCorrupt      = errors.New("save data is corrupt")
	ErrClockNotReady    = errors.New("game clock not initialized")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrInsufficientLand = errors.New("insufficient land at location")
	ErrConfigMissing    = errors.New("missing catalog entry")
	ErrUnknownCity      = errors.New("unknown city")
	ErrNotFound         = errors.New("entity not found")
	ErrBelowMinimum     = errors.New("below minimum size")
	ErrUnrealisticPrice = errors.New("unrealistic pricing, no buyers")
	ErrCreditLimit      = errors.New("principal exceeds credit limit")
	ErrNoIncome         = errors.New("no daily income to borrow against")
	ErrNotRentable      = errors.New("property below minimum rental scale")
	ErrAlreadyListed    = errors.New("already listed for sale")
	ErrLoanClosed       = errors.New("loan already paid off")
)

// DayStamp identifies one virtual calendar day. Stamps are compared as
// tuples, never as formatted strings.
type DayStamp struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type MonthStamp struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func StampOfDay(t time.Time) DayStamp {
	return DayStamp{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

func StampOfMonth(t time.Time) MonthStamp {
	return MonthStamp{Year: t.Year(), Month: int(t.Month())}
}

func (d DayStamp) Equal(o DayStamp) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

func (m MonthStamp) Equal(o MonthStamp) bool {
	return m.Year == o.Year && m.Month == o.Month
}

// MonthsBetween counts whole calendar-month steps from a to b,
// ignoring the day component.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// WholeDaysBetween is the listing-age measure: full 24h periods of
// virtual time elapsed since from.
func WholeDaysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// CalendarDaysBetween normalizes both ends to midnight before diffing,
// so construction progress ticks on date change rather than on
// fractional elapsed time.
func CalendarDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

// AnnualRateForTenor is the fixed lending rate table.
func AnnualRateForTenor(years int) (float64, error) {
	switch years {
	case 1:
		return 0.07, nil
	case 2:
		return 0.10, nil
	case 3:
		return 0.15, nil
	case 4:
		return 0.18, nil
	case 5:
		return 0.21, nil
	}
	return 0, fmt.Errorf("%w: loan tenor must be %d-%d years, got %d", ErrBelowMinimum, MinLoanTenorYears, MaxLoanTenorYears, years)
}

// MonthlyInstallment computes the fixed amortizing payment
// A = P*i*(1+i)^n / ((1+i)^n - 1).
func MonthlyInstallment(principal int64, monthlyRate float64, months int) int64 {
	if months <= 0 {
		return principal
	}
	if monthlyRate <= 0 {
		return int64(math.Ceil(float64(principal) / float64(months)))
	}
	growth := math.Pow(1+monthlyRate, float64(months))
	return int64(math.Round(float64(principal) * monthlyRate * growth / (growth - 1)))
}

// LatePenalty applies 0.1% of the installment per overdue day, capped
// at 30%.
func LatePenalty(installment int64, daysLate int) int64 {
	if daysLate <= 0 {
		return 0
	}
	rate := float64(daysLate) * DailyLatePenaltyRate
	if rate > MaxLatePenaltyRate {
		rate = MaxLatePenaltyRate
	}
	return int64(math.Floor(float64(installment) * rate))
}

// CancelPenaltyRate is the refund haircut for abandoning a build.
func CancelPenaltyRate(progress float64) float64 {
	switch {
	case progress <= 0.5:
		return 0.20
	case progress < 1.0:
		return 0.40
	}
	return 0
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundHa trims float noise from hectare arithmetic to 4 decimals.
func roundHa(v float64) float64 {
	return math.Round(v*10000) / 10000
}
