package game

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Amortizing loan ledger. Credit is extended against realized daily
// income; every installment is split into interest and principal at
// the loan's fixed monthly rate.

// creditLimit is total borrowing capacity minus what is already
// outstanding on active loans.
func creditLimit(save *SaveData) int64 {
	limit := save.Finance.DailyIncome * CreditLimitDays
	for _, loan := range save.Finance.Loans {
		if loan.Status == LoanStatusActive {
			limit -= loan.Outstanding
		}
	}
	if limit < 0 {
		return 0
	}
	return limit
}

func (s *Service) takeLoan(save *SaveData, principal int64, tenorYears int, autoPay bool) (*Loan, error) {
	if save.Finance.DailyIncome <= 0 {
		return nil, ErrNoIncome
	}
	if principal < MinLoanPrincipal {
		return nil, fmt.Errorf("%w: minimum principal is %d", ErrBelowMinimum, MinLoanPrincipal)
	}
	annualRate, err := AnnualRateForTenor(tenorYears)
	if err != nil {
		return nil, err
	}
	if limit := creditLimit(save); principal > limit {
		return nil, fmt.Errorf("%w: limit %d, requested %d", ErrCreditLimit, limit, principal)
	}

	monthlyRate := annualRate / 12
	months := tenorYears * 12
	loan := &Loan{
		ID:                 uuid.NewString(),
		Principal:          principal,
		Outstanding:        principal,
		MonthlyInstallment: MonthlyInstallment(principal, monthlyRate, months),
		RemainingMonths:    months,
		TenorYears:         tenorYears,
		MonthlyRate:        monthlyRate,
		StartDate:          save.GameTime,
		NextDueDate:        save.GameTime.AddDate(0, 1, 0),
		Status:             LoanStatusActive,
		AutoPay:            autoPay,
	}
	save.Finance.Loans = append(save.Finance.Loans, loan)
	save.Finance.Cash += principal
	s.log.Info("loan disbursed", "loan", loan.ID, "principal", principal, "tenor_years", tenorYears)
	return loan, nil
}

// processInstallment pays exactly one installment plus any late
// penalty. The due date advances by one calendar month regardless of
// when the payment lands.
func (s *Service) processInstallment(save *SaveData, loan *Loan) error {
	if loan.Status != LoanStatusActive {
		return ErrLoanClosed
	}

	var penalty int64
	if daysLate := WholeDaysBetween(loan.NextDueDate, save.GameTime); daysLate > 0 {
		penalty = LatePenalty(loan.MonthlyInstallment, daysLate)
	}
	total := loan.MonthlyInstallment + penalty
	if save.Finance.Cash < total {
		return fmt.Errorf("%w: installment %d, cash %d", ErrInsufficientCash, total, save.Finance.Cash)
	}

	interest := int64(math.Floor(float64(loan.Outstanding) * loan.MonthlyRate))
	principalPortion := loan.MonthlyInstallment - interest
	if principalPortion < 0 {
		principalPortion = 0
	}
	if principalPortion > loan.Outstanding {
		principalPortion = loan.Outstanding
	}

	save.Finance.Cash -= total
	loan.Outstanding -= principalPortion
	loan.RemainingMonths--
	loan.NextDueDate = loan.NextDueDate.AddDate(0, 1, 0)
	stamp := StampOfMonth(save.GameTime)
	loan.LastPaidMonth = &stamp
	loan.History = append(loan.History, LoanEntry{
		PaidAt:    save.GameTime,
		Amount:    total,
		Interest:  interest,
		Principal: principalPortion,
		Penalty:   penalty,
	})

	if loan.RemainingMonths <= 0 || loan.Outstanding <= LoanDustThreshold {
		loan.Outstanding = 0
		loan.Status = LoanStatusPaid
		s.log.Info("loan paid off", "loan", loan.ID)
	}
	return nil
}

// payLoan makes up to months manual payments, stopping early when the
// loan closes.
func (s *Service) payLoan(save *SaveData, loanID string, months int) (*Loan, error) {
	loan := findLoan(save, loanID)
	if loan == nil {
		return nil, fmt.Errorf("%w: loan %s", ErrNotFound, loanID)
	}
	if months < 1 {
		months = 1
	}
	for i := 0; i < months && loan.Status == LoanStatusActive; i++ {
		if err := s.processInstallment(save, loan); err != nil {
			return nil, err
		}
	}
	return loan, nil
}

// autoPayLoans runs on the 5th of each virtual month. A loan pays at
// most once per month and only when cash covers the installment plus a
// safety buffer of daily income.
func (s *Service) autoPayLoans(save *SaveData) {
	if save.GameTime.Day() != AutoPayDayOfMonth {
		return
	}
	month := StampOfMonth(save.GameTime)
	for _, loan := range save.Finance.Loans {
		if loan.Status != LoanStatusActive || !loan.AutoPay {
			continue
		}
		if loan.LastPaidMonth != nil && loan.LastPaidMonth.Equal(month) {
			continue
		}
		buffer := save.Finance.DailyIncome * AutoPayBufferDays
		if save.Finance.Cash < loan.MonthlyInstallment+buffer {
			loan.MissedPayments++
			s.log.Warn("auto-pay skipped", "loan", loan.ID, "cash", save.Finance.Cash, "needed", loan.MonthlyInstallment+buffer)
			continue
		}
		if err := s.processInstallment(save, loan); err != nil {
			s.log.Warn("auto-pay failed", "loan", loan.ID, "error", err)
		}
	}
}

func findLoan(save *SaveData, id string) *Loan {
	for _, l := range save.Finance.Loans {
		if l.ID == id {
			return l
		}
	}
	return nil
}
