package game

import (
	"context"
	"errors"
	"testing"
)

func TestTakeLoanEligibility(t *testing.T) {
	svc, _ := newTestService(51)
	save := newTestSave()

	if _, err := svc.takeLoan(save, 100_000_000, 3, false); !errors.Is(err, ErrNoIncome) {
		t.Fatalf("no-income err got %v", err)
	}

	save.Finance.DailyIncome = 10_000_000
	if _, err := svc.takeLoan(save, 5_000_000, 3, false); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("min principal err got %v", err)
	}
	if _, err := svc.takeLoan(save, 100_000_000, 6, false); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("tenor err got %v", err)
	}
	// Limit is daily income times 100: 1B here.
	if _, err := svc.takeLoan(save, 1_100_000_000, 3, false); !errors.Is(err, ErrCreditLimit) {
		t.Fatalf("credit limit err got %v", err)
	}
}

func TestTakeLoanDisburses(t *testing.T) {
	svc, _ := newTestService(52)
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000
	cashBefore := save.Finance.Cash

	loan, err := svc.takeLoan(save, 100_000_000, 3, true)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if save.Finance.Cash != cashBefore+100_000_000 {
		t.Fatalf("cash got %d", save.Finance.Cash)
	}
	// 15% a year over 36 months.
	if loan.MonthlyInstallment != 3_466_533 {
		t.Fatalf("installment got %d want 3466533", loan.MonthlyInstallment)
	}
	if !loan.NextDueDate.Equal(save.GameTime.AddDate(0, 1, 0)) {
		t.Fatal("first due date should be one month out")
	}
	if loan.Outstanding != 100_000_000 || loan.RemainingMonths != 36 {
		t.Fatalf("ledger: %+v", loan)
	}
}

func TestCreditLimitSubtractsOutstanding(t *testing.T) {
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000
	save.Finance.Loans = []*Loan{
		{Status: LoanStatusActive, Outstanding: 400_000_000},
		{Status: LoanStatusPaid, Outstanding: 999_000_000},
	}
	if got := creditLimit(save); got != 600_000_000 {
		t.Fatalf("limit got %d want 600000000", got)
	}

	save.Finance.Loans[0].Outstanding = 2_000_000_000
	if got := creditLimit(save); got != 0 {
		t.Fatalf("overextended limit got %d want 0", got)
	}
}

func TestLoanFullAmortization(t *testing.T) {
	svc, _ := newTestService(53)
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000

	loan, err := svc.takeLoan(save, 100_000_000, 3, false)
	if err != nil {
		t.Fatal(err)
	}

	paid, err := svc.payLoan(save, loan.ID, 36)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != LoanStatusPaid {
		t.Fatalf("status got %q", paid.Status)
	}
	if paid.Outstanding != 0 || paid.RemainingMonths != 0 {
		t.Fatalf("ledger after payoff: %+v", paid)
	}
	if len(paid.History) != 36 {
		t.Fatalf("history got %d entries want 36", len(paid.History))
	}
	// Early payments are interest-heavy, late ones principal-heavy.
	if paid.History[0].Interest <= paid.History[35].Interest {
		t.Fatal("interest share should shrink over the schedule")
	}

	if _, err := svc.payLoan(save, loan.ID, 1); err != nil {
		t.Fatalf("paying a closed loan should no-op, got %v", err)
	}
}

func TestProcessInstallmentLatePenalty(t *testing.T) {
	svc, _ := newTestService(54)
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000

	loan, err := svc.takeLoan(save, 100_000_000, 3, false)
	if err != nil {
		t.Fatal(err)
	}

	// Ten days past due.
	save.GameTime = loan.NextDueDate.AddDate(0, 0, 10)
	cashBefore := save.Finance.Cash
	if err := svc.processInstallment(save, loan); err != nil {
		t.Fatalf("pay: %v", err)
	}
	penalty := LatePenalty(loan.MonthlyInstallment, 10)
	if got := cashBefore - save.Finance.Cash; got != loan.MonthlyInstallment+penalty {
		t.Fatalf("charged %d want %d", got, loan.MonthlyInstallment+penalty)
	}
	if loan.History[0].Penalty != penalty {
		t.Fatalf("recorded penalty %d want %d", loan.History[0].Penalty, penalty)
	}
}

func TestProcessInstallmentInsufficientCash(t *testing.T) {
	svc, _ := newTestService(55)
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000

	loan, err := svc.takeLoan(save, 100_000_000, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	save.Finance.Cash = loan.MonthlyInstallment - 1

	if err := svc.processInstallment(save, loan); !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("err got %v", err)
	}
	// Failed payment leaves the ledger alone.
	if loan.Outstanding != 100_000_000 || loan.RemainingMonths != 36 || len(loan.History) != 0 {
		t.Fatalf("ledger mutated on failure: %+v", loan)
	}
}

func TestAutoPayRunsOnDayFiveOnly(t *testing.T) {
	svc, _ := newTestService(56)
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000

	loan, err := svc.takeLoan(save, 100_000_000, 3, true)
	if err != nil {
		t.Fatal(err)
	}

	svc.autoPayLoans(save) // Jan 1: not due day
	if len(loan.History) != 0 {
		t.Fatal("auto-pay ran off schedule")
	}

	save.GameTime = save.GameTime.AddDate(0, 1, 4) // Feb 5
	svc.autoPayLoans(save)
	if len(loan.History) != 1 {
		t.Fatal("auto-pay did not run on the 5th")
	}

	// Same month, guard holds.
	svc.autoPayLoans(save)
	if len(loan.History) != 1 {
		t.Fatal("auto-pay paid twice in one month")
	}

	save.GameTime = save.GameTime.AddDate(0, 1, 0) // Mar 5
	svc.autoPayLoans(save)
	if len(loan.History) != 2 {
		t.Fatal("auto-pay skipped the next month")
	}
}

func TestAutoPaySkipsWithoutBuffer(t *testing.T) {
	svc, _ := newTestService(57)
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000

	loan, err := svc.takeLoan(save, 100_000_000, 3, true)
	if err != nil {
		t.Fatal(err)
	}
	manual, err := svc.takeLoan(save, 50_000_000, 2, false)
	if err != nil {
		t.Fatal(err)
	}

	// Covers the installment but not the three-day income buffer.
	save.Finance.Cash = loan.MonthlyInstallment + 2*save.Finance.DailyIncome
	save.GameTime = save.GameTime.AddDate(0, 1, 4) // Feb 5
	svc.autoPayLoans(save)

	if loan.MissedPayments != 1 {
		t.Fatalf("missed payments got %d want 1", loan.MissedPayments)
	}
	if len(loan.History) != 0 {
		t.Fatal("buffered-out loan still paid")
	}
	if len(manual.History) != 0 || manual.MissedPayments != 0 {
		t.Fatalf("manual loan touched by auto-pay: %+v", manual)
	}
}

func TestSetLoanAutoPay(t *testing.T) {
	svc, store := newTestService(59)
	ctx := context.Background()
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000
	if err := store.Save(ctx, "s", save); err != nil {
		t.Fatal(err)
	}

	loan, err := svc.TakeLoan(ctx, "s", 100_000_000, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	toggled, err := svc.SetLoanAutoPay(ctx, "s", loan.ID, true)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.AutoPay {
		t.Fatal("auto-pay not enabled")
	}

	if _, err := svc.SetLoanAutoPay(ctx, "s", "nope", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing loan err got %v", err)
	}
}

func TestLoanDustCloses(t *testing.T) {
	svc, _ := newTestService(58)
	save := newTestSave()
	save.Finance.DailyIncome = 10_000_000

	loan, err := svc.takeLoan(save, 100_000_000, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	loan.Outstanding = LoanDustThreshold
	loan.RemainingMonths = 12

	if err := svc.processInstallment(save, loan); err != nil {
		t.Fatal(err)
	}
	if loan.Status != LoanStatusPaid || loan.Outstanding != 0 {
		t.Fatalf("dust loan not closed: %+v", loan)
	}
}
