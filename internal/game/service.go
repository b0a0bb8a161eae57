package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"
)

// Store persists whole save documents by slot name.
type Store interface {
	Load(ctx context.Context, slot string) (*SaveData, error)
	Save(ctx context.Context, slot string, save *SaveData) error
}

// Service owns all game mutations. Every operation is
// load-mutate-persist under one mutex, so the save document always
// moves from one consistent state to the next.
type Service struct {
	store Store
	log   *slog.Logger
	ratio float64

	mu     sync.Mutex
	randMu sync.Mutex
	rand   *mathrand.Rand
}

func NewService(store Store, logger *slog.Logger, ratio float64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ratio <= 0 {
		ratio = DefaultTimeRatio
	}
	return &Service{
		store: store,
		log:   logger,
		ratio: ratio,
		rand:  mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) nextFloat() float64 {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Float64()
}

// NewGame seeds a fresh save in the slot: starting cash, the Semarang
// home plot, and an expansion market.
func (s *Service) NewGame(ctx context.Context, slot, companyName, ceoName string) (*SaveData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrBelowMinimum)
	}

	start := time.Date(2026, time.January, 1, 8, 0, 0, 0, time.UTC)
	home, err := CityByID("semarang")
	if err != nil {
		return nil, err
	}
	const homeHa = 2.0
	homeCost := int64(homeHa * M2PerHa * float64(home.BasePrice))

	save := &SaveData{
		CompanyName: companyName,
		CEOName:     strings.TrimSpace(ceoName),
		Mode:        "sandbox",
		Version:     SaveSchemaVersion,
		GameTime:    start,
		Finance: Finance{
			Cash:        StartingCash,
			AssetIncome: []AssetIncome{},
			History:     []DayRecord{},
			Loans:       []*Loan{},
		},
		Land: Land{
			Total: homeHa,
			Locations: []*LandLocation{
				{ID: home.ID, Name: home.Name, Total: homeHa, Cost: homeCost},
			},
			SellQueue: []*LandSellOrder{},
		},
		Assets:            []*Asset{},
		ConstructionQueue: []*ConstructionProject{},
		Market: MarketState{
			Cycle:          CycleExpansion,
			CycleStart:     start,
			DurationMonths: 24,
			Volatility:     0.02,
		},
	}
	if err := s.store.Save(ctx, slot, save); err != nil {
		return nil, err
	}
	s.log.Info("new game created", "slot", slot, "company", companyName)
	return save, nil
}

// withSave is the single mutation path: load, normalize, apply, then
// write the document back. fn failing leaves the stored save untouched.
func (s *Service) withSave(ctx context.Context, slot string, fn func(*SaveData) error) (*SaveData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	save, err := s.store.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	if err := normalizeSave(save); err != nil {
		return nil, err
	}
	if err := fn(save); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, slot, save); err != nil {
		return nil, err
	}
	return save, nil
}

// normalizeSave validates the loaded document and migrates older
// schema versions in place.
func normalizeSave(save *SaveData) error {
	if save == nil || save.GameTime.IsZero() {
		return fmt.Errorf("%w: missing game time", ErrSaveCorrupt)
	}
	if save.Version > SaveSchemaVersion {
		return fmt.Errorf("%w: save version %d is newer than supported %d", ErrSaveCorrupt, save.Version, SaveSchemaVersion)
	}
	if save.Version < SaveSchemaVersion {
		migrateSave(save)
	}

	if save.Land.SellQueue == nil {
		save.Land.SellQueue = []*LandSellOrder{}
	}
	if save.Assets == nil {
		save.Assets = []*Asset{}
	}
	if save.ConstructionQueue == nil {
		save.ConstructionQueue = []*ConstructionProject{}
	}
	if save.Finance.Loans == nil {
		save.Finance.Loans = []*Loan{}
	}
	for _, asset := range save.Assets {
		if asset.Finance.Mode == "" {
			asset.Finance.Mode = FinanceModeIdle
		}
	}
	for _, loan := range save.Finance.Loans {
		if loan.MonthlyRate < 0 {
			loan.MonthlyRate = 0
		}
	}
	for _, p := range save.ConstructionQueue {
		if p.Cost < 0 {
			p.Cost = 0
		}
	}
	return nil
}

func migrateSave(save *SaveData) {
	// v1 predates sale listings and per-asset finance modes.
	if save.Land.SellQueue == nil {
		save.Land.SellQueue = []*LandSellOrder{}
	}
	for _, asset := range save.Assets {
		if asset.Finance.Mode == "" {
			asset.Finance.Mode = FinanceModeIdle
		}
		if asset.Finance.Sell != nil && asset.Finance.Sell.Status == "" {
			asset.Finance.Sell = nil
		}
	}
	save.Version = SaveSchemaVersion
}

// State returns the current save without mutating it.
func (s *Service) State(ctx context.Context, slot string) (*SaveData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	save, err := s.store.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	if err := normalizeSave(save); err != nil {
		return nil, err
	}
	return save, nil
}

func (s *Service) SetPaused(ctx context.Context, slot string, paused bool) (*SaveData, error) {
	return s.withSave(ctx, slot, func(save *SaveData) error {
		save.Paused = paused
		return nil
	})
}

// AdvanceTime applies one real-time tick: the clock moves by elapsed
// times the acceleration ratio, and if a virtual calendar day boundary
// was crossed, exactly one daily pass runs.
func (s *Service) AdvanceTime(ctx context.Context, slot string, elapsed time.Duration) (*TickResult, error) {
	result := &TickResult{}
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		if save.Paused {
			result.GameTime = save.GameTime
			result.Cash = save.Finance.Cash
			return nil
		}
		save.GameTime = AdvanceClock(save.GameTime, elapsed, s.ratio)

		today := StampOfDay(save.GameTime)
		if save.LastProcessedDay == nil || !save.LastProcessedDay.Equal(today) {
			s.processDay(save, today)
			result.DayProcessed = true
			result.Day = &today
		}

		result.GameTime = save.GameTime
		result.Cash = save.Finance.Cash
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// processDay runs the daily pipeline exactly once per calendar day.
// The day marker is written before any handler so a mid-pass crash can
// never double-apply a day after reload.
func (s *Service) processDay(save *SaveData, today DayStamp) {
	save.LastProcessedDay = &today

	month := StampOfMonth(save.GameTime)
	if save.LastMarketMonth == nil || !save.LastMarketMonth.Equal(month) {
		save.LastMarketMonth = &month
		s.updateMarketCycle(save)
	}

	completed := advanceConstruction(save)
	for _, asset := range completed {
		s.log.Info("construction completed", "asset", asset.ID, "type", asset.Name, "units", asset.Units)
	}

	s.settleLandSales(save)
	s.settlePropertySales(save)

	save.Finance.DailyIncome = 0
	save.Finance.DailyExpense = 0
	save.Finance.AssetIncome = save.Finance.AssetIncome[:0]

	if save.LastOccupancyMonth == nil || !save.LastOccupancyMonth.Equal(month) {
		save.LastOccupancyMonth = &month
		s.monthlyOccupancyUpdate(save)
	}
	dailyRentFlows(save)
	s.autoPayLoans(save)

	net := save.Finance.DailyIncome - save.Finance.DailyExpense
	save.Finance.Cash += net
	save.Finance.History = append(save.Finance.History, DayRecord{
		Date:    today,
		Income:  save.Finance.DailyIncome,
		Expense: save.Finance.DailyExpense,
		Net:     net,
	})
}

// ===== Land operations =====

func (s *Service) LandPrices(ctx context.Context, slot string) ([]LandPriceView, error) {
	var views []LandPriceView
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		views, err = s.landPriceBoard(save)
		return err
	})
	return views, err
}

func (s *Service) LandPriceFor(ctx context.Context, slot, cityID string) (*LandPrice, error) {
	var quote *LandPrice
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		quote, err = s.landPriceDetail(save, cityID)
		return err
	})
	return quote, err
}

// BuyLand purchases hectares in a city at the current monthly quote
// and folds them into the holding there.
func (s *Service) BuyLand(ctx context.Context, slot, cityID string, ha float64) (*LandLocation, error) {
	var bought *LandLocation
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		if ha < MinLandPurchaseHa {
			return fmt.Errorf("%w: minimum purchase is %.2f ha", ErrBelowMinimum, MinLandPurchaseHa)
		}
		city, err := CityByID(cityID)
		if err != nil {
			return err
		}
		quote, err := s.landPriceDetail(save, cityID)
		if err != nil {
			return err
		}
		cost := int64(math.Floor(float64(quote.FinalPrice) * ha * M2PerHa))
		if save.Finance.Cash < cost {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientCash, cost, save.Finance.Cash)
		}

		save.Finance.Cash -= cost
		loc := findLocation(save, cityID)
		if loc == nil {
			loc = &LandLocation{ID: city.ID, Name: city.Name}
			save.Land.Locations = append(save.Land.Locations, loc)
		}
		loc.Total = roundHa(loc.Total + ha)
		loc.Cost += cost
		resyncLandTotals(save)

		s.log.Info("land purchased", "city", cityID, "ha", ha, "cost", cost)
		bought = loc
		return nil
	})
	return bought, err
}

func (s *Service) LandROIFor(ctx context.Context, slot, cityID string, ha float64, years int) (*LandROIView, error) {
	var view *LandROIView
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		if years < 1 {
			years = 5
		}
		var err error
		view, err = s.landROI(save, cityID, ha, years)
		return err
	})
	return view, err
}

func (s *Service) SellLand(ctx context.Context, slot, cityID string, m2, pricePerM2 int64) (*LandSellOrder, error) {
	var order *LandSellOrder
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		order, err = s.listLandSale(save, cityID, m2, pricePerM2)
		return err
	})
	return order, err
}

func (s *Service) CancelLandSale(ctx context.Context, slot, orderID string) error {
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		return s.cancelLandSale(save, orderID)
	})
	return err
}

// ===== Construction operations =====

func (s *Service) StartProject(ctx context.Context, slot, propertyType, variant string, units, towers, floors int, locationID string) (*ConstructionProject, error) {
	var project *ConstructionProject
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		project, err = s.startProject(save, propertyType, variant, units, towers, floors, locationID)
		return err
	})
	return project, err
}

func (s *Service) CancelProject(ctx context.Context, slot, projectID string) (int64, error) {
	var refund int64
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		refund, err = s.cancelProject(save, projectID)
		return err
	})
	return refund, err
}

// ===== Rental operations =====

func (s *Service) SimulateRentFor(ctx context.Context, slot, assetID string, price int64) (*RentSimulation, error) {
	save, err := s.State(ctx, slot)
	if err != nil {
		return nil, err
	}
	asset := findAsset(save, assetID)
	if asset == nil {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
	}
	return SimulateRent(asset, price, s.nextFloat)
}

func (s *Service) SetRent(ctx context.Context, slot, assetID string, price int64) (*RentSimulation, error) {
	var sim *RentSimulation
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		sim, err = s.setRent(save, assetID, price)
		return err
	})
	return sim, err
}

func (s *Service) StopRent(ctx context.Context, slot, assetID string) error {
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		return s.stopRent(save, assetID)
	})
	return err
}

func (s *Service) AssetROI(ctx context.Context, slot, assetID string, months int) (*ROIProjection, error) {
	save, err := s.State(ctx, slot)
	if err != nil {
		return nil, err
	}
	asset := findAsset(save, assetID)
	if asset == nil {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
	}
	if months < 1 {
		months = 12
	}
	return roiProjection(asset, months)
}

// ===== Sale operations =====

func (s *Service) SimulateSaleFor(ctx context.Context, slot, assetID string, pricePerUnit int64) (*SaleSimulation, error) {
	save, err := s.State(ctx, slot)
	if err != nil {
		return nil, err
	}
	return s.simulateSale(save, assetID, pricePerUnit)
}

func (s *Service) SellProperty(ctx context.Context, slot, assetID string, pricePerUnit int64) (*PropertySale, error) {
	var sale *PropertySale
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		sale, err = s.listPropertySale(save, assetID, pricePerUnit)
		return err
	})
	return sale, err
}

func (s *Service) CancelPropertySale(ctx context.Context, slot, assetID string) error {
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		return s.cancelPropertySale(save, assetID)
	})
	return err
}

// ===== Loan operations =====

func (s *Service) TakeLoan(ctx context.Context, slot string, principal int64, tenorYears int, autoPay bool) (*Loan, error) {
	var loan *Loan
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		loan, err = s.takeLoan(save, principal, tenorYears, autoPay)
		return err
	})
	return loan, err
}

func (s *Service) PayLoan(ctx context.Context, slot, loanID string, months int) (*Loan, error) {
	var loan *Loan
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		var err error
		loan, err = s.payLoan(save, loanID, months)
		return err
	})
	return loan, err
}

func (s *Service) SetLoanAutoPay(ctx context.Context, slot, loanID string, enabled bool) (*Loan, error) {
	var loan *Loan
	_, err := s.withSave(ctx, slot, func(save *SaveData) error {
		l := findLoan(save, loanID)
		if l == nil {
			return fmt.Errorf("%w: loan %s", ErrNotFound, loanID)
		}
		if l.Status != LoanStatusActive {
			return ErrLoanClosed
		}
		l.AutoPay = enabled
		loan = l
		return nil
	})
	return loan, err
}

func (s *Service) CreditLimit(ctx context.Context, slot string) (int64, error) {
	save, err := s.State(ctx, slot)
	if err != nil {
		return 0, err
	}
	return creditLimit(save), nil
}

// ===== Reporting =====

// Report aggregates the finance history for the save's current virtual
// month and year.
func (s *Service) Report(ctx context.Context, slot string) (*FinanceReport, error) {
	save, err := s.State(ctx, slot)
	if err != nil {
		return nil, err
	}

	report := &FinanceReport{
		Cash:         save.Finance.Cash,
		DailyIncome:  save.Finance.DailyIncome,
		DailyExpense: save.Finance.DailyExpense,
		AssetIncome:  save.Finance.AssetIncome,
	}
	if n := len(save.Finance.History); n > 0 {
		report.LastDay = &save.Finance.History[n-1]
	}

	month := StampOfMonth(save.GameTime)
	year := save.GameTime.Year()
	for i := range save.Finance.History {
		rec := &save.Finance.History[i]
		if rec.Date.Year == year {
			report.YearlyIncome += rec.Income
			report.YearlyExpense += rec.Expense
		}
		if rec.Date.Year == month.Year && rec.Date.Month == month.Month {
			report.MonthlyIncome += rec.Income
			report.MonthlyExpense += rec.Expense
		}
	}
	return report, nil
}
