package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	mathrand "math/rand"
	"sync"
	"testing"
	"time"
)

// mapStore is the in-test Store: JSON round-trips like the real
// backends so saves never share pointers with callers.
type mapStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{slots: map[string][]byte{}}
}

func (m *mapStore) Load(_ context.Context, slot string) (*SaveData, error) {
	m.mu.Lock()
	raw, ok := m.slots[slot]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: slot %s", ErrSaveNotFound, slot)
	}
	var save SaveData
	if err := json.Unmarshal(raw, &save); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveCorrupt, err)
	}
	return &save, nil
}

func (m *mapStore) Save(_ context.Context, slot string, save *SaveData) error {
	raw, err := json.Marshal(save)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.slots[slot] = raw
	m.mu.Unlock()
	return nil
}

func newTestService(seed int64) (*Service, *mapStore) {
	store := newMapStore()
	svc := &Service{
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		ratio: DefaultTimeRatio,
		rand:  mathrand.New(mathrand.NewSource(seed)),
	}
	return svc, store
}

func newTestSave() *SaveData {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	return &SaveData{
		CompanyName: "Test Estates",
		Mode:        "sandbox",
		Version:     SaveSchemaVersion,
		GameTime:    start,
		Finance: Finance{
			Cash:    StartingCash,
			History: []DayRecord{},
			Loans:   []*Loan{},
		},
		Land: Land{
			Total: 2,
			Locations: []*LandLocation{
				{ID: "semarang", Name: "Semarang", Total: 2, Cost: 150_000_000_000},
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
}

func TestNewGameSeedsSave(t *testing.T) {
	svc, _ := newTestService(1)
	ctx := context.Background()

	save, err := svc.NewGame(ctx, "slot1", "Roost Property", "Kei")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if save.Finance.Cash != StartingCash {
		t.Fatalf("cash got %d want %d", save.Finance.Cash, StartingCash)
	}
	if len(save.Land.Locations) != 1 || save.Land.Locations[0].ID != "semarang" {
		t.Fatalf("unexpected starting land: %+v", save.Land.Locations)
	}
	if save.Land.Total != 2 {
		t.Fatalf("land total got %v want 2", save.Land.Total)
	}
	if save.Market.Cycle != CycleExpansion {
		t.Fatalf("market cycle got %s", save.Market.Cycle)
	}
	if save.Version != SaveSchemaVersion {
		t.Fatalf("version got %d", save.Version)
	}

	loaded, err := svc.State(ctx, "slot1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if loaded.CompanyName != "Roost Property" {
		t.Fatalf("company got %q", loaded.CompanyName)
	}

	if _, err := svc.State(ctx, "nope"); err == nil {
		t.Fatal("expected missing-slot error")
	}
}

func TestAdvanceTimeProcessesDayOnce(t *testing.T) {
	svc, store := newTestService(2)
	ctx := context.Background()
	if err := store.Save(ctx, "s", newTestSave()); err != nil {
		t.Fatal(err)
	}

	// First tick stamps the current day.
	res, err := svc.AdvanceTime(ctx, "s", 0)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if !res.DayProcessed {
		t.Fatal("expected first tick to process the day")
	}

	// Small ticks within the same virtual day are no-ops.
	for i := 0; i < 5; i++ {
		res, err = svc.AdvanceTime(ctx, "s", time.Second)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if res.DayProcessed {
			t.Fatalf("tick %d reprocessed the same day", i)
		}
	}

	// Ten real minutes at ratio 144 crosses into the next day.
	res, err = svc.AdvanceTime(ctx, "s", 10*time.Minute)
	if err != nil {
		t.Fatalf("day tick: %v", err)
	}
	if !res.DayProcessed {
		t.Fatal("expected day crossing to process")
	}

	save, err := svc.State(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if save.LastProcessedDay == nil || save.LastProcessedDay.Day != 2 {
		t.Fatalf("last processed day: %+v", save.LastProcessedDay)
	}
	if len(save.Finance.History) != 2 {
		t.Fatalf("history length got %d want 2", len(save.Finance.History))
	}
}

func TestAdvanceTimePausedHoldsClock(t *testing.T) {
	svc, store := newTestService(3)
	ctx := context.Background()
	save := newTestSave()
	save.Paused = true
	if err := store.Save(ctx, "s", save); err != nil {
		t.Fatal(err)
	}

	res, err := svc.AdvanceTime(ctx, "s", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if res.DayProcessed {
		t.Fatal("paused game processed a day")
	}
	if !res.GameTime.Equal(save.GameTime) {
		t.Fatalf("paused clock moved to %v", res.GameTime)
	}

	if _, err := svc.SetPaused(ctx, "s", false); err != nil {
		t.Fatal(err)
	}
	res, err = svc.AdvanceTime(ctx, "s", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !res.DayProcessed {
		t.Fatal("expected resume to stamp the current day")
	}
}

func TestNormalizeSaveMigratesV1(t *testing.T) {
	save := newTestSave()
	save.Version = 1
	save.Land.SellQueue = nil
	save.Assets = []*Asset{{ID: "a1", Name: PropertyHouse, Variant: "Low", Units: 50}}

	if err := normalizeSave(save); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if save.Version != SaveSchemaVersion {
		t.Fatalf("version got %d", save.Version)
	}
	if save.Land.SellQueue == nil {
		t.Fatal("sell queue not backfilled")
	}
	if save.Assets[0].Finance.Mode != FinanceModeIdle {
		t.Fatalf("asset mode got %q", save.Assets[0].Finance.Mode)
	}
}

func TestNormalizeSaveRejectsCorrupt(t *testing.T) {
	if err := normalizeSave(&SaveData{}); err == nil {
		t.Fatal("expected corrupt error for zero game time")
	}
	future := newTestSave()
	future.Version = SaveSchemaVersion + 1
	if err := normalizeSave(future); err == nil {
		t.Fatal("expected corrupt error for future version")
	}
}

func TestBuyLandUpsertsHolding(t *testing.T) {
	svc, store := newTestService(4)
	ctx := context.Background()
	if err := store.Save(ctx, "s", newTestSave()); err != nil {
		t.Fatal(err)
	}

	// Solo at ~5.5M/m2: 0.5 ha is ~27.5B, well inside starting cash.
	loc, err := svc.BuyLand(ctx, "s", "solo", 0.5)
	if err != nil {
		t.Fatalf("buy land: %v", err)
	}
	if loc.ID != "solo" || loc.Total != 0.5 {
		t.Fatalf("holding: %+v", loc)
	}

	save, _ := svc.State(ctx, "s")
	if save.Land.Total != 2.5 {
		t.Fatalf("land total got %v want 2.5", save.Land.Total)
	}
	quote := save.LandPriceCache["solo"]["2026-1"]
	if quote == nil {
		t.Fatal("expected cached quote for purchase month")
	}
	wantCost := int64(float64(quote.FinalPrice) * 0.5 * M2PerHa)
	if loc.Cost != wantCost {
		t.Fatalf("cost got %d want %d", loc.Cost, wantCost)
	}
	if save.Finance.Cash != StartingCash-wantCost {
		t.Fatalf("cash got %d want %d", save.Finance.Cash, StartingCash-wantCost)
	}

	// Second purchase folds into the same holding.
	if _, err := svc.BuyLand(ctx, "s", "solo", 0.5); err != nil {
		t.Fatalf("second buy: %v", err)
	}
	save, _ = svc.State(ctx, "s")
	if got := findLocation(save, "solo").Total; got != 1.0 {
		t.Fatalf("merged total got %v want 1.0", got)
	}

	if _, err := svc.BuyLand(ctx, "s", "solo", 0.01); err == nil {
		t.Fatal("expected below-minimum error")
	}
	if _, err := svc.BuyLand(ctx, "s", "atlantis", 1); err == nil {
		t.Fatal("expected unknown city error")
	}
}

func TestBuyLandRejectsUnaffordable(t *testing.T) {
	svc, store := newTestService(6)
	ctx := context.Background()
	if err := store.Save(ctx, "s", newTestSave()); err != nil {
		t.Fatal(err)
	}

	// Jakarta at ~42M/m2: 0.5 ha runs past 200B against 150B cash.
	if _, err := svc.BuyLand(ctx, "s", "jakarta", 0.5); !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("err got %v", err)
	}
	save, _ := svc.State(ctx, "s")
	if save.Finance.Cash != StartingCash {
		t.Fatalf("cash changed on rejected purchase: %d", save.Finance.Cash)
	}
	if findLocation(save, "jakarta") != nil {
		t.Fatal("holding created on rejected purchase")
	}
}

func TestReportAggregatesHistory(t *testing.T) {
	svc, store := newTestService(5)
	ctx := context.Background()
	save := newTestSave()
	save.GameTime = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	save.Finance.History = []DayRecord{
		{Date: DayStamp{2025, 12, 30}, Income: 100, Expense: 40, Net: 60},
		{Date: DayStamp{2026, 1, 15}, Income: 200, Expense: 50, Net: 150},
		{Date: DayStamp{2026, 2, 9}, Income: 300, Expense: 60, Net: 240},
	}
	if err := store.Save(ctx, "s", save); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Report(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if report.MonthlyIncome != 300 || report.MonthlyExpense != 60 {
		t.Fatalf("monthly got %d/%d", report.MonthlyIncome, report.MonthlyExpense)
	}
	if report.YearlyIncome != 500 || report.YearlyExpense != 110 {
		t.Fatalf("yearly got %d/%d", report.YearlyIncome, report.YearlyExpense)
	}
	if report.LastDay == nil || report.LastDay.Net != 240 {
		t.Fatalf("last day: %+v", report.LastDay)
	}
}
