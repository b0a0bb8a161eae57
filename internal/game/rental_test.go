package game

import (
	"errors"
	"testing"
)

func fixedRoll(v float64) func() float64 {
	return func() float64 { return v }
}

func testHouseAsset(units int) *Asset {
	return &Asset{
		ID:      "asset-1",
		Name:    PropertyHouse,
		Variant: "Low",
		Units:   units,
		Cost:    int64(units) * 250_000_000,
		Finance: AssetFinance{Mode: FinanceModeIdle},
	}
}

func TestRentElasticitySteps(t *testing.T) {
	tests := []struct {
		ratio float64
		want  float64
	}{
		{0.5, 1.25},
		{0.7, 1.25},
		{0.85, 1.1},
		{1.0, 0.95},
		{1.1, 0.85},
		{1.25, 0.65},
		{1.5, 0.35},
		{1.99, 0.1},
		{2.0, 0},
		{3.0, 0},
	}
	for _, tc := range tests {
		if got := rentElasticity(tc.ratio); got != tc.want {
			t.Fatalf("ratio %v: got %v want %v", tc.ratio, got, tc.want)
		}
	}
}

func TestSimulateRentDeadMarket(t *testing.T) {
	asset := testHouseAsset(100)
	// House Low band is 10-16M, midpoint 13M. Twice that is dead.
	sim, err := SimulateRent(asset, 26_000_000, fixedRoll(0.5))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if sim.MinOcc != 0 || sim.MaxOcc != 0 || sim.DemandPercent != 0 {
		t.Fatalf("dead market occupancy: %+v", sim)
	}
	if sim.Risk != "Dead Market" {
		t.Fatalf("risk got %q", sim.Risk)
	}
}

func TestSimulateRentHealthy(t *testing.T) {
	asset := testHouseAsset(100)
	// Midpoint price: ratio 1.0, elasticity 0.95.
	sim, err := SimulateRent(asset, 13_000_000, fixedRoll(0))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	// demand = 0.85*0.95 = 0.8075, baseOcc = 80, range = 12.
	if sim.MinOcc != 68 {
		t.Fatalf("min occ got %d want 68", sim.MinOcc)
	}
	if sim.MaxOcc != 92 {
		t.Fatalf("max occ got %d want 92", sim.MaxOcc)
	}
	if sim.DemandPercent != 81 {
		t.Fatalf("demand got %d want 81", sim.DemandPercent)
	}
	if sim.Risk != "Healthy" {
		t.Fatalf("risk got %q", sim.Risk)
	}
}

func TestSimulateRentCapsAtMaxOccupancy(t *testing.T) {
	asset := testHouseAsset(100)
	// Deep discount: elasticity 1.25 drives demand past the clamp.
	sim, err := SimulateRent(asset, 6_000_000, fixedRoll(0.99))
	if err != nil {
		t.Fatal(err)
	}
	if cap := int(float64(asset.Units) * MaxOccupancyFactor); sim.MaxOcc > cap {
		t.Fatalf("max occ %d above cap %d", sim.MaxOcc, cap)
	}
	if sim.Risk != "Low margin" {
		t.Fatalf("risk got %q", sim.Risk)
	}
}

func TestRollOccupancyStaysInRange(t *testing.T) {
	svc, _ := newTestService(31)
	for i := 0; i < 200; i++ {
		occ := rollOccupancy(40, 80, svc.nextFloat)
		if occ < 40 || occ > 80 {
			t.Fatalf("occupancy %d outside [40,80]", occ)
		}
	}
	if occ := rollOccupancy(50, 50, fixedRoll(0.9)); occ != 50 {
		t.Fatalf("degenerate range got %d", occ)
	}
}

func TestCanRentThresholds(t *testing.T) {
	if err := canRent(testHouseAsset(50)); err != nil {
		t.Fatalf("50-unit house: %v", err)
	}
	if err := canRent(testHouseAsset(49)); !errors.Is(err, ErrNotRentable) {
		t.Fatalf("49-unit house err got %v", err)
	}

	apt := &Asset{Name: PropertyApartment, Variant: "Studio", Towers: 3, Units: 3 * 50}
	if err := canRent(apt); err != nil {
		t.Fatalf("3x50 apartment: %v", err)
	}
	apt.Towers = 2
	apt.Units = 2 * 60
	if err := canRent(apt); !errors.Is(err, ErrNotRentable) {
		t.Fatalf("2-tower err got %v", err)
	}
	apt.Towers = 3
	apt.Units = 3 * 40
	if err := canRent(apt); !errors.Is(err, ErrNotRentable) {
		t.Fatalf("small-tower err got %v", err)
	}
}

func TestSetAndStopRent(t *testing.T) {
	svc, _ := newTestService(32)
	save := newTestSave()
	asset := testHouseAsset(100)
	save.Assets = append(save.Assets, asset)

	sim, err := svc.setRent(save, asset.ID, 13_000_000)
	if err != nil {
		t.Fatalf("set rent: %v", err)
	}
	if asset.Finance.Mode != FinanceModeRented {
		t.Fatalf("mode got %q", asset.Finance.Mode)
	}
	if asset.Finance.OccupiedUnits < sim.MinOcc || asset.Finance.OccupiedUnits > sim.MaxOcc {
		t.Fatalf("occupancy %d outside [%d,%d]", asset.Finance.OccupiedUnits, sim.MinOcc, sim.MaxOcc)
	}

	if err := svc.stopRent(save, asset.ID); err != nil {
		t.Fatalf("stop rent: %v", err)
	}
	if asset.Finance.Mode != FinanceModeIdle || asset.Finance.RentPrice != 0 {
		t.Fatalf("finance after stop: %+v", asset.Finance)
	}
	if err := svc.stopRent(save, asset.ID); !errors.Is(err, ErrNotRentable) {
		t.Fatalf("double stop err got %v", err)
	}
}

func TestDailyRentFlows(t *testing.T) {
	save := newTestSave()
	asset := testHouseAsset(100)
	asset.Finance.Mode = FinanceModeRented
	asset.Finance.RentPrice = 15_000_000
	asset.Finance.OccupiedUnits = 80
	save.Assets = append(save.Assets, asset)

	dailyRentFlows(save)

	dailyRent := int64(15_000_000 / 30)
	wantIncome := 80 * dailyRent
	wantExpense := 100 * int64(float64(dailyRent)*0.25)
	if save.Finance.DailyIncome != wantIncome {
		t.Fatalf("income got %d want %d", save.Finance.DailyIncome, wantIncome)
	}
	if save.Finance.DailyExpense != wantExpense {
		t.Fatalf("expense got %d want %d", save.Finance.DailyExpense, wantExpense)
	}
	if len(save.Finance.AssetIncome) != 1 || save.Finance.AssetIncome[0].Source != "rent" {
		t.Fatalf("asset income: %+v", save.Finance.AssetIncome)
	}
}

func TestMonthlyOccupancyGuard(t *testing.T) {
	svc, _ := newTestService(33)
	save := newTestSave()
	asset := testHouseAsset(100)
	save.Assets = append(save.Assets, asset)
	if _, err := svc.setRent(save, asset.ID, 13_000_000); err != nil {
		t.Fatal(err)
	}

	day := StampOfDay(save.GameTime)
	svc.processDay(save, day)
	month := StampOfMonth(save.GameTime)
	if save.LastOccupancyMonth == nil || !save.LastOccupancyMonth.Equal(month) {
		t.Fatalf("occupancy month marker: %+v", save.LastOccupancyMonth)
	}
	if asset.Finance.OccRange == nil {
		t.Fatal("occupancy range not refreshed")
	}
	if asset.Finance.OccupiedUnits < asset.Finance.OccRange.Min || asset.Finance.OccupiedUnits > asset.Finance.OccRange.Max {
		t.Fatalf("occupancy %d outside persisted range %+v", asset.Finance.OccupiedUnits, asset.Finance.OccRange)
	}
}

func TestRoiProjection(t *testing.T) {
	asset := testHouseAsset(100)
	asset.Finance.Mode = FinanceModeRented
	asset.Finance.RentPrice = 15_000_000
	asset.Finance.OccupiedUnits = 80

	roi, err := roiProjection(asset, 12)
	if err != nil {
		t.Fatal(err)
	}
	dailyRent := int64(500_000)
	netDaily := 80*dailyRent - 100*int64(float64(dailyRent)*0.25)
	if roi.NetMonthly != netDaily*26 {
		t.Fatalf("net monthly got %d want %d", roi.NetMonthly, netDaily*26)
	}
	if roi.NetPeriod != roi.NetMonthly*12 {
		t.Fatalf("net period got %d", roi.NetPeriod)
	}

	asset.Finance.Mode = FinanceModeIdle
	if _, err := roiProjection(asset, 12); !errors.Is(err, ErrNotRentable) {
		t.Fatalf("idle roi err got %v", err)
	}
}
