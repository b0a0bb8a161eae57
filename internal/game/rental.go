package game

import (
	"fmt"
	"math"
)

// Rental market. Occupancy reacts to the ratio between the asked rent
// and the band midpoint through a stepped elasticity curve; the
// realized occupancy is rerolled once per virtual month inside a
// persisted min/max range.

func rentElasticity(ratio float64) float64 {
	switch {
	case ratio <= 0.7:
		return 1.25
	case ratio <= 0.85:
		return 1.1
	case ratio <= 1.0:
		return 0.95
	case ratio <= 1.1:
		return 0.85
	case ratio <= 1.25:
		return 0.65
	case ratio <= 1.5:
		return 0.35
	case ratio < 2.0:
		return 0.1
	default:
		return 0
	}
}

// SimulateRent computes the market response to a proposed monthly rent
// per unit. roll feeds the range-size draw.
func SimulateRent(asset *Asset, price int64, roll func() float64) (*RentSimulation, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: rent price must be positive", ErrBelowMinimum)
	}
	band, err := rentBand(asset.Name, asset.Variant)
	if err != nil {
		return nil, err
	}

	marketPrice := float64(band.Min+band.Max) / 2
	ratio := float64(price) / marketPrice

	// Advisory maintenance estimate; the realized daily expense is
	// computed per property type in dailyRentFlows.
	estMaintenance := int64(math.Floor(float64(price) / 30 * 0.25))

	if ratio >= 2 {
		return &RentSimulation{
			Maintenance: estMaintenance,
			Risk:        "Dead Market",
			Warning:     "Rent is far above market. No tenants at all.",
		}, nil
	}

	demand := clampFloat(band.BaseDemand*rentElasticity(ratio), 0.05, 0.95)
	maxCap := int(math.Floor(float64(asset.Units) * MaxOccupancyFactor))
	baseOcc := int(math.Floor(float64(asset.Units) * demand))

	var rangeSize int
	switch {
	case asset.Units < 50:
		rangeSize = 6 + int(roll()*4)
	case asset.Units < 150:
		rangeSize = 12 + int(roll()*8)
	default:
		rangeSize = 20 + int(roll()*15)
	}

	minOcc := baseOcc - rangeSize
	maxOcc := baseOcc + rangeSize
	if minOcc < 0 {
		minOcc = 0
	}
	if maxOcc > maxCap {
		maxOcc = maxCap
	}
	if minOcc > maxOcc {
		minOcc = maxOcc
	}

	var risk, warning string
	switch {
	case ratio < 0.8:
		risk = "Low margin"
		warning = "Rent is below market. Units fill fast but margins stay thin."
	case ratio > 1.2:
		risk = "High vacancy"
		warning = "Rent is above market. Expect tenants to drop off sharply."
	default:
		risk = "Healthy"
		warning = "Rent is in line with the market."
	}

	return &RentSimulation{
		MinOcc:        minOcc,
		MaxOcc:        maxOcc,
		DemandPercent: int(math.Round(demand * 100)),
		Maintenance:   estMaintenance,
		Risk:          risk,
		Warning:       warning,
	}, nil
}

// rollOccupancy draws the month's realized occupancy: 60% of rolls
// cluster around the range midpoint, the rest spread uniformly.
func rollOccupancy(minOcc, maxOcc int, roll func() float64) int {
	rangeSize := float64(maxOcc - minOcc)
	mid := float64(minOcc) + rangeSize/2

	if roll() < 0.6 {
		variance := rangeSize * 0.2
		offset := (roll() - 0.5) * variance * 2
		occ := int(math.Round(mid + offset))
		if occ < minOcc {
			occ = minOcc
		}
		if occ > maxOcc {
			occ = maxOcc
		}
		return occ
	}
	return minOcc + int(roll()*float64(maxOcc-minOcc+1))
}

// canRent enforces the scale thresholds below which a property cannot
// enter the rental market.
func canRent(asset *Asset) error {
	switch asset.Name {
	case PropertyApartment:
		if asset.Towers < 3 {
			return fmt.Errorf("%w: apartments need at least 3 towers", ErrNotRentable)
		}
		if asset.Towers > 0 && asset.Units/asset.Towers < 50 {
			return fmt.Errorf("%w: apartments need at least 50 units per tower", ErrNotRentable)
		}
	default:
		if asset.Units < 50 {
			return fmt.Errorf("%w: need at least 50 units", ErrNotRentable)
		}
	}
	return nil
}

// setRent puts an asset on the rental market at the given monthly
// price and rolls its first occupancy.
func (s *Service) setRent(save *SaveData, assetID string, price int64) (*RentSimulation, error) {
	asset := findAsset(save, assetID)
	if asset == nil {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
	}
	if asset.Finance.Sell != nil && asset.Finance.Sell.Status == ListingStatusListed {
		return nil, fmt.Errorf("%w: asset is listed for sale", ErrAlreadyListed)
	}
	if err := canRent(asset); err != nil {
		return nil, err
	}
	sim, err := SimulateRent(asset, price, s.nextFloat)
	if err != nil {
		return nil, err
	}

	asset.Finance.Mode = FinanceModeRented
	asset.Finance.RentPrice = price
	asset.Finance.OccRange = &OccRange{Min: sim.MinOcc, Max: sim.MaxOcc}
	asset.Finance.OccupiedUnits = rollOccupancy(sim.MinOcc, sim.MaxOcc, s.nextFloat)
	return sim, nil
}

// stopRent takes an asset off the rental market.
func (s *Service) stopRent(save *SaveData, assetID string) error {
	asset := findAsset(save, assetID)
	if asset == nil {
		return fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
	}
	if asset.Finance.Mode != FinanceModeRented {
		return fmt.Errorf("%w: asset is not rented", ErrNotRentable)
	}
	asset.Finance.Mode = FinanceModeIdle
	asset.Finance.RentPrice = 0
	asset.Finance.OccupiedUnits = 0
	asset.Finance.OccRange = nil
	return nil
}

// monthlyOccupancyUpdate rerolls occupancy for every rented asset.
// The caller holds the once-per-month guard.
func (s *Service) monthlyOccupancyUpdate(save *SaveData) {
	for _, asset := range save.Assets {
		if asset.Finance.Mode != FinanceModeRented {
			continue
		}
		sim, err := SimulateRent(asset, asset.Finance.RentPrice, s.nextFloat)
		if err != nil {
			s.log.Warn("occupancy update skipped", "asset", asset.ID, "error", err)
			continue
		}
		asset.Finance.OccupiedUnits = rollOccupancy(sim.MinOcc, sim.MaxOcc, s.nextFloat)
		asset.Finance.OccRange = &OccRange{Min: sim.MinOcc, Max: sim.MaxOcc}
	}
}

// dailyRentFlows accrues rent income and maintenance expense for the
// day. Daily rent is the monthly price over 30.
func dailyRentFlows(save *SaveData) {
	for _, asset := range save.Assets {
		if asset.Finance.Mode != FinanceModeRented || asset.Finance.RentPrice <= 0 {
			continue
		}
		dailyRent := asset.Finance.RentPrice / 30
		income := int64(asset.Finance.OccupiedUnits) * dailyRent
		maintenance := int64(asset.Units) * int64(math.Floor(float64(dailyRent)*maintenanceRate(asset.Name)))

		save.Finance.DailyIncome += income
		save.Finance.DailyExpense += maintenance
		save.Finance.AssetIncome = append(save.Finance.AssetIncome, AssetIncome{
			Name:    asset.Name,
			Variant: asset.Variant,
			Income:  income,
			Source:  "rent",
		})
	}
}

// roiProjection estimates rental return over a horizon, assuming 26
// effective income days per month.
func roiProjection(asset *Asset, months int) (*ROIProjection, error) {
	if asset.Finance.Mode != FinanceModeRented || asset.Finance.RentPrice <= 0 {
		return nil, fmt.Errorf("%w: asset is not rented", ErrNotRentable)
	}
	dailyRent := asset.Finance.RentPrice / 30
	income := int64(asset.Finance.OccupiedUnits) * dailyRent
	maintenance := int64(asset.Units) * int64(math.Floor(float64(dailyRent)*maintenanceRate(asset.Name)))
	netDaily := income - maintenance
	netMonthly := int64(math.Floor(float64(netDaily) * 26))

	netPeriod := netMonthly * int64(months)
	var roiPct float64
	if asset.Cost > 0 {
		roiPct = float64(netPeriod) / float64(asset.Cost) * 100
	}
	return &ROIProjection{
		NetMonthly: netMonthly,
		NetPeriod:  netPeriod,
		ROIPercent: roiPct,
		Months:     months,
	}, nil
}

func findAsset(save *SaveData, id string) *Asset {
	for _, a := range save.Assets {
		if a.ID == id {
			return a
		}
	}
	return nil
}
