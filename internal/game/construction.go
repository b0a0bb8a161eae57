package game

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// PlanBuild sizes a project without touching state: type-specific
// cost, land, duration, and projected income formulas.
func PlanBuild(propertyType, variant string, units, towers, floors int) (BuildPlan, error) {
	cfg, v, err := propertyVariant(propertyType, variant)
	if err != nil {
		return BuildPlan{}, err
	}

	plan := BuildPlan{PropertyType: propertyType, Variant: variant}
	switch propertyType {
	case PropertyApartment:
		if towers < 1 {
			return BuildPlan{}, fmt.Errorf("%w: at least one tower", ErrBelowMinimum)
		}
		if floors < cfg.MinFloors || floors > cfg.MaxFloors {
			return BuildPlan{}, fmt.Errorf("%w: floors must be %d-%d", ErrBelowMinimum, cfg.MinFloors, cfg.MaxFloors)
		}
		plan.Towers = towers
		plan.Floors = floors
		plan.Units = towers * floors * v.UnitsPerFloor
		plan.LandArea = roundHa(float64(towers) * cfg.TowerLand)
		plan.Cost = int64(plan.Units) * v.Cost
		plan.DurationDays = int(math.Ceil(float64(v.BaseDays) + float64(floors)*2 + float64(plan.Units)*v.DayScale))
	default:
		if units < cfg.MinUnits {
			return BuildPlan{}, fmt.Errorf("%w: minimum %d units", ErrBelowMinimum, cfg.MinUnits)
		}
		plan.Units = units
		plan.LandArea = roundHa(float64(units) * v.LandPerUnit)
		plan.Cost = int64(units) * v.Cost
		plan.DurationDays = int(math.Ceil(float64(v.BaseDays) + float64(units)*v.DayScale))
	}
	plan.DailyIncome = int64(plan.Units) * v.IncomePerUnit
	return plan, nil
}

// startProject validates cash and land, then reserves both and
// enqueues the build. Check-then-commit: nothing mutates on failure.
func (s *Service) startProject(save *SaveData, propertyType, variant string, units, towers, floors int, locationID string) (*ConstructionProject, error) {
	plan, err := PlanBuild(propertyType, variant, units, towers, floors)
	if err != nil {
		return nil, err
	}
	cfg, _, err := propertyVariant(propertyType, variant)
	if err != nil {
		return nil, err
	}
	loc := findLocation(save, locationID)
	if loc == nil {
		return nil, fmt.Errorf("%w: location %s", ErrNotFound, locationID)
	}
	available := roundHa(loc.Total - loc.Used)
	if available < cfg.MinLand || available < plan.LandArea {
		return nil, fmt.Errorf("%w: need %.4f ha, have %.4f ha", ErrInsufficientLand, plan.LandArea, available)
	}
	if save.Finance.Cash < plan.Cost {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientCash, plan.Cost, save.Finance.Cash)
	}

	save.Finance.Cash -= plan.Cost
	loc.Used = roundHa(loc.Used + plan.LandArea)
	resyncLandTotals(save)

	project := &ConstructionProject{
		ID:           uuid.NewString(),
		PropertyType: propertyType,
		Variant:      variant,
		Units:        plan.Units,
		Towers:       plan.Towers,
		Floors:       plan.Floors,
		LandUsed:     plan.LandArea,
		LocationID:   locationID,
		Cost:         plan.Cost,
		DurationDays: plan.DurationDays,
		StartTime:    save.GameTime,
		DailyIncome:  plan.DailyIncome,
	}
	save.ConstructionQueue = append(save.ConstructionQueue, project)
	return project, nil
}

// progressOf is calendar-day based, midnight normalized, so tick
// timing jitter never moves the completion date.
func progressOf(p *ConstructionProject, save *SaveData) float64 {
	if p.DurationDays <= 0 {
		return 1
	}
	elapsed := CalendarDaysBetween(p.StartTime, save.GameTime)
	return float64(elapsed) / float64(p.DurationDays)
}

// advanceConstruction promotes every finished project into an idle
// asset. Runs only inside the daily pass.
func advanceConstruction(save *SaveData) []*Asset {
	var completed []*Asset
	remaining := save.ConstructionQueue[:0]
	for _, p := range save.ConstructionQueue {
		if progressOf(p, save) < 1 {
			remaining = append(remaining, p)
			continue
		}
		asset := &Asset{
			ID:         p.ID,
			Name:       p.PropertyType,
			Variant:    p.Variant,
			Units:      p.Units,
			Towers:     p.Towers,
			Floors:     p.Floors,
			LandUsed:   p.LandUsed,
			LocationID: p.LocationID,
			Cost:       p.Cost,
			Finance:    AssetFinance{Mode: FinanceModeIdle},
		}
		save.Assets = append(save.Assets, asset)
		completed = append(completed, asset)
	}
	save.ConstructionQueue = remaining
	return completed
}

// cancelProject refunds cost minus the progress penalty and releases
// the reserved land. Irreversible.
func (s *Service) cancelProject(save *SaveData, projectID string) (int64, error) {
	idx := -1
	for i, p := range save.ConstructionQueue {
		if p.ID == projectID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	p := save.ConstructionQueue[idx]
	progress := progressOf(p, save)
	if progress >= 1 {
		return 0, fmt.Errorf("project %s is complete and can no longer be cancelled", projectID)
	}
	rate := CancelPenaltyRate(progress)
	refund := p.Cost - int64(math.Floor(float64(p.Cost)*rate))

	save.Finance.Cash += refund
	if loc := findLocation(save, p.LocationID); loc != nil {
		loc.Used = roundHa(loc.Used - p.LandUsed)
		if loc.Used < 0 {
			loc.Used = 0
		}
	}
	save.ConstructionQueue = append(save.ConstructionQueue[:idx], save.ConstructionQueue[idx+1:]...)
	resyncLandTotals(save)
	return refund, nil
}

func findLocation(save *SaveData, id string) *LandLocation {
	for _, loc := range save.Land.Locations {
		if loc.ID == id {
			return loc
		}
	}
	return nil
}

// resyncLandTotals recomputes the aggregate totals from the location
// list; used ≤ total is re-asserted per location.
func resyncLandTotals(save *SaveData) {
	var total, used float64
	for _, loc := range save.Land.Locations {
		if loc.Used > loc.Total {
			loc.Used = loc.Total
		}
		if loc.Used < 0 {
			loc.Used = 0
		}
		total += loc.Total
		used += loc.Used
	}
	save.Land.Total = roundHa(total)
	save.Land.Used = roundHa(used)
}
