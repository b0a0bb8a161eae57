package game

import (
	"fmt"
	"math"
)

// Land pricing: one deterministic quote per city per virtual month.
// Demand and market-cycle effects are damped so the base price
// dominates; one bounded volatility draw happens per month and is then
// memoized in the save document.

func monthCacheKey(t MonthStamp) string {
	return fmt.Sprintf("%d-%d", t.Year, t.Month)
}

// landPriceDetail returns the cached quote for the current virtual
// month, computing and storing it on first access.
func (s *Service) landPriceDetail(save *SaveData, cityID string) (*LandPrice, error) {
	city, err := CityByID(cityID)
	if err != nil {
		return nil, err
	}
	if save.GameTime.IsZero() {
		return nil, ErrClockNotReady
	}

	stamp := StampOfMonth(save.GameTime)
	key := monthCacheKey(stamp)
	if save.LandPriceCache == nil {
		save.LandPriceCache = map[string]map[string]*LandPrice{}
	}
	if save.LandPriceCache[cityID] == nil {
		save.LandPriceCache[cityID] = map[string]*LandPrice{}
	}
	if cached, ok := save.LandPriceCache[cityID][key]; ok {
		return cached, nil
	}

	price := float64(city.BasePrice)

	// Demand deviation from 1.0 damped to a quarter of its raw effect.
	price *= 1 + (city.Demand-1)*0.25

	effect := cycleEffect(save.Market.Cycle)
	price *= 1 + (effect.SellMultiplier-1)*0.3

	// City volatility is annual; one monthly draw in [-vol/12, +vol/12].
	monthlyVol := city.Volatility / 12
	price *= 1 + (s.nextFloat()*2-1)*monthlyVol

	quote := &LandPrice{
		BasePrice:  city.BasePrice,
		FinalPrice: int64(math.Floor(price)),
		Year:       stamp.Year,
		Month:      stamp.Month,
	}
	save.LandPriceCache[cityID][key] = quote
	return quote, nil
}

// LandPriceView pairs a city with its current monthly quote.
type LandPriceView struct {
	City  CityConfig `json:"city"`
	Quote *LandPrice `json:"quote"`
}

func (s *Service) landPriceBoard(save *SaveData) ([]LandPriceView, error) {
	out := make([]LandPriceView, 0, len(cityCatalog))
	for _, city := range cityCatalog {
		quote, err := s.landPriceDetail(save, city.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, LandPriceView{City: city, Quote: quote})
	}
	return out, nil
}

// LandROIView projects land appreciation at the city tier's annual
// rate, advisory only.
type LandROIView struct {
	CityID     string  `json:"city_id"`
	Tier       string  `json:"tier"`
	AnnualRate float64 `json:"annual_rate"`
	Invested   int64   `json:"invested"`
	Projected  int64   `json:"projected_value"`
	Years      int     `json:"years"`
}

func (s *Service) landROI(save *SaveData, cityID string, ha float64, years int) (*LandROIView, error) {
	city, err := CityByID(cityID)
	if err != nil {
		return nil, err
	}
	if ha <= 0 {
		return nil, fmt.Errorf("%w: hectares must be positive", ErrBelowMinimum)
	}
	quote, err := s.landPriceDetail(save, cityID)
	if err != nil {
		return nil, err
	}

	rate := landROIRate(city.Tier)
	invested := float64(quote.FinalPrice) * ha * M2PerHa
	projected := invested * math.Pow(1+rate, float64(years))
	return &LandROIView{
		CityID:     city.ID,
		Tier:       city.Tier,
		AnnualRate: rate,
		Invested:   int64(invested),
		Projected:  int64(projected),
		Years:      years,
	}, nil
}
