package game

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Sale markets. Listing fixes the price; the only uncertainty is the
// time to find a buyer, drawn from a ratio bucket at listing time.
// Settlement happens in the daily pass once the drawn duration has
// elapsed.

// marketUnitPrice is the per-unit reference an offer is judged
// against: build cost scaled by the cycle sell multiplier.
func marketUnitPrice(asset *Asset, market MarketState) int64 {
	if asset.Units == 0 {
		return 0
	}
	mult := cycleEffect(market.Cycle).SellMultiplier
	return int64(math.Floor(float64(asset.Cost) * mult / float64(asset.Units)))
}

// propertySaleBucket maps the price ratio to a days-to-sell draw and a
// risk label. ok is false when the price is beyond any buyer.
func propertySaleBucket(ratio float64, roll float64) (days int, risk string, ok bool) {
	switch {
	case ratio >= MaxPropertyRatio:
		return 0, "", false
	case ratio < 0.7:
		return 1, "Fire Sale", true
	case ratio <= 0.9:
		return 3 + int(roll*4), "Fast Sell", true
	case ratio <= 1.0:
		return 10 + int(roll*8), "Healthy", true
	case ratio <= 1.1:
		return 30 + int(roll*21), "Slow", true
	case ratio <= 1.25:
		return 90 + int(roll*41), "High Risk", true
	case ratio <= 1.45:
		return 180 + int(roll*61), "Very High Risk", true
	default:
		return 365 + int(roll*121), "Dead Market", true
	}
}

// landSaleDuration maps the asked price ratio against the monthly city
// quote to a days-to-sell draw. ok is false above the rejection bound.
func landSaleDuration(ratio float64, roll float64) (days int, ok bool) {
	switch {
	case ratio > MaxLandSellRatio:
		return 0, false
	case ratio <= 1.0:
		return 60 + int(roll*90), true
	case ratio <= 1.15:
		return 180 + int(roll*180), true
	default:
		return 360 + int(roll*360), true
	}
}

// simulateSale previews the market response to a per-unit offer
// without listing.
func (s *Service) simulateSale(save *SaveData, assetID string, pricePerUnit int64) (*SaleSimulation, error) {
	asset := findAsset(save, assetID)
	if asset == nil {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
	}
	if pricePerUnit <= 0 {
		return nil, fmt.Errorf("%w: price per unit must be positive", ErrBelowMinimum)
	}
	ref := marketUnitPrice(asset, save.Market)
	if ref <= 0 {
		return nil, fmt.Errorf("%w: no market reference for asset %s", ErrConfigMissing, assetID)
	}
	ratio := float64(pricePerUnit) / float64(ref)
	days, risk, ok := propertySaleBucket(ratio, s.nextFloat())
	if !ok {
		return nil, fmt.Errorf("%w: ratio %.2f finds no buyer", ErrUnrealisticPrice, ratio)
	}
	return &SaleSimulation{
		Ratio:        ratio,
		Risk:         risk,
		DurationDays: days,
		MarketUnit:   ref,
		TotalPrice:   pricePerUnit * int64(asset.Units),
	}, nil
}

// listPropertySale puts an asset on the sale market at a per-unit
// price. Rented assets stay rented until the sale settles.
func (s *Service) listPropertySale(save *SaveData, assetID string, pricePerUnit int64) (*PropertySale, error) {
	asset := findAsset(save, assetID)
	if asset == nil {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
	}
	if asset.Finance.Sell != nil && asset.Finance.Sell.Status == ListingStatusListed {
		return nil, fmt.Errorf("%w: asset %s", ErrAlreadyListed, assetID)
	}
	sim, err := s.simulateSale(save, assetID, pricePerUnit)
	if err != nil {
		return nil, err
	}

	asset.Finance.Sell = &PropertySale{
		Status:       ListingStatusListed,
		PricePerUnit: pricePerUnit,
		TotalPrice:   sim.TotalPrice,
		ListedAt:     save.GameTime,
		DurationDays: sim.DurationDays,
	}
	return asset.Finance.Sell, nil
}

func (s *Service) cancelPropertySale(save *SaveData, assetID string) error {
	asset := findAsset(save, assetID)
	if asset == nil {
		return fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
	}
	if asset.Finance.Sell == nil || asset.Finance.Sell.Status != ListingStatusListed {
		return fmt.Errorf("%w: asset %s has no active listing", ErrNotFound, assetID)
	}
	asset.Finance.Sell = nil
	return nil
}

// settlePropertySales closes out every listing whose duration has
// elapsed: cash in, reserved land out, asset removed.
func (s *Service) settlePropertySales(save *SaveData) {
	remaining := save.Assets[:0]
	for _, asset := range save.Assets {
		sell := asset.Finance.Sell
		if sell == nil || sell.Status != ListingStatusListed {
			remaining = append(remaining, asset)
			continue
		}
		passed := WholeDaysBetween(sell.ListedAt, save.GameTime)
		if passed < sell.DurationDays {
			remaining = append(remaining, asset)
			continue
		}

		save.Finance.Cash += sell.TotalPrice
		if loc := findLocation(save, asset.LocationID); loc != nil {
			loc.Used = roundHa(loc.Used - asset.LandUsed)
			if loc.Used < 0 {
				loc.Used = 0
			}
		}
		sell.Status = ListingStatusSold
		s.log.Info("property sold", "asset", asset.ID, "price", sell.TotalPrice)
	}
	save.Assets = remaining
	resyncLandTotals(save)
}

// listLandSale queues part of a city holding for sale at a fixed price
// per square meter.
func (s *Service) listLandSale(save *SaveData, cityID string, m2 int64, pricePerM2 int64) (*LandSellOrder, error) {
	if m2 < MinLandSellM2 {
		return nil, fmt.Errorf("%w: minimum sale is %d m2", ErrBelowMinimum, MinLandSellM2)
	}
	if pricePerM2 <= 0 {
		return nil, fmt.Errorf("%w: price per m2 must be positive", ErrBelowMinimum)
	}
	loc := findLocation(save, cityID)
	if loc == nil {
		return nil, fmt.Errorf("%w: no holding in %s", ErrNotFound, cityID)
	}

	// Land already reserved by other listings cannot be listed twice.
	reserved := reservedForSaleHa(save, cityID)
	available := roundHa(loc.Total - loc.Used - reserved)
	sellHa := float64(m2) / M2PerHa
	if sellHa > available {
		return nil, fmt.Errorf("%w: %.4f ha free in %s, need %.4f ha", ErrInsufficientLand, available, cityID, sellHa)
	}

	quote, err := s.landPriceDetail(save, cityID)
	if err != nil {
		return nil, err
	}
	ratio := float64(pricePerM2) / float64(quote.FinalPrice)
	days, ok := landSaleDuration(ratio, s.nextFloat())
	if !ok {
		return nil, fmt.Errorf("%w: ratio %.2f finds no buyer", ErrUnrealisticPrice, ratio)
	}

	order := &LandSellOrder{
		ID:           uuid.NewString(),
		CityID:       cityID,
		M2:           m2,
		PricePerM2:   pricePerM2,
		ListedAt:     save.GameTime,
		DurationDays: days,
		Status:       ListingStatusListed,
	}
	save.Land.SellQueue = append(save.Land.SellQueue, order)
	return order, nil
}

func (s *Service) cancelLandSale(save *SaveData, orderID string) error {
	for i, order := range save.Land.SellQueue {
		if order.ID == orderID && order.Status == ListingStatusListed {
			save.Land.SellQueue = append(save.Land.SellQueue[:i], save.Land.SellQueue[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: land order %s", ErrNotFound, orderID)
}

func reservedForSaleHa(save *SaveData, cityID string) float64 {
	var ha float64
	for _, order := range save.Land.SellQueue {
		if order.Status == ListingStatusListed && order.CityID == cityID {
			ha += float64(order.M2) / M2PerHa
		}
	}
	return roundHa(ha)
}

// settleLandSales pays out matured orders and shrinks the holding.
// Cost basis scales down in proportion to the area sold.
func (s *Service) settleLandSales(save *SaveData) {
	if len(save.Land.SellQueue) == 0 {
		return
	}
	for _, order := range save.Land.SellQueue {
		if order.Status != ListingStatusListed {
			continue
		}
		passed := WholeDaysBetween(order.ListedAt, save.GameTime)
		if passed < order.DurationDays {
			continue
		}

		proceeds := order.M2 * order.PricePerM2
		save.Finance.Cash += proceeds

		if loc := findLocation(save, order.CityID); loc != nil {
			prevTotal := loc.Total
			soldHa := float64(order.M2) / M2PerHa

			loc.Total = roundHa(loc.Total - soldHa)
			if loc.Total < 0 {
				loc.Total = 0
			}
			if loc.Used > loc.Total {
				loc.Used = loc.Total
			}
			if loc.Total == 0 {
				loc.Used = 0
				loc.Cost = 0
			} else if prevTotal > 0 && loc.Cost > 0 {
				loc.Cost -= int64(float64(loc.Cost) / prevTotal * soldHa)
			}
		}
		order.Status = ListingStatusSold
		s.log.Info("land sold", "city", order.CityID, "m2", order.M2, "proceeds", proceeds)
	}

	active := save.Land.SellQueue[:0]
	for _, order := range save.Land.SellQueue {
		if order.Status != ListingStatusSold {
			active = append(active, order)
		}
	}
	save.Land.SellQueue = active
	resyncLandTotals(save)
}
