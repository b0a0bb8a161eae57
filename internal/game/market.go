package game

// The market cycle engine is the sole writer of SaveData.Market. It
// runs at most once per virtual month, from the daily orchestration
// pass.

var cyclePool = []string{CycleBoom, CycleExpansion, CycleStagnant, CycleRecession}

// updateMarketCycle rolls the monthly shock first (probability equal
// to the current volatility), then falls back to the scheduled
// rotation when the regime has outlived its duration.
func (s *Service) updateMarketCycle(save *SaveData) {
	market := &save.Market
	if s.nextFloat() < market.Volatility {
		s.rotateMarketCycle(save, true)
		return
	}
	if MonthsBetween(market.CycleStart, save.GameTime) >= market.DurationMonths {
		s.rotateMarketCycle(save, false)
	}
}

// rotateMarketCycle draws the next regime uniformly from the pool
// (self-transition allowed) with a fresh duration in [12,48) months
// and volatility in [0.01,0.04).
func (s *Service) rotateMarketCycle(save *SaveData, shock bool) {
	next := cyclePool[int(s.nextFloat()*float64(len(cyclePool)))%len(cyclePool)]
	save.Market = MarketState{
		Cycle:          next,
		CycleStart:     save.GameTime,
		DurationMonths: 12 + int(s.nextFloat()*36),
		Volatility:     0.01 + s.nextFloat()*0.03,
	}
	if shock {
		s.log.Info("market shocked into new cycle", "cycle", next)
		return
	}
	s.log.Info("market cycle rotated", "cycle", next, "duration_months", save.Market.DurationMonths)
}
