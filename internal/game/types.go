package game

import "time"

// SaveData is the whole persisted game: one document, written through
// after every mutating operation.
type SaveData struct {
	CompanyName string `json:"companyName"`
	CEOName     string `json:"ceoName"`
	Mode        string `json:"mode"`
	Version     int    `json:"version"`

	GameTime time.Time `json:"gameTime"`
	Paused   bool      `json:"paused"`

	LastProcessedDay   *DayStamp   `json:"lastProcessedDay,omitempty"`
	LastMarketMonth    *MonthStamp `json:"lastMarketMonth,omitempty"`
	LastOccupancyMonth *MonthStamp `json:"lastOccupancyMonth,omitempty"`

	Finance           Finance                          `json:"finance"`
	Land              Land                             `json:"land"`
	Assets            []*Asset                         `json:"assets"`
	ConstructionQueue []*ConstructionProject           `json:"constructionQueue"`
	Market            MarketState                      `json:"market"`
	LandPriceCache    map[string]map[string]*LandPrice `json:"landPriceCache,omitempty"`
}

type Finance struct {
	Cash         int64         `json:"cash"`
	DailyIncome  int64         `json:"dailyIncome"`
	DailyExpense int64         `json:"dailyExpense"`
	AssetIncome  []AssetIncome `json:"assetIncome"`
	History      []DayRecord   `json:"history"`
	Loans        []*Loan       `json:"loans"`
}

type AssetIncome struct {
	Name    string `json:"name"`
	Variant string `json:"variant"`
	Income  int64  `json:"income"`
	Source  string `json:"source"`
}

type DayRecord struct {
	Date    DayStamp `json:"date"`
	Income  int64    `json:"income"`
	Expense int64    `json:"expense"`
	Net     int64    `json:"net"`
}

type Land struct {
	Total     float64          `json:"total"`
	Used      float64          `json:"used"`
	Locations []*LandLocation  `json:"locations"`
	SellQueue []*LandSellOrder `json:"sellQueue"`
}

type LandLocation struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Total float64 `json:"total"`
	Used  float64 `json:"used"`
	Cost  int64   `json:"cost"`
}

const (
	ListingStatusListed = "listed"
	ListingStatusSold   = "sold"
)

type LandSellOrder struct {
	ID           string    `json:"id"`
	CityID       string    `json:"cityId"`
	M2           int64     `json:"m2"`
	PricePerM2   int64     `json:"pricePerM2"`
	ListedAt     time.Time `json:"listedAt"`
	DurationDays int       `json:"durationDays"`
	Status       string    `json:"status"`
}

type ConstructionProject struct {
	ID           string    `json:"id"`
	PropertyType string    `json:"propertyType"`
	Variant      string    `json:"variant"`
	Units        int       `json:"units"`
	Towers       int       `json:"towers,omitempty"`
	Floors       int       `json:"floors,omitempty"`
	LandUsed     float64   `json:"landUsed"`
	LocationID   string    `json:"locationId"`
	Cost         int64     `json:"cost"`
	DurationDays int       `json:"durationDays"`
	StartTime    time.Time `json:"startTime"`
	DailyIncome  int64     `json:"projectedDailyIncome"`
}

const (
	FinanceModeIdle   = "idle"
	FinanceModeRented = "rented"
)

type Asset struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Variant    string       `json:"variant"`
	Units      int          `json:"units"`
	Towers     int          `json:"towers,omitempty"`
	Floors     int          `json:"floors,omitempty"`
	LandUsed   float64      `json:"landUsed"`
	LocationID string       `json:"locationId"`
	Cost       int64        `json:"cost"`
	Finance    AssetFinance `json:"finance"`
}

type AssetFinance struct {
	Mode          string        `json:"mode"`
	RentPrice     int64         `json:"rentPrice,omitempty"`
	OccupiedUnits int           `json:"occupiedUnits,omitempty"`
	OccRange      *OccRange     `json:"occRange,omitempty"`
	Sell          *PropertySale `json:"sell,omitempty"`
}

type OccRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type PropertySale struct {
	Status       string    `json:"status"`
	PricePerUnit int64     `json:"pricePerUnit"`
	TotalPrice   int64     `json:"totalPrice"`
	ListedAt     time.Time `json:"listedAt"`
	DurationDays int       `json:"durationDays"`
}

type MarketState struct {
	Cycle          string    `json:"cycle"`
	CycleStart     time.Time `json:"cycleStart"`
	DurationMonths int       `json:"durationMonths"`
	Volatility     float64   `json:"volatility"`
}

// LandPrice is the memoized monthly quote for one city.
type LandPrice struct {
	BasePrice  int64 `json:"basePrice"`
	FinalPrice int64 `json:"finalPrice"`
	Year       int   `json:"year"`
	Month      int   `json:"month"`
}

const (
	LoanStatusActive = "active"
	LoanStatusPaid   = "paid"
)

type Loan struct {
	ID                 string      `json:"id"`
	Principal          int64       `json:"principal"`
	Outstanding        int64       `json:"outstandingPrincipal"`
	MonthlyInstallment int64       `json:"monthlyInstallment"`
	RemainingMonths    int         `json:"remainingMonths"`
	TenorYears         int         `json:"tenorYears"`
	MonthlyRate        float64     `json:"monthlyRate"`
	StartDate          time.Time   `json:"startDate"`
	NextDueDate        time.Time   `json:"nextDueDate"`
	Status             string      `json:"status"`
	AutoPay            bool        `json:"autoPayEnabled"`
	LastPaidMonth      *MonthStamp `json:"lastPaidMonth,omitempty"`
	MissedPayments     int         `json:"missedPayments"`
	History            []LoanEntry `json:"history"`
}

type LoanEntry struct {
	PaidAt    time.Time `json:"paidAt"`
	Amount    int64     `json:"amount"`
	Interest  int64     `json:"interest"`
	Principal int64     `json:"principal"`
	Penalty   int64     `json:"penalty"`
}

// RentSimulation is the pure market response to a proposed monthly
// rent; nothing is mutated.
type RentSimulation struct {
	MinOcc        int    `json:"min_occ"`
	MaxOcc        int    `json:"max_occ"`
	DemandPercent int    `json:"demand_percent"`
	Maintenance   int64  `json:"maintenance"`
	Risk          string `json:"risk"`
	Warning       string `json:"warning"`
}

type SaleSimulation struct {
	Ratio        float64 `json:"ratio"`
	Risk         string  `json:"risk"`
	DurationDays int     `json:"duration_days"`
	MarketUnit   int64   `json:"market_unit,omitempty"`
	TotalPrice   int64   `json:"total_price"`
}

// BuildPlan is the costed result of sizing a project before any cash
// or land moves.
type BuildPlan struct {
	PropertyType string  `json:"property_type"`
	Variant      string  `json:"variant"`
	Units        int     `json:"units"`
	Towers       int     `json:"towers,omitempty"`
	Floors       int     `json:"floors,omitempty"`
	LandArea     float64 `json:"land_area"`
	Cost         int64   `json:"cost"`
	DurationDays int     `json:"duration_days"`
	DailyIncome  int64   `json:"projected_daily_income"`
}

type TickResult struct {
	GameTime     time.Time `json:"game_time"`
	DayProcessed bool      `json:"day_processed"`
	Day          *DayStamp `json:"day,omitempty"`
	Cash         int64     `json:"cash"`
}

type FinanceReport struct {
	Cash           int64         `json:"cash"`
	DailyIncome    int64         `json:"daily_income"`
	DailyExpense   int64         `json:"daily_expense"`
	AssetIncome    []AssetIncome `json:"asset_income"`
	LastDay        *DayRecord    `json:"last_day,omitempty"`
	MonthlyIncome  int64         `json:"monthly_income"`
	MonthlyExpense int64         `json:"monthly_expense"`
	YearlyIncome   int64         `json:"yearly_income"`
	YearlyExpense  int64         `json:"yearly_expense"`
}

type ROIProjection struct {
	NetMonthly int64   `json:"net_monthly"`
	NetPeriod  int64   `json:"net_period"`
	ROIPercent float64 `json:"roi_percent"`
	Months     int     `json:"months"`
}
