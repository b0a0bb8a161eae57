package game

import "fmt"

// Static market configuration. The simulation reads these tables and
// never mutates them.

type CityConfig struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	BasePrice  int64   `json:"basePrice"`
	Demand     float64 `json:"demand"`
	Volatility float64 `json:"volatility"`
	Tier       string  `json:"tier"`
}

var cityCatalog = []CityConfig{
	{ID: "jakarta", Name: "Jakarta", BasePrice: 42_000_000, Demand: 1.2, Volatility: 0.06, Tier: "metro"},
	{ID: "surabaya", Name: "Surabaya", BasePrice: 18_000_000, Demand: 1.05, Volatility: 0.05, Tier: "metro"},
	{ID: "bandung", Name: "Bandung", BasePrice: 16_000_000, Demand: 1.0, Volatility: 0.05, Tier: "metro"},
	{ID: "medan", Name: "Medan", BasePrice: 14_000_000, Demand: 0.95, Volatility: 0.05, Tier: "metro"},
	{ID: "batam", Name: "Batam", BasePrice: 22_000_000, Demand: 1.1, Volatility: 0.07, Tier: "metro"},

	{ID: "bali", Name: "Bali", BasePrice: 28_000_000, Demand: 1.25, Volatility: 0.07, Tier: "premium"},
	{ID: "lombok", Name: "Lombok", BasePrice: 11_000_000, Demand: 1.05, Volatility: 0.08, Tier: "premium"},

	{ID: "semarang", Name: "Semarang", BasePrice: 7_500_000, Demand: 0.95, Volatility: 0.05, Tier: "growth"},
	{ID: "yogyakarta", Name: "Yogyakarta", BasePrice: 7_000_000, Demand: 1.0, Volatility: 0.05, Tier: "growth"},
	{ID: "malang", Name: "Malang", BasePrice: 6_500_000, Demand: 0.95, Volatility: 0.05, Tier: "growth"},
	{ID: "solo", Name: "Solo", BasePrice: 5_500_000, Demand: 0.9, Volatility: 0.04, Tier: "growth"},
	{ID: "palembang", Name: "Palembang", BasePrice: 6_800_000, Demand: 0.9, Volatility: 0.05, Tier: "growth"},
	{ID: "pontianak", Name: "Pontianak", BasePrice: 6_200_000, Demand: 0.9, Volatility: 0.05, Tier: "growth"},
	{ID: "banjarmasin", Name: "Banjarmasin", BasePrice: 6_500_000, Demand: 0.9, Volatility: 0.05, Tier: "growth"},
	{ID: "manado", Name: "Manado", BasePrice: 7_200_000, Demand: 0.95, Volatility: 0.06, Tier: "growth"},

	{ID: "makassar", Name: "Makassar", BasePrice: 7_000_000, Demand: 0.9, Volatility: 0.07, Tier: "frontier"},
	{ID: "timika", Name: "Timika", BasePrice: 25_000_000, Demand: 1.30, Volatility: 0.20, Tier: "frontier"},
	{ID: "sorong", Name: "Sorong", BasePrice: 12_000_000, Demand: 1.10, Volatility: 0.15, Tier: "frontier"},
	{ID: "ambon", Name: "Ambon", BasePrice: 6_000_000, Demand: 0.85, Volatility: 0.08, Tier: "frontier"},
	{ID: "jayapura", Name: "Jayapura", BasePrice: 9_000_000, Demand: 1.0, Volatility: 0.12, Tier: "frontier"},

	{ID: "pidie", Name: "Pidie", BasePrice: 2_000_000, Demand: 0.8, Volatility: 0.04, Tier: "rural"},
	{ID: "garut", Name: "Garut", BasePrice: 3_500_000, Demand: 0.85, Volatility: 0.04, Tier: "rural"},
	{ID: "banyuwangi", Name: "Banyuwangi", BasePrice: 4_000_000, Demand: 0.9, Volatility: 0.04, Tier: "rural"},
	{ID: "wonosobo", Name: "Wonosobo", BasePrice: 3_200_000, Demand: 0.8, Volatility: 0.03, Tier: "rural"},
	{ID: "parepare", Name: "Parepare", BasePrice: 4_500_000, Demand: 0.85, Volatility: 0.04, Tier: "rural"},
	{ID: "lubuklinggau", Name: "Lubuk Linggau", BasePrice: 3_800_000, Demand: 0.85, Volatility: 0.04, Tier: "rural"},
	{ID: "lhokseumawe", Name: "Lhokseumawe", BasePrice: 4_200_000, Demand: 0.9, Volatility: 0.05, Tier: "rural"},
	{ID: "tegal", Name: "Tegal", BasePrice: 4_000_000, Demand: 0.9, Volatility: 0.04, Tier: "rural"},
}

func Cities() []CityConfig {
	out := make([]CityConfig, len(cityCatalog))
	copy(out, cityCatalog)
	return out
}

func CityByID(id string) (CityConfig, error) {
	for _, c := range cityCatalog {
		if c.ID == id {
			return c, nil
		}
	}
	return CityConfig{}, fmt.Errorf("%w: %s", ErrUnknownCity, id)
}

type VariantConfig struct {
	Cost          int64
	IncomePerUnit int64
	LandPerUnit   float64
	UnitsPerFloor int
	BaseDays      int
	DayScale      float64
}

type PropertyConfig struct {
	MinLand   float64
	MinUnits  int
	TowerLand float64
	MinFloors int
	MaxFloors int
	Variants  map[string]VariantConfig
}

const (
	PropertyHouse     = "House"
	PropertyShopHouse = "ShopHouse"
	PropertyApartment = "Apartment"
)

var propertyCatalog = map[string]PropertyConfig{
	PropertyHouse: {
		MinLand:  0.1,
		MinUnits: 5,
		Variants: map[string]VariantConfig{
			"Low":    {Cost: 250_000_000, IncomePerUnit: 1_200_000, LandPerUnit: 0.008, BaseDays: 20, DayScale: 0.4},
			"Middle": {Cost: 600_000_000, IncomePerUnit: 2_800_000, LandPerUnit: 0.012, BaseDays: 30, DayScale: 0.5},
			"High":   {Cost: 1_500_000_000, IncomePerUnit: 7_000_000, LandPerUnit: 0.025, BaseDays: 45, DayScale: 0.7},
		},
	},
	PropertyShopHouse: {
		MinLand:  0.15,
		MinUnits: 4,
		Variants: map[string]VariantConfig{
			// DayScale 1: one extra day per unit.
			"Standard": {Cost: 900_000_000, IncomePerUnit: 4_500_000, LandPerUnit: 0.015, BaseDays: 25, DayScale: 1},
			"Prime":    {Cost: 1_600_000_000, IncomePerUnit: 8_500_000, LandPerUnit: 0.015, BaseDays: 35, DayScale: 1},
			"Premium":  {Cost: 3_200_000_000, IncomePerUnit: 17_000_000, LandPerUnit: 0.018, BaseDays: 50, DayScale: 1},
		},
	},
	PropertyApartment: {
		MinLand:   0.3,
		TowerLand: 0.3,
		MinFloors: 5,
		MaxFloors: 100,
		Variants: map[string]VariantConfig{
			"Studio":    {Cost: 450_000_000, IncomePerUnit: 2_000_000, UnitsPerFloor: 8, BaseDays: 100, DayScale: 0.25},
			"2BR":       {Cost: 850_000_000, IncomePerUnit: 4_000_000, UnitsPerFloor: 6, BaseDays: 120, DayScale: 0.3},
			"Penthouse": {Cost: 2_500_000_000, IncomePerUnit: 11_000_000, UnitsPerFloor: 2, BaseDays: 150, DayScale: 0.5},
		},
	},
}

// propertyVariant resolves the two-level catalog lookup. A missing
// combination is a configuration error, not a validation failure.
func propertyVariant(propertyType, variant string) (PropertyConfig, VariantConfig, error) {
	cfg, ok := propertyCatalog[propertyType]
	if !ok {
		return PropertyConfig{}, VariantConfig{}, fmt.Errorf("%w: property type %q", ErrConfigMissing, propertyType)
	}
	v, ok := cfg.Variants[variant]
	if !ok {
		return PropertyConfig{}, VariantConfig{}, fmt.Errorf("%w: %s variant %q", ErrConfigMissing, propertyType, variant)
	}
	return cfg, v, nil
}

type RentBand struct {
	Min         int64
	Max         int64
	Maintenance int64
	BaseDemand  float64
}

var rentBands = map[string]map[string]RentBand{
	PropertyHouse: {
		"Low":    {Min: 10_000_000, Max: 16_000_000, Maintenance: 1_500_000, BaseDemand: 0.85},
		"Middle": {Min: 18_000_000, Max: 28_000_000, Maintenance: 2_500_000, BaseDemand: 0.75},
		"High":   {Min: 30_000_000, Max: 45_000_000, Maintenance: 4_000_000, BaseDemand: 0.6},
	},
	PropertyShopHouse: {
		"Standard": {Min: 15_000_000, Max: 25_000_000, Maintenance: 3_500_000, BaseDemand: 0.7},
		"Prime":    {Min: 25_000_000, Max: 40_000_000, Maintenance: 5_000_000, BaseDemand: 0.6},
		"Premium":  {Min: 55_000_000, Max: 75_000_000, Maintenance: 7_000_000, BaseDemand: 0.5},
	},
	PropertyApartment: {
		"Studio":    {Min: 6_000_000, Max: 9_000_000, Maintenance: 1_200_000, BaseDemand: 0.9},
		"2BR":       {Min: 11_000_000, Max: 18_000_000, Maintenance: 1_800_000, BaseDemand: 0.75},
		"Penthouse": {Min: 30_000_000, Max: 48_000_000, Maintenance: 3_500_000, BaseDemand: 0.45},
	},
}

func rentBand(propertyType, variant string) (RentBand, error) {
	byVariant, ok := rentBands[propertyType]
	if !ok {
		return RentBand{}, fmt.Errorf("%w: rent band for property type %q", ErrConfigMissing, propertyType)
	}
	b, ok := byVariant[variant]
	if !ok {
		return RentBand{}, fmt.Errorf("%w: rent band for %s variant %q", ErrConfigMissing, propertyType, variant)
	}
	return b, nil
}

func maintenanceRate(propertyType string) float64 {
	switch propertyType {
	case PropertyShopHouse:
		return 0.30
	case PropertyApartment:
		return 0.35
	}
	return 0.25
}

type CycleEffect struct {
	SellMultiplier    float64
	Demand            float64
	QuickSellDiscount [2]float64
	PremiumBonus      [2]float64
}

const (
	CycleNormal    = "normal"
	CycleBoom      = "boom"
	CycleExpansion = "expansion"
	CycleStagnant  = "stagnant"
	CycleRecession = "recession"
)

var cycleEffects = map[string]CycleEffect{
	CycleNormal:    {SellMultiplier: 1.0, Demand: 1.0, QuickSellDiscount: [2]float64{0.08, 0.10}, PremiumBonus: [2]float64{0.06, 0.10}},
	CycleBoom:      {SellMultiplier: 1.12, Demand: 1.15, QuickSellDiscount: [2]float64{0.07, 0.09}, PremiumBonus: [2]float64{0.10, 0.15}},
	CycleExpansion: {SellMultiplier: 1.05, Demand: 1.0, QuickSellDiscount: [2]float64{0.08, 0.10}, PremiumBonus: [2]float64{0.08, 0.12}},
	CycleStagnant:  {SellMultiplier: 1.0, Demand: 0.9, QuickSellDiscount: [2]float64{0.09, 0.11}, PremiumBonus: [2]float64{0.05, 0.08}},
	CycleRecession: {SellMultiplier: 0.85, Demand: 0.7, QuickSellDiscount: [2]float64{0.11, 0.14}, PremiumBonus: [2]float64{0.03, 0.06}},
}

// cycleEffect falls back to the normal regime for unknown names so a
// legacy save never breaks pricing.
func cycleEffect(name string) CycleEffect {
	if e, ok := cycleEffects[name]; ok {
		return e
	}
	return cycleEffects[CycleNormal]
}

func landROIRate(tier string) float64 {
	switch tier {
	case "metro", "premium":
		return 0.06
	case "growth", "frontier":
		return 0.045
	}
	return 0.03
}
