package valuation

import (
	"math"
	"strings"
	"time"

	"github.com/estateluxe/estateluxe/internal/models"
)

// Estimator-side defaults. These intentionally differ from the normalizer
// defaults: the display heuristic always had its own baseline property.
const (
	estDefaultSqft      = 2150
	estDefaultBedrooms  = 3
	estDefaultBathrooms = 2.5
	estDefaultYearBuilt = 2015
)

const (
	bedroomAdjustment  = 4000 // per bedroom above/below 3
	bathroomAdjustment = 6000 // per bathroom above/below 2.5
	ageDepreciation    = 500  // per year of age
	valueFloor         = 40000
	spreadCap          = 0.40
)

// basePerSqft is the per-ft² baseline in each country's native currency
// units.
var basePerSqft = map[models.CountryCode]float64{
	models.CountryIN: 6000,
	models.CountryUS: 220,
	models.CountryEU: 350,
	models.CountryUK: 450,
	models.CountryAE: 700,
}

var typeMultipliers = map[string]float64{
	"single-family": 1.0,
	"condo":         0.95,
	"townhouse":     1.0,
	"duplex":        1.05,
	"apartment":     1.0,
	"mansion":       2.0,
	"land":          1.4,
	"land/lot":      1.4,
}

// locationPremiums is matched against the lowercased address in order; the
// first hit wins, so the ordering is load-bearing.
var locationPremiums = []struct {
	keyword string
	mult    float64
}{
	{"bengaluru", 1.4},
	{"bangalore", 1.4},
	{"mumbai", 1.6},
	{"delhi", 1.3}, // also covers "new delhi"
	{"hyderabad", 1.2},
	{"pune", 1.15},
	{"chennai", 1.2},
	{"dubai", 1.4},
	{"london", 1.3},
	{"san francisco", 1.3},
	{"new york", 1.3},
}

// locationMultiplier returns the premium for a recognized city keyword, a
// flat 1.15 for any other non-empty address, and 1.0 for an empty one.
func locationMultiplier(address string) float64 {
	addr := strings.ToLower(address)
	if addr == "" {
		return 1.0
	}
	for _, p := range locationPremiums {
		if strings.Contains(addr, p.keyword) {
			return p.mult
		}
	}
	return 1.15
}

func isLandType(propertyType string) bool {
	return propertyType == "land" || propertyType == "land/lot"
}

// Estimate computes the valuation for the property in the selected country.
// When predictedUSD is non-nil the remote model's price is used as the point
// value; otherwise the local heuristic produces it. The function is pure:
// identical inputs (including now) always yield identical output.
func Estimate(d models.PropertyDetails, country models.CountryCode, now time.Time, predictedUSD *float64) models.ValuationResult {
	sqft := parseFloatDefault(d.SquareFootage, estDefaultSqft)
	bedrooms := parseFloatDefault(d.Bedrooms, estDefaultBedrooms)
	bathrooms := parseFloatDefault(d.Bathrooms, estDefaultBathrooms)
	yearBuilt := parseIntDefault(d.YearBuilt, estDefaultYearBuilt)

	typeMult := 1.0
	if m, ok := typeMultipliers[d.PropertyType]; ok {
		typeMult = m
	}
	countryBase, ok := basePerSqft[country]
	if !ok {
		countryBase = basePerSqft[models.CountryUS]
	}

	baseValuePerSqft := countryBase * typeMult * locationMultiplier(d.Address)
	land := isLandType(d.PropertyType)

	bedroomsAdj := (bedrooms - 3) * bedroomAdjustment
	bathroomsAdj := (bathrooms - 2.5) * bathroomAdjustment
	if land {
		bedroomsAdj, bathroomsAdj = 0, 0
	}

	age := now.Year() - yearBuilt
	if age < 0 {
		age = 0
	}
	yearAdj := -float64(age) * ageDepreciation

	var currentValue float64
	if predictedUSD != nil {
		currentValue = *predictedUSD
	} else {
		currentValue = math.Max(valueFloor, math.Round(sqft*baseValuePerSqft+bedroomsAdj+bathroomsAdj+yearAdj))
	}

	spread := rangeSpread(d.PropertyType, predictedUSD != nil)

	result := models.ValuationResult{
		CurrentValue: currentValue,
		PriceRange: models.PriceRange{
			Low:  math.Round(currentValue * (1 - spread)),
			High: math.Round(currentValue * (1 + spread)),
		},
		LastUpdated: now,
		Address:     d.Address,
		Sqft:        sqft,
		Bedrooms:    bedrooms,
		Bathrooms:   bathrooms,
		YearBuilt:   yearBuilt,
	}
	if predictedUSD != nil {
		result.ConfidenceScore = 95
		result.Source = "model"
	} else {
		result.ConfidenceScore = 90
		result.Source = "heuristic"
	}
	return result
}

// rangeSpread widens the low/high band for model-backed valuations and nudges
// it by property type, capped at 40%.
func rangeSpread(propertyType string, hasModel bool) float64 {
	base := 0.12
	if hasModel {
		base = 0.18
	}
	adjust := 0.0
	switch {
	case isLandType(propertyType):
		adjust = 0.08
	case propertyType == "condo":
		adjust = 0.05
	case propertyType == "townhouse":
		adjust = 0.03
	}
	return math.Min(spreadCap, base+adjust)
}
