package api

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/estateluxe/estateluxe/internal/currency"
	"github.com/estateluxe/estateluxe/internal/models"
	"github.com/estateluxe/estateluxe/internal/valuation"
)

// DisplayState is the headline trio as last shown, in display units for its
// country. Country switches re-convert these numbers in place.
type DisplayState struct {
	Country models.CountryCode      `json:"country"`
	Display models.DisplayValuation `json:"display"`
	// SourceUSD is the authoritative point value before display scaling.
	SourceUSD float64 `json:"source_usd"`
	Seq       uint64  `json:"-"`
}

// ValuationView is the full response to a valuation request: the computed
// result, its display rendering, and the supporting panels.
type ValuationView struct {
	Country   models.CountryCode      `json:"country"`
	Result    models.ValuationResult  `json:"result"`
	Display   models.DisplayValuation `json:"display"`
	Formatted FormattedValuation      `json:"formatted"`
	// BackendError carries the prediction failure message when the value fell
	// back to the heuristic. The valuation itself is still usable.
	BackendError string `json:"backend_error,omitempty"`

	Projection valuation.Projection     `json:"projection"`
	History    valuation.HistorySeries  `json:"history"`
	Suggested  SuggestedPricing         `json:"suggested_pricing"`
	Trends     []MarketTrend            `json:"market_trends"`
	Comparable []ComparableSale         `json:"comparable_sales"`
	Factors    []string                 `json:"factors"`
}

type FormattedValuation struct {
	Current string `json:"current"`
	Low     string `json:"low"`
	High    string `json:"high"`
}

// SuggestedPricing positions the property against the market's average and
// luxury bands. Band values are in display units like the headline; the
// per-sqft figures are not display-scaled.
type SuggestedPricing struct {
	AverageLow  int64 `json:"average_low"`
	AverageHigh int64 `json:"average_high"`
	LuxuryLow   int64 `json:"luxury_low"`
	LuxuryHigh  int64 `json:"luxury_high"`

	AvgPerSqft   int64  `json:"average_per_sqft,omitempty"`
	LuxPerSqft   int64  `json:"luxury_per_sqft,omitempty"`
	GuidanceNote string `json:"guidance_note,omitempty"`
}

type MarketTrend struct {
	Period   string  `json:"period"`
	Change   float64 `json:"change_pct"`
	AvgPrice int64   `json:"avg_price"`
}

type ComparableSale struct {
	Address   string  `json:"address"`
	Price     float64 `json:"price"`
	Sqft      int     `json:"sqft"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	SoldDate  string  `json:"sold_date"`
}

// marketTrends is static market context shown beside every valuation.
var marketTrends = []MarketTrend{
	{Period: "1year", Change: 8.5, AvgPrice: 485000},
	{Period: "3years", Change: 22.3, AvgPrice: 520000},
	{Period: "5years", Change: 18.7, AvgPrice: 495000},
}

var comparableSales = []ComparableSale{
	{Address: "125 Oak Street", Price: 475000, Sqft: 2100, Bedrooms: 3, Bathrooms: 2, SoldDate: "Dec 2023"},
	{Address: "118 Maple Avenue", Price: 492000, Sqft: 2200, Bedrooms: 3, Bathrooms: 2.5, SoldDate: "Nov 2023"},
	{Address: "134 Pine Street", Price: 468000, Sqft: 2050, Bedrooms: 3, Bathrooms: 2, SoldDate: "Jan 2024"},
}

// comparablesFor filters the sales list to entries priced within 25% of the
// subject value, in USD terms. When nothing is close enough the full list is
// shown rather than an empty panel.
func comparablesFor(currentUSD float64) []ComparableSale {
	if currentUSD <= 0 {
		return comparableSales
	}
	var out []ComparableSale
	for _, c := range comparableSales {
		if math.Abs(c.Price-currentUSD)/currentUSD <= 0.25 {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return comparableSales
	}
	return out
}

const sqftPerSqm = 10.7639

type pricingBand struct{ low, high float64 }

var countryLift = map[models.CountryCode]float64{
	models.CountryIN: 0.06,
	models.CountryUS: 0.04,
	models.CountryEU: 0.03,
	models.CountryUK: 0.03,
	models.CountryAE: 0.08,
}

// perSqftGuidance is the real-world per-ft² range in each country's native
// currency units.
var perSqftGuidance = map[models.CountryCode]pricingBand{
	models.CountryAE: {550, 900},
	models.CountryUS: {220, 500},
	models.CountryUK: {600, 1200},
	models.CountryEU: {500, 900},
	models.CountryIN: {8000, 25000},
}

// luxuryMultipliers lift the average band into luxury positioning.
var luxuryMultipliers = map[models.CountryCode]pricingBand{
	models.CountryIN: {1.6, 2.4},
	models.CountryUS: {1.3, 1.8},
	models.CountryEU: {1.4, 2.0},
	models.CountryUK: {1.5, 2.2},
	models.CountryAE: {1.6, 2.5},
}

func suggestedPricing(r models.ValuationResult, c models.CountryCode) SuggestedPricing {
	sizeAdj := math.Min(0.15, math.Max(-0.08, (r.Sqft-2150)/2150*0.06))
	lift, ok := countryLift[c]
	if !ok {
		lift = 0.04
	}

	avgLow := math.Round(r.CurrentValue * (0.98 + sizeAdj*0.3))
	avgHigh := math.Round(r.CurrentValue * (1.02 + sizeAdj*0.3))
	var note string
	if g, ok := perSqftGuidance[c]; ok && r.Sqft > 0 {
		// Ground the average band in the per-area guidance instead of the
		// point valuation.
		perSqmLow := g.low * sqftPerSqm
		perSqmHigh := g.high * sqftPerSqm
		sqm := r.Sqft / sqftPerSqm
		avgLow = math.Round(sqm * perSqmLow)
		avgHigh = math.Round(sqm * perSqmHigh)
		note = fmt.Sprintf("Guidance: ~ %s/m² - %s/m²",
			currency.Format(math.Round(perSqmLow), c),
			currency.Format(math.Round(perSqmHigh), c))
	}

	// Luxury sits above average; size and local lift nudge the multiplier
	// band a little either way.
	avgMid := (avgLow + avgHigh) / 2
	lm, ok := luxuryMultipliers[c]
	if !ok {
		lm = pricingBand{1.35, 1.9}
	}
	adjBand := math.Max(-0.05, math.Min(0.08, sizeAdj+lift*0.3))
	luxLow := math.Round(math.Max(avgLow, avgMid*(lm.low+adjBand)))
	luxHigh := math.Round(math.Max(avgHigh, avgMid*(lm.high+adjBand)))

	mult := currency.DisplayMultiplier(c)
	sp := SuggestedPricing{
		AverageLow:   int64(avgLow * mult),
		AverageHigh:  int64(avgHigh * mult),
		LuxuryLow:    int64(luxLow * mult),
		LuxuryHigh:   int64(luxHigh * mult),
		GuidanceNote: note,
	}
	if r.Sqft > 0 {
		sp.AvgPerSqft = int64(math.Round(avgMid / r.Sqft))
		sp.LuxPerSqft = int64(math.Round((luxLow + luxHigh) / 2 / r.Sqft))
	}
	return sp
}

// valuationFactors summarizes what moved the number, in display order.
func valuationFactors(d models.PropertyDetails, r models.ValuationResult) []string {
	var factors []string

	if r.Source == "model" {
		factors = append(factors, "Priced by the regression model from property features")
	} else {
		factors = append(factors, "Priced by the market heuristic")
	}

	if d.Address != "" {
		factors = append(factors, fmt.Sprintf("Location: %s", d.Address))
	}
	if d.PropertyType != "" {
		factors = append(factors, fmt.Sprintf("Property type: %s", d.PropertyType))
	}
	if r.Sqft > 0 {
		factors = append(factors, fmt.Sprintf("Living area: %s sqft", strconv.FormatFloat(r.Sqft, 'f', -1, 64)))
	}
	if r.YearBuilt > 0 {
		factors = append(factors, fmt.Sprintf("Year built: %d", r.YearBuilt))
	}
	if d.Condition != "" {
		factors = append(factors, fmt.Sprintf("Condition: %s", d.Condition))
	}
	return factors
}

// buildView assembles the full valuation view. The headline trio is the USD
// result scaled by the country's display multiplier; chart series reuse the
// same scaled anchor so the panels agree with the headline.
func buildView(d models.PropertyDetails, r models.ValuationResult, c models.CountryCode, backendErr string, now time.Time) ValuationView {
	mult := currency.DisplayMultiplier(c)
	display := models.DisplayValuation{
		Current: int64(math.Round(r.CurrentValue * mult)),
		Low:     int64(math.Round(r.PriceRange.Low * mult)),
		High:    int64(math.Round(r.PriceRange.High * mult)),
	}

	anchor := float64(display.Current)
	return ValuationView{
		Country: c,
		Result:  r,
		Display: display,
		Formatted: FormattedValuation{
			Current: currency.Format(float64(display.Current), c),
			Low:     currency.Format(float64(display.Low), c),
			High:    currency.Format(float64(display.High), c),
		},
		BackendError: backendErr,
		Projection:   valuation.Project(anchor, c, valuation.ScenarioBase, 15, now.Year()),
		History:      valuation.History(anchor, c, now.Year()),
		Suggested:    suggestedPricing(r, c),
		Trends:       marketTrends,
		Comparable:   comparablesFor(r.CurrentValue),
		Factors:      valuationFactors(d, r),
	}
}
