package api

import (
	"math"
	"testing"
	"time"

	"github.com/estateluxe/estateluxe/internal/models"
)

func TestComparablesFilterByPrice(t *testing.T) {
	t.Parallel()

	// Close to the comparables band: all three are within 25%.
	if got := comparablesFor(480000); len(got) != 3 {
		t.Errorf("comparables near band = %d, want 3", len(got))
	}

	// Far from the band: fall back to the full list rather than none.
	if got := comparablesFor(5000000); len(got) != 3 {
		t.Errorf("comparables far from band = %d, want full list of 3", len(got))
	}

	if got := comparablesFor(0); len(got) != 3 {
		t.Errorf("comparables with no value = %d, want full list", len(got))
	}
}

func TestSuggestedPricingUSGuidance(t *testing.T) {
	t.Parallel()
	r := models.ValuationResult{CurrentValue: 485000, Sqft: 2000}
	sp := suggestedPricing(r, models.CountryUS)

	// With per-ft² guidance the average band comes from area × guidance,
	// not the point valuation: 2000 × [220, 500].
	if sp.AverageLow != 440000 || sp.AverageHigh != 1000000 {
		t.Errorf("average band = [%d, %d], want [440000, 1000000]", sp.AverageLow, sp.AverageHigh)
	}

	// avgMid 720000, sizeAdj (2000-2150)/2150×0.06, US lift 0.04,
	// multipliers [1.3, 1.8] plus the adjusted band.
	if sp.LuxuryLow != 941626 || sp.LuxuryHigh != 1301626 {
		t.Errorf("luxury band = [%d, %d], want [941626, 1301626]", sp.LuxuryLow, sp.LuxuryHigh)
	}

	if sp.AvgPerSqft != 360 {
		t.Errorf("average per sqft = %d, want 360", sp.AvgPerSqft)
	}
	if sp.LuxPerSqft != 561 {
		t.Errorf("luxury per sqft = %d, want 561", sp.LuxPerSqft)
	}
	if sp.GuidanceNote != "Guidance: ~ $2,368/m² - $5,382/m²" {
		t.Errorf("guidance note = %q", sp.GuidanceNote)
	}
}

func TestSuggestedPricingDisplayScaling(t *testing.T) {
	t.Parallel()
	r := models.ValuationResult{CurrentValue: 200000, Sqft: 1000}
	sp := suggestedPricing(r, models.CountryIN)

	// Bands carry the IN display multiplier (75): 1000 × [8000, 25000] × 75.
	if sp.AverageLow != 600000000 || sp.AverageHigh != 1875000000 {
		t.Errorf("average band = [%d, %d], want [600000000, 1875000000]", sp.AverageLow, sp.AverageHigh)
	}

	// Per-sqft figures stay unscaled: avgMid 16.5M over 1000 sqft.
	if sp.AvgPerSqft != 16500 {
		t.Errorf("average per sqft = %d, want 16500", sp.AvgPerSqft)
	}
}

func TestSuggestedPricingNoSqft(t *testing.T) {
	t.Parallel()
	sp := suggestedPricing(models.ValuationResult{CurrentValue: 100000}, models.CountryUS)

	// No area: band around the point valuation, sizeAdj clamped at the
	// zero-sqft extreme (-0.06).
	if sp.AverageLow != 96200 || sp.AverageHigh != 100200 {
		t.Errorf("average band = [%d, %d], want [96200, 100200]", sp.AverageLow, sp.AverageHigh)
	}
	if sp.LuxuryLow != 122946 || sp.LuxuryHigh != 172046 {
		t.Errorf("luxury band = [%d, %d], want [122946, 172046]", sp.LuxuryLow, sp.LuxuryHigh)
	}
	if sp.AvgPerSqft != 0 || sp.LuxPerSqft != 0 {
		t.Errorf("per sqft without area = %d/%d, want 0", sp.AvgPerSqft, sp.LuxPerSqft)
	}
	if sp.GuidanceNote != "" {
		t.Errorf("guidance note without area = %q, want empty", sp.GuidanceNote)
	}
}

func TestSuggestedPricingLuxuryNeverBelowAverage(t *testing.T) {
	t.Parallel()
	for _, c := range models.AllCountries {
		sp := suggestedPricing(models.ValuationResult{CurrentValue: 485000, Sqft: 2150}, c)
		if sp.LuxuryLow < sp.AverageLow || sp.LuxuryHigh < sp.AverageHigh {
			t.Errorf("%s: luxury [%d, %d] dips below average [%d, %d]",
				c, sp.LuxuryLow, sp.LuxuryHigh, sp.AverageLow, sp.AverageHigh)
		}
	}
}

func TestBuildViewAppliesDisplayMultiplier(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	r := models.ValuationResult{
		CurrentValue: 100000,
		PriceRange:   models.PriceRange{Low: 88000, High: 112000},
		Source:       "heuristic",
	}

	view := buildView(models.PropertyDetails{}, r, models.CountryIN, "", now)
	if view.Display.Current != 7500000 {
		t.Errorf("IN display current = %d, want 7500000", view.Display.Current)
	}

	// Chart series anchor on the displayed value, so the panels agree with
	// the headline.
	if view.Projection.Values[0] != float64(view.Display.Current) {
		t.Errorf("projection anchor = %v, display = %d", view.Projection.Values[0], view.Display.Current)
	}
	if len(view.History.Values) != 15 {
		t.Errorf("history points = %d, want 15", len(view.History.Values))
	}
}

func TestBuildViewUSIsUnscaled(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	r := models.ValuationResult{
		CurrentValue: 485250.4,
		PriceRange:   models.PriceRange{Low: 427020.35, High: 543480.45},
		Source:       "model",
	}
	view := buildView(models.PropertyDetails{}, r, models.CountryUS, "", now)
	if view.Display.Current != int64(math.Round(r.CurrentValue)) {
		t.Errorf("US display current = %d, want %d", view.Display.Current, int64(math.Round(r.CurrentValue)))
	}
	if view.Formatted.Current != "$485,250" {
		t.Errorf("formatted = %q", view.Formatted.Current)
	}
}

func TestValuationFactors(t *testing.T) {
	t.Parallel()
	d := models.PropertyDetails{
		Address:      "Bandra West, Mumbai",
		PropertyType: "condo",
		Condition:    "excellent",
	}
	r := models.ValuationResult{Source: "heuristic", Sqft: 1200, YearBuilt: 2018}

	factors := valuationFactors(d, r)
	if len(factors) != 5 {
		t.Fatalf("factor count = %d: %v", len(factors), factors)
	}
	if factors[0] != "Priced by the market heuristic" {
		t.Errorf("first factor = %q", factors[0])
	}

	model := valuationFactors(models.PropertyDetails{}, models.ValuationResult{Source: "model"})
	if model[0] != "Priced by the regression model from property features" {
		t.Errorf("model factor = %q", model[0])
	}
}
