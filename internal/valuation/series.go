package valuation

import (
	"math"

	"github.com/estateluxe/estateluxe/internal/models"
)

type Scenario string

const (
	ScenarioBase        Scenario = "base"
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioPessimistic Scenario = "pessimistic"
)

const seriesFloor = 50000

// growthByCountry is the annual market growth rate used by both the forward
// projection and the synthetic history, so the two stay aligned.
var growthByCountry = map[models.CountryCode]float64{
	models.CountryIN: 0.055,
	models.CountryUS: 0.035,
	models.CountryEU: 0.025,
	models.CountryUK: 0.022,
	models.CountryAE: 0.045,
}

var volatilityByCountry = map[models.CountryCode]float64{
	models.CountryIN: 0.10,
	models.CountryUS: 0.06,
	models.CountryEU: 0.05,
	models.CountryUK: 0.05,
	models.CountryAE: 0.08,
}

// GrowthRate returns the compound annual rate for the country under the
// scenario: optimistic +1pt, pessimistic -1pt.
func GrowthRate(c models.CountryCode, scenario Scenario) float64 {
	g, ok := growthByCountry[c]
	if !ok {
		g = 0.03
	}
	switch scenario {
	case ScenarioOptimistic:
		g += 0.01
	case ScenarioPessimistic:
		g -= 0.01
	}
	return g
}

type Projection struct {
	Years       []int     `json:"years"`
	Values      []float64 `json:"values"`
	Growth      float64   `json:"growth"`
	CAGR        float64   `json:"cagr"`
	TotalChange float64   `json:"total_change"`
}

// Project compounds the current value forward yearsAhead years, yielding
// yearsAhead+1 points starting at startYear. CAGR and total change are
// derived from the first and last emitted values so they remain consistent
// with what is actually charted.
func Project(current float64, c models.CountryCode, scenario Scenario, yearsAhead, startYear int) Projection {
	g := GrowthRate(c, scenario)

	p := Projection{
		Years:  make([]int, yearsAhead+1),
		Values: make([]float64, yearsAhead+1),
		Growth: g,
	}
	for i := 0; i <= yearsAhead; i++ {
		p.Years[i] = startYear + i
		p.Values[i] = math.Max(seriesFloor, math.Round(current*math.Pow(1+g, float64(i))))
	}

	first := p.Values[0]
	last := p.Values[yearsAhead]
	p.CAGR = (math.Pow(last/first, 1/float64(yearsAhead)) - 1) * 100
	p.TotalChange = (last - first) / first * 100
	return p
}

// historyWindow is the number of yearly points in the synthetic history.
const historyWindow = 15

type HistorySeries struct {
	Years  []int     `json:"years"`
	Values []float64 `json:"values"`
}

// wobble is the deterministic pseudo-variation added to the synthetic
// history. It must stay a pure function of (index, country): the same inputs
// always reproduce the same series.
func wobble(t int, c models.CountryCode) float64 {
	vol, ok := volatilityByCountry[c]
	if !ok {
		vol = 0.06
	}
	var seed float64
	if len(c) > 0 {
		seed = float64(c[0])
	}
	return math.Sin((float64(t)+seed)*1.3) * vol
}

// History synthesizes the 15-year backward price series anchored on the
// current value. The series is built forward from anchor/(1+g)^14 so
// compounding error doesn't accumulate; the final point still carries its
// wobble term, so it lands near, not exactly on, the anchor.
func History(anchor float64, c models.CountryCode, nowYear int) HistorySeries {
	g := GrowthRate(c, ScenarioBase)
	base := anchor / math.Pow(1+g, historyWindow-1)

	h := HistorySeries{
		Years:  make([]int, historyWindow),
		Values: make([]float64, historyWindow),
	}
	for t := 0; t < historyWindow; t++ {
		h.Years[t] = nowYear - (historyWindow - 1 - t)
		v := base * math.Pow(1+g, float64(t)) * (1 + wobble(t, c)*0.4)
		h.Values[t] = math.Max(seriesFloor, math.Round(v))
	}
	return h
}
