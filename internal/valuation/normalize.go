package valuation

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/estateluxe/estateluxe/internal/models"
)

// IDSource supplies the opaque identifier stamped on outbound prediction
// requests. It is not required to be unique; the backend only needs the field
// present. Injected so tests can pin it.
type IDSource interface {
	NextID() int
}

type randomIDSource struct{}

func (randomIDSource) NextID() int {
	return rand.Intn(1_000_000)
}

// NewRandomIDSource returns the production ID source: a random integer in
// [0, 1,000,000) per request.
func NewRandomIDSource() IDSource {
	return randomIDSource{}
}

// Normalizer defaults. Parsing failures fall back here silently; malformed
// form input is never an error.
const (
	defaultBedrooms  = 3
	defaultBathrooms = 2
	defaultSqft      = 2000
	defaultYearBuilt = 2000
)

// Normalize converts the raw form submission into the numeric feature row the
// pricing backend expects. Bathrooms split into full baths plus one half bath
// when the fractional part is at least 0.5; room count is bedrooms plus baths
// plus the kitchen.
func Normalize(d models.PropertyDetails, now time.Time, ids IDSource) models.PredictionFeatures {
	bedrooms := parseIntDefault(d.Bedrooms, defaultBedrooms)
	bathrooms := parseFloatDefault(d.Bathrooms, defaultBathrooms)
	sqft := parseIntDefault(d.SquareFootage, defaultSqft)
	lotSize := parseIntDefault(d.LotSize, sqft)
	yearBuilt := parseIntDefault(d.YearBuilt, defaultYearBuilt)

	fullBath := int(math.Floor(bathrooms))
	halfBath := 0
	if bathrooms-math.Floor(bathrooms) >= 0.5 {
		halfBath = 1
	}

	return models.PredictionFeatures{
		ID:           ids.NextID(),
		LotArea:      lotSize,
		BedroomAbvGr: bedrooms,
		FullBath:     fullBath,
		OverallQual:  qualityScore(d.Condition),
		YearBuilt:    yearBuilt,
		GrLivArea:    sqft,
		TotRmsAbvGrd: bedrooms + fullBath + halfBath + 1, // + kitchen
		HalfBath:     halfBath,
		GarageCars:   0, // not collected by the form
		GarageArea:   0,
		YearRemodAdd: yearBuilt,
		KitchenAbvGr: 1,
		Fireplaces:   0,
		MoSold:       int(now.Month()),
		YrSold:       now.Year(),
	}
}

// qualityScore maps the condition category to the model's 1-10 overall
// quality feature.
func qualityScore(condition string) int {
	switch strings.ToLower(condition) {
	case "excellent":
		return 10
	case "good":
		return 7
	case "fair":
		return 5
	case "poor":
		return 3
	default:
		return 5
	}
}

func parseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v == 0 {
		return def
	}
	return v
}

func parseFloatDefault(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v == 0 {
		return def
	}
	return v
}
