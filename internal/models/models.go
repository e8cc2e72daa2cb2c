package models

import (
	"time"
)

// CountryCode selects the market a valuation is displayed in. The set is
// closed; anything else falls back to US-style defaults downstream.
type CountryCode string

const (
	CountryIN CountryCode = "IN"
	CountryUS CountryCode = "US"
	CountryEU CountryCode = "EU"
	CountryUK CountryCode = "UK"
	CountryAE CountryCode = "AE"
)

var AllCountries = []CountryCode{CountryIN, CountryUS, CountryEU, CountryUK, CountryAE}

func (c CountryCode) Valid() bool {
	switch c {
	case CountryIN, CountryUS, CountryEU, CountryUK, CountryAE:
		return true
	}
	return false
}

// PropertyDetails is the raw form submission. Every field is optional and
// stringly typed; normalization and estimation apply their own defaults
// rather than rejecting malformed input.
type PropertyDetails struct {
	Address       string `json:"address"`
	PropertyType  string `json:"propertyType"`
	Bedrooms      string `json:"bedrooms"`
	Bathrooms     string `json:"bathrooms"`
	SquareFootage string `json:"squareFootage"`
	LotSize       string `json:"lotSize"`
	YearBuilt     string `json:"yearBuilt"`
	Condition     string `json:"condition"`
}

// PredictionFeatures is the numeric feature row sent to the pricing backend.
// Field names and JSON keys match the training columns of the remote model.
type PredictionFeatures struct {
	ID           int `json:"Id"`
	LotArea      int `json:"LotArea"`
	BedroomAbvGr int `json:"BedroomAbvGr"`
	FullBath     int `json:"FullBath"`
	OverallQual  int `json:"OverallQual"`
	YearBuilt    int `json:"YearBuilt"`
	GrLivArea    int `json:"GrLivArea"`
	TotRmsAbvGrd int `json:"TotRmsAbvGrd"`
	HalfBath     int `json:"HalfBath"`
	GarageCars   int `json:"GarageCars"`
	GarageArea   int `json:"GarageArea"`
	YearRemodAdd int `json:"YearRemodAdd"`
	KitchenAbvGr int `json:"KitchenAbvGr"`
	Fireplaces   int `json:"Fireplaces"`
	MoSold       int `json:"MoSold"`
	YrSold       int `json:"YrSold"`
}

type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ValuationResult is the point valuation plus its range, in USD-equivalent
// native units. Source is "model" when the remote prediction backed the
// value, "heuristic" otherwise.
type ValuationResult struct {
	CurrentValue    float64    `json:"current_value"`
	ConfidenceScore int        `json:"confidence_score"`
	PriceRange      PriceRange `json:"price_range"`
	LastUpdated     time.Time  `json:"last_updated"`
	Source          string     `json:"source"`

	Address   string  `json:"address"`
	Sqft      float64 `json:"sqft"`
	Bedrooms  float64 `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	YearBuilt int     `json:"year_built"`
}

// DisplayValuation is the headline trio in the selected country's visual
// units. On a country switch it is numerically re-converted from what was
// last shown, not recomputed from the USD source, so repeated switches may
// drift by a unit or so per hop.
type DisplayValuation struct {
	Current int64 `json:"current"`
	Low     int64 `json:"low"`
	High    int64 `json:"high"`
}

// SavedProperty is one entry in the user's saved comparables list. Price is
// stored pre-formatted in the currency it was saved under.
type SavedProperty struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Price     string    `json:"price"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// ValuationRecord is one row of the valuation audit log.
type ValuationRecord struct {
	ID           string      `json:"id"`
	Address      string      `json:"address"`
	Country      CountryCode `json:"country"`
	CurrentValue float64     `json:"current_value"`
	Low          float64     `json:"low"`
	High         float64     `json:"high"`
	Confidence   int         `json:"confidence"`
	Source       string      `json:"source"`
	CreatedAt    time.Time   `json:"created_at"`
}
