package api

import (
	"log"
	"net/http"

	"github.com/estateluxe/estateluxe/internal/models"
)

type indexData struct {
	Country    models.CountryCode
	Countries  []models.CountryCode
	Saved      []models.SavedProperty
	Recent     []models.ValuationRecord
	BackendURL string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	country, err := s.store.GetCountry()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	saved, err := s.store.GetSavedProperties()
	if err != nil {
		log.Printf("api: load saved properties: %v", err)
	}
	recent, err := s.store.GetRecentValuations(10)
	if err != nil {
		log.Printf("api: load recent valuations: %v", err)
	}

	data := indexData{
		Country:    country,
		Countries:  models.AllCountries,
		Saved:      saved,
		Recent:     recent,
		BackendURL: s.predictor.BaseURL(),
	}
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("api: render index: %v", err)
	}
}
