package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/estateluxe/estateluxe/internal/currency"
	"github.com/estateluxe/estateluxe/internal/metrics"
	"github.com/estateluxe/estateluxe/internal/models"
	"github.com/estateluxe/estateluxe/internal/predict"
	"github.com/estateluxe/estateluxe/internal/valuation"
)

type valuationRequest struct {
	models.PropertyDetails
	Country models.CountryCode `json:"country"`
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	country := req.Country
	if country == "" {
		var err error
		country, err = s.store.GetCountry()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if !country.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown country %q", req.Country))
		return
	}

	now := time.Now()
	features := valuation.Normalize(req.PropertyDetails, now, s.ids)

	var (
		predicted  *float64
		backendErr string
	)
	p, err := s.predictor.Predict(r.Context(), features)
	if err != nil {
		// Fall back to the heuristic. The failure is reported alongside the
		// valuation, not instead of it.
		log.Printf("api: predict: %v", err)
		backendErr = err.Error()
	} else {
		predicted = &p.PriceUSD
	}

	result := valuation.Estimate(req.PropertyDetails, country, now, predicted)
	metrics.ValuationsTotal.WithLabelValues(result.Source).Inc()

	if _, err := s.store.InsertValuation(models.ValuationRecord{
		Address:      result.Address,
		Country:      country,
		CurrentValue: result.CurrentValue,
		Low:          result.PriceRange.Low,
		High:         result.PriceRange.High,
		Confidence:   result.ConfidenceScore,
		Source:       result.Source,
	}); err != nil {
		log.Printf("api: record valuation: %v", err)
	}

	view := buildView(req.PropertyDetails, result, country, backendErr, now)

	// A response from a superseded request still answers its caller, but must
	// not overwrite the shared headline state. Every request carries a
	// generation, fallback included, and the comparison happens under the
	// same lock as the write so a newer result cannot slip in between.
	s.mu.Lock()
	if s.last == nil || p.Seq >= s.last.Seq {
		s.last = &DisplayState{
			Country:   country,
			Display:   view.Display,
			SourceUSD: result.CurrentValue,
			Seq:       p.Seq,
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) projectionFromQuery(r *http.Request) (valuation.Projection, string, error) {
	q := r.URL.Query()

	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil || value <= 0 {
		return valuation.Projection{}, "", fmt.Errorf("value must be a positive number")
	}

	country := models.CountryCode(q.Get("country"))
	if country == "" {
		country, err = s.store.GetCountry()
		if err != nil {
			return valuation.Projection{}, "", err
		}
	}
	if !country.Valid() {
		return valuation.Projection{}, "", fmt.Errorf("unknown country %q", q.Get("country"))
	}

	years := 15
	if ys := q.Get("years"); ys != "" {
		years, err = strconv.Atoi(ys)
		if err != nil || years < 1 || years > 30 {
			return valuation.Projection{}, "", fmt.Errorf("years must be between 1 and 30")
		}
	}

	scenario := valuation.Scenario(q.Get("scenario"))
	if scenario == "" {
		scenario = valuation.ScenarioBase
	}
	switch scenario {
	case valuation.ScenarioBase, valuation.ScenarioOptimistic, valuation.ScenarioPessimistic:
	default:
		return valuation.Projection{}, "", fmt.Errorf("unknown scenario %q", q.Get("scenario"))
	}

	name := fmt.Sprintf("estate-luxe-projection-%dy-%s.csv", years, scenario)
	return valuation.Project(value, country, scenario, years, time.Now().Year()), name, nil
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	p, _, err := s.projectionFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProjectionCSV(w http.ResponseWriter, r *http.Request) {
	p, filename, err := s.projectionFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	cw.Write([]string{"year", "value"})
	for i, year := range p.Years {
		cw.Write([]string{
			strconv.Itoa(year),
			strconv.FormatFloat(p.Values[i], 'f', 0, 64),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("api: write csv: %v", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil || value <= 0 {
		writeError(w, http.StatusBadRequest, "value must be a positive number")
		return
	}

	country := models.CountryCode(q.Get("country"))
	if country == "" {
		country, err = s.store.GetCountry()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if !country.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown country %q", q.Get("country")))
		return
	}

	writeJSON(w, http.StatusOK, valuation.History(value, country, time.Now().Year()))
}

type convertRequest struct {
	Current float64            `json:"current"`
	Low     float64            `json:"low"`
	High    float64            `json:"high"`
	From    models.CountryCode `json:"from"`
	To      models.CountryCode `json:"to"`
}

type convertResponse struct {
	Current   int64              `json:"current"`
	Low       int64              `json:"low"`
	High      int64              `json:"high"`
	Formatted FormattedValuation `json:"formatted"`
	Country   models.CountryCode `json:"country"`
}

// handleConvert rescales an already-displayed trio into another country's
// units. It operates on the displayed numbers, so round-tripping is not exact.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.From.Valid() || !req.To.Valid() {
		writeError(w, http.StatusBadRequest, "from and to must be valid countries")
		return
	}

	resp := convertResponse{
		Current: int64(math.Round(currency.Convert(req.Current, req.From, req.To))),
		Low:     int64(math.Round(currency.Convert(req.Low, req.From, req.To))),
		High:    int64(math.Round(currency.Convert(req.High, req.From, req.To))),
		Country: req.To,
	}
	resp.Formatted = FormattedValuation{
		Current: currency.Format(float64(resp.Current), req.To),
		Low:     currency.Format(float64(resp.Low), req.To),
		High:    currency.Format(float64(resp.High), req.To),
	}
	writeJSON(w, http.StatusOK, resp)
}

type savePropertyRequest struct {
	Address string `json:"address"`
	Price   string `json:"price"`
	Details string `json:"details"`
}

func (s *Server) handleSaved(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		properties, err := s.store.GetSavedProperties()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if properties == nil {
			properties = []models.SavedProperty{}
		}
		writeJSON(w, http.StatusOK, properties)

	case http.MethodPost:
		var req savePropertyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Address == "" || req.Price == "" {
			writeError(w, http.StatusBadRequest, "address and price are required")
			return
		}
		p := models.SavedProperty{
			Address: req.Address,
			Price:   req.Price,
			Details: req.Details,
		}
		inserted, err := s.store.SaveProperty(p)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !inserted {
			writeJSON(w, http.StatusOK, map[string]bool{"duplicate": true})
			return
		}
		metrics.SavedPropertiesTotal.Inc()
		writeJSON(w, http.StatusCreated, map[string]bool{"saved": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or POST required")
	}
}

func (s *Server) handleSavedItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "DELETE required")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/saved/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing property id")
		return
	}
	if err := s.store.DeleteSavedProperty(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type countryResponse struct {
	Country models.CountryCode `json:"country"`
	Display *DisplayState      `json:"display,omitempty"`
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c, err := s.store.GetCountry()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, countryResponse{Country: c})

	case http.MethodPut:
		var req struct {
			Country models.CountryCode `json:"country"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !req.Country.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown country %q", req.Country))
			return
		}
		if err := s.store.SetCountry(req.Country); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		// The headline trio is re-converted from whatever was last displayed
		// rather than recomputed from USD, so the visible number doesn't
		// jump. Drift of a unit per switch is accepted.
		resp := countryResponse{Country: req.Country}
		s.mu.Lock()
		if s.last != nil && s.last.Country != req.Country {
			from := s.last.Country
			s.last.Display = models.DisplayValuation{
				Current: int64(math.Round(currency.Convert(float64(s.last.Display.Current), from, req.Country))),
				Low:     int64(math.Round(currency.Convert(float64(s.last.Display.Low), from, req.Country))),
				High:    int64(math.Round(currency.Convert(float64(s.last.Display.High), from, req.Country))),
			}
			s.last.Country = req.Country
		}
		if s.last != nil {
			state := *s.last
			resp.Display = &state
		}
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, resp)

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or PUT required")
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var payload predict.ReportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pdf, err := s.predictor.GenerateReport(r.Context(), payload)
	if err != nil {
		log.Printf("api: generate report: %v", err)
		metrics.ReportsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	metrics.ReportsTotal.WithLabelValues("ok").Inc()

	filename := fmt.Sprintf("estate-luxe-valuation-%s.pdf", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(pdf)
}

type healthStatus struct {
	Status  string `json:"status"`
	DB      string `json:"db"`
	Backend string `json:"backend"`
}

// handleHealth reports database and backend reachability. A dead backend
// degrades the service (heuristic-only valuations) but does not fail it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := healthStatus{Status: "ok", DB: "ok", Backend: "ok"}
	status := http.StatusOK

	if err := s.store.DB().PingContext(r.Context()); err != nil {
		health.Status = "error"
		health.DB = err.Error()
		status = http.StatusServiceUnavailable
	}

	// Single probe, no retry loop: a health check must answer fast even
	// when the backend is down.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.predictor.Healthy(ctx); err != nil {
		health.Backend = err.Error()
		if health.Status == "ok" {
			health.Status = "degraded"
		}
	}

	writeJSON(w, status, health)
}
