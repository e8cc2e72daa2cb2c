package api

import (
	"context"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/estateluxe/estateluxe/internal/predict"
	"github.com/estateluxe/estateluxe/internal/store"
	"github.com/estateluxe/estateluxe/internal/valuation"
)

type Server struct {
	store     *store.Store
	predictor *predict.Client
	ids       valuation.IDSource
	port      string
	tmpl      *template.Template

	// last is the most recent valuation shown, in its display currency. A
	// country switch re-converts these numbers rather than recomputing from
	// the USD source, so repeated switches can drift by a unit per hop.
	mu   sync.Mutex
	last *DisplayState
}

func NewServer(st *store.Store, predictor *predict.Client, ids valuation.IDSource, port string) *Server {
	return &Server{
		store:     st,
		predictor: predictor,
		ids:       ids,
		port:      port,
		tmpl:      newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/report", s.handleReport)
	mux.HandleFunc("/api/valuation", s.handleValuation)
	mux.HandleFunc("/api/projection", s.handleProjection)
	mux.HandleFunc("/api/projection.csv", s.handleProjectionCSV)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/convert", s.handleConvert)
	mux.HandleFunc("/api/saved", s.handleSaved)
	mux.HandleFunc("/api/saved/", s.handleSavedItem)
	mux.HandleFunc("/api/country", s.handleCountry)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
