package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"thematica/internal/analysis"
	"thematica/internal/jobs"
	"thematica/internal/types"
)

// Server exposes the bulk-analysis job API: submit, poll, watch.
type Server struct {
	queue    *jobs.Queue
	store    *jobs.Store
	validate *validator.Validate
	log      zerolog.Logger
}

func New(queue *jobs.Queue, store *jobs.Store, log zerolog.Logger) *Server {
	return &Server{
		queue:    queue,
		store:    store,
		validate: validator.New(),
		log:      log,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Post("/api/analysis/bulk", s.handleSubmit)
	r.Get("/api/jobs/{id}", s.handleJob)
	r.Get("/api/jobs/{id}/watch", s.handleWatch)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

type bulkRequest struct {
	Units             []types.DataUnit         `json:"units" validate:"required,min=1"`
	Themes            []types.Theme            `json:"themes" validate:"required,min=1"`
	Corrections       []types.SampleCorrection `json:"corrections"`
	GoldStandardUnits []types.GoldStandardUnit `json:"goldStandardUnits"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, "units and themes are required")
		return
	}

	id, err := s.queue.Submit(analysis.Request{
		Units:             in.Units,
		Themes:            in.Themes,
		Corrections:       in.Corrections,
		GoldStandardUnits: in.GoldStandardUnits,
	})
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "server is at capacity, try again later")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}
	s.log.Info().Str("job", id).Int("units", len(in.Units)).Msg("job accepted")
	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": id})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
