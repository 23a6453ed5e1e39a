// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	service "github.com/okian/prospect/internal/app"
	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/internal/domain/types"
	"github.com/okian/prospect/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Athletes is the athlete surface used by HTTP handlers.
type Athletes interface {
	CreateAthlete(ctx context.Context, p model.Principal, d service.AthleteDraft) (model.Athlete, error)
	UpdateProfile(ctx context.Context, p model.Principal, id string, patch service.ProfilePatch) (model.Athlete, error)
	GetAthlete(ctx context.Context, p model.Principal, id string) (model.Athlete, error)
	MyAthlete(ctx context.Context, p model.Principal) (model.Athlete, error)
	DeleteAthlete(ctx context.Context, p model.Principal, id string) error
	ListAthletes(ctx context.Context, p model.Principal, q service.ListQuery) (types.AthleteList, error)
	SearchAthletes(ctx context.Context, p model.Principal, q service.ListQuery) (types.AthleteList, error)
}

// Ratings is the rating surface used by HTTP handlers.
type Ratings interface {
	Breakdown(ctx context.Context, p model.Principal, id string) (types.BreakdownResponse, error)
	SetSubScores(ctx context.Context, p model.Principal, id string, patch model.ScorePatch) (model.Athlete, error)
	Recalculate(ctx context.Context, p model.Principal, id string) (model.Athlete, error)
	RecalculateAll(ctx context.Context, p model.Principal) (types.BackfillReport, error)
}

// Dependencies bundles everything the handlers need from the service layer.
type Dependencies interface {
	Athletes
	Ratings
	StatsProvider
}

// Authenticator resolves the caller from an Authorization header. An empty
// header yields the anonymous principal.
type Authenticator interface {
	FromHeader(header string) (model.Principal, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	athleteHandler *AthleteHandler
	ratingHandler  *RatingHandler

	authn       Authenticator
	corsOrigins []string
	timeout     time.Duration
	logger      logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, authn Authenticator, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		athleteHandler: NewAthleteHandler(deps),
		ratingHandler:  NewRatingHandler(deps),
		authn:          authn,
		corsOrigins:    []string{"*"},
		timeout:        10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Router returns a chi router carrying the common middleware stack and every
// API route.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(RequestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}
	r.Use(MetricsMiddleware)
	s.Register(ctx, r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate(s.authn))

		r.Route("/athletes", func(r chi.Router) {
			r.Get("/", s.athleteHandler.HandleList)
			r.Post("/", s.athleteHandler.HandleCreate)
			r.Get("/search", s.athleteHandler.HandleSearch)
			r.Get("/me/profile", s.athleteHandler.HandleMine)
			r.Get("/{id}", s.athleteHandler.HandleGet)
			r.Put("/{id}", s.athleteHandler.HandleUpdate)
			r.Delete("/{id}", s.athleteHandler.HandleDelete)
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Post("/calculate", s.ratingHandler.HandleRecalculateAll)
			r.Post("/calculate/{athleteId}", s.ratingHandler.HandleRecalculate)
			r.Get("/{athleteId}/breakdown", s.ratingHandler.HandleBreakdown)
			r.Put("/{athleteId}", s.ratingHandler.HandleSetSubScores)
		})
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err and writes the matching error body. Server errors are
// logged and their detail withheld from the client.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

// decodeJSON reads a single JSON document from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
