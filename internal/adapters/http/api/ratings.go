package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/prospect/internal/auth"
	"github.com/okian/prospect/internal/domain/model"
)

// RatingHandler serves /api/v1/ratings.
type RatingHandler struct {
	deps Ratings
}

// NewRatingHandler creates a new rating handler.
func NewRatingHandler(deps Ratings) *RatingHandler {
	return &RatingHandler{deps: deps}
}

// HandleBreakdown handles GET /api/v1/ratings/{athleteId}/breakdown.
func (h *RatingHandler) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	resp, err := h.deps.Breakdown(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "athleteId"))
	if err != nil {
		fail(w, r, Wrap("api.breakdown", err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSetSubScores handles PUT /api/v1/ratings/{athleteId}.
func (h *RatingHandler) HandleSetSubScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_sub_scores"
	var patch model.ScorePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := h.deps.SetSubScores(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "athleteId"), patch)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleRecalculate handles POST /api/v1/ratings/calculate/{athleteId}.
func (h *RatingHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Recalculate(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "athleteId"))
	if err != nil {
		fail(w, r, Wrap("api.recalculate", err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleRecalculateAll handles POST /api/v1/ratings/calculate.
func (h *RatingHandler) HandleRecalculateAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.RecalculateAll(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		fail(w, r, Wrap("api.recalculate_all", err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
