package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/prospect/internal/app"
	"github.com/okian/prospect/internal/auth"
)

// AthleteHandler serves /api/v1/athletes.
type AthleteHandler struct {
	deps Athletes
}

// NewAthleteHandler creates a new athlete handler.
func NewAthleteHandler(deps Athletes) *AthleteHandler {
	return &AthleteHandler{deps: deps}
}

// HandleList handles GET /api/v1/athletes.
func (h *AthleteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_athletes"
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	page, err := h.deps.ListAthletes(r.Context(), auth.PrincipalFrom(r.Context()), q)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleSearch handles GET /api/v1/athletes/search. It accepts the listing
// filters plus a required q matched against first and last names.
func (h *AthleteHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_athletes"
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	page, err := h.deps.SearchAthletes(r.Context(), auth.PrincipalFrom(r.Context()), q)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleCreate handles POST /api/v1/athletes.
func (h *AthleteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_athlete"
	var draft service.AthleteDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := h.deps.CreateAthlete(r.Context(), auth.PrincipalFrom(r.Context()), draft)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/api/v1/athletes/"+a.ID)
	writeJSON(w, http.StatusCreated, a)
}

// HandleMine handles GET /api/v1/athletes/me/profile.
func (h *AthleteHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.MyAthlete(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		fail(w, r, Wrap("api.my_athlete", err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleGet handles GET /api/v1/athletes/{id}.
func (h *AthleteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.GetAthlete(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, Wrap("api.get_athlete", err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleUpdate handles PUT /api/v1/athletes/{id}.
func (h *AthleteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_athlete"
	var patch service.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := h.deps.UpdateProfile(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleDelete handles DELETE /api/v1/athletes/{id}.
func (h *AthleteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteAthlete(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		fail(w, r, Wrap("api.delete_athlete", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseListQuery(v url.Values) (service.ListQuery, error) {
	q := service.ListQuery{
		Sport:    v.Get("sport"),
		Query:    v.Get("q"),
		Location: v.Get("location"),
	}
	var err error
	if q.GraduationYear, err = intParam(v, "graduationYear"); err != nil {
		return q, err
	}
	if q.MinStars, err = floatParam(v, "minStars"); err != nil {
		return q, err
	}
	if q.MaxStars, err = floatParam(v, "maxStars"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(v, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(v, "offset"); err != nil {
		return q, err
	}
	return q, nil
}

func floatParam(v url.Values, key string) (float64, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}

func intParam(v url.Values, key string) (int, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}
