// Package api exposes the HTTP surface of the analytics and gamification engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/auth"
	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/domain"
	"github.com/SergiSalas/TFGAplicacioSalut-sub000/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/stats", h.stats)
	mux.HandleFunc("/v1/trends/steps", h.stepsTrends)
	mux.HandleFunc("/v1/trends/activity", h.activityTrends)
	mux.HandleFunc("/v1/level", h.level)
	mux.HandleFunc("/v1/challenges", h.challenges)
	mux.HandleFunc("/v1/challenges/generate", h.generateChallenges)
	mux.HandleFunc("/v1/challenges/progress", h.challengeProgress)
	mux.HandleFunc("/v1/records/steps", h.logSteps)
	mux.HandleFunc("/v1/records/activities", h.activities)
	mux.HandleFunc("/v1/records/sleep", h.logSleep)
	mux.HandleFunc("/v1/records/hydration", h.logHydration)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// requireClaims resolves the authenticated user and checks the scope,
// writing the error response itself when the request does not qualify.
func requireClaims(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthRead, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	report, err := h.service.GetActivityStats(r.Context(), claims.Subject, r.URL.Query().Get("period"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatsView{
		AverageSteps:     report.AverageSteps,
		TrendPercentage:  report.TrendPercentage,
		BestDay:          report.BestDay,
		TotalActivities:  report.TotalActivities,
		TotalDurationMin: report.TotalDurationMin,
		TotalCalories:    report.TotalCalories,
	})
}

func (h *Handler) stepsTrends(w http.ResponseWriter, r *http.Request) {
	h.trends(w, r, h.service.GetStepsTrends)
}

func (h *Handler) activityTrends(w http.ResponseWriter, r *http.Request) {
	h.trends(w, r, h.service.GetActivityTrends)
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, userID, period string) (domain.TrendReport, error)) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthRead, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}

	report, err := fetch(r.Context(), claims.Subject, period)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrendView{
		Labels: report.Labels,
		Values: report.Values,
		Unit:   report.Unit,
	})
}

func (h *Handler) level(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthRead, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	level, err := h.service.GetUserLevel(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LevelView{
		Level:     level.Level,
		Exp:       level.Exp,
		ExpToNext: level.ExpToNext,
	})
}

func (h *Handler) challenges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthRead, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	challenges, err := h.service.GetUserChallenges(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChallengeListResponse{Items: toChallengeViews(challenges)})
}

func (h *Handler) generateChallenges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	challenges, err := h.service.GenerateDailyChallenges(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChallengeListResponse{Items: toChallengeViews(challenges)})
}

func (h *Handler) challengeProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	var req ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	kind, err := domain.ParseChallengeKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if err := h.service.ApplyChallengeProgress(r.Context(), claims.Subject, kind, req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}

	challenges, err := h.service.GetUserChallenges(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChallengeListResponse{Items: toChallengeViews(challenges)})
}

func (h *Handler) logSteps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	var req LogStepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	record, err := h.service.LogSteps(r.Context(), claims.Subject, req.Date, req.StepCount, req.DurationMin)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RecordCreatedResponse{RecordID: record.ID})
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) logActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	var req LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	session, err := h.service.LogActivity(r.Context(), claims.Subject, req.ActivityType, req.Date, req.DurationMin, req.Calories)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ActivityCreatedResponse{
		RecordID: session.ID,
		Calories: session.Calories,
	})
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeHealthRead, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	sessions, next, err := h.service.ListActivities(r.Context(), claims.Subject, cursor, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, ActivityView{
			RecordID:     s.ID,
			ActivityType: s.ActivityType,
			Date:         s.Date,
			DurationMin:  s.DurationMin,
			Calories:     s.Calories,
		})
	}

	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) logSleep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	var req LogSleepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	record, err := h.service.LogSleep(r.Context(), claims.Subject, req.Date, req.DurationMin, req.QualityPercent)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RecordCreatedResponse{RecordID: record.ID})
}

func (h *Handler) logHydration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeHealthWrite)
	if !ok {
		return
	}

	var req LogHydrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	record, err := h.service.LogHydration(r.Context(), claims.Subject, req.Date, req.AmountML)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RecordCreatedResponse{RecordID: record.ID})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, domain.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, "validation_failed", "period must be week, month or year")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
