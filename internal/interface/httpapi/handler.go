// Package httpapi exposes the dashboard and rail pipeline over JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"freight-tracking-service/internal/domain/analytics"
	"freight-tracking-service/internal/domain/entity"
	"freight-tracking-service/internal/domain/pipeline"
	"freight-tracking-service/internal/domain/repository"
	"freight-tracking-service/internal/usecase"
	"freight-tracking-service/pkg/logger"
	"freight-tracking-service/pkg/utils"
)

// DashboardReader computes dashboards
type DashboardReader interface {
	GetDashboard(ctx context.Context, filter analytics.Filter) (*usecase.Dashboard, error)
}

// RailPipeline applies rail transitions
type RailPipeline interface {
	List(ctx context.Context, view pipeline.View) (*usecase.RailList, error)
	Transition(ctx context.Context, req usecase.TransitionRequest) (*entity.RailOperation, error)
	EditMilestones(ctx context.Context, req usecase.EditRequest) (*entity.RailOperation, error)
	BulkTransition(ctx context.Context, sel *pipeline.Selection, req usecase.BulkRequest) usecase.BulkResult
	Events(ctx context.Context, id int64) ([]*entity.TransitionEvent, error)
}

// Handler serves the JSON API
type Handler struct {
	dashboard DashboardReader
	rail      RailPipeline
	parser    *utils.DateParser
	logger    logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(dashboard DashboardReader, rail RailPipeline, parser *utils.DateParser, logger logger.Logger) *Handler {
	return &Handler{
		dashboard: dashboard,
		rail:      rail,
		parser:    parser,
		logger:    logger,
	}
}

// Register adds the API routes to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", h.getDashboard)
	mux.HandleFunc("GET /api/rail-operations", h.listRailOperations)
	mux.HandleFunc("POST /api/rail-operations/bulk", h.bulkTransition)
	mux.HandleFunc("POST /api/rail-operations/{id}/transitions", h.transition)
	mux.HandleFunc("PATCH /api/rail-operations/{id}/milestones", h.editMilestones)
	mux.HandleFunc("GET /api/rail-operations/{id}/events", h.events)
}

type transitionBody struct {
	Action       string  `json:"action"`
	Version      int64   `json:"version"`
	ScheduledAt  *string `json:"scheduledAt"`
	TargetStatus string  `json:"targetStatus"`
	Operator     string  `json:"operator"`
}

type milestonesBody struct {
	Version            int64   `json:"version"`
	PortArrival        *string `json:"portArrival"`
	TerminalEntry      *string `json:"terminalEntry"`
	DeliveryScheduled  *string `json:"deliveryScheduled"`
	DeliveryDispatched *string `json:"deliveryDispatched"`
	Delivery           *string `json:"delivery"`
	Operator           string  `json:"operator"`
}

type bulkBody struct {
	IDs          []int64 `json:"ids"`
	Action       string  `json:"action"`
	ScheduledAt  *string `json:"scheduledAt"`
	TargetStatus string  `json:"targetStatus"`
	View         string  `json:"view"`
	DryRun       bool    `json:"dryRun"`
	Operator     string  `json:"operator"`
}

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := analytics.Filter{
		Status:  analytics.StatusFilter(q.Get("status")),
		Range:   analytics.RangeFilter(q.Get("range")),
		Search:  q.Get("q"),
		Clients: q["client"],
		Booking: q.Get("booking"),
	}
	if !validStatusFilter(filter.Status) {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown status filter %q", filter.Status))
		return
	}
	if !validRangeFilter(filter.Range) {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown range filter %q", filter.Range))
		return
	}

	dashboard, err := h.dashboard.GetDashboard(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) listRailOperations(w http.ResponseWriter, r *http.Request) {
	view, ok := pipeline.ParseView(r.URL.Query().Get("view"))
	if !ok {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown view %q", r.URL.Query().Get("view")))
		return
	}

	list, err := h.rail.List(r.Context(), view)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var body transitionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	scheduledAt, err := h.optionalDate("scheduledAt", body.ScheduledAt)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	op, err := h.rail.Transition(r.Context(), usecase.TransitionRequest{
		ID:              id,
		ExpectedVersion: body.Version,
		Action:          pipeline.Action(body.Action),
		ScheduledAt:     scheduledAt,
		Target:          entity.RailStatus(body.TargetStatus),
		Operator:        body.Operator,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, op)
}

func (h *Handler) editMilestones(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var body milestonesBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	var edit entity.Milestones
	fields := []struct {
		name  string
		value *string
		dst   **time.Time
	}{
		{"portArrival", body.PortArrival, &edit.PortArrival},
		{"terminalEntry", body.TerminalEntry, &edit.TerminalEntry},
		{"deliveryScheduled", body.DeliveryScheduled, &edit.DeliveryScheduled},
		{"deliveryDispatched", body.DeliveryDispatched, &edit.DeliveryDispatched},
		{"delivery", body.Delivery, &edit.Delivery},
	}
	for _, f := range fields {
		parsed, err := h.optionalDate(f.name, f.value)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		*f.dst = parsed
	}

	op, err := h.rail.EditMilestones(r.Context(), usecase.EditRequest{
		ID:              id,
		ExpectedVersion: body.Version,
		Milestones:      edit,
		Operator:        body.Operator,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, op)
}

func (h *Handler) bulkTransition(w http.ResponseWriter, r *http.Request) {
	var body bulkBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	view, ok := pipeline.ParseView(body.View)
	if !ok {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown view %q", body.View))
		return
	}

	scheduledAt, err := h.optionalDate("scheduledAt", body.ScheduledAt)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	sel := pipeline.NewSelection(view)
	sel.Add(body.IDs...)
	if sel.Len() == 0 {
		h.writeError(w, http.StatusBadRequest, errors.New("ids must not be empty"))
		return
	}

	result := h.rail.BulkTransition(r.Context(), sel, usecase.BulkRequest{
		Action:      pipeline.Action(body.Action),
		ScheduledAt: scheduledAt,
		Target:      entity.RailStatus(body.TargetStatus),
		DryRun:      body.DryRun,
		Operator:    body.Operator,
	})
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	events, err := h.rail.Events(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []*entity.TransitionEvent{}
	}
	h.writeJSON(w, http.StatusOK, events)
}

// optionalDate accepts the display format and ISO-8601; absent means nil
func (h *Handler) optionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, ok := h.parser.Parse(*value)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", field, *value)
	}
	return &t, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func validStatusFilter(s analytics.StatusFilter) bool {
	switch s {
	case analytics.StatusAll, analytics.StatusLate, analytics.StatusOnTime, analytics.StatusPending:
		return true
	}
	return false
}

func validRangeFilter(r analytics.RangeFilter) bool {
	switch r {
	case analytics.RangeAll, analytics.RangeLast7Days, analytics.RangeLast30Days:
		return true
	}
	return false
}

// statusFromError maps service errors to HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrInvalidTransition),
		errors.Is(err, pipeline.ErrUnknownAction),
		errors.Is(err, usecase.ErrCanceled):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
	}
	h.writeError(w, status, err)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
