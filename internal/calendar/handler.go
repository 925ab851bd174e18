package calendar

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pelita-edu/pelita/internal/platform/httpx"
	"github.com/pelita-edu/pelita/internal/rbac"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Handler manages academic-calendar endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      rbac.Gate
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers calendar routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.PermCalendarView))
		r.Get("/", h.listEvents)
		r.Get("/{id}", h.getEvent)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.PermCalendarManage))
		r.Post("/", h.createEvent)
		r.Put("/{id}", h.updateEvent)
		r.Delete("/{id}", h.deleteEvent)
	})
}

type eventResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	IsAnnouncement bool      `json:"is_announcement"`
}

type createEventRequest struct {
	Title          string    `json:"title" validate:"required,min=2,max=160"`
	Description    string    `json:"description" validate:"max=1000"`
	StartsAt       time.Time `json:"starts_at" validate:"required"`
	EndsAt         time.Time `json:"ends_at" validate:"required"`
	IsAnnouncement bool      `json:"is_announcement"`
}

type updateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=2,max=160"`
	Description string    `json:"description" validate:"max=1000"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	from, ok := h.timeParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.timeParam(w, r, "to")
	if !ok {
		return
	}
	events, err := h.service.ListEvents(r.Context(), from, to)
	if err != nil {
		h.fail(w, "list events", err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": out})
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	e, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		h.fail(w, "get event", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEventResponse(e))
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	var createdBy int64
	if sess != nil {
		createdBy = sess.Principal().UserID
	}
	// Announcement-grade events fan out to every user, so they need the
	// dedicated permission on top of calendar management.
	if req.IsAnnouncement && (sess == nil || !rbac.Allowed(sess.Principal(), rbac.PermAnnouncementManage)) {
		h.fail(w, "create event", shared.ErrForbidden)
		return
	}
	e, err := h.service.CreateEvent(r.Context(), Event{
		Title:          req.Title,
		Description:    req.Description,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		IsAnnouncement: req.IsAnnouncement,
		CreatedBy:      createdBy,
	})
	if err != nil {
		h.fail(w, "create event", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEventResponse(e))
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateEventRequest
	if !h.decode(w, r, &req) {
		return
	}
	e, err := h.service.UpdateEvent(r.Context(), id, req.Title, req.Description, req.StartsAt, req.EndsAt)
	if err != nil {
		h.fail(w, "update event", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEventResponse(e))
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		h.fail(w, "delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) timeParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+name+" timestamp")
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func toEventResponse(e Event) eventResponse {
	return eventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		StartsAt:       e.StartsAt,
		EndsAt:         e.EndsAt,
		IsAnnouncement: e.IsAnnouncement,
	}
}
