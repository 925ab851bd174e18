package jobs

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/pelita-edu/pelita/internal/platform/httpx"
	"github.com/pelita-edu/pelita/internal/rbac"
)

// Handler exposes HTTP endpoints for direct notifications and queue health.
type Handler struct {
	client    *Client
	inspector *asynq.Inspector
	gate      rbac.Gate
	logger    *slog.Logger
	validator *validator.Validate
}

// NewHandler constructs an HTTP handler for the notification surface.
func NewHandler(client *Client, inspector *asynq.Inspector, gate rbac.Gate, logger *slog.Logger) *Handler {
	return &Handler{
		client:    client,
		inspector: inspector,
		gate:      gate,
		logger:    logger,
		validator: validator.New(),
	}
}

// MountRoutes attaches notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.PermNotificationSend))
		r.Post("/", h.send)
		r.Get("/health", h.health)
	})
}

type sendRequest struct {
	UserID  int64  `json:"user_id" validate:"omitempty,gt=0"`
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Body    string `json:"body" validate:"max=2000"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	info, err := h.client.Enqueue(r.Context(), NotifyPayload{
		UserID:  req.UserID,
		Kind:    NotifyKindDirect,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		h.logger.Error("enqueue notification", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"task_id": info.ID, "queue": info.Queue})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queue":"default","pending":0}`))
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("notification queue health", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	pending := 0
	queueName := QueueDefault
	if info != nil {
		pending = int(info.Pending)
		queueName = info.Queue
	}
	_, _ = w.Write([]byte(`{"queue":"` + queueName + `","pending":` + strconv.Itoa(pending) + `}`))
}
