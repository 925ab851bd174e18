package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pelita-edu/pelita/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeNotify is the task type for delivering user notifications.
	TaskTypeNotify = "notify:send"
)

// Notification kinds carried in the task payload.
const (
	NotifyKindRoleChange   = "role_change"
	NotifyKindAnnouncement = "announcement"
	NotifyKindDirect       = "direct"
)

// NotifyPayload describes a notification to deliver. UserID zero means the
// notification fans out to every active user.
type NotifyPayload struct {
	UserID  int64  `json:"user_id,omitempty"`
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Body    string `json:"body,omitempty"`
}

// NewNotifyTask constructs an Asynq task.
func NewNotifyTask(payload NotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotify, data), nil
}

// NotifyHandler processes TaskTypeNotify tasks.
type NotifyHandler struct {
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewNotifyHandler constructs a notification task handler.
func NewNotifyHandler(logger *slog.Logger, metrics *jobmetrics.Metrics) *NotifyHandler {
	return &NotifyHandler{logger: logger, metrics: metrics}
}

// ProcessTask delivers a single notification. Delivery currently logs the
// payload; the channel integration (email/WhatsApp) plugs in here.
func (h *NotifyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload NotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	h.logger.Info("notification delivered",
		slog.Int64("user_id", payload.UserID),
		slog.String("kind", payload.Kind),
		slog.String("subject", payload.Subject),
	)
	h.metrics.AddNotifications(payload.Kind, 1)
	return nil
}
