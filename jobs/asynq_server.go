package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pelita-edu/pelita/internal/jobs"
)

// Worker wraps the Asynq server that consumes the notification queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Handlers  []TaskHandler
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Logger == nil {
		return nil, errors.New("worker: logger required")
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	notify := NewNotifyHandler(cfg.Logger, cfg.Metrics)
	mux.HandleFunc(TaskTypeNotify, instrument(cfg.Metrics, "notify_send", notify.ProcessTask))
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func instrument(metrics *jobmetrics.Metrics, job string, fn asynq.HandlerFunc) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(job)
		return tracker.End(fn(ctx, t))
	}
}

// Client submits notification jobs to the queue. It satisfies the notifier
// hooks of the role and calendar services; enqueue failures are logged and
// swallowed so the originating write never fails on queue trouble.
type Client struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt, logger *slog.Logger) *Client {
	return &Client{client: asynq.NewClient(redisOpts), logger: logger}
}

// Enqueue submits a notification task.
func (c *Client) Enqueue(ctx context.Context, payload NotifyPayload) (*asynq.TaskInfo, error) {
	task, err := NewNotifyTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// RoleChanged enqueues a role-change notification for the affected user.
func (c *Client) RoleChanged(userID int64, roleName, change string) {
	c.enqueueBestEffort(NotifyPayload{
		UserID:  userID,
		Kind:    NotifyKindRoleChange,
		Subject: fmt.Sprintf("Peran %s telah %s", roleName, translateChange(change)),
	})
}

// AnnouncementPublished enqueues a broadcast notification for a new
// announcement-grade calendar event.
func (c *Client) AnnouncementPublished(eventID int64, title string) {
	c.enqueueBestEffort(NotifyPayload{
		Kind:    NotifyKindAnnouncement,
		Subject: "Pengumuman baru: " + title,
		Body:    fmt.Sprintf("event:%d", eventID),
	})
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) enqueueBestEffort(payload NotifyPayload) {
	if _, err := c.Enqueue(context.Background(), payload); err != nil && c.logger != nil {
		c.logger.Warn("enqueue notification",
			slog.String("kind", payload.Kind),
			slog.Any("error", err),
		)
	}
}

func translateChange(change string) string {
	switch change {
	case "assigned":
		return "diberikan"
	case "revoked":
		return "dicabut"
	default:
		return change
	}
}
