package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeWelcomeEmail greets a freshly registered user.
	TaskTypeWelcomeEmail = "mail:welcome"
	// TaskTypeSessionsPrune removes expired session audit rows.
	TaskTypeSessionsPrune = "sessions:prune"
)

// WelcomeEmailPayload describes the information required to greet a new user.
type WelcomeEmailPayload struct {
	Username string `json:"username"`
}

// NewWelcomeEmailTask constructs an Asynq task.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWelcomeEmail, data), nil
}

// NewWelcomeEmailHandler processes TaskTypeWelcomeEmail tasks. Delivery goes
// through the local relay in development; the handler only records the send.
func NewWelcomeEmailHandler(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload WelcomeEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if logger != nil {
			logger.Info("welcome email queued for delivery", slog.String("username", payload.Username))
		}
		return nil
	}
}

// NewSessionsPruneTask constructs the periodic prune task.
func NewSessionsPruneTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionsPrune, nil)
}

// NewSessionsPruneHandler deletes session rows whose Redis counterpart has
// long expired.
func NewSessionsPruneHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
		if err != nil {
			return err
		}
		if logger != nil && tag.RowsAffected() > 0 {
			logger.Info("pruned expired sessions", slog.Int64("count", tag.RowsAffected()))
		}
		return nil
	}
}
