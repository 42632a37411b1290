package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vendora-shop/vendora/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRecordDecision persists one authorization decision to the
	// audit trail.
	TaskTypeRecordDecision = "authz:record_decision"
)

// RecordDecisionPayload carries one decision to the worker.
type RecordDecisionPayload struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Controller string    `json:"controller"`
	Handler    string    `json:"handler"`
	Allowed    bool      `json:"allowed"`
	Kind       string    `json:"kind"`
	Reason     string    `json:"reason"`
	DecidedAt  time.Time `json:"decided_at"`
}

// NewRecordDecisionTask constructs an Asynq task for one decision.
func NewRecordDecisionTask(payload RecordDecisionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecordDecision, data), nil
}

// DecisionWriter persists decision entries; implemented by audit.Repository.
type DecisionWriter interface {
	Insert(ctx context.Context, entry audit.DecisionEntry) error
}

// NewRecordDecisionHandler returns the Asynq handler persisting decisions.
func NewRecordDecisionHandler(writer DecisionWriter, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RecordDecisionPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		entry := audit.DecisionEntry{
			ID:         payload.ID,
			UserID:     payload.UserID,
			Controller: payload.Controller,
			Handler:    payload.Handler,
			Allowed:    payload.Allowed,
			Kind:       payload.Kind,
			Reason:     payload.Reason,
			DecidedAt:  payload.DecidedAt,
		}
		if err := writer.Insert(ctx, entry); err != nil {
			if logger != nil {
				logger.Error("persist decision", slog.String("id", payload.ID), slog.Any("error", err))
			}
			return err
		}
		return nil
	}
}
