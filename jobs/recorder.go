package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/vendora-shop/vendora/internal/authz"
)

// Recorder implements authz.DecisionRecorder by enqueueing decisions for the
// background worker. Enqueueing keeps audit writes off the request path; a
// failed enqueue is the caller's to log, never to act on.
type Recorder struct {
	client *asynq.Client
}

// NewRecorder constructs a Recorder over an Asynq client.
func NewRecorder(client *asynq.Client) *Recorder {
	return &Recorder{client: client}
}

// Record enqueues one decision.
func (r *Recorder) Record(ctx context.Context, rec authz.DecisionRecord) error {
	task, err := NewRecordDecisionTask(RecordDecisionPayload{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Controller: rec.Controller,
		Handler:    rec.Handler,
		Allowed:    rec.Allowed,
		Kind:       rec.Kind,
		Reason:     rec.Reason,
		DecidedAt:  rec.At,
	})
	if err != nil {
		return err
	}
	_, err = r.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

var _ authz.DecisionRecorder = (*Recorder)(nil)
