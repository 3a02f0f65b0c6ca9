// Package activity implements the audit trail. Every state-changing
// operation reachable from an authorized request records exactly one
// entry.
package activity

import (
	"context"
	"time"

	"github.com/iliyamo/client-portal/internal/logging"
	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/queue"
	"github.com/iliyamo/client-portal/internal/repository"
)

// Recorder appends immutable audit entries and mirrors them onto the
// message queue for downstream consumers.
type Recorder struct {
	store   repository.Store
	publish bool
}

// NewRecorder builds a recorder. publish controls whether events are
// mirrored to the broker; tests and broker-less deployments turn it
// off.
func NewRecorder(store repository.Store, publish bool) *Recorder {
	return &Recorder{store: store, publish: publish}
}

// Entry is the input for one audit record.
type Entry struct {
	UserID       uint64
	ActionType   string
	ResourceType string
	ResourceID   uint64
	ProjectID    *uint64
	Description  string
	Metadata     map[string]string
}

// Record appends the entry. The database write is authoritative and
// its error propagates; the queue publish is best-effort and only
// logged, so a broker outage never fails a portal request.
func (r *Recorder) Record(ctx context.Context, e Entry) (*model.Activity, error) {
	a := &model.Activity{
		UserID:       e.UserID,
		ActionType:   e.ActionType,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		ProjectID:    e.ProjectID,
		Description:  e.Description,
		Metadata:     e.Metadata,
	}
	if err := r.store.CreateActivity(ctx, a); err != nil {
		return nil, err
	}
	if r.publish {
		event := queue.ActivityRecordedEvent{
			ActivityID:   a.ID,
			UserID:       a.UserID,
			ActionType:   a.ActionType,
			ResourceType: a.ResourceType,
			ResourceID:   a.ResourceID,
			ProjectID:    a.ProjectID,
			Description:  a.Description,
			Metadata:     a.Metadata,
			RecordedAt:   a.CreatedAt.Format(time.RFC3339),
		}
		if err := queue.PublishActivityRecorded(ctx, event); err != nil {
			logging.Logger.WithError(err).
				WithField("activity_id", a.ID).
				Warn("activity event publish failed")
		}
	}
	return a, nil
}
