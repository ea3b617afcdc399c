// Package audit appends immutable records of mutating actions.
//
// Writes are best-effort by design: the audit append happens after the
// business mutation commits, and a failed append is logged rather than
// unwinding the completed mutation. Callers that need stronger coupling
// must write through the same storage transaction themselves.
package audit

import (
	"log"
	"time"

	"bariq/internal/models"
	"bariq/internal/repositories"

	"github.com/google/uuid"
)

// Actor identifies who performed an action.
type Actor struct {
	Type  string
	ID    string
	Email string
	IP    string
}

// Recorder appends audit entries.
type Recorder interface {
	Record(actor Actor, action, entityType, entityID string, oldValues, newValues models.JSON)
}

type recorder struct {
	repo repositories.AuditRepository
}

func NewRecorder(repo repositories.AuditRepository) Recorder {
	return &recorder{repo: repo}
}

func (r *recorder) Record(actor Actor, action, entityType, entityID string, oldValues, newValues models.JSON) {
	entry := &models.AuditLog{
		ID:         uuid.NewString(),
		ActorType:  actor.Type,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		ActorIP:    actor.IP,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.repo.Append(entry); err != nil {
		log.Printf("audit: failed to record %s on %s/%s: %v", action, entityType, entityID, err)
	}
}

// NoopRecorder discards all entries; used in tests.
type NoopRecorder struct{}

func (NoopRecorder) Record(actor Actor, action, entityType, entityID string, oldValues, newValues models.JSON) {
}
