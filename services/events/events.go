// Package events publishes registration lifecycle events for audit.
package events

import (
	"context"
	"sync"
	"time"

	"coursehub/logger"

	"go.uber.org/zap"
)

const (
	RegistrationCreated   = "registration.created"
	RegistrationPaid      = "registration.paid"
	RegistrationCancelled = "registration.cancelled"
	RegistrationCompleted = "registration.completed"
	RegistrationReviewed  = "registration.reviewed"
	CertificateIssued     = "registration.certificate_issued"
	StatusChanged         = "registration.status_changed"
	// StatusOverridden marks an admin status change outside the normal flow.
	StatusOverridden = "registration.status_overridden"
	CoursesImported  = "course.imported"
)

// Event is the message published for every state change.
type Event struct {
	Type           string            `json:"type"`
	RegistrationID string            `json:"registrationId,omitempty"`
	CourseID       string            `json:"courseId,omitempty"`
	ParticipantID  string            `json:"participantId,omitempty"`
	Actor          string            `json:"actor,omitempty"`
	From           string            `json:"from,omitempty"`
	To             string            `json:"to,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// Publisher sends events to a sink.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }

var (
	mu        sync.RWMutex
	publisher Publisher = noopPublisher{}
)

// SetPublisher replaces the global publisher and returns the previous one.
func SetPublisher(p Publisher) Publisher {
	mu.Lock()
	defer mu.Unlock()
	prev := publisher
	if p == nil {
		p = noopPublisher{}
	}
	publisher = p
	return prev
}

// Emit publishes best-effort: failures are logged and never returned.
func Emit(ctx context.Context, evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	mu.RLock()
	p := publisher
	mu.RUnlock()

	if err := p.Publish(ctx, evt); err != nil {
		logger.Warn("event publish failed",
			zap.String("type", evt.Type),
			zap.String("registrationId", evt.RegistrationID),
			zap.Error(err))
	}
}

// Close flushes and closes the global publisher.
func Close() error {
	mu.RLock()
	p := publisher
	mu.RUnlock()
	return p.Close()
}
