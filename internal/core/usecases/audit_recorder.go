package usecases

import (
	"context"
	"fmt"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
	"github.com/dasiro/saferoute/internal/pkg/metrics"
)

// AuditRecorder persists audit entries delivered by a broker subscription.
type AuditRecorder struct {
	store ports.RouteLogWriter
}

// NewAuditRecorder creates an AuditRecorder writing to store.
func NewAuditRecorder(store ports.RouteLogWriter) *AuditRecorder {
	return &AuditRecorder{store: store}
}

// Store writes one entry. An entry without an ID or a timestamp cannot be
// deduplicated, and one whose request snapshot does not validate cannot be
// stored; both are rejected as a ValidationError so the caller can drop them.
func (r *AuditRecorder) Store(ctx context.Context, entry *domain.RouteLogEntry) error {
	if entry == nil || entry.ID == "" {
		return &domain.ValidationError{Field: "id", Reason: "required"}
	}
	if entry.CreatedAt.IsZero() {
		return &domain.ValidationError{Field: "created_at", Reason: "required"}
	}
	if err := entry.Request.Validate(); err != nil {
		return err
	}
	if err := r.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("store audit entry %s: %w", entry.ID, err)
	}
	metrics.AuditEntriesStored.Inc()
	return nil
}

// Run subscribes to the audit stream and stores every entry until ctx ends.
func (r *AuditRecorder) Run(ctx context.Context, sub ports.RouteLogSubscriber) error {
	if err := sub.SubscribeRouteLogs(ctx, r.Store); err != nil {
		return fmt.Errorf("subscribe route logs: %w", err)
	}
	<-ctx.Done()
	return nil
}
