package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/usecases"
)

type auditHandler = func(ctx context.Context, e *domain.RouteLogEntry) error

func auditEntry(id string) *domain.RouteLogEntry {
	return &domain.RouteLogEntry{
		ID:        id,
		Request:   *routeRequest(domain.ProviderPathFilter),
		Provider:  "kakao",
		CreatedAt: time.Now().UTC(),
	}
}

type mockSubscriber struct {
	handlers chan auditHandler
	err      error
}

func (m *mockSubscriber) SubscribeRouteLogs(ctx context.Context, h auditHandler) error {
	if m.err != nil {
		return m.err
	}
	m.handlers <- h
	return nil
}

func TestAuditRecorder_Store(t *testing.T) {
	audit := &mockAudit{}
	rec := usecases.NewAuditRecorder(audit)

	entry := auditEntry("e1")
	require.NoError(t, rec.Store(context.Background(), entry))
	require.Len(t, audit.entries, 1)
	assert.Same(t, entry, audit.entries[0])
}

func TestAuditRecorder_RejectsIncompleteEntries(t *testing.T) {
	audit := &mockAudit{}
	rec := usecases.NewAuditRecorder(audit)

	var verr *domain.ValidationError
	noID := auditEntry("")
	err := rec.Store(context.Background(), noID)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)

	noTime := auditEntry("e1")
	noTime.CreatedAt = time.Time{}
	err = rec.Store(context.Background(), noTime)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "created_at", verr.Field)

	require.ErrorAs(t, rec.Store(context.Background(), nil), &verr)

	assert.Empty(t, audit.entries)
}

func TestAuditRecorder_RejectsEntryWithoutRequestPoints(t *testing.T) {
	audit := &mockAudit{}
	rec := usecases.NewAuditRecorder(audit)

	// What a JetStream message carrying only id and created_at decodes to.
	var entry domain.RouteLogEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","created_at":"2026-01-01T00:00:00Z"}`), &entry))

	var verr *domain.ValidationError
	require.NotPanics(t, func() { err := rec.Store(context.Background(), &entry); require.ErrorAs(t, err, &verr) })
	assert.Equal(t, "origin", verr.Field)

	noDest := auditEntry("e2")
	noDest.Request.Destination = nil
	require.ErrorAs(t, rec.Store(context.Background(), noDest), &verr)
	assert.Equal(t, "destination", verr.Field)

	assert.Empty(t, audit.entries)
}

func TestAuditRecorder_StoreFailureWrapped(t *testing.T) {
	boom := errors.New("db down")
	audit := &mockAudit{appendFn: func(ctx context.Context, e *domain.RouteLogEntry) error { return boom }}
	rec := usecases.NewAuditRecorder(audit)

	err := rec.Store(context.Background(), auditEntry("e1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "e1")
}

func TestAuditRecorder_RunDeliversUntilCancelled(t *testing.T) {
	audit := &mockAudit{}
	rec := usecases.NewAuditRecorder(audit)
	sub := &mockSubscriber{handlers: make(chan auditHandler, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx, sub) }()

	var handler auditHandler
	select {
	case handler = <-sub.handlers:
	case <-time.After(time.Second):
		t.Fatal("Run did not subscribe")
	}
	require.NoError(t, handler(ctx, auditEntry("e1")))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Len(t, audit.entries, 1)
}

func TestAuditRecorder_RunSubscribeError(t *testing.T) {
	rec := usecases.NewAuditRecorder(&mockAudit{})
	err := rec.Run(context.Background(), &mockSubscriber{err: errors.New("no jetstream")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no jetstream")
}
