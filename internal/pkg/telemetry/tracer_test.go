package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracer_NoopWithoutInit(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "test")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled())
}

func TestInitTracer_LazyConnect(t *testing.T) {
	// The gRPC exporter dials lazily, so construction succeeds without a collector.
	shutdown, err := InitTracer(context.Background(), "saferoute-test", "127.0.0.1:1")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}
