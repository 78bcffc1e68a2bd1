// Package upstream holds the HTTP plumbing shared by the provider adapters.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/pkg/metrics"
	"github.com/dasiro/saferoute/internal/pkg/telemetry"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 8 << 20

// Client issues provider requests with a per-call timeout. Every failure it
// returns is a *domain.UpstreamError carrying the provider name.
type Client struct {
	Provider string
	HTTP     *http.Client
	Timeout  time.Duration
}

// New returns a Client for provider with the given per-call timeout.
func New(provider string, timeout time.Duration) *Client {
	return &Client{
		Provider: provider,
		HTTP:     &http.Client{},
		Timeout:  timeout,
	}
}

// RequestFunc builds the outbound request from a context carrying the call deadline.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// Do runs build, sends the request and returns the body of a 2xx response.
func (c *Client) Do(ctx context.Context, build RequestFunc) (body []byte, err error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	ctx, span := telemetry.Tracer().Start(ctx, "upstream."+c.Provider,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.AttrProvider.String(c.Provider)),
	)
	start := time.Now()
	defer func() {
		metrics.ObserveUpstream(c.Provider, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := build(ctx)
	if err != nil {
		return nil, domain.NewUpstreamError(c.Provider, fmt.Errorf("build request: %w", err))
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamError(c.Provider, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewUpstreamError(c.Provider, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			Provider: c.Provider,
			Detail:   fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(body, 512)),
		}
	}
	return body, nil
}

// Malformed wraps a body decoding failure.
func (c *Client) Malformed(err error) *domain.UpstreamError {
	return domain.NewUpstreamError(c.Provider, fmt.Errorf("malformed response: %w", err))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
