package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
	"github.com/dasiro/saferoute/internal/pkg/geospatial"
	"github.com/dasiro/saferoute/internal/pkg/logging"
	"github.com/dasiro/saferoute/internal/pkg/metrics"
	"github.com/dasiro/saferoute/internal/pkg/telemetry"
)

// hazardProvider names the hazard source in UpstreamErrors and metrics.
const hazardProvider = "hazards"

// SafeRouteService computes routes that avoid active hazard zones by
// delegating path search to a routing backend.
type SafeRouteService struct {
	hazards      ports.HazardRepository
	audit        ports.RouteLogWriter
	backends     map[domain.RouteProvider]ports.RoutingBackend
	circlePoints int
	now          func() time.Time
}

// NewSafeRouteService creates a new SafeRouteService. audit may be nil.
func NewSafeRouteService(
	hazards ports.HazardRepository,
	audit ports.RouteLogWriter,
	backends map[domain.RouteProvider]ports.RoutingBackend,
	circlePoints int,
) *SafeRouteService {
	if circlePoints < 3 {
		circlePoints = geospatial.DefaultCirclePoints
	}
	return &SafeRouteService{
		hazards:      hazards,
		audit:        audit,
		backends:     backends,
		circlePoints: circlePoints,
		now:          time.Now,
	}
}

// Providers reports which backend serves each known provider. A provider
// with no backend maps to the empty string.
func (s *SafeRouteService) Providers() map[domain.RouteProvider]string {
	out := map[domain.RouteProvider]string{
		domain.ProviderPathFilter:   "",
		domain.ProviderPolygonAvoid: "",
	}
	for p, b := range s.backends {
		if b != nil {
			out[p] = b.Name()
		}
	}
	return out
}

// ComputeRoute validates req, fetches a route from the selected backend and
// applies hazard avoidance. A nil AvoidStatuses means the default statuses;
// an empty non-nil slice avoids nothing.
func (s *SafeRouteService) ComputeRoute(ctx context.Context, req *domain.RouteRequest) (*domain.RouteResult, error) {
	if req == nil {
		return nil, &domain.ValidationError{Field: "body", Reason: "required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	backend, ok := s.backends[req.Provider]
	if !ok || backend == nil {
		return nil, &domain.UpstreamError{Provider: string(req.Provider), Detail: "no backend configured"}
	}

	ctx, span := telemetry.Tracer().Start(ctx, "SafeRouteService.ComputeRoute")
	defer span.End()
	span.SetAttributes(
		telemetry.AttrProvider.String(string(req.Provider)),
		telemetry.AttrBackend.String(backend.Name()),
		telemetry.AttrMode.String(string(req.Mode)),
		telemetry.AttrAvoidHazards.Bool(req.AvoidHazards),
	)

	statuses := req.AvoidStatuses
	if statuses == nil {
		statuses = domain.DefaultAvoidStatuses
	}
	radius := float64(req.AvoidRadiusM)

	query := ports.BackendQuery{
		Origin:      *req.Origin,
		Destination: *req.Destination,
		Mode:        req.Mode,
	}

	var (
		hazards []domain.HazardZone
		route   *ports.BackendRoute
		err     error
	)
	switch backend.Avoidance() {
	case domain.AvoidPreRequest:
		// polygons must exist before the request is built
		hazards, err = s.loadHazards(ctx, req.AvoidHazards, statuses)
		if err == nil {
			query.Avoid = AvoidancePolygons(hazards, radius, s.circlePoints)
			route, err = s.callBackend(ctx, backend, query)
		}
	default:
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var herr error
			hazards, herr = s.loadHazards(gctx, req.AvoidHazards, statuses)
			return herr
		})
		g.Go(func() error {
			var rerr error
			route, rerr = s.callBackend(gctx, backend, query)
			return rerr
		})
		err = g.Wait()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(telemetry.AttrHazardCount.Int(len(hazards)))

	path, err := normalizeGeometry(route.Geometry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("normalize %s geometry: %w", backend.Name(), err)
	}

	if backend.Avoidance() == domain.AvoidPostHoc && req.AvoidHazards && len(hazards) > 0 {
		filtered, fallback := filterPath(path, hazards, radius)
		if fallback {
			metrics.RouteFallbacks.Inc()
		} else {
			metrics.RoutePointsDropped.Add(float64(len(path) - len(filtered)))
		}
		span.SetAttributes(
			telemetry.AttrPathPoints.Int(len(path)),
			telemetry.AttrKeptPoints.Int(len(filtered)),
			telemetry.AttrFallback.Bool(fallback),
		)
		path = filtered
	}
	if path == nil {
		path = []domain.GeoPoint{}
	}

	result := &domain.RouteResult{
		Mode:        req.Mode,
		DurationSec: route.DurationSec,
		DistanceM:   route.DistanceM,
		Polyline:    path,
	}
	metrics.RoutesComputed.WithLabelValues(string(req.Provider), string(req.Mode)).Inc()

	s.appendAudit(ctx, req, result, backend.Name(), route)
	return result, nil
}

func (s *SafeRouteService) loadHazards(ctx context.Context, avoid bool, statuses []domain.HazardStatus) ([]domain.HazardZone, error) {
	if !avoid || len(statuses) == 0 {
		return nil, nil
	}
	start := time.Now()
	zones, err := s.hazards.ListActive(ctx, statuses)
	metrics.ObserveUpstream(hazardProvider, start, err)
	if err != nil {
		return nil, domain.NewUpstreamError(hazardProvider, err)
	}
	return zones, nil
}

func (s *SafeRouteService) callBackend(ctx context.Context, backend ports.RoutingBackend, q ports.BackendQuery) (*ports.BackendRoute, error) {
	route, err := backend.Route(ctx, q)
	if err != nil {
		var ue *domain.UpstreamError
		var nf *domain.NotFoundError
		var de *domain.DecodeError
		if errors.As(err, &ue) || errors.As(err, &nf) || errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.NewUpstreamError(backend.Name(), err)
	}
	if route == nil {
		return nil, &domain.UpstreamError{Provider: backend.Name(), Detail: "no route returned"}
	}
	return route, nil
}

// appendAudit records the computation. Failures never reach the caller.
func (s *SafeRouteService) appendAudit(ctx context.Context, req *domain.RouteRequest, result *domain.RouteResult, provider string, route *ports.BackendRoute) {
	if s.audit == nil {
		return
	}
	entry := &domain.RouteLogEntry{
		ID:          uuid.NewString(),
		Request:     *req,
		Result:      *result,
		Provider:    provider,
		RawResponse: route.RawResponse,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		metrics.AuditAppendFailures.Inc()
		logging.FromContext(ctx).WarnContext(ctx, "route audit append failed",
			"entry_id", entry.ID, "provider", provider, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}
