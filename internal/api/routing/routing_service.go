package routing

import (
	"context"
	"log/slog"

	"github.com/rfxxfy/TripAdviserBot/internal/clients"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// Router is the external routing dependency.
type Router interface {
	GetRoute(ctx context.Context, from, to types.Coordinate, overview string) (types.RouteSummary, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service computes walking distance/duration between two coordinates.
type Service interface {
	Distance(ctx context.Context, from, to types.Coordinate) (types.RouteSummary, bool)
}

type ServiceImpl struct {
	logger *slog.Logger
	router Router
}

func NewServiceImpl(router Router, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		router: router,
	}
}

// Distance requests a detailed route first and retries once with a simplified
// overview before giving up. It never returns an error: the second value is
// false when no route is available, so callers degrade their output instead
// of aborting.
func (s *ServiceImpl) Distance(ctx context.Context, from, to types.Coordinate) (types.RouteSummary, bool) {
	summary, err := s.router.GetRoute(ctx, from, to, clients.OverviewFull)
	if err == nil {
		return summary, true
	}
	s.logger.DebugContext(ctx, "Detailed route lookup failed, retrying simplified",
		slog.String("from", from.String()), slog.String("to", to.String()), slog.Any("error", err))

	summary, err = s.router.GetRoute(ctx, from, to, clients.OverviewSimplified)
	if err != nil {
		s.logger.WarnContext(ctx, "Route unavailable",
			slog.String("from", from.String()), slog.String("to", to.String()), slog.Any("error", err))
		return types.RouteSummary{}, false
	}
	return summary, true
}
