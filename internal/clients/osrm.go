package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rfxxfy/TripAdviserBot/app/observability/metrics"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// Overview detail levels understood by OSRM.
const (
	OverviewFull       = "full"
	OverviewSimplified = "simplified"
)

// OSRMClient talks to an OSRM routing server.
type OSRMClient struct {
	baseURL string
	profile string
	client  *http.Client
}

func NewOSRMClient(baseURL, profile string, timeout time.Duration) *OSRMClient {
	return &OSRMClient{
		baseURL: baseURL,
		profile: profile,
		client:  &http.Client{Timeout: timeout},
	}
}

type osrmResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// GetRoute requests a route between two points with the given overview level.
// OSRM expects lon,lat ordering in the path. Returns ErrNoRouteFound when the
// service answers with an empty route list.
func (c *OSRMClient) GetRoute(ctx context.Context, from, to types.Coordinate, overview string) (types.RouteSummary, error) {
	metrics.CountExternalRequest(ctx, "osrm")

	rawURL := fmt.Sprintf("%s/%s/%f,%f;%f,%f?overview=%s",
		c.baseURL, c.profile, from.Lon, from.Lat, to.Lon, to.Lat, overview)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.RouteSummary{}, fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return types.RouteSummary{}, fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.RouteSummary{}, fmt.Errorf("%w: osrm HTTP %d", types.ErrServiceUnavailable, resp.StatusCode)
	}

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return types.RouteSummary{}, fmt.Errorf("%w: decoding response: %v", types.ErrServiceUnavailable, err)
	}
	if len(decoded.Routes) == 0 {
		return types.RouteSummary{}, fmt.Errorf("%w: between %s and %s", types.ErrNoRouteFound, from, to)
	}

	return types.RouteSummary{
		DistanceMeters:  decoded.Routes[0].Distance,
		DurationSeconds: decoded.Routes[0].Duration,
	}, nil
}
