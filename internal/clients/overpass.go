package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rfxxfy/TripAdviserBot/app/observability/metrics"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// OverpassClient queries an Overpass API endpoint for OSM points of interest.
type OverpassClient struct {
	baseURL string
	client  *http.Client
}

func NewOverpassClient(baseURL string, timeout time.Duration) *OverpassClient {
	return &OverpassClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// OverpassElement is one raw OSM element. Ways and relations carry their
// coordinate in the Center sub-object instead of Lat/Lon.
type OverpassElement struct {
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate returns the element's point, falling back to the center for
// non-point geometries.
func (e OverpassElement) Coordinate() types.Coordinate {
	if e.Type != "node" && e.Center != nil {
		return types.Coordinate{Lat: e.Center.Lat, Lon: e.Center.Lon}
	}
	return types.Coordinate{Lat: e.Lat, Lon: e.Lon}
}

type overpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

// SearchInRadius finds named elements matching tag within radiusMeters of
// center, capped at limit. Unnamed elements are dropped here so callers never
// see them.
func (c *OverpassClient) SearchInRadius(ctx context.Context, center types.Coordinate, radiusMeters int, tag types.TagPair, limit int) ([]OverpassElement, error) {
	metrics.CountExternalRequest(ctx, "overpass")

	query := fmt.Sprintf(`
	[out:json][timeout:25];
	(
	  node["%[1]s"="%[2]s"](around:%[3]d,%[4]f,%[5]f);
	  way["%[1]s"="%[2]s"](around:%[3]d,%[4]f,%[5]f);
	  relation["%[1]s"="%[2]s"](around:%[3]d,%[4]f,%[5]f);
	);
	out center;
	`, tag.Key, tag.Value, radiusMeters, center.Lat, center.Lon)

	params := url.Values{}
	params.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: overpass HTTP %d", types.ErrServiceUnavailable, resp.StatusCode)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", types.ErrServiceUnavailable, err)
	}

	named := make([]OverpassElement, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		if el.Tags["name"] == "" {
			continue
		}
		named = append(named, el)
		if len(named) == limit {
			break
		}
	}
	return named, nil
}
