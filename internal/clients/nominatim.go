package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rfxxfy/TripAdviserBot/app/observability/metrics"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// NominatimClient talks to a Nominatim-compatible geocoding service.
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a free-text query to its best-match coordinate.
// Returns ErrLocationNotFound when the service has no match and
// ErrServiceUnavailable on network or HTTP failure.
func (c *NominatimClient) Geocode(ctx context.Context, query string) (types.Coordinate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	var places []nominatimPlace
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), &places); err != nil {
		return types.Coordinate{}, err
	}
	if len(places) == 0 {
		return types.Coordinate{}, fmt.Errorf("%w: %q", types.ErrLocationNotFound, query)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("%w: bad latitude %q", types.ErrServiceUnavailable, places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("%w: bad longitude %q", types.ErrServiceUnavailable, places[0].Lon)
	}
	return types.Coordinate{Lat: lat, Lon: lon}, nil
}

type nominatimReverse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// ReverseGeocode resolves a coordinate to its (city, country) pair.
func (c *NominatimClient) ReverseGeocode(ctx context.Context, coord types.Coordinate) (city, country string, err error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("accept-language", "ru")

	var rev nominatimReverse
	if err := c.getJSON(ctx, c.baseURL+"/reverse?"+params.Encode(), &rev); err != nil {
		return "", "", err
	}

	city = rev.Address.City
	if city == "" {
		city = rev.Address.Town
	}
	if city == "" {
		city = rev.Address.Village
	}
	if city == "" && rev.Address.Country == "" {
		return "", "", fmt.Errorf("%w: no address for %s", types.ErrLocationNotFound, coord)
	}
	return city, rev.Address.Country, nil
}

func (c *NominatimClient) getJSON(ctx context.Context, rawURL string, dst any) error {
	metrics.CountExternalRequest(ctx, "nominatim")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: nominatim HTTP %d", types.ErrServiceUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decoding response: %v", types.ErrServiceUnavailable, err)
	}
	return nil
}
