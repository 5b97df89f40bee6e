package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rfxxfy/TripAdviserBot/app/observability/metrics"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// YandexGeocoderClient talks to a Yandex-compatible geocoder. Responses carry
// points in "lon lat" order and a precision indicator per match.
type YandexGeocoderClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewYandexGeocoderClient(baseURL, apiKey string, timeout time.Duration) *YandexGeocoderClient {
	return &YandexGeocoderClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type yandexResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					MetaDataProperty struct {
						GeocoderMetaData struct {
							Precision string `json:"precision"`
						} `json:"GeocoderMetaData"`
					} `json:"metaDataProperty"`
					Point struct {
						Pos string `json:"pos"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// Geocode resolves query to its single highest-confidence match, optionally
// constrained to bbox. The raw lon-lat point is reordered to lat-lon.
func (c *YandexGeocoderClient) Geocode(ctx context.Context, query string, bbox *types.BoundingBox) (types.GeocodeResult, error) {
	metrics.CountExternalRequest(ctx, "yandex")

	params := url.Values{}
	params.Set("format", "json")
	params.Set("apikey", c.apiKey)
	params.Set("geocode", query)
	params.Set("lang", "ru_RU")
	params.Set("results", "1")
	if bbox != nil {
		params.Set("bbox", fmt.Sprintf("%g,%g~%g,%g", bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat))
		params.Set("rspn", "1")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return types.GeocodeResult{}, fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return types.GeocodeResult{}, fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.GeocodeResult{}, fmt.Errorf("%w: geocoder HTTP %d", types.ErrServiceUnavailable, resp.StatusCode)
	}

	var decoded yandexResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return types.GeocodeResult{}, fmt.Errorf("%w: decoding response: %v", types.ErrServiceUnavailable, err)
	}

	members := decoded.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return types.GeocodeResult{}, fmt.Errorf("%w: %q", types.ErrLocationNotFound, query)
	}

	obj := members[0].GeoObject
	coord, err := parsePos(obj.Point.Pos)
	if err != nil {
		return types.GeocodeResult{}, err
	}
	return types.GeocodeResult{
		Coordinate: coord,
		Precision:  obj.MetaDataProperty.GeocoderMetaData.Precision,
	}, nil
}

// parsePos parses a "lon lat" point string into a lat-lon coordinate.
func parsePos(pos string) (types.Coordinate, error) {
	fields := strings.Fields(pos)
	if len(fields) != 2 {
		return types.Coordinate{}, fmt.Errorf("%w: malformed point %q", types.ErrServiceUnavailable, pos)
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("%w: malformed point %q", types.ErrServiceUnavailable, pos)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("%w: malformed point %q", types.ErrServiceUnavailable, pos)
	}
	return types.Coordinate{Lat: lat, Lon: lon}, nil
}
