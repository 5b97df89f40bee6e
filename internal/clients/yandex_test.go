package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

func yandexBody(pos, precision string) string {
	return `{"response":{"GeoObjectCollection":{"featureMember":[
		{"GeoObject":{
			"metaDataProperty":{"GeocoderMetaData":{"precision":"` + precision + `"}},
			"Point":{"pos":"` + pos + `"}
		}}
	]}}}`
}

func TestYandexGeocode(t *testing.T) {
	ctx := context.Background()

	t.Run("ReordersLonLatPoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "test-key", q.Get("apikey"))
			assert.Equal(t, "Красная площадь, Москва", q.Get("geocode"))
			assert.Equal(t, "ru_RU", q.Get("lang"))
			assert.Equal(t, "1", q.Get("results"))
			assert.Empty(t, q.Get("bbox"))
			w.Write([]byte(yandexBody("37.6208 55.7539", "exact")))
		}))
		defer server.Close()

		client := NewYandexGeocoderClient(server.URL, "test-key", time.Second)
		result, err := client.Geocode(ctx, "Красная площадь, Москва", nil)

		require.NoError(t, err)
		assert.InDelta(t, 55.7539, result.Coordinate.Lat, 1e-9)
		assert.InDelta(t, 37.6208, result.Coordinate.Lon, 1e-9)
		assert.Equal(t, "exact", result.Precision)
	})

	t.Run("BoundingBoxConstrainsQuery", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "37.32,55.55~37.95,55.92", q.Get("bbox"))
			assert.Equal(t, "1", q.Get("rspn"))
			w.Write([]byte(yandexBody("37.62 55.75", "other")))
		}))
		defer server.Close()

		client := NewYandexGeocoderClient(server.URL, "test-key", time.Second)
		bbox := &types.BoundingBox{MinLon: 37.32, MinLat: 55.55, MaxLon: 37.95, MaxLat: 55.92}
		result, err := client.Geocode(ctx, "Тверская", bbox)

		require.NoError(t, err)
		assert.Equal(t, "other", result.Precision)
	})

	t.Run("NoMatches", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response":{"GeoObjectCollection":{"featureMember":[]}}}`))
		}))
		defer server.Close()

		client := NewYandexGeocoderClient(server.URL, "test-key", time.Second)
		_, err := client.Geocode(ctx, "несуществующее место", nil)

		assert.ErrorIs(t, err, types.ErrLocationNotFound)
	})

	t.Run("MalformedPoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(yandexBody("37.62", "exact")))
		}))
		defer server.Close()

		client := NewYandexGeocoderClient(server.URL, "test-key", time.Second)
		_, err := client.Geocode(ctx, "Москва", nil)

		assert.ErrorIs(t, err, types.ErrServiceUnavailable)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := NewYandexGeocoderClient(server.URL, "test-key", time.Second)
		_, err := client.Geocode(ctx, "Москва", nil)

		assert.ErrorIs(t, err, types.ErrServiceUnavailable)
	})
}
