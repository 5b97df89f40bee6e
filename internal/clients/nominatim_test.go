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

func TestNominatimGeocode(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "Красная площадь", r.URL.Query().Get("q"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			assert.Equal(t, "TripAdviserBot/1.0", r.Header.Get("User-Agent"))
			w.Write([]byte(`[{"lat":"55.7539","lon":"37.6208"}]`))
		}))
		defer server.Close()

		client := NewNominatimClient(server.URL, "TripAdviserBot/1.0", time.Second)
		coord, err := client.Geocode(ctx, "Красная площадь")

		require.NoError(t, err)
		assert.InDelta(t, 55.7539, coord.Lat, 1e-9)
		assert.InDelta(t, 37.6208, coord.Lon, 1e-9)
	})

	t.Run("NoResults", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := NewNominatimClient(server.URL, "TripAdviserBot/1.0", time.Second)
		_, err := client.Geocode(ctx, "несуществующее место")

		assert.ErrorIs(t, err, types.ErrLocationNotFound)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewNominatimClient(server.URL, "TripAdviserBot/1.0", time.Second)
		_, err := client.Geocode(ctx, "Москва")

		assert.ErrorIs(t, err, types.ErrServiceUnavailable)
	})

	t.Run("MalformedLatitude", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"lat":"not-a-number","lon":"37.62"}]`))
		}))
		defer server.Close()

		client := NewNominatimClient(server.URL, "TripAdviserBot/1.0", time.Second)
		_, err := client.Geocode(ctx, "Москва")

		assert.ErrorIs(t, err, types.ErrServiceUnavailable)
	})
}

func TestNominatimReverseGeocode(t *testing.T) {
	ctx := context.Background()
	coord := types.Coordinate{Lat: 55.7558, Lon: 37.6173}

	t.Run("CityAndCountry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reverse", r.URL.Path)
			assert.Equal(t, "ru", r.URL.Query().Get("accept-language"))
			w.Write([]byte(`{"address":{"city":"Москва","country":"Россия"}}`))
		}))
		defer server.Close()

		client := NewNominatimClient(server.URL, "TripAdviserBot/1.0", time.Second)
		city, country, err := client.ReverseGeocode(ctx, coord)

		require.NoError(t, err)
		assert.Equal(t, "Москва", city)
		assert.Equal(t, "Россия", country)
	})

	t.Run("TownFallback", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"address":{"town":"Суздаль","country":"Россия"}}`))
		}))
		defer server.Close()

		client := NewNominatimClient(server.URL, "TripAdviserBot/1.0", time.Second)
		city, _, err := client.ReverseGeocode(ctx, coord)

		require.NoError(t, err)
		assert.Equal(t, "Суздаль", city)
	})

	t.Run("NoAddress", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"address":{}}`))
		}))
		defer server.Close()

		client := NewNominatimClient(server.URL, "TripAdviserBot/1.0", time.Second)
		_, _, err := client.ReverseGeocode(ctx, coord)

		assert.ErrorIs(t, err, types.ErrLocationNotFound)
	})
}
