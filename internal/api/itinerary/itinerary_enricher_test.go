package itinerary

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// MockPlaceGeocoder is a mock implementation of the PlaceGeocoder interface
type MockPlaceGeocoder struct {
	mock.Mock
}

func (m *MockPlaceGeocoder) Geocode(ctx context.Context, query string, bbox *types.BoundingBox) (types.GeocodeResult, error) {
	args := m.Called(ctx, query, bbox)
	return args.Get(0).(types.GeocodeResult), args.Error(1)
}

var moscowCenter = types.Coordinate{Lat: 55.7558, Lon: 37.6173}

func exact(lat, lon float64) types.GeocodeResult {
	return types.GeocodeResult{Coordinate: types.Coordinate{Lat: lat, Lon: lon}, Precision: "exact"}
}

func TestSplitDayBlocks(t *testing.T) {
	t.Run("TwoDays", func(t *testing.T) {
		blocks := splitDayBlocks("Вступление.\nДень 1:\nГУМ\nДень 2:\nЦУМ")

		require.Len(t, blocks, 2)
		assert.Equal(t, "День 1:", blocks[0].Title)
		assert.Equal(t, "ГУМ", blocks[0].Body)
		assert.Equal(t, "День 2:", blocks[1].Title)
		assert.Equal(t, "ЦУМ", blocks[1].Body)
	})

	t.Run("NoDayLabels", func(t *testing.T) {
		assert.Nil(t, splitDayBlocks("просто текст без дней"))
	})
}

func TestExtractDayAddresses(t *testing.T) {
	t.Run("AddressLinesWin", func(t *testing.T) {
		body := "1. poi: ГУМ\nАдрес: Красная площадь, 3\nАдрес: Театральная площадь, 1"

		got := extractDayAddresses(body)

		assert.Equal(t, []string{"Красная площадь, 3", "Театральная площадь, 1"}, got)
	})

	t.Run("POILinesAsFallback", func(t *testing.T) {
		body := "1. poi: ГУМ (главный магазин), рядом\n2. poi: Большой театр в 2 км от ГУМа"

		got := extractDayAddresses(body)

		assert.Equal(t, []string{"ГУМ", "Большой театр"}, got)
	})

	t.Run("VerbHeuristicAsLastResort", func(t *testing.T) {
		body := "1. Посетите Третьяковскую галерею, одно из главных собраний.\n2. Затем направляйтесь в Парк Горького."

		got := extractDayAddresses(body)

		assert.Equal(t, []string{"Третьяковскую галерею", "в Парк Горького"}, got)
	})

	t.Run("DeduplicatesCaseInsensitively", func(t *testing.T) {
		body := "Адрес: Тверская, 1\nАдрес: тверская, 1"

		got := extractDayAddresses(body)

		assert.Equal(t, []string{"Тверская, 1"}, got)
	})
}

func TestCleanPlaceName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"CutAtComma", "ГУМ, главный магазин", "ГУМ"},
		{"CutAtPeriod", "Большой театр. Описание", "Большой театр"},
		{"DropsParenthetical", "ГУМ (универмаг)", "ГУМ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanPlaceName(tt.raw))
		})
	}
}

func TestEnrich(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("AttachesDayAndOverallLinks", func(t *testing.T) {
		mockGeocoder := new(MockPlaceGeocoder)
		enricher := NewEnricherImpl(mockGeocoder, logger)

		text := "День 1:\nГУМ.\nАдрес: Красная площадь, 3\nКоординаты: (55.75, 37.62)"
		mockGeocoder.On("Geocode", mock.Anything, "Красная площадь, 3, Москва, Россия", mock.Anything).
			Return(exact(55.7547, 37.6215), nil).Once()

		got := enricher.Enrich(ctx, text, "Москва", "Россия", moscowCenter)

		assert.Contains(t, got, "День 1:")
		assert.Contains(t, got, "Маршрут дня: https://yandex.ru/maps/?mode=routes&rtext=55.7558,37.6173~55.7547,37.6215")
		assert.Contains(t, got, "Общий маршрут: https://yandex.ru/maps/?rtext=55.7558,37.6173~")
		assert.NotContains(t, got, "Координаты:")
		mockGeocoder.AssertExpectations(t)
	})

	t.Run("GeocodeFailureFallsBackToCityCenter", func(t *testing.T) {
		mockGeocoder := new(MockPlaceGeocoder)
		enricher := NewEnricherImpl(mockGeocoder, logger)

		text := "День 1:\nАдрес: Несуществующая улица, 1"
		mockGeocoder.On("Geocode", mock.Anything, mock.Anything, mock.Anything).
			Return(types.GeocodeResult{}, types.ErrLocationNotFound).Once()

		got := enricher.Enrich(ctx, text, "Москва", "Россия", moscowCenter)

		// Both route points collapse to the city center.
		assert.Contains(t, got, "rtext=55.7558,37.6173~55.7558,37.6173")
	})

	t.Run("ImpreciseBoundedMatchRetriedWithoutBounds", func(t *testing.T) {
		mockGeocoder := new(MockPlaceGeocoder)
		enricher := NewEnricherImpl(mockGeocoder, logger)

		text := "День 1:\nАдрес: Воробьёвы горы"
		imprecise := types.GeocodeResult{Coordinate: types.Coordinate{Lat: 55.7, Lon: 37.5}, Precision: "other"}
		mockGeocoder.On("Geocode", mock.Anything, "Воробьёвы горы, Москва, Россия",
			mock.MatchedBy(func(bbox *types.BoundingBox) bool { return bbox != nil })).
			Return(imprecise, nil).Once()
		mockGeocoder.On("Geocode", mock.Anything, "Воробьёвы горы, Москва, Россия",
			(*types.BoundingBox)(nil)).
			Return(exact(55.7103, 37.5428), nil).Once()

		got := enricher.Enrich(ctx, text, "Москва", "Россия", moscowCenter)

		assert.Contains(t, got, "55.7103,37.5428")
		mockGeocoder.AssertExpectations(t)
	})

	t.Run("UnknownCityQueriesWithoutBounds", func(t *testing.T) {
		mockGeocoder := new(MockPlaceGeocoder)
		enricher := NewEnricherImpl(mockGeocoder, logger)

		text := "День 1:\nАдрес: Невский проспект, 1"
		mockGeocoder.On("Geocode", mock.Anything, "Невский проспект, 1, Санкт-Петербург, Россия",
			(*types.BoundingBox)(nil)).
			Return(types.GeocodeResult{Coordinate: types.Coordinate{Lat: 59.936, Lon: 30.313}, Precision: "other"}, nil).Once()

		got := enricher.Enrich(ctx, text, "Санкт-Петербург", "Россия", types.Coordinate{Lat: 59.9311, Lon: 30.3609})

		// Without a bounding box there is no precision retry.
		assert.Contains(t, got, "59.936,30.313")
		mockGeocoder.AssertNumberOfCalls(t, "Geocode", 1)
	})

	t.Run("OverrideReplacesQuery", func(t *testing.T) {
		mockGeocoder := new(MockPlaceGeocoder)
		enricher := NewEnricherImpl(mockGeocoder, logger)

		text := "День 1:\nАдрес: ботанический сад дворца пионеров"
		mockGeocoder.On("Geocode", mock.Anything, "ул. Косыгина, 17, Москва, 119333", mock.Anything).
			Return(exact(55.6981, 37.5542), nil).Once()

		got := enricher.Enrich(ctx, text, "Москва", "Россия", moscowCenter)

		assert.Contains(t, got, "55.6981,37.5542")
		mockGeocoder.AssertExpectations(t)
	})

	t.Run("EmittedCoordinateGroupsUsedWhenNoAddressesFound", func(t *testing.T) {
		mockGeocoder := new(MockPlaceGeocoder)
		enricher := NewEnricherImpl(mockGeocoder, logger)

		// Prose without address lines, poi lines or numbered lines still
		// gets a day link when the model emitted coordinate groups.
		text := "День 1:\nПрогулка по центру города без конкретных остановок.\nКоординаты: (55.7539, 37.6208), (55.7601, 37.6186)"

		got := enricher.Enrich(ctx, text, "Москва", "Россия", moscowCenter)

		assert.Contains(t, got, "Маршрут дня:")
		assert.Contains(t, got, "55.7539,37.6208")
		assert.Contains(t, got, "55.7601,37.6186")
		assert.False(t, strings.Contains(got, "Координаты:"))
		mockGeocoder.AssertNotCalled(t, "Geocode")
	})

	t.Run("NoDayBlocksOnlyStripsCoordinates", func(t *testing.T) {
		mockGeocoder := new(MockPlaceGeocoder)
		enricher := NewEnricherImpl(mockGeocoder, logger)

		got := enricher.Enrich(ctx, "Просто текст.\nКоординаты: (1, 2)", "Москва", "Россия", moscowCenter)

		assert.Equal(t, "Просто текст.", got)
		assert.False(t, strings.Contains(got, "Общий маршрут"))
		mockGeocoder.AssertNotCalled(t, "Geocode")
	})
}
