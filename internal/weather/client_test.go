package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
)

const punePayload = `{
  "weather": [{"id": 721, "main": "Haze", "description": "haze"}],
  "main": {"temp": 28.5, "feels_like": 30.1, "humidity": 60, "pressure": 1008},
  "wind": {"speed": 3.6, "deg": 270},
  "dt": 1717219800,
  "sys": {"country": "IN", "sunrise": 1717200000, "sunset": 1717248600},
  "name": "Pune"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(appConfig.WeatherAPIConfig{
		BaseURL: srv.URL + "/data/2.5/weather",
		Country: "IN",
		Units:   "metric",
		Timeout: 2 * time.Second,
	})
}

func TestFetch_Ok(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Pune,IN", r.URL.Query().Get("q"))
		assert.Equal(t, "abc123", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(punePayload))
	})

	res, err := client.Fetch(context.Background(), "Pune", "abc123")

	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, domain.WeatherRecord{
		LocationName:         "Pune",
		TemperatureCelsius:   "28.5",
		HumidityPercent:      "60",
		ConditionDescription: "haze",
		FeelsLikeCelsius:     "30.1",
		SunriseLocal:         "2024-06-01 05:30:00 IST",
		SunsetLocal:          "2024-06-01 19:00:00 IST",
		WindSpeed:            "3.6",
		ObservedLocal:        "2024-06-01 11:00:00 IST",
	}, res.Record)
}

func TestFetch_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	res, err := client.Fetch(context.Background(), "Atlantis", "abc123")

	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestFetch_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	res, err := client.Fetch(context.Background(), "Pune", "bad")

	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestFetch_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `<html>`,
		"empty weather":    strings.Replace(punePayload, `[{"id": 721, "main": "Haze", "description": "haze"}]`, `[]`, 1),
		"missing temp":     strings.Replace(punePayload, `"temp": 28.5, `, ``, 1),
		"missing sys":      strings.Replace(punePayload, `"sys": {"country": "IN", "sunrise": 1717200000, "sunset": 1717248600},`, ``, 1),
		"fractional humid": strings.Replace(punePayload, `"humidity": 60`, `"humidity": 60.5`, 1),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.Fetch(context.Background(), "Pune", "abc123")

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
			assert.True(t, exception.IsSkippable(err))
		})
	}
}

func TestFetch_TransportErrorHidesCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := NewClient(appConfig.WeatherAPIConfig{BaseURL: base, Country: "IN", Units: "metric", Timeout: time.Second})
	_, err := client.Fetch(context.Background(), "Pune", "super-secret")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.NotContains(t, err.Error(), "super-secret")
}
