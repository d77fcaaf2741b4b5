// Package weather queries the OpenWeatherMap current-weather endpoint.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
)

// FetchResult is the outcome of one lookup: a record, or NotFound with the upstream status.
type FetchResult struct {
	Record domain.WeatherRecord
	Status int
	found  bool
}

// Ok wraps a record.
func Ok(record domain.WeatherRecord) FetchResult {
	return FetchResult{Record: record, Status: http.StatusOK, found: true}
}

// NotFound is the soft-failure result for a non-success status.
func NotFound(status int) FetchResult {
	return FetchResult{Status: status}
}

// Found reports whether the result carries a record.
func (r FetchResult) Found() bool { return r.found }

// Fetcher looks up the current weather of one location.
type Fetcher interface {
	Fetch(ctx context.Context, location, credential string) (FetchResult, error)
}

// Client is the OpenWeatherMap Fetcher.
type Client struct {
	httpClient *http.Client
	baseURL    string
	country    string
	units      string
}

// NewClient creates a Client. Every request is bounded by cfg.Timeout; there is no retry.
func NewClient(cfg appConfig.WeatherAPIConfig) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: cfg.Timeout}, cfg)
}

// NewClientWithHTTP creates a Client over httpClient.
func NewClientWithHTTP(httpClient *http.Client, cfg appConfig.WeatherAPIConfig) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		country:    cfg.Country,
		units:      cfg.Units,
	}
}

// Fetch queries the current weather for location.
// A non-200 status yields NotFound and a nil error. The error return carries
// malformed payloads and transport failures, both skippable.
func (c *Client) Fetch(ctx context.Context, location, credential string) (FetchResult, error) {
	values := url.Values{}
	values.Set("q", fmt.Sprintf("%s,%s", location, c.country))
	values.Set("appid", credential)
	values.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return FetchResult{}, domain.NewTransportError(location, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, domain.NewTransportError(location, redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return NotFound(resp.StatusCode), nil
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return FetchResult{}, domain.NewMalformedResponseError(location, err)
	}
	obs, err := p.observation()
	if err != nil {
		return FetchResult{}, domain.NewMalformedResponseError(location, err)
	}
	return Ok(domain.NewWeatherRecord(location, obs)), nil
}

// redact drops the query string, which carries the credential, from transport errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		u := uerr.URL
		if parsed, perr := url.Parse(u); perr == nil {
			parsed.RawQuery = ""
			u = parsed.String()
		}
		return &url.Error{Op: uerr.Op, URL: u, Err: uerr.Err}
	}
	return err
}

// payload mirrors the fields read from the response. Pointers detect missing keys.
type payload struct {
	Dt   *int64 `json:"dt"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *int64   `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description *string `json:"description"`
	} `json:"weather"`
	Sys *struct {
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

func (p payload) observation() (domain.Observation, error) {
	switch {
	case p.Main == nil:
		return domain.Observation{}, missing("main")
	case p.Main.Temp == nil:
		return domain.Observation{}, missing("main.temp")
	case p.Main.Humidity == nil:
		return domain.Observation{}, missing("main.humidity")
	case p.Main.FeelsLike == nil:
		return domain.Observation{}, missing("main.feels_like")
	case len(p.Weather) == 0:
		return domain.Observation{}, missing("weather[0]")
	case p.Weather[0].Description == nil:
		return domain.Observation{}, missing("weather[0].description")
	case p.Sys == nil:
		return domain.Observation{}, missing("sys")
	case p.Sys.Sunrise == nil:
		return domain.Observation{}, missing("sys.sunrise")
	case p.Sys.Sunset == nil:
		return domain.Observation{}, missing("sys.sunset")
	case p.Dt == nil:
		return domain.Observation{}, missing("dt")
	case p.Wind == nil:
		return domain.Observation{}, missing("wind")
	case p.Wind.Speed == nil:
		return domain.Observation{}, missing("wind.speed")
	}
	return domain.Observation{
		Temperature: *p.Main.Temp,
		Humidity:    *p.Main.Humidity,
		FeelsLike:   *p.Main.FeelsLike,
		Description: *p.Weather[0].Description,
		Sunrise:     *p.Sys.Sunrise,
		Sunset:      *p.Sys.Sunset,
		ObservedAt:  *p.Dt,
		WindSpeed:   *p.Wind.Speed,
	}, nil
}

func missing(field string) error {
	return fmt.Errorf("required field %s is missing", field)
}

// DefaultTimeout is used when the configuration leaves the timeout unset.
const DefaultTimeout = 10 * time.Second
