package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxForecastDays is the longest daily horizon Open-Meteo serves.
const MaxForecastDays = 16

const forecastTimeout = 10 * time.Second

// ForecastProvider fetches a daily high/low forecast for a configured location.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, days int) (Forecast, error)
}

// OpenMeteoClient talks to the Open-Meteo forecast endpoint.
type OpenMeteoClient struct {
	baseURL    string
	latitude   float64
	longitude  float64
	timezone   string
	httpClient *http.Client
}

var _ ForecastProvider = (*OpenMeteoClient)(nil)

func NewOpenMeteoClient(cfg Config) *OpenMeteoClient {
	base := strings.TrimSpace(cfg.ForecastURL)
	if base == "" {
		base = defaultForecastURL
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	return &OpenMeteoClient{
		baseURL:   strings.TrimRight(base, "/"),
		latitude:  cfg.Latitude,
		longitude: cfg.Longitude,
		timezone:  tz,
		httpClient: &http.Client{
			Timeout: forecastTimeout,
		},
	}
}

type openMeteoResponse struct {
	Daily struct {
		Time    []string   `json:"time"`
		MaxTemp []*float64 `json:"temperature_2m_max"`
		MinTemp []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// FetchForecast requests days of daily maxima and minima. Any failure is
// returned wrapped in ErrForecastUnavailable; there are no retries.
func (c *OpenMeteoClient) FetchForecast(ctx context.Context, days int) (Forecast, error) {
	if days < 1 || days > MaxForecastDays {
		return Forecast{}, fmt.Errorf("%w: %d days (allowed 1..%d)", ErrInvalidHorizon, days, MaxForecastDays)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(days), nil)
	if err != nil {
		return Forecast{}, fmt.Errorf("%w: build request: %v", ErrForecastUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Forecast{}, fmt.Errorf("%w: request failed: %v", ErrForecastUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Forecast{}, fmt.Errorf("%w: status=%d body=%s", ErrForecastUnavailable, resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Forecast{}, fmt.Errorf("%w: read response: %v", ErrForecastUnavailable, err)
	}

	var raw openMeteoResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Forecast{}, fmt.Errorf("%w: decode response: %v", ErrForecastUnavailable, err)
	}

	f, err := raw.forecast()
	if err != nil {
		return Forecast{}, fmt.Errorf("%w: %v", ErrForecastUnavailable, err)
	}
	if len(f.Days) != days {
		return Forecast{}, fmt.Errorf("%w: got %d days, requested %d", ErrForecastUnavailable, len(f.Days), days)
	}
	return f, nil
}

func (c *OpenMeteoClient) endpoint(days int) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min")
	q.Set("timezone", c.timezone)
	q.Set("forecast_days", strconv.Itoa(days))
	return c.baseURL + "?" + q.Encode()
}

func (r openMeteoResponse) forecast() (Forecast, error) {
	d := r.Daily
	if len(d.Time) != len(d.MaxTemp) || len(d.Time) != len(d.MinTemp) {
		return Forecast{}, fmt.Errorf("series length mismatch: time=%d max=%d min=%d", len(d.Time), len(d.MaxTemp), len(d.MinTemp))
	}
	days := make([]DayForecast, 0, len(d.Time))
	for i, ts := range d.Time {
		date, err := time.Parse(time.DateOnly, ts)
		if err != nil {
			return Forecast{}, fmt.Errorf("parse date %q: %v", ts, err)
		}
		if d.MaxTemp[i] == nil || d.MinTemp[i] == nil {
			return Forecast{}, fmt.Errorf("missing temperature for %s", ts)
		}
		days = append(days, DayForecast{Date: date, High: *d.MaxTemp[i], Low: *d.MinTemp[i]})
	}
	return Forecast{Days: days}, nil
}
