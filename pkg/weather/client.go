package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Timezone is the single local zone applied to every request, so hour
// offsets stay comparable across the whole city roster.
const Timezone = "Europe/Berlin"

var hourlyVariables = []string{
	"temperature_2m",
	"apparent_temperature",
	"precipitation",
	"precipitation_probability",
	"windspeed_10m",
	"windgusts_10m",
	"winddirection_10m",
	"sunshine_duration",
	"temperature_850hPa",
	"temperature_700hPa",
}

// Client fetches hourly forecasts. A rate limiter sits beneath the retry
// loop so that retries cannot stampede the upstream API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   int
	backoff    time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithRateLimit caps outbound requests at rps requests per second with the
// given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.backoff = backoff
	}
}

func NewClient(opt ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
		attempts:   3,
		backoff:    500 * time.Millisecond,
	}
	for _, f := range opt {
		f(c)
	}
	return c
}

// Forecast fetches the hourly forecast for a coordinate over an inclusive
// date range. Individual calls are retried with a fixed backoff; a timeout
// aborts the call and counts as a failure.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, start, end time.Time) (*Forecast, error) {
	u, err := c.buildURL(lat, lon, start, end)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", err)
		}
		f, err := c.fetch(ctx, u)
		if err == nil {
			return f, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("error fetching forecast after %d attempts: %v", c.attempts, lastErr)
}

func (c *Client) buildURL(lat, lon float64, start, end time.Time) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %s: %v", c.baseURL, err)
	}
	q := base.Query()
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("hourly", strings.Join(hourlyVariables, ","))
	q.Set("timezone", Timezone)
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (c *Client) fetch(ctx context.Context, u string) (*Forecast, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting %s: %v", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, u)
	}
	var f Forecast
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("error decoding response from %s: %v", u, err)
	}
	if len(f.Hourly.Time) == 0 {
		return nil, fmt.Errorf("response from %s has no hourly data", u)
	}
	return &f, nil
}
