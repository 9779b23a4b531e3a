package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// FetchError wraps any failure to obtain an observation from the source:
// network errors, timeouts, and non-2xx responses.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("weather fetch failed: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

var errCircuitOpen = errors.New("circuit breaker open")

// Client fetches current weather for a fixed city from the HTTP source.
// A circuit breaker shields the source from hammering during outages;
// the fetch itself is not retried in-run, the scheduler cadence is the
// retry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	city       string
	circuit    *gobreaker.CircuitBreaker
	log        *zap.SugaredLogger
}

// NewClient creates a source client. The http.Client's timeout bounds
// each request.
func NewClient(httpClient *http.Client, baseURL, apiKey, city string, log *zap.SugaredLogger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-source",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		city:       city,
		circuit:    cb,
		log:        log,
	}
}

// Fetch issues an authenticated GET and decodes the response body.
func (c *Client) Fetch(ctx context.Context) (Payload, error) {
	values := url.Values{}
	values.Set("city", c.city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return Payload{}, &FetchError{Err: err}
	}
	req.Header.Set("X-API-Key", c.apiKey)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}

		var payload Payload
		if decErr := json.NewDecoder(resp.Body).Decode(&payload); decErr != nil {
			return nil, fmt.Errorf("decoding response: %w", decErr)
		}
		return payload, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		c.log.Errorw("weather API request failed", "city", c.city, "error", err)
		return Payload{}, &FetchError{Err: err}
	}

	payload, ok := result.(Payload)
	if !ok {
		return Payload{}, &FetchError{Err: fmt.Errorf("unexpected result type from circuit breaker")}
	}

	c.log.Infow("fetched weather observation", "city", payload.Location.Name)
	return payload, nil
}
