package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-blender/internal/weather"
)

// HTTPSink POSTs frames as JSON to a host renderer endpoint.
type HTTPSink struct {
	name    string
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewHTTPSink creates a sink publishing to url with retries and a circuit breaker.
func NewHTTPSink(client *http.Client, url string) *HTTPSink {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "renderer",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
	})

	return &HTTPSink{
		name: "http",
		url:  url,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     1 * time.Second,
			},
		},
		circuit: cb,
	}
}

// WithBackoff overrides the retry policy.
func (s *HTTPSink) WithBackoff(b BackoffConfig) *HTTPSink {
	s.httpCfg.Backoff = b
	return s
}

func (s *HTTPSink) Name() string {
	return s.name
}

func (s *HTTPSink) Publish(ctx context.Context, frame weather.Frame) error {
	if s.url == "" {
		return fmt.Errorf("renderer sink url is not configured")
	}

	body, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Sequence, err)
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
