package jsonrpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const contentTypeJSON = "application/json"

// HTTPTransportConfig configures HTTPTransport.
type HTTPTransportConfig struct {
	// Timeout bounds the whole exchange, body included. Zero disables it.
	Timeout time.Duration
	// MaxResponseBytes caps the response body.
	MaxResponseBytes int64
}

// DefaultHTTPTransportConfig waits 30 seconds per exchange and accepts
// bodies up to 10 MiB. NewClient uses it for http and https URLs.
var DefaultHTTPTransportConfig = HTTPTransportConfig{
	Timeout:          30 * time.Second,
	MaxResponseBytes: 10 << 20,
}

var _ Transport = (*HTTPTransport)(nil)

// HTTPTransport posts the body to the URL. Requests are traced with otelhttp.
type HTTPTransport struct {
	cfg    HTTPTransportConfig
	client *http.Client
}

// NewHTTPTransport returns a transport with its own http.Client, built from
// cfg. A zero MaxResponseBytes means no cap.
func NewHTTPTransport(cfg HTTPTransportConfig) *HTTPTransport {
	return &HTTPTransport{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Send sets Content-Type to application/json when the header has none.
// Connection failures and non-2xx statuses are reported as ErrUnableToConnect.
// A body longer than MaxResponseBytes is rejected with ErrResponseTooLarge
// instead of being cut short.
func (t *HTTPTransport) Send(ctx context.Context, env Envelope) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, env.Method, env.URL, bytes.NewReader(env.Body))
	if err != nil {
		return nil, fmt.Errorf("%w to %s: %w", ErrUnableToConnect, env.URL, err)
	}

	req.Header = env.Header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w to %s: %w", ErrUnableToConnect, env.URL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w to %s: %s", ErrUnableToConnect, env.URL, res.Status)
	}

	var body io.Reader = res.Body
	if t.cfg.MaxResponseBytes > 0 {
		// One byte past the cap tells a full body from a truncated one.
		body = io.LimitReader(res.Body, t.cfg.MaxResponseBytes+1)
	}
	output, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("error reading response from %s: %w", env.URL, err)
	}
	if t.cfg.MaxResponseBytes > 0 && int64(len(output)) > t.cfg.MaxResponseBytes {
		return nil, fmt.Errorf("%w: response from %s exceeds %d bytes", ErrResponseTooLarge, env.URL, t.cfg.MaxResponseBytes)
	}
	return output, nil
}
