package jsonrpc

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/chenwencheng/jsonrpc/pkg/log"
	"github.com/chenwencheng/jsonrpc/pkg/sign"
)

const tracerName = "github.com/chenwencheng/jsonrpc/pkg/jsonrpc"

// IDGenerator assigns ids to single calls made without WithID.
type IDGenerator interface {
	NextID() ID
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() ID

func (f IDGeneratorFunc) NextID() ID { return f() }

// XIDGenerator yields globally unique string ids built from a timestamp and
// random bytes.
var XIDGenerator = IDGeneratorFunc(func() ID {
	return NewStringID(xid.New().String())
})

// Client holds the configuration shared by all calls: target URL, transport,
// signer and observability hooks. Every call or batch gets its own session,
// so a Client is safe for concurrent use.
//
// Example:
//
//	signer, _ := sign.NewHMACSigner(appKey, appSecret)
//	client := jsonrpc.NewClient("https://rpc.example.com", jsonrpc.WithSigner(signer))
//
//	res, err := client.Call(ctx, "add", []int{2, 3})
//	if err != nil {
//	    return err
//	}
//	var sum int
//	err = res.Translate(&sum)
type Client struct {
	url       string
	transport Transport
	signer    sign.Signer
	ids       IDGenerator
	nonce     func() string
	now       func() time.Time
	logger    log.Logger
	metrics   *Metrics
	tracer    trace.Tracer

	mu     sync.RWMutex // protects header
	header http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the transport picked from the URL scheme. A nil
// transport keeps the scheme default.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithSigner makes every send carry the app_key, time, rand_number and sign
// headers.
func WithSigner(s sign.Signer) Option {
	return func(c *Client) { c.signer = s }
}

// WithIDGenerator sets the source of request ids for calls made without
// WithID. The default generates xid strings.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Client) { c.ids = g }
}

// WithNonceSource sets the source of the rand_number signing header.
func WithNonceSource(f func() string) Option {
	return func(c *Client) { c.nonce = f }
}

// WithClock sets the clock read for the signing time header. It defaults to
// time.Now.
func WithClock(f func() time.Time) Option {
	return func(c *Client) { c.now = f }
}

// WithLogger sets the logger for sends and failures. Entries are also recorded
// on the active span. The default logs nothing.
func WithLogger(lg log.Logger) Option {
	return func(c *Client) { c.logger = lg }
}

// WithMetrics enables Prometheus metrics. Several clients may share one
// Metrics. Without it nothing is recorded.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracerProvider sets the provider of the tracer that opens a
// "jsonrpc.send" span per exchange. It defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// WithHeader adds a static header sent with every exchange.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// NewClient creates a client for url. Without WithTransport, ws:// and wss://
// URLs use a WebsocketTransport and anything else an HTTPTransport.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		ids:    XIDGenerator,
		nonce:  uuid.NewString,
		now:    time.Now,
		logger: log.NewNoopLogger(),
		tracer: otel.Tracer(tracerName),
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		if IsWebsocketURL(url) {
			c.transport = NewWebsocketTransport(DefaultWebsocketTransportConfig)
		} else {
			c.transport = NewHTTPTransport(DefaultHTTPTransportConfig)
		}
	}
	c.logger = c.logger.WithName("jsonrpc")

	return c
}

// IsWebsocketURL reports whether url has a ws:// or wss:// scheme.
func IsWebsocketURL(url string) bool {
	return strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://")
}

// URL returns the endpoint the client sends to.
func (c *Client) URL() string { return c.url }

// AddHeaders merges h into the static headers, replacing existing keys.
func (c *Client) AddHeaders(h http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.header, h.Clone())
}

// ClearHeaders removes every static header.
func (c *Client) ClearHeaders() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header = make(http.Header)
}

func (c *Client) staticHeader() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.header.Clone()
}

// CallOption configures a single call.
type CallOption func(*callConfig)

type callConfig struct {
	id ID
}

// WithID sets the request id instead of asking the IDGenerator.
func WithID(id ID) CallOption {
	return func(cfg *callConfig) { cfg.id = id }
}

// Result is the outcome of a successful single call.
type Result struct {
	Response Message
	// Output is the raw body returned by the transport.
	Output []byte
}

// Value returns the raw JSON result.
func (r *Result) Value() json.RawMessage { return r.Response.Result }

// Translate decodes the result into v.
func (r *Result) Translate(v any) error { return r.Response.Translate(v) }

// Call sends one request and waits for its response. A server error object
// is returned as an *Error with CategoryServer; every other failure is an
// *Error with code 0 and message ErrInvalidResponse.
func (c *Client) Call(ctx context.Context, method string, params any, opts ...CallOption) (*Result, error) {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	id := cfg.id
	if id.IsAbsent() {
		id = c.ids.NextID()
	}

	req, body, err := buildRequest(method, params, id)
	if err != nil {
		return nil, c.rejectRequest(method, err)
	}

	s := c.newSession(false)
	s.add(req, body)

	out, err := s.send(ctx)
	if err != nil {
		return nil, err
	}

	res := out.responses[0]
	if res.Kind == KindError {
		c.metrics.recordFailure(CategoryServer)
		c.logger.Debug("server returned error", "method", method, "code", res.Error.Code, "message", res.Error.Message)
		return nil, res.Error
	}
	return &Result{Response: res, Output: out.body}, nil
}

// Notify sends a notification. The server must not answer it: an empty
// body is success, a response object is ErrMismatchedResponses.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	req, body, err := buildRequest(method, params, ID{})
	if err != nil {
		return c.rejectRequest(method, err)
	}

	s := c.newSession(false)
	s.add(req, body)

	_, err = s.send(ctx)
	return err
}

// Batch opens a new batch. Requests added to it are sent together by
// Batch.Send.
func (c *Client) Batch() *Batch {
	return &Batch{session: c.newSession(true)}
}

func (c *Client) rejectRequest(method string, cause error) error {
	err := clientError(CategoryValidation, cause)
	c.metrics.recordFailure(err.Category)
	c.logger.Warn("invalid request", "method", method, "error", cause)
	return err
}
