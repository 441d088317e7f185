package jsonrpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chenwencheng/jsonrpc/pkg/log"
	"github.com/chenwencheng/jsonrpc/pkg/sign"
)

// session is the in-flight state of one logical call: a single request or
// the content of a batch. It is discarded once sent.
type session struct {
	client        *Client
	batch         bool
	requests      []Request
	bodies        [][]byte
	notifications int
}

// reply holds the validated responses of a send. Batch responses are in id
// order.
type reply struct {
	responses []Message
	body      []byte
}

func (c *Client) newSession(batch bool) *session {
	return &session{client: c, batch: batch}
}

func (s *session) add(req Request, body []byte) {
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, body)
	if req.IsNotification() {
		s.notifications++
	}
}

// expected is the number of responses the server owes us.
func (s *session) expected() int {
	return len(s.requests) - s.notifications
}

func (s *session) shape() string {
	if s.batch {
		return "batch"
	}
	return "single"
}

func (s *session) send(ctx context.Context) (*reply, error) {
	c := s.client

	ctx, span := c.tracer.Start(ctx, "jsonrpc.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", s.requests[0].Method),
			attribute.String("jsonrpc.shape", s.shape()),
			attribute.Int("jsonrpc.requests", len(s.requests)),
			attribute.Int("jsonrpc.notifications", s.notifications),
		))
	defer span.End()

	ctx = log.SetContextLogger(ctx, c.logger)
	logger := log.FromContext(ctx)

	start := time.Now()
	out, err := s.exchange(ctx)
	c.metrics.recordSend(s.shape(), s.expected(), s.notifications, time.Since(start))

	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			c.metrics.recordFailure(rpcErr.Category)
		}
		logger.Warn("send failed", "method", s.requests[0].Method, "requests", len(s.requests), "error", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Debug("send completed", "method", s.requests[0].Method, "requests", len(s.requests), "responses", len(out.responses))
	return out, nil
}

func (s *session) exchange(ctx context.Context) (*reply, error) {
	c := s.client
	expected := s.expected()

	header, err := s.header()
	if err != nil {
		return nil, clientError(CategoryTransport, err)
	}

	output, err := c.transport.Send(ctx, Envelope{
		Method:      http.MethodPost,
		URL:         c.url,
		Body:        s.body(),
		Header:      header,
		ExpectReply: expected > 0,
	})
	if err != nil {
		return nil, clientError(CategoryTransport, err)
	}

	items, batch, ok := decodeBody(output)
	if !ok {
		if expected > 0 {
			return nil, clientError(CategoryValidation, ErrParse)
		}
		return &reply{body: output}, nil
	}

	responses := make([]Message, 0, len(items))
	for _, item := range items {
		res, err := responseFromValue(item)
		if err != nil {
			return nil, clientError(CategoryValidation, err)
		}
		responses = append(responses, res)
	}

	if len(responses) != expected || batch != s.batch {
		// A server that cannot parse a batch answers with one error object.
		if !batch && responses[0].Kind == KindError && responses[0].Error.Code == CodeParseError {
			return nil, clientError(CategoryCorrelation, ErrParseErrorReported)
		}
		return nil, clientError(CategoryCorrelation, ErrMismatchedResponses)
	}

	if s.batch {
		if err := orderResponses(responses); err != nil {
			return nil, clientError(CategoryCorrelation, err)
		}
	}

	return &reply{responses: responses, body: output}, nil
}

func (s *session) body() []byte {
	if !s.batch {
		return s.bodies[0]
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.Write(bytes.Join(s.bodies, []byte{','}))
	buf.WriteByte(']')
	return buf.Bytes()
}

// header builds the headers of one send. The signature covers the params of
// the first request only.
func (s *session) header() (http.Header, error) {
	c := s.client

	h := c.staticHeader()
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentTypeJSON)
	}
	if c.signer == nil {
		return h, nil
	}

	signed, err := sign.Headers(c.signer, s.requests[0].Params, c.now(), c.nonce())
	if err != nil {
		return nil, fmt.Errorf("error signing request: %w", err)
	}
	for key, values := range signed {
		h[key] = values
	}
	return h, nil
}

// decodeBody splits a reply into response candidates. ok is false when the
// body does not decode, or decodes to null, false or an empty array: all of
// these mean the server sent nothing back.
func decodeBody(data []byte) (items []any, batch, ok bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, false
	}

	v, err := decodeValue(data)
	if err != nil {
		return nil, false, false
	}

	switch val := v.(type) {
	case nil:
		return nil, false, false
	case bool:
		if !val {
			return nil, false, false
		}
	case []any:
		if len(val) == 0 {
			return nil, false, false
		}
		return val, true, true
	}
	return []any{v}, false, true
}

// orderResponses sorts batch responses by id and checks that position i
// holds id i+1. Batch requests are numbered from 1, so any duplicate, gap or
// foreign id fails.
func orderResponses(responses []Message) error {
	duplicate := false
	slices.SortStableFunc(responses, func(a, b Message) int {
		switch orderIDs(a.ID, b.ID) {
		case idBefore:
			return -1
		case idAfter:
			return 1
		default:
			duplicate = true
			return 0
		}
	})
	if duplicate {
		return ErrDuplicateResponseID
	}

	for i, res := range responses {
		if n, ok := res.ID.Int(); !ok || n != int64(i+1) {
			return ErrDuplicateResponseID
		}
	}
	return nil
}
