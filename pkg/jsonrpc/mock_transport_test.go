package jsonrpc_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/chenwencheng/jsonrpc/pkg/jsonrpc"
)

// MockHandler produces the raw reply for one envelope.
type MockHandler func(env jsonrpc.Envelope) ([]byte, error)

var _ jsonrpc.Transport = (*MockTransport)(nil)

// MockTransport records every envelope it is given and answers with handler.
type MockTransport struct {
	handler MockHandler

	mu        sync.Mutex
	envelopes []jsonrpc.Envelope
}

func NewMockTransport(handler MockHandler) *MockTransport {
	return &MockTransport{handler: handler}
}

// ReplyWith returns a transport that always answers with body.
func ReplyWith(body string) *MockTransport {
	return NewMockTransport(func(jsonrpc.Envelope) ([]byte, error) {
		return []byte(body), nil
	})
}

func (m *MockTransport) Send(ctx context.Context, env jsonrpc.Envelope) ([]byte, error) {
	m.mu.Lock()
	m.envelopes = append(m.envelopes, env)
	m.mu.Unlock()

	return m.handler(env)
}

func (m *MockTransport) Envelopes() []jsonrpc.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]jsonrpc.Envelope(nil), m.envelopes...)
}

// wireRequest is the raw shape of a request as a server sees it.
type wireRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	ID     json.RawMessage `json:"id"`
}

// decodeRequests splits a request body into its requests.
func decodeRequests(body []byte) ([]wireRequest, bool, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var reqs []wireRequest
		err := json.Unmarshal(body, &reqs)
		return reqs, true, err
	}

	var req wireRequest
	err := json.Unmarshal(body, &req)
	return []wireRequest{req}, false, err
}

// EchoHandler answers every request that has an id with a result holding its
// method and params, in the same shape the requests came in.
func EchoHandler(env jsonrpc.Envelope) ([]byte, error) {
	reqs, batch, err := decodeRequests(env.Body)
	if err != nil {
		return nil, err
	}

	var responses []string
	for _, req := range reqs {
		if len(req.ID) == 0 {
			continue
		}
		params := req.Params
		if len(params) == 0 {
			params = json.RawMessage("null")
		}
		responses = append(responses, fmt.Sprintf(
			`{"jsonrpc":"2.0","result":{"method":%q,"params":%s},"id":%s}`, req.Method, params, req.ID))
	}

	switch {
	case len(responses) == 0:
		return nil, nil
	case batch:
		return []byte("[" + strings.Join(responses, ",") + "]"), nil
	default:
		return []byte(responses[0]), nil
	}
}
