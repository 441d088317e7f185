package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is an outgoing call. A Request whose ID is absent is a
// notification and gets no response.
type Request struct {
	Method string
	Params json.RawMessage
	ID     ID
}

func (r Request) IsNotification() bool { return r.ID.IsAbsent() }

// MarshalJSON emits the wire form; params and id are omitted when unset.
func (r Request) MarshalJSON() ([]byte, error) {
	wire := struct {
		Version string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
		ID      *ID             `json:"id,omitempty"`
	}{
		Version: Version,
		Method:  r.Method,
		Params:  r.Params,
	}
	if !r.ID.IsAbsent() {
		wire.ID = &r.ID
	}
	return json.Marshal(wire)
}

// NewRequest builds and validates a request. Pass an absent ID (the zero
// value) for a notification. params must encode to a JSON array or object;
// nil omits them.
func NewRequest(method string, params any, id ID) (Request, error) {
	req, _, err := buildRequest(method, params, id)
	return req, err
}

// buildRequest returns the request together with its validated wire bytes.
func buildRequest(method string, params any, id ID) (Request, []byte, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return Request{}, nil, err
	}

	req := Request{Method: method, Params: raw, ID: id}
	data, err := json.Marshal(req)
	if err != nil {
		return Request{}, nil, fmt.Errorf("error marshalling request: %w", err)
	}

	msg, err := ParseMessage(data)
	if err != nil {
		return Request{}, nil, err
	}
	if msg.Kind != KindRequest {
		return Request{}, nil, invalidStructure()
	}

	return req, data, nil
}

func marshalParams(params any) (json.RawMessage, error) {
	var raw []byte
	switch p := params.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		raw = p
	default:
		var err error
		if raw, err = json.Marshal(p); err != nil {
			return nil, fmt.Errorf("error marshalling params: %w", err)
		}
	}

	// A nil slice or map encodes to null; treat it like no params.
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	return raw, nil
}
