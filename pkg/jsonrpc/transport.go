package jsonrpc

import (
	"context"
	"net/http"
)

// Envelope is one outgoing exchange handed to a Transport.
type Envelope struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header
	// ExpectReply is false when every request in Body is a notification.
	ExpectReply bool
}

// Transport moves an encoded call to the server and returns the raw reply.
// Any error is terminal for the call; the client does not retry.
type Transport interface {
	Send(ctx context.Context, env Envelope) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, env Envelope) ([]byte, error)

func (f TransportFunc) Send(ctx context.Context, env Envelope) ([]byte, error) {
	return f(ctx, env)
}
