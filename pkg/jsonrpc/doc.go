// Package jsonrpc implements a JSON-RPC 2.0 client.
//
// Every message that crosses the wire is validated against the protocol
// rules: outgoing requests before they are sent, and incoming responses
// before they are handed back. Decoded messages carry a Kind that tells a
// request apart from a result or an error response.
//
// # Calls
//
// A Client sends single calls, notifications and batches:
//
//	client := jsonrpc.NewClient("https://rpc.example.com")
//
//	res, err := client.Call(ctx, "add", []int{2, 3})
//
//	err = client.Notify(ctx, "log", map[string]string{"msg": "hello"})
//
// # Batches
//
// Requests added to a Batch are numbered 1, 2, ... and sent as one array.
// The responses are checked against the requests: their count must match the
// number of non-notification requests, and once sorted their ids must be
// exactly 1..n. BatchResult.Responses is in that order whatever order the
// server used.
//
//	batch := client.Batch()
//	batch.Call("add", []int{1, 2})
//	batch.Notify("log", []string{"adding"})
//	batch.Call("add", []int{3, 4})
//	res, err := batch.Send(ctx)
//
// # Errors
//
// Every failed call returns an *Error. A well-formed error object from the
// server is returned with its own code and message and CategoryServer. Any
// other failure is detected by the client and has code 0, message
// ErrInvalidResponse and the diagnostic in Data; the cause can be matched with
// errors.Is (ErrParse, ErrMismatchedResponses, ErrDuplicateResponseID,
// ErrUnableToConnect ...) or errors.As (*ValidationError).
//
// # Transports
//
// HTTPTransport posts each exchange. WebsocketTransport opens a connection
// per exchange and carries the headers on the handshake. NewClient picks
// one from the URL scheme; WithTransport overrides it.
//
// # Signing
//
// With WithSigner each exchange carries the app_key, time, rand_number and
// sign headers computed by package sign over the params of its first request.
package jsonrpc
