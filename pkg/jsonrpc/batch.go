package jsonrpc

import "context"

// Batch accumulates requests that are sent together as one JSON array.
// Requests are numbered 1, 2, ... in the order they are added; notifications
// take no number. A Batch is single-use and not safe for concurrent use.
type Batch struct {
	session *session
	lastID  int64
	sent    bool
}

// BatchResult holds the responses of a batch, ordered by id.
type BatchResult struct {
	Responses []Message
	// Output is the raw body returned by the transport.
	Output []byte
}

// Response returns the response to the request with the given id.
func (r *BatchResult) Response(id ID) (Message, bool) {
	for _, res := range r.Responses {
		if orderIDs(res.ID, id) == idDuplicate {
			return res, true
		}
	}
	return Message{}, false
}

// Call adds a request and returns the id it was given.
func (b *Batch) Call(method string, params any) (ID, error) {
	if b.sent {
		return ID{}, ErrBatchSent
	}

	id := NewIntID(b.lastID + 1)
	req, body, err := buildRequest(method, params, id)
	if err != nil {
		return ID{}, b.session.client.rejectRequest(method, err)
	}

	b.lastID++
	b.session.add(req, body)
	return id, nil
}

// Notify adds a notification.
func (b *Batch) Notify(method string, params any) error {
	if b.sent {
		return ErrBatchSent
	}

	req, body, err := buildRequest(method, params, ID{})
	if err != nil {
		return b.session.client.rejectRequest(method, err)
	}

	b.session.add(req, body)
	return nil
}

// Len returns the number of requests added so far, notifications included.
func (b *Batch) Len() int { return len(b.session.requests) }

// Expected returns how many responses the server owes for the batch.
func (b *Batch) Expected() int { return b.session.expected() }

// Send transmits the batch and correlates the responses. An empty or
// one-request batch is rejected without touching the transport. After Send
// the batch is spent whatever the outcome.
func (b *Batch) Send(ctx context.Context) (*BatchResult, error) {
	if b.sent {
		return nil, ErrBatchSent
	}

	switch b.Len() {
	case 0:
		return nil, ErrEmptyBatch
	case 1:
		b.sent = true
		return nil, ErrSingleRequestBatch
	}
	b.sent = true

	out, err := b.session.send(ctx)
	if err != nil {
		return nil, err
	}
	return &BatchResult{Responses: out.responses, Output: out.body}, nil
}
