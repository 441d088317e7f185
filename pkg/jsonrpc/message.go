package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind is decided once, when a message is decoded.
type Kind uint8

const (
	// KindInvalid is the zero Kind. Decoded messages never carry it.
	KindInvalid Kind = iota
	// KindRequest has a method. Its id is absent for notifications.
	KindRequest
	// KindResult is a response with a result member.
	KindResult
	// KindError is a response with an error member.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResult:
		return "result"
	case KindError:
		return "error"
	default:
		return "invalid"
	}
}

// Message is a validated JSON-RPC message. Which fields are meaningful
// depends on Kind.
type Message struct {
	Kind   Kind
	ID     ID
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Error  *Error
}

// IsNotification reports a request without an id.
func (m Message) IsNotification() bool {
	return m.Kind == KindRequest && m.ID.IsAbsent()
}

// Err returns the error object of an error response, or nil.
func (m Message) Err() error {
	if m.Error == nil {
		return nil
	}
	return m.Error
}

// Translate decodes the result of a result response into v.
func (m Message) Translate(v any) error {
	if m.Kind != KindResult {
		return fmt.Errorf("message is a %s, not a result", m.Kind)
	}
	if err := json.Unmarshal(m.Result, v); err != nil {
		return fmt.Errorf("error unmarshalling result: %w", err)
	}
	return nil
}

// ParseMessage decodes and validates a single request or response object.
func ParseMessage(data []byte) (Message, error) {
	v, err := decodeValue(data)
	if err != nil {
		return Message{}, err
	}
	return messageFromValue(v)
}

// ParseResponse is ParseMessage restricted to response objects.
func ParseResponse(data []byte) (Message, error) {
	v, err := decodeValue(data)
	if err != nil {
		return Message{}, err
	}
	return responseFromValue(v)
}

// decodeValue decodes one JSON document keeping numbers as json.Number, so
// integers can be told apart from floats.
func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func messageFromValue(v any) (Message, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Message{}, invalidStructure()
	}

	kind, err := classify(obj)
	if err != nil {
		return Message{}, err
	}

	switch kind {
	case KindRequest:
		return requestFromObject(obj)
	case KindResult, KindError:
		return responseFromObject(obj, kind)
	default:
		return Message{}, invalidStructure()
	}
}

func responseFromValue(v any) (Message, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Message{}, invalidStructure()
	}

	kind, err := classify(obj)
	if err != nil {
		return Message{}, err
	}

	switch kind {
	case KindResult, KindError:
		return responseFromObject(obj, kind)
	default:
		return Message{}, invalidStructure()
	}
}

// classify picks the message kind from the members present. Exactly one of
// method, result and error may appear.
func classify(obj map[string]any) (Kind, error) {
	_, hasMethod := obj[memberMethod]
	_, hasResult := obj[memberResult]
	_, hasError := obj[memberError]

	switch {
	case hasMethod && (hasResult || hasError):
		return KindInvalid, invalidStructure()
	case hasMethod:
		return KindRequest, nil
	case hasResult && hasError:
		return KindInvalid, invalidStructure()
	case hasError:
		return KindError, nil
	case hasResult:
		return KindResult, nil
	default:
		return KindInvalid, missingMember(memberResult)
	}
}

func requestFromObject(obj map[string]any) (Message, error) {
	if _, err := member(obj, memberVersion, false); err != nil {
		return Message{}, err
	}

	method, err := member(obj, memberMethod, false)
	if err != nil {
		return Message{}, err
	}
	msg := Message{Kind: KindRequest, Method: method.(string)}

	if _, exists := obj[memberParams]; exists {
		params, err := member(obj, memberParams, false)
		if err != nil {
			return Message{}, err
		}
		msg.Params = rawValue(params)
	}

	if _, exists := obj[memberID]; exists {
		id, err := member(obj, memberID, false)
		if err != nil {
			return Message{}, err
		}
		msg.ID, _ = idFromValue(id)
	}

	return msg, nil
}

func responseFromObject(obj map[string]any, kind Kind) (Message, error) {
	if _, err := member(obj, memberVersion, false); err != nil {
		return Message{}, err
	}

	msg := Message{Kind: kind}
	allowNullID := false

	switch kind {
	case KindError:
		v, err := member(obj, memberError, false)
		if err != nil {
			return Message{}, err
		}
		msg.Error, _ = errorFromValue(v)
		// The server could not tell which request failed.
		allowNullID = msg.Error.Code == CodeParseError || msg.Error.Code == CodeInvalidRequest
	case KindResult:
		v, err := member(obj, memberResult, false)
		if err != nil {
			return Message{}, err
		}
		msg.Result = rawValue(v)
	}

	id, err := member(obj, memberID, allowNullID)
	if err != nil {
		return Message{}, err
	}
	msg.ID, _ = idFromValue(id)

	return msg, nil
}

func member(obj map[string]any, name string, allowNullID bool) (any, error) {
	value, exists := obj[name]
	return checkMember(name, value, exists, allowNullID)
}

// rawValue re-encodes a decoded value. Values produced by decodeValue
// always encode.
func rawValue(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
