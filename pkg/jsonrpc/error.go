package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Pre-defined JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// Server error band, inclusive.
	CodeServerErrorMax = -32000
	CodeServerErrorMin = -32099

	// Codes in [codeReservedMin, CodeServerErrorMax] belong to the protocol.
	codeReservedMin = -32768
)

// ErrInvalidResponse is the message of every error detected by the client
// itself. Such errors always have code 0.
const ErrInvalidResponse = "Invalid Response"

// Client-side failure causes, matched with errors.Is on a returned *Error.
var (
	ErrParse               = errors.New("Parse error")
	ErrParseErrorReported  = fmt.Errorf("Response reports Parse error (%d)", CodeParseError)
	ErrMismatchedResponses = errors.New("Mismatched responses")
	ErrDuplicateResponseID = errors.New("Duplicate response id")
	ErrUnableToConnect     = errors.New("Unable to connect")
	ErrResponseTooLarge    = errors.New("Response too large")
)

// Misuse of the API. These are returned as is, never wrapped in *Error.
var (
	ErrEmptyBatch         = errors.New("jsonrpc: batch has no requests")
	ErrSingleRequestBatch = errors.New("jsonrpc: batch only has one request")
	ErrBatchSent          = errors.New("jsonrpc: batch already sent")
)

// Category places an *Error in the client error taxonomy.
type Category uint8

const (
	// CategoryValidation: a request or response broke the protocol rules.
	CategoryValidation Category = iota
	// CategoryServer: the peer answered with a well-formed error object.
	CategoryServer
	// CategoryTransport: the exchange itself failed.
	CategoryTransport
	// CategoryCorrelation: responses could not be matched to the requests.
	CategoryCorrelation
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryServer:
		return "server"
	case CategoryTransport:
		return "transport"
	case CategoryCorrelation:
		return "correlation"
	default:
		return "unknown"
	}
}

// Error is a JSON-RPC error object and also the error type returned by
// every failed call. Errors raised by the client carry code 0, message
// ErrInvalidResponse and the diagnostic in Data.
type Error struct {
	Category Category `json:"-"`
	Code     int      `json:"code"`
	Message  string   `json:"message"`
	Data     any      `json:"data,omitempty"`

	cause error
}

// Error formats "message (code)" followed by ": data" when data is set.
func (e *Error) Error() string {
	s := fmt.Sprintf("%s (%d)", e.Message, e.Code)
	if d := formatData(e.Data); d != "" {
		s += ": " + d
	}
	return s
}

func (e *Error) Unwrap() error { return e.cause }

func formatData(data any) string {
	switch d := data.(type) {
	case nil:
		return ""
	case string:
		return d
	case json.RawMessage:
		return string(d)
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Sprint(d)
		}
		return string(b)
	}
}

func clientError(category Category, cause error) *Error {
	return &Error{
		Category: category,
		Code:     0,
		Message:  ErrInvalidResponse,
		Data:     cause.Error(),
		cause:    cause,
	}
}

// Reason distinguishes the three ways a member check can fail.
type Reason uint8

const (
	// ReasonMissingMember means a required member such as "jsonrpc" or "id"
	// is not present.
	ReasonMissingMember Reason = iota
	// ReasonInvalidValue means a member is present with the wrong type or value.
	ReasonInvalidValue
	// ReasonInvalidStructure means the members present do not form any legal
	// message, for example both "result" and "error".
	ReasonInvalidStructure
)

// ValidationError reports a message that is not legal JSON-RPC 2.0.
type ValidationError struct {
	Reason Reason
	Member string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissingMember:
		return "Missing member: " + e.Member
	case ReasonInvalidValue:
		return "Invalid value for: " + e.Member
	default:
		return "Invalid structure"
	}
}

func missingMember(name string) error {
	return &ValidationError{Reason: ReasonMissingMember, Member: name}
}
func invalidValue(name string) error {
	return &ValidationError{Reason: ReasonInvalidValue, Member: name}
}
func invalidStructure() error { return &ValidationError{Reason: ReasonInvalidStructure} }
