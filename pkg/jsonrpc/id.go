package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type idKind uint8

const (
	idAbsent idKind = iota
	idNull
	idNumber
	idString
)

// ID is a JSON-RPC id: an integer, a string, or null. The zero ID is absent,
// which marks a request as a notification.
type ID struct {
	kind idKind
	num  int64
	str  string
}

// NewIntID returns an integer id. It encodes as a JSON number.
func NewIntID(n int64) ID { return ID{kind: idNumber, num: n} }

// NewStringID returns a string id. The empty string is a valid id and is not
// the same as an absent one.
func NewStringID(s string) ID { return ID{kind: idString, str: s} }

// NullID returns the null id. Servers use it in error responses when the
// request id could not be read. A request sent with it still expects a reply.
func NullID() ID { return ID{kind: idNull} }

// IsAbsent reports whether the id was left out. Requests without an id are
// notifications.
func (id ID) IsAbsent() bool { return id.kind == idAbsent }

// IsNull reports whether the id is an explicit null.
func (id ID) IsNull() bool { return id.kind == idNull }

// Int returns the numeric value when the id is an integer.
func (id ID) Int() (int64, bool) {
	return id.num, id.kind == idNumber
}

func (id ID) String() string {
	switch id.kind {
	case idNull:
		return "null"
	case idNumber:
		return strconv.FormatInt(id.num, 10)
	case idString:
		return id.str
	default:
		return ""
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idNumber:
		return []byte(strconv.FormatInt(id.num, 10)), nil
	case idString:
		return json.Marshal(id.str)
	default:
		return []byte("null"), nil
	}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = NullID()
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NewStringID(s)
		return nil
	}

	n, err := parseInteger(json.Number(data))
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = NewIntID(n)
	return nil
}

// parseInteger accepts only plain integer literals; 1.0 and 1e3 are rejected.
func parseInteger(n json.Number) (int64, error) {
	if strings.ContainsAny(n.String(), ".eE") {
		return 0, fmt.Errorf("not an integer: %s", n)
	}
	return n.Int64()
}

// idFromValue converts a decoded member value. ok is false for any type an
// id may not have.
func idFromValue(v any) (ID, bool) {
	switch val := v.(type) {
	case nil:
		return NullID(), true
	case string:
		return NewStringID(val), true
	case json.Number:
		n, err := parseInteger(val)
		if err != nil {
			return ID{}, false
		}
		return NewIntID(n), true
	default:
		return ID{}, false
	}
}

type idOrder uint8

const (
	idBefore idOrder = iota
	idAfter
	idDuplicate
)

// orderIDs compares two response ids. Equal ids are reported as idDuplicate
// instead of as a tie. Across kinds: null < integer < string.
func orderIDs(a, b ID) idOrder {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return idBefore
		}
		return idAfter
	}

	var c int
	switch a.kind {
	case idNumber:
		switch {
		case a.num < b.num:
			c = -1
		case a.num > b.num:
			c = 1
		}
	case idString:
		c = strings.Compare(a.str, b.str)
	}

	switch {
	case c < 0:
		return idBefore
	case c > 0:
		return idAfter
	default:
		return idDuplicate
	}
}
