package jsonrpc

import "encoding/json"

// Version is the only protocol version accepted on the wire.
const Version = "2.0"

const (
	memberVersion = "jsonrpc"
	memberMethod  = "method"
	memberParams  = "params"
	memberID      = "id"
	memberResult  = "result"
	memberError   = "error"
)

// checkMember applies the rule of member name to a decoded value. exists
// reports whether the member was present at all. A null id passes only
// when allowNullID is set, which the caller decides from the error code.
func checkMember(name string, value any, exists, allowNullID bool) (any, error) {
	if !exists {
		return nil, missingMember(name)
	}

	var ok bool
	switch name {
	case memberVersion:
		s, isString := value.(string)
		ok = isString && s == Version
	case memberMethod:
		s, isString := value.(string)
		ok = isString && s != ""
	case memberParams:
		switch value.(type) {
		case []any, map[string]any:
			ok = true
		}
	case memberID:
		ok = checkID(value, allowNullID)
	case memberResult:
		ok = true
	case memberError:
		_, ok = errorFromValue(value)
	}

	if !ok {
		return nil, invalidValue(name)
	}
	return value, nil
}

func checkID(value any, allowNull bool) bool {
	if value == nil {
		return allowNull
	}
	id, ok := idFromValue(value)
	if !ok {
		return false
	}
	if s := id.str; id.kind == idString && s == "" {
		return false
	}
	return true
}

// errorFromValue validates a decoded error object: an integer non-zero code
// allowed by codeAllowed and a non-empty message. data is optional.
func errorFromValue(value any) (*Error, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}

	num, ok := obj["code"].(json.Number)
	if !ok {
		return nil, false
	}
	code, err := parseInteger(num)
	if err != nil || code == 0 || !codeAllowed(code) {
		return nil, false
	}

	msg, ok := obj["message"].(string)
	if !ok || msg == "" {
		return nil, false
	}

	return &Error{
		Category: CategoryServer,
		Code:     int(code),
		Message:  msg,
		Data:     obj["data"],
	}, true
}

// codeAllowed accepts the pre-defined codes and the server band. The rest of
// the reserved range [-32768, -32000] is rejected; any code outside it is
// application-defined and accepted.
func codeAllowed(code int64) bool {
	switch code {
	case CodeParseError, CodeInvalidRequest, CodeMethodNotFound, CodeInvalidParams, CodeInternalError:
		return true
	}
	if code >= CodeServerErrorMin && code <= CodeServerErrorMax {
		return true
	}
	return code < codeReservedMin || code > CodeServerErrorMax
}
