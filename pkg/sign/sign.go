package sign

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Signer authenticates outgoing calls on behalf of one application key.
type Signer interface {
	// AppKey is sent in clear in the app_key header.
	AppKey() string
	// Sign computes the signature of the canonical payload bytes.
	Sign(data []byte) (Signature, error)
}

// Type identifies the signature scheme.
type Type uint8

const (
	TypeHMAC Type = iota
	TypeEthereum
	TypeUnknown = 255
)

func (t Type) String() string {
	switch t {
	case TypeHMAC:
		return "HMAC-SHA256"
	case TypeEthereum:
		return "Ethereum"
	default:
		return "Unknown"
	}
}

// Signature is a raw signature. Its text form is standard base64, which is
// what travels in the sign header.
type Signature []byte

// Type guesses the scheme from the signature length.
func (s Signature) Type() Type {
	switch len(s) {
	case 32:
		return TypeHMAC
	case 65:
		return TypeEthereum
	default:
		return TypeUnknown
	}
}

func (s Signature) String() string {
	return base64.StdEncoding.EncodeToString(s)
}

// Hex returns the 0x-prefixed hex form.
func (s Signature) Hex() string {
	return hexutil.Encode(s)
}

// ParseSignature decodes the base64 text form.
func ParseSignature(text string) (Signature, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}
	return Signature(raw), nil
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	decoded, err := ParseSignature(text)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
