package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

var _ Signer = (*HMACSigner)(nil)

// ErrEmptyAppKey is returned when a signer is built without an application key.
var ErrEmptyAppKey = errors.New("empty app key")

// HMACSigner signs with HMAC-SHA256 keyed by the concatenation of the
// application key and secret.
type HMACSigner struct {
	appKey    string
	appSecret string
}

// NewHMACSigner returns a signer for the given credentials. appKey is required
// because it is sent as the app_key header. An empty appSecret is allowed.
func NewHMACSigner(appKey, appSecret string) (*HMACSigner, error) {
	if appKey == "" {
		return nil, ErrEmptyAppKey
	}
	return &HMACSigner{appKey: appKey, appSecret: appSecret}, nil
}

func (s *HMACSigner) AppKey() string { return s.appKey }

// AppSecret is part of the canonical payload, see NewPayload.
func (s *HMACSigner) AppSecret() string { return s.appSecret }

func (s *HMACSigner) Sign(data []byte) (Signature, error) {
	return hmacSHA256(s.appKey, s.appSecret, data), nil
}

// VerifyHMAC reports whether sig is the HMAC-SHA256 of data for the given
// credentials. The comparison is constant time.
func VerifyHMAC(appKey, appSecret string, data []byte, sig Signature) bool {
	return hmac.Equal(hmacSHA256(appKey, appSecret, data), sig)
}

func hmacSHA256(appKey, appSecret string, data []byte) Signature {
	mac := hmac.New(sha256.New, []byte(appKey+appSecret))
	mac.Write(data)
	return Signature(mac.Sum(nil))
}
