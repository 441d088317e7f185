package sign

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Header names carrying the call signature.
const (
	HeaderAppKey     = "app_key"
	HeaderTime       = "time"
	HeaderRandNumber = "rand_number"
	HeaderSign       = "sign"
)

// timeDigits is how many leading digits of the unix-seconds timestamp are
// signed. Five digits give a window of 10^5 seconds.
const timeDigits = 5

var ErrSignatureMismatch = errors.New("signature mismatch")

// SecretHolder is implemented by signers whose secret is part of the
// canonical payload.
type SecretHolder interface {
	AppSecret() string
}

// Payload is the canonical structure that gets signed. Field order is fixed
// by the struct, so the JSON encoding is deterministic.
type Payload struct {
	AppKey     string          `json:"app_key"`
	AppSecret  string          `json:"app_secret"`
	Time       string          `json:"time"`
	RandNumber string          `json:"rand_number"`
	Params     json.RawMessage `json:"params"`
}

// NewPayload builds the canonical payload for one send.
func NewPayload(signer Signer, params json.RawMessage, now time.Time, nonce string) Payload {
	p := Payload{
		AppKey:     signer.AppKey(),
		Time:       TruncateTime(strconv.FormatInt(now.Unix(), 10)),
		RandNumber: nonce,
		Params:     params,
	}
	if sh, ok := signer.(SecretHolder); ok {
		p.AppSecret = sh.AppSecret()
	}
	return p
}

// Bytes returns the canonical encoding.
func (p Payload) Bytes() ([]byte, error) {
	if len(p.Params) == 0 {
		p.Params = json.RawMessage("null")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("error marshalling signing payload: %w", err)
	}
	return data, nil
}

// TruncateTime keeps the coarse leading digits of a unix-seconds string.
func TruncateTime(unixSeconds string) string {
	if len(unixSeconds) > timeDigits {
		return unixSeconds[:timeDigits]
	}
	return unixSeconds
}

// Headers signs params and returns the four signing headers.
func Headers(signer Signer, params json.RawMessage, now time.Time, nonce string) (http.Header, error) {
	data, err := NewPayload(signer, params, now, nonce).Bytes()
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(data)
	if err != nil {
		return nil, fmt.Errorf("error signing payload: %w", err)
	}

	h := make(http.Header, 4)
	h.Set(HeaderAppKey, signer.AppKey())
	h.Set(HeaderTime, strconv.FormatInt(now.Unix(), 10))
	h.Set(HeaderRandNumber, nonce)
	h.Set(HeaderSign, sig.String())
	return h, nil
}

// VerifyHMACHeaders checks headers produced by an HMACSigner against the
// expected secret and the params the server received.
func VerifyHMACHeaders(h http.Header, appSecret string, params json.RawMessage) error {
	sig, err := ParseSignature(h.Get(HeaderSign))
	if err != nil {
		return err
	}

	payload := Payload{
		AppKey:     h.Get(HeaderAppKey),
		AppSecret:  appSecret,
		Time:       TruncateTime(h.Get(HeaderTime)),
		RandNumber: h.Get(HeaderRandNumber),
		Params:     params,
	}
	data, err := payload.Bytes()
	if err != nil {
		return err
	}

	if !VerifyHMAC(payload.AppKey, appSecret, data, sig) {
		return ErrSignatureMismatch
	}
	return nil
}
