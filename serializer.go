package fieldseal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Wire encoding. A message serializes to compact JSON with single-letter
// keys, binary fields base64-encoded:
//
//	{"p": <payload>, "h": {"iv": <iv>, "at": <auth tag>, "e": {...}, "i": <key id>}}
//
// "e" nests the wrapped data key as a message of the same shape (envelope
// mode) and "i" carries a key reference; both are omitted when absent.
// Struct field order fixes the key order, so deterministic encryption
// yields byte-identical encodings. Unknown keys are ignored on parse, so
// older readers tolerate newer writers, and the encoding itself must stay
// parseable indefinitely: stored values are never migrated in bulk.

// maxKeyWrapDepth bounds the nesting of wrapped data keys when parsing.
// Envelope encryption produces depth two; anything deeper is rejected as
// malformed rather than recursed into.
const maxKeyWrapDepth = 4

type encodedMessage struct {
	P string          `json:"p"`
	H *encodedHeaders `json:"h"`
}

type encodedHeaders struct {
	IV string          `json:"iv"`
	AT string          `json:"at"`
	E  *encodedMessage `json:"e,omitempty"`
	I  string          `json:"i,omitempty"`
}

// encodeMessage renders m in the wire encoding.
func encodeMessage(m Message) (string, error) {
	b, err := json.Marshal(toEncoded(m))
	if err != nil {
		return "", fmt.Errorf("%w: encoding message: %v", ErrEncryption, err)
	}
	return string(b), nil
}

func toEncoded(m Message) *encodedMessage {
	enc := &encodedMessage{
		P: base64.StdEncoding.EncodeToString(m.Payload),
		H: &encodedHeaders{
			IV: base64.StdEncoding.EncodeToString(m.Headers.IV),
			AT: base64.StdEncoding.EncodeToString(m.Headers.AuthTag),
			I:  m.Headers.KeyID,
		},
	}
	if m.Headers.EncryptedKey != nil {
		enc.H.E = toEncoded(*m.Headers.EncryptedKey)
	}
	return enc
}

// decodeMessage parses the wire encoding. Every structural problem maps
// to ErrInvalidMessage; callers rely on that classification to tell
// legacy plaintext apart from misconfiguration.
func decodeMessage(s string) (Message, error) {
	var enc encodedMessage
	if err := json.Unmarshal([]byte(s), &enc); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return fromEncoded(&enc, 0)
}

func fromEncoded(enc *encodedMessage, depth int) (Message, error) {
	if depth >= maxKeyWrapDepth {
		return Message{}, fmt.Errorf("%w: key wrapping nested too deep", ErrInvalidMessage)
	}
	if enc.H == nil {
		return Message{}, fmt.Errorf("%w: missing headers", ErrInvalidMessage)
	}
	payload, err := base64.StdEncoding.DecodeString(enc.P)
	if err != nil {
		return Message{}, fmt.Errorf("%w: payload: %v", ErrInvalidMessage, err)
	}
	iv, err := base64.StdEncoding.DecodeString(enc.H.IV)
	if err != nil {
		return Message{}, fmt.Errorf("%w: iv: %v", ErrInvalidMessage, err)
	}
	authTag, err := base64.StdEncoding.DecodeString(enc.H.AT)
	if err != nil {
		return Message{}, fmt.Errorf("%w: auth tag: %v", ErrInvalidMessage, err)
	}
	if len(iv) == 0 || len(authTag) == 0 {
		return Message{}, fmt.Errorf("%w: missing iv or auth tag", ErrInvalidMessage)
	}
	m := Message{
		Payload: payload,
		Headers: Headers{IV: iv, AuthTag: authTag, KeyID: enc.H.I},
	}
	if enc.H.E != nil {
		inner, err := fromEncoded(enc.H.E, depth+1)
		if err != nil {
			return Message{}, err
		}
		m.Headers.EncryptedKey = &inner
	}
	return m, nil
}
