package fieldseal

import (
	"crypto/sha256"
	"encoding/hex"
)

// keyIDLength is the number of hex characters in a derived key identifier.
const keyIDLength = 8

// Key is an encryption key: an opaque secret plus public, unencrypted tags
// that travel with every message encrypted under it. A Key is immutable
// once constructed and owned by the provider that produced it; the core
// never persists keys.
type Key struct {
	secret []byte
	tags   Headers
	id     string
}

// NewKey returns a Key for the given secret. The secret is copied, so the
// caller may wipe its own buffer afterwards. The key identifier is derived
// from the secret (a truncated SHA-256 digest); equal secrets share an
// identifier.
func NewKey(secret []byte) Key {
	s := make([]byte, len(secret))
	copy(s, secret)
	return Key{secret: s, id: deriveKeyID(s)}
}

// NewKeyWithID returns a Key carrying an explicit identifier instead of
// the derived one. Custom providers use this to label keys with
// identifiers meaningful to their backing store.
func NewKeyWithID(secret []byte, id string) Key {
	k := NewKey(secret)
	k.id = id
	return k
}

// ID returns the key identifier. It is safe to store and log; nothing
// about the secret is recoverable from it.
func (k Key) ID() string { return k.id }

// Secret returns the key's secret bytes. The slice is shared with the
// Key; callers must treat it as read-only.
func (k Key) Secret() []byte { return k.secret }

// Tags returns the public tags attached to the key. Tags are merged into
// the headers of every message encrypted under the key.
func (k Key) Tags() Headers { return k.tags }

// clone returns a Key with its own copy of the secret, so wiping one
// copy leaves the other intact.
func (k Key) clone() Key {
	s := make([]byte, len(k.secret))
	copy(s, k.secret)
	return Key{secret: s, tags: k.tags, id: k.id}
}

// withReference returns a copy of the key whose tags carry its
// identifier, so messages record which key produced them.
func (k Key) withReference() Key {
	k.tags.KeyID = k.id
	return k
}

// withWrappedKey returns a copy of the key whose tags carry the wrapped
// form of its secret, as produced by an envelope provider.
func (k Key) withWrappedKey(m *Message) Key {
	k.tags.EncryptedKey = m
	return k
}

func deriveKeyID(secret []byte) string {
	sum := sha256.Sum256(secret)
	return hex.EncodeToString(sum[:])[:keyIDLength]
}
