package fieldseal

import (
	"crypto/rand"
	"fmt"

	"github.com/awnumar/memguard"
)

// EnvelopeKeyProvider implements envelope encryption: every encryption
// uses a fresh random data key, wrapped under the master provider's
// current key and carried in the message headers. Decryption unwraps the
// carried key, trying the master provider's candidates in order, so
// master rotation works exactly like direct rotation.
//
// Envelope providers cannot serve deterministic schemes: the data key
// changes on every call, so ciphertexts never repeat.
type EnvelopeKeyProvider struct {
	master KeyProvider
}

// NewEnvelopeKeyProvider wraps master, typically a DerivedKeyProvider
// over the primary passwords.
func NewEnvelopeKeyProvider(master KeyProvider) (*EnvelopeKeyProvider, error) {
	if master == nil {
		return nil, fmt.Errorf("%w: envelope master provider is required", ErrConfiguration)
	}
	return &EnvelopeKeyProvider{master: master}, nil
}

// EncryptionKey generates a fresh random data key and attaches its
// wrapped form as a tag, so the key travels inside every message it
// encrypts.
func (p *EnvelopeKeyProvider) EncryptionKey() (Key, error) {
	master, err := p.master.EncryptionKey()
	if err != nil {
		return Key{}, err
	}
	secret := make([]byte, keyLength)
	if _, err := rand.Read(secret); err != nil {
		return Key{}, fmt.Errorf("%w: generating data key: %v", ErrEncryption, err)
	}
	wrapped, err := seal(master, secret, false)
	if err != nil {
		return Key{}, err
	}
	key := NewKey(secret).withWrappedKey(&wrapped)
	memguard.WipeBytes(secret)
	return key, nil
}

// DecryptionKeys unwraps the message's carried data key and returns it as
// the sole candidate. Master candidates are tried in order; the last
// unwrap error is surfaced if none succeeds.
func (p *EnvelopeKeyProvider) DecryptionKeys(msg Message) ([]Key, error) {
	wrapped := msg.Headers.EncryptedKey
	if wrapped == nil {
		return nil, ErrMissingEncryptedKey
	}
	masters, err := p.master.DecryptionKeys(*wrapped)
	if err != nil {
		return nil, err
	}
	if len(masters) == 0 {
		return nil, ErrNoCandidateKeys
	}
	var lastErr error
	for _, master := range masters {
		secret, err := open(master, *wrapped)
		if err != nil {
			lastErr = err
			continue
		}
		key := NewKey(secret)
		memguard.WipeBytes(secret)
		return []Key{key}, nil
	}
	return nil, lastErr
}

// Destroy wipes the master provider's key material when it supports
// destruction.
func (p *EnvelopeKeyProvider) Destroy() {
	if d, ok := p.master.(interface{ Destroy() }); ok {
		d.Destroy()
	}
}
