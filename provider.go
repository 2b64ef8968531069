package fieldseal

import (
	"fmt"
	"sync/atomic"

	"github.com/awnumar/memguard"
)

// KeyProvider supplies key material for encryption and decryption.
// Implement it to integrate with external key management systems such as
// HashiCorp Vault, AWS KMS, or an HSM; the core places no restriction
// beyond this contract.
//
// EncryptionKey returns the single key used for new encryptions; for
// rotation lists this is the most recently added key. DecryptionKeys
// returns the ordered candidates for decrypting msg, newest first; it may
// inspect the message headers to narrow the list. An empty list means no
// key can decrypt the message.
//
// Implementations must be safe for concurrent use.
type KeyProvider interface {
	EncryptionKey() (Key, error)
	DecryptionKeys(msg Message) ([]Key, error)
}

// ProviderOption configures a key provider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	keyReferences bool
}

// WithKeyReferences tags every key with its identifier, so messages record
// which key encrypted them and decryption tries only that key instead of
// the whole list.
func WithKeyReferences() ProviderOption {
	return func(c *providerConfig) { c.keyReferences = true }
}

// StaticKeyProvider serves a fixed, ordered list of keys. The first key
// encrypts; all keys are decryption candidates in list order, newest
// first. With key references enabled, decryption short-circuits to the
// key a message names; an unknown reference yields no candidates.
type StaticKeyProvider struct {
	keys      []Key
	byID      map[string][]Key
	destroyed atomic.Bool
}

// NewStaticKeyProvider returns a provider over keys, ordered newest
// first. Keys are copied at construction; every secret must be exactly 32
// bytes.
func NewStaticKeyProvider(keys []Key, opts ...ProviderOption) (*StaticKeyProvider, error) {
	var cfg providerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: at least one key is required", ErrConfiguration)
	}
	p := &StaticKeyProvider{
		keys: make([]Key, 0, len(keys)),
		byID: make(map[string][]Key, len(keys)),
	}
	for _, k := range keys {
		if len(k.secret) != keyLength {
			return nil, ErrInvalidKeySize
		}
		k = k.clone()
		if cfg.keyReferences {
			k = k.withReference()
		}
		p.keys = append(p.keys, k)
		p.byID[k.ID()] = append(p.byID[k.ID()], k)
	}
	return p, nil
}

// EncryptionKey returns the first (newest) key.
func (p *StaticKeyProvider) EncryptionKey() (Key, error) {
	if p.destroyed.Load() {
		return Key{}, ErrDestroyed
	}
	return p.keys[0], nil
}

// DecryptionKeys returns every key, newest first, unless msg carries a
// key reference, in which case only keys with that identifier are
// returned.
func (p *StaticKeyProvider) DecryptionKeys(msg Message) ([]Key, error) {
	if p.destroyed.Load() {
		return nil, ErrDestroyed
	}
	if id := msg.Headers.KeyID; id != "" {
		return p.byID[id], nil
	}
	return p.keys, nil
}

// Destroy wipes every key secret. The provider is unusable afterwards;
// operations return ErrDestroyed.
func (p *StaticKeyProvider) Destroy() {
	if p.destroyed.Swap(true) {
		return
	}
	for i := range p.keys {
		memguard.WipeBytes(p.keys[i].secret)
	}
}

// DerivedKeyProvider derives its keys from a list of passwords, newest
// first, through a KeyDeriver. It behaves as a StaticKeyProvider over the
// derived keys: the first password's key encrypts, every password's key
// is a decryption candidate.
type DerivedKeyProvider struct {
	*StaticKeyProvider
}

// NewDerivedKeyProvider derives one key per password at construction.
// Derivation goes through the deriver's cache, so providers sharing a
// deriver do not repeat work.
func NewDerivedKeyProvider(deriver *KeyDeriver, passwords []string, opts ...ProviderOption) (*DerivedKeyProvider, error) {
	if deriver == nil {
		return nil, fmt.Errorf("%w: key deriver is required", ErrConfiguration)
	}
	if len(passwords) == 0 {
		return nil, fmt.Errorf("%w: at least one password is required", ErrConfiguration)
	}
	keys := make([]Key, 0, len(passwords))
	for _, pw := range passwords {
		k, err := deriver.DeriveKey(pw)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	static, err := NewStaticKeyProvider(keys, opts...)
	if err != nil {
		return nil, err
	}
	return &DerivedKeyProvider{StaticKeyProvider: static}, nil
}
