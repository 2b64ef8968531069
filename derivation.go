package fieldseal

import (
	"crypto/sha256"
	"sync"
	"sync/atomic"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Derivation parameters. PBKDF2-SHA-256 is the default; argon2id is
// available through WithArgon2. Parameters are fixed per deriver, so a
// (password, salt) pair always maps to the same key.
const (
	defaultIterations = 1 << 16
	argon2Time        = 2
	argon2MemoryKiB   = 19 * 1024
	argon2Threads     = 1
)

type derivationFunc int

const (
	derivePBKDF2 derivationFunc = iota
	deriveArgon2
)

// KeyDeriver deterministically derives 32-byte keys from passwords and a
// fixed salt. Derivation is expensive, so results are memoized per
// password. The cache is safe under concurrent first use: a race derives
// the same key twice and wastes CPU, it never hands out a wrong or
// partially written key.
type KeyDeriver struct {
	salt       []byte
	fn         derivationFunc
	iterations int
	cache      sync.Map // password -> Key
	destroyed  atomic.Bool
	metrics    *Metrics
}

// DeriverOption configures a KeyDeriver.
type DeriverOption func(*KeyDeriver)

// WithArgon2 selects argon2id in place of PBKDF2-SHA-256.
func WithArgon2() DeriverOption {
	return func(d *KeyDeriver) { d.fn = deriveArgon2 }
}

// WithIterations overrides the PBKDF2 iteration count. Changing it
// changes every derived key, so it must stay fixed for the life of the
// data.
func WithIterations(n int) DeriverOption {
	return func(d *KeyDeriver) {
		if n > 0 {
			d.iterations = n
		}
	}
}

// NewKeyDeriver returns a deriver over salt. The salt is copied and must
// not be empty.
func NewKeyDeriver(salt []byte, opts ...DeriverOption) (*KeyDeriver, error) {
	if len(salt) == 0 {
		return nil, ErrMissingSalt
	}
	d := &KeyDeriver{
		salt:       make([]byte, len(salt)),
		iterations: defaultIterations,
	}
	copy(d.salt, salt)
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// DeriveKey returns the key for password, deriving it on first use and
// memoizing the result.
func (d *KeyDeriver) DeriveKey(password string) (Key, error) {
	if d.destroyed.Load() {
		return Key{}, ErrDestroyed
	}
	if cached, ok := d.cache.Load(password); ok {
		return cached.(Key), nil
	}
	secret := d.derive(password)
	key := NewKey(secret)
	memguard.WipeBytes(secret)
	if d.metrics != nil {
		d.metrics.derivationDone()
	}
	actual, loaded := d.cache.LoadOrStore(password, key)
	if loaded {
		// Lost the race; another goroutine's key is canonical.
		memguard.WipeBytes(key.secret)
	}
	return actual.(Key), nil
}

func (d *KeyDeriver) derive(password string) []byte {
	switch d.fn {
	case deriveArgon2:
		return argon2.IDKey([]byte(password), d.salt, argon2Time, argon2MemoryKiB, argon2Threads, keyLength)
	default:
		return pbkdf2.Key([]byte(password), d.salt, d.iterations, keyLength, sha256.New)
	}
}

// Destroy wipes the salt and every cached key secret. The deriver is
// unusable afterwards. Keys already handed to providers hold their own
// copies and are unaffected.
func (d *KeyDeriver) Destroy() {
	if d.destroyed.Swap(true) {
		return
	}
	d.cache.Range(func(pw, cached any) bool {
		memguard.WipeBytes(cached.(Key).secret)
		d.cache.Delete(pw)
		return true
	})
	memguard.WipeBytes(d.salt)
}
