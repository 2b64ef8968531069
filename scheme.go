package fieldseal

import (
	"context"
	"fmt"
	"strings"
)

// Scheme describes how one logical field is encrypted: which provider
// supplies keys, whether encryption is deterministic, how plaintext is
// normalized, and which previous schemes older stored values may have
// used. A Scheme is immutable and safe for concurrent use; build one per
// field at configuration time and share it across all operations on that
// field.
type Scheme struct {
	cfg           *Config
	keyProvider   KeyProvider
	deterministic bool
	downcase      bool
	normalizer    Normalizer
	previous      []*Scheme
	encryptor     Encryptor
}

// SchemeOption configures a Scheme under construction.
type SchemeOption func(*schemeConfig)

type schemeConfig struct {
	keyProvider   KeyProvider
	passwords     []string
	deterministic bool
	downcase      bool
	normalizer    Normalizer
	previous      []*Scheme
	encryptor     Encryptor
}

// WithProvider uses kp for this scheme in place of the config default.
func WithProvider(kp KeyProvider) SchemeOption {
	return func(c *schemeConfig) { c.keyProvider = kp }
}

// WithPasswords derives this scheme's keys from the given passwords,
// newest first, using the config's deriver.
func WithPasswords(passwords ...string) SchemeOption {
	return func(c *schemeConfig) { c.passwords = passwords }
}

// WithDeterministic makes encryption deterministic: equal plaintext under
// the same key yields a byte-identical stored encoding, enabling equality
// queries at the cost of leaking repetition.
func WithDeterministic() SchemeOption {
	return func(c *schemeConfig) { c.deterministic = true }
}

// WithDowncase lowercases plaintext before encryption, so deterministic
// lookups are case-insensitive.
func WithDowncase() SchemeOption {
	return func(c *schemeConfig) { c.downcase = true }
}

// WithNormalizer canonicalizes plaintext with fn before case folding. For
// deterministic schemes the same normalizer runs on the write and query
// paths.
func WithNormalizer(fn Normalizer) SchemeOption {
	return func(c *schemeConfig) { c.normalizer = fn }
}

// WithPrevious declares schemes that older stored values may have been
// encrypted under. They are tried in the given order when the current
// scheme fails to decrypt.
func WithPrevious(previous ...*Scheme) SchemeOption {
	return func(c *schemeConfig) { c.previous = previous }
}

// WithFixedEncryptor pins this scheme to e, bypassing the config default.
// Context overrides still win.
func WithFixedEncryptor(e Encryptor) SchemeOption {
	return func(c *schemeConfig) { c.encryptor = e }
}

// NewScheme builds a Scheme from c. The key provider resolves in order:
// an explicit WithProvider, keys derived from WithPasswords, then the
// config's deterministic or primary default depending on
// WithDeterministic. Construction fails with a configuration error when
// no provider resolves.
func (c *Config) NewScheme(opts ...SchemeOption) (*Scheme, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil config", ErrConfiguration)
	}
	var sc schemeConfig
	for _, opt := range opts {
		opt(&sc)
	}
	s := &Scheme{
		cfg:           c,
		deterministic: sc.deterministic,
		downcase:      sc.downcase,
		normalizer:    sc.normalizer,
		previous:      append([]*Scheme(nil), sc.previous...),
		encryptor:     sc.encryptor,
	}
	switch {
	case sc.keyProvider != nil && len(sc.passwords) > 0:
		return nil, fmt.Errorf("%w: a provider and passwords are mutually exclusive", ErrConfiguration)
	case sc.keyProvider != nil:
		s.keyProvider = sc.keyProvider
	case len(sc.passwords) > 0:
		if c.deriver == nil {
			return nil, ErrMissingSalt
		}
		kp, err := NewDerivedKeyProvider(c.deriver, sc.passwords, c.providerOptions()...)
		if err != nil {
			return nil, err
		}
		s.keyProvider = kp
	case sc.deterministic:
		s.keyProvider = c.deterministicProvider
	default:
		s.keyProvider = c.primaryProvider
	}
	if s.keyProvider == nil {
		return nil, ErrNoKeyProvider
	}
	return s, nil
}

// KeyProvider returns the scheme's provider.
func (s *Scheme) KeyProvider() KeyProvider { return s.keyProvider }

// Deterministic reports whether the scheme encrypts deterministically.
func (s *Scheme) Deterministic() bool { return s.deterministic }

// Downcase reports whether plaintext is lowercased before encryption.
func (s *Scheme) Downcase() bool { return s.downcase }

// Previous returns the previous schemes, in fallback order.
func (s *Scheme) Previous() []*Scheme {
	return append([]*Scheme(nil), s.previous...)
}

// normalize applies the scheme's normalizer, then case folding.
func (s *Scheme) normalize(plaintext string) string {
	if s.normalizer != nil {
		plaintext = s.normalizer(plaintext)
	}
	if s.downcase {
		plaintext = strings.ToLower(plaintext)
	}
	return plaintext
}

// resolve returns the encryptor and options for one operation, honoring
// context overrides. Precedence: context override, the scheme's fixed
// encryptor, then the config default. A context key provider replaces the
// scheme's provider for every attempt.
func (s *Scheme) resolve(ctx context.Context) (Encryptor, EncryptorOptions) {
	fallback := s.encryptor
	if fallback == nil {
		fallback = s.cfg.encryptor
	}
	enc := resolveEncryptor(ctx, fallback)
	kp := resolveKeyProvider(ctx, s.keyProvider)
	return enc, EncryptorOptions{KeyProvider: kp, Deterministic: s.deterministic}
}
