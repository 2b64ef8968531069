package fieldseal

import "fmt"

// Config is the explicit, constructed configuration for a set of
// encrypted fields: default key providers, derivation parameters,
// tolerance flags, and observability hooks. Build one at startup with
// NewConfig, derive Schemes from it, and share it. There is no
// package-global configuration; scoped behavior changes go through
// context overrides instead.
type Config struct {
	primaryProvider        KeyProvider
	deterministicProvider  KeyProvider
	deriver                *KeyDeriver
	encryptor              Encryptor
	supportUnencryptedData bool
	storeKeyReferences     bool
	audit                  AuditLogger
	metrics                *Metrics
}

// NewConfig validates opts and builds a Config. Passwords require a
// derivation salt; envelope encryption requires a primary provider.
func NewConfig(opts ...Option) (*Config, error) {
	var b configBuilder
	for _, opt := range opts {
		opt(&b)
	}

	c := &Config{
		supportUnencryptedData: b.supportUnencrypted,
		storeKeyReferences:     b.storeKeyReferences,
		audit:                  b.audit,
		metrics:                b.metrics,
	}

	if b.salt != "" {
		var dopts []DeriverOption
		if b.argon2 {
			dopts = append(dopts, WithArgon2())
		}
		if b.iterations > 0 {
			dopts = append(dopts, WithIterations(b.iterations))
		}
		deriver, err := NewKeyDeriver([]byte(b.salt), dopts...)
		if err != nil {
			return nil, err
		}
		deriver.metrics = b.metrics
		c.deriver = deriver
	}

	if len(b.primaryKeys) > 0 && b.primaryProvider != nil {
		return nil, fmt.Errorf("%w: primary keys and a default key provider are mutually exclusive", ErrConfiguration)
	}
	c.primaryProvider = b.primaryProvider
	if len(b.primaryKeys) > 0 {
		kp, err := c.deriveProvider(b.primaryKeys)
		if err != nil {
			return nil, err
		}
		c.primaryProvider = kp
	}

	if len(b.deterministicKeys) > 0 && b.deterministicProvider != nil {
		return nil, fmt.Errorf("%w: deterministic keys and a deterministic key provider are mutually exclusive", ErrConfiguration)
	}
	c.deterministicProvider = b.deterministicProvider
	if len(b.deterministicKeys) > 0 {
		kp, err := c.deriveProvider(b.deterministicKeys)
		if err != nil {
			return nil, err
		}
		c.deterministicProvider = kp
	}

	if b.envelope {
		if c.primaryProvider == nil {
			return nil, fmt.Errorf("%w: envelope encryption requires a primary key provider", ErrConfiguration)
		}
		ep, err := NewEnvelopeKeyProvider(c.primaryProvider)
		if err != nil {
			return nil, err
		}
		c.primaryProvider = ep
	}

	c.encryptor = b.encryptor
	if c.encryptor == nil {
		enc := NewMessageEncryptor()
		enc.audit = b.audit
		enc.metrics = b.metrics
		c.encryptor = enc
	}
	return c, nil
}

func (c *Config) deriveProvider(passwords []string) (KeyProvider, error) {
	if c.deriver == nil {
		return nil, ErrMissingSalt
	}
	return NewDerivedKeyProvider(c.deriver, passwords, c.providerOptions()...)
}

func (c *Config) providerOptions() []ProviderOption {
	if c.storeKeyReferences {
		return []ProviderOption{WithKeyReferences()}
	}
	return nil
}

// SupportsUnencryptedData reports whether reads fall back to treating
// undecryptable values as legacy plaintext.
func (c *Config) SupportsUnencryptedData() bool { return c.supportUnencryptedData }

// Encryptor returns the default encryptor.
func (c *Config) Encryptor() Encryptor { return c.encryptor }

// Destroy wipes all key material the config built: the derived-key cache
// and the secrets held by its providers. Caller-supplied providers are
// destroyed too when they implement Destroy. Idempotent.
func (c *Config) Destroy() {
	type destroyer interface{ Destroy() }
	if d, ok := c.primaryProvider.(destroyer); ok {
		d.Destroy()
	}
	if d, ok := c.deterministicProvider.(destroyer); ok {
		d.Destroy()
	}
	if c.deriver != nil {
		c.deriver.Destroy()
	}
}
