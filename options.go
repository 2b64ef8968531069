package fieldseal

// Option is a functional option for configuring a Config.
type Option func(*configBuilder)

type configBuilder struct {
	primaryKeys           []string
	deterministicKeys     []string
	salt                  string
	primaryProvider       KeyProvider
	deterministicProvider KeyProvider
	envelope              bool
	storeKeyReferences    bool
	supportUnencrypted    bool
	argon2                bool
	iterations            int
	encryptor             Encryptor
	audit                 AuditLogger
	metrics               *Metrics
}

// WithPrimaryKeys sets the passwords the default provider derives its
// keys from, newest first. The first password's key encrypts; every
// password's key remains a decryption candidate, which is how rotation
// works: add the new password at the front and keep the old ones until
// stored data has been re-encrypted.
func WithPrimaryKeys(passwords ...string) Option {
	return func(b *configBuilder) { b.primaryKeys = passwords }
}

// WithDeterministicKeys sets the passwords for the deterministic
// provider, newest first. Deterministic schemes need their own stable
// keys, separate from the primary ones.
func WithDeterministicKeys(passwords ...string) Option {
	return func(b *configBuilder) { b.deterministicKeys = passwords }
}

// WithKeyDerivationSalt sets the salt for password key derivation.
// Required whenever passwords are configured. Changing it changes every
// derived key, so it must stay fixed for the life of the data.
func WithKeyDerivationSalt(salt string) Option {
	return func(b *configBuilder) { b.salt = salt }
}

// WithDefaultKeyProvider installs kp as the provider for
// non-deterministic schemes, in place of password derivation.
func WithDefaultKeyProvider(kp KeyProvider) Option {
	return func(b *configBuilder) { b.primaryProvider = kp }
}

// WithDeterministicKeyProvider installs kp as the provider for
// deterministic schemes.
func WithDeterministicKeyProvider(kp KeyProvider) Option {
	return func(b *configBuilder) { b.deterministicProvider = kp }
}

// WithEnvelopeEncryption wraps the primary provider in an
// EnvelopeKeyProvider: each value is encrypted under a fresh random data
// key, which travels wrapped in the message. The primary keys become
// master keys and only ever encrypt data keys.
func WithEnvelopeEncryption() Option {
	return func(b *configBuilder) { b.envelope = true }
}

// WithStoreKeyReferences records the encrypting key's identifier in every
// message, so decryption tries exactly one key instead of the whole
// rotation list. Costs a few bytes per stored value.
func WithStoreKeyReferences() Option {
	return func(b *configBuilder) { b.storeKeyReferences = true }
}

// WithSupportUnencryptedData makes reads tolerate values that predate
// encryption: when every scheme fails with a decryption error, the stored
// value is returned as plaintext instead. Configuration errors are never
// downgraded this way. Intended for gradual rollouts; disable it once all
// data is encrypted.
func WithSupportUnencryptedData() Option {
	return func(b *configBuilder) { b.supportUnencrypted = true }
}

// WithArgon2KeyDerivation derives password keys with argon2id instead of
// PBKDF2-SHA-256.
func WithArgon2KeyDerivation() Option {
	return func(b *configBuilder) { b.argon2 = true }
}

// WithPBKDF2Iterations overrides the PBKDF2 iteration count.
func WithPBKDF2Iterations(n int) Option {
	return func(b *configBuilder) { b.iterations = n }
}

// WithDefaultEncryptor replaces the standard MessageEncryptor. Audit
// logging and metrics are not attached to replacements; wire them inside
// the replacement if needed.
func WithDefaultEncryptor(e Encryptor) Option {
	return func(b *configBuilder) { b.encryptor = e }
}

// WithAuditLogger attaches l to the default encryptor. Every encrypt and
// decrypt operation produces one entry; entries carry sizes and outcomes,
// never plaintext or key material.
func WithAuditLogger(l AuditLogger) Option {
	return func(b *configBuilder) { b.audit = l }
}

// WithMetrics attaches m to the default encryptor and the key deriver.
func WithMetrics(m *Metrics) Option {
	return func(b *configBuilder) { b.metrics = m }
}
