package fieldseal

// EncryptorOptions carry the per-call inputs an Encryptor needs: which
// provider supplies keys and whether encryption must be deterministic.
type EncryptorOptions struct {
	KeyProvider   KeyProvider
	Deterministic bool
}

// Encryptor turns plaintext into stored encodings and back. The package
// ships three implementations: MessageEncryptor does real work,
// PassthroughEncryptor disables encryption, and ReadOnlyEncryptor permits
// reads while refusing writes. Implementations must be safe for
// concurrent use.
type Encryptor interface {
	Encrypt(plaintext string, opts EncryptorOptions) (string, error)
	Decrypt(encoded string, opts EncryptorOptions) (string, error)
	// Encrypted reports whether encoded parses as an encrypted message.
	Encrypted(encoded string) bool
}

// MessageEncryptor is the standard Encryptor: AES-256-GCM through the
// provider in the options, wire-encoded messages, optional audit logging
// and metrics. The zero value is usable; Config attaches audit and
// metrics to the default encryptor it builds.
type MessageEncryptor struct {
	audit   AuditLogger
	metrics *Metrics
}

// NewMessageEncryptor returns a MessageEncryptor with no audit logging or
// metrics attached.
func NewMessageEncryptor() *MessageEncryptor {
	return &MessageEncryptor{}
}

// Encrypt seals plaintext under the provider's encryption key and returns
// the stored encoding.
func (e *MessageEncryptor) Encrypt(plaintext string, opts EncryptorOptions) (string, error) {
	encoded, err := e.encrypt(plaintext, opts)
	e.observe("encrypt", err, len(plaintext))
	return encoded, err
}

func (e *MessageEncryptor) encrypt(plaintext string, opts EncryptorOptions) (string, error) {
	if opts.KeyProvider == nil {
		return "", ErrNoKeyProvider
	}
	key, err := opts.KeyProvider.EncryptionKey()
	if err != nil {
		return "", err
	}
	if len(key.secret) == 0 {
		return "", ErrNoEncryptionKey
	}
	msg, err := seal(key, []byte(plaintext), opts.Deterministic)
	if err != nil {
		return "", err
	}
	return encodeMessage(msg)
}

// Decrypt parses a stored encoding and opens it with the provider's
// candidate keys, in order. Every candidate is tried; the last failure is
// surfaced if none succeeds.
func (e *MessageEncryptor) Decrypt(encoded string, opts EncryptorOptions) (string, error) {
	plaintext, err := e.decrypt(encoded, opts)
	e.observe("decrypt", err, len(encoded))
	return plaintext, err
}

func (e *MessageEncryptor) decrypt(encoded string, opts EncryptorOptions) (string, error) {
	if opts.KeyProvider == nil {
		return "", ErrNoKeyProvider
	}
	msg, err := decodeMessage(encoded)
	if err != nil {
		return "", err
	}
	keys, err := opts.KeyProvider.DecryptionKeys(msg)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", ErrNoCandidateKeys
	}
	var lastErr error
	for _, key := range keys {
		plaintext, err := open(key, msg)
		if err != nil {
			lastErr = err
			continue
		}
		return string(plaintext), nil
	}
	return "", lastErr
}

// Encrypted reports whether encoded parses as a message envelope.
func (e *MessageEncryptor) Encrypted(encoded string) bool {
	_, err := decodeMessage(encoded)
	return err == nil
}

func (e *MessageEncryptor) observe(op string, err error, size int) {
	if e.metrics != nil {
		e.metrics.observe(op, err)
	}
	if e.audit != nil {
		fields := map[string]any{"bytes": size}
		if err != nil {
			fields["error"] = err.Error()
		}
		e.audit.Log(op, err == nil, fields)
	}
}

// PassthroughEncryptor disables encryption: Encrypt returns the plaintext
// unchanged and Decrypt returns the stored value unchanged. It backs
// WithoutEncryption and is useful in migrations that must read or write
// raw column values.
type PassthroughEncryptor struct{}

func (PassthroughEncryptor) Encrypt(plaintext string, _ EncryptorOptions) (string, error) {
	return plaintext, nil
}

func (PassthroughEncryptor) Decrypt(encoded string, _ EncryptorOptions) (string, error) {
	return encoded, nil
}

func (PassthroughEncryptor) Encrypted(string) bool { return false }

// ReadOnlyEncryptor decrypts like its inner encryptor but fails every
// encryption with ErrProtected, so encrypted data cannot be accidentally
// overwritten with plaintext. A nil inner encryptor resolves to the
// configured default at use time; that is how ProtectingEncryptedData
// works without a Config in hand.
type ReadOnlyEncryptor struct {
	inner Encryptor
}

// NewReadOnlyEncryptor wraps inner. Pass nil to defer the choice of inner
// encryptor to the resolution site.
func NewReadOnlyEncryptor(inner Encryptor) *ReadOnlyEncryptor {
	return &ReadOnlyEncryptor{inner: inner}
}

func (e *ReadOnlyEncryptor) Encrypt(string, EncryptorOptions) (string, error) {
	return "", ErrProtected
}

func (e *ReadOnlyEncryptor) Decrypt(encoded string, opts EncryptorOptions) (string, error) {
	return e.resolved().Decrypt(encoded, opts)
}

func (e *ReadOnlyEncryptor) Encrypted(encoded string) bool {
	return e.resolved().Encrypted(encoded)
}

func (e *ReadOnlyEncryptor) resolved() Encryptor {
	if e.inner != nil {
		return e.inner
	}
	return NewMessageEncryptor()
}
