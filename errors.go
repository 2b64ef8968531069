package fieldseal

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers can classify failures with errors.Is without matching
// on message text.
var (
	// ErrConfiguration indicates invalid or missing key/provider setup.
	// Configuration failures are fatal and are never downgraded to
	// legacy-plaintext tolerance.
	ErrConfiguration = errors.New("fieldseal: invalid configuration")

	// ErrEncryption indicates a failure on the encrypt path.
	ErrEncryption = errors.New("fieldseal: encryption failed")

	// ErrDecryption indicates an authentication failure, a malformed
	// envelope, or that no candidate key succeeded on the decrypt path.
	ErrDecryption = errors.New("fieldseal: decryption failed")

	// ErrProtected indicates a write was attempted while encrypted data is
	// protected (see ProtectingEncryptedData).
	ErrProtected = errors.New("fieldseal: encrypted data is protected")
)

// Granular errors. Each wraps its kind, so errors.Is against the kind
// sentinels above keeps working.
var (
	// ErrInvalidMessage indicates the stored value does not parse as an
	// encrypted message envelope.
	ErrInvalidMessage = fmt.Errorf("%w: invalid message format", ErrDecryption)

	// ErrNoCandidateKeys indicates the key provider returned no candidate
	// keys for a message.
	ErrNoCandidateKeys = fmt.Errorf("%w: no candidate keys", ErrDecryption)

	// ErrMissingEncryptedKey indicates an envelope provider was handed a
	// message without a wrapped data key header.
	ErrMissingEncryptedKey = fmt.Errorf("%w: message carries no encrypted key", ErrDecryption)

	// ErrNoEncryptionKey indicates the key provider has no key to encrypt
	// with.
	ErrNoEncryptionKey = fmt.Errorf("%w: key provider returned no encryption key", ErrEncryption)

	// ErrInvalidKeySize indicates a key secret is not exactly 32 bytes.
	ErrInvalidKeySize = fmt.Errorf("%w: key must be 32 bytes", ErrConfiguration)

	// ErrMissingSalt indicates key derivation was requested without a salt.
	ErrMissingSalt = fmt.Errorf("%w: key derivation salt is required", ErrConfiguration)

	// ErrNoKeyProvider indicates a scheme has no usable key provider.
	ErrNoKeyProvider = fmt.Errorf("%w: no key provider configured", ErrConfiguration)

	// ErrDestroyed indicates a provider or config was used after Destroy.
	ErrDestroyed = fmt.Errorf("%w: key material destroyed", ErrConfiguration)
)

// IsConfigurationError reports whether err is a configuration failure.
func IsConfigurationError(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsEncryptionError reports whether err failed on the encrypt path.
func IsEncryptionError(err error) bool { return errors.Is(err, ErrEncryption) }

// IsDecryptionError reports whether err failed on the decrypt path.
// Only decryption failures are eligible for previous-scheme fallback and
// legacy-plaintext tolerance.
func IsDecryptionError(err error) bool { return errors.Is(err, ErrDecryption) }

// IsProtectedError reports whether err was caused by writing through a
// protecting encryptor.
func IsProtectedError(err error) bool { return errors.Is(err, ErrProtected) }
