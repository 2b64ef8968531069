package fieldseal

import "context"

// Scoped overrides travel on the context.Context a caller passes into
// Field operations. They are never stored globally: a context established
// on one goroutine is invisible to every other, nested overrides win
// innermost-first, and the override disappears when the scope that
// created the context returns.

type encryptorContextKey struct{}
type keyProviderContextKey struct{}

// WithEncryptor returns a context whose encrypt and decrypt operations
// use e in place of the configured encryptor.
func WithEncryptor(ctx context.Context, e Encryptor) context.Context {
	return context.WithValue(ctx, encryptorContextKey{}, e)
}

// WithKeyProvider returns a context whose operations resolve keys through
// kp in place of the scheme's provider. The override applies to every
// decryption attempt, including previous-scheme fallbacks.
func WithKeyProvider(ctx context.Context, kp KeyProvider) context.Context {
	return context.WithValue(ctx, keyProviderContextKey{}, kp)
}

// WithoutEncryption returns a context in which encryption is disabled:
// writes store plaintext and reads return the raw stored value.
func WithoutEncryption(ctx context.Context) context.Context {
	return WithEncryptor(ctx, PassthroughEncryptor{})
}

// ProtectingEncryptedData returns a context in which reads still decrypt
// but any write fails with ErrProtected. Use it in consoles, backfills,
// and other jobs that must never overwrite encrypted values with
// plaintext.
func ProtectingEncryptedData(ctx context.Context) context.Context {
	return WithEncryptor(ctx, NewReadOnlyEncryptor(nil))
}

// resolveEncryptor picks the encryptor for one operation: the context
// override when present, otherwise fallback. A protecting override with
// no inner encryptor is completed with fallback so reads keep the
// configured behavior.
func resolveEncryptor(ctx context.Context, fallback Encryptor) Encryptor {
	e, ok := ctx.Value(encryptorContextKey{}).(Encryptor)
	if !ok {
		return fallback
	}
	if ro, ok := e.(*ReadOnlyEncryptor); ok && ro.inner == nil {
		return &ReadOnlyEncryptor{inner: fallback}
	}
	return e
}

func resolveKeyProvider(ctx context.Context, fallback KeyProvider) KeyProvider {
	if kp, ok := ctx.Value(keyProviderContextKey{}).(KeyProvider); ok {
		return kp
	}
	return fallback
}
