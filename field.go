package fieldseal

import (
	"context"
	"fmt"
)

// Field orchestrates encryption for one logical field: it coerces values
// through a ValueType, applies the scheme's normalization, encrypts with
// the current scheme, and on reads falls back across previous schemes
// and, when configured, tolerates legacy plaintext. A Field is immutable
// and safe for concurrent use.
type Field struct {
	scheme *Scheme
	vt     ValueType
}

// NewField returns a Field over scheme, coercing values through vt.
func NewField(scheme *Scheme, vt ValueType) (*Field, error) {
	if scheme == nil {
		return nil, fmt.Errorf("%w: nil scheme", ErrConfiguration)
	}
	if vt == nil {
		return nil, fmt.Errorf("%w: nil value type", ErrConfiguration)
	}
	return &Field{scheme: scheme, vt: vt}, nil
}

// Scheme returns the field's scheme.
func (f *Field) Scheme() *Scheme { return f.scheme }

// Deterministic reports whether the field's current scheme encrypts
// deterministically. Query layers consult this before computing equality
// ciphertexts.
func (f *Field) Deterministic() bool { return f.scheme.deterministic }

// Serialize coerces v and encrypts it under the current scheme, honoring
// any context override. Absent values (nils) serialize to nil; encryption
// is never applied to them. The returned string is the stored encoding.
func (f *Field) Serialize(ctx context.Context, v any) (*string, error) {
	ctx = ensure(ctx)
	plaintext, present, err := f.vt.Cast(v)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	encoded, err := f.encryptText(ctx, f.scheme, plaintext)
	if err != nil {
		return nil, err
	}
	return &encoded, nil
}

// Deserialize decrypts a stored encoding and coerces the plaintext back
// through the field's value type. A nil input loads as nil.
func (f *Field) Deserialize(ctx context.Context, stored *string) (any, error) {
	if stored == nil {
		return nil, nil
	}
	plaintext, err := f.decryptText(ensure(ctx), *stored)
	if err != nil {
		return nil, err
	}
	return f.vt.Load(plaintext)
}

// ChangedInPlace reports whether newValue differs from the value held in
// oldStored, comparing plaintext. Ciphertext comparison would report a
// change on every write under non-deterministic schemes, defeating dirty
// checking, so the old value is decrypted first, with the usual fallback
// chain. A nil oldStored means there was no previous value.
func (f *Field) ChangedInPlace(ctx context.Context, oldStored *string, newValue any) (bool, error) {
	ctx = ensure(ctx)
	newText, newPresent, err := f.vt.Cast(newValue)
	if err != nil {
		return false, err
	}
	if oldStored == nil {
		return newPresent, nil
	}
	oldText, err := f.decryptText(ctx, *oldStored)
	if err != nil {
		return false, err
	}
	return !newPresent || oldText != newText, nil
}

// encryptText normalizes and encrypts plaintext under scheme s.
func (f *Field) encryptText(ctx context.Context, s *Scheme, plaintext string) (string, error) {
	enc, opts := s.resolve(ctx)
	return enc.Encrypt(s.normalize(plaintext), opts)
}

// decryptText decrypts a stored encoding: first under the current scheme,
// then, on decryption failures only, under each previous scheme in
// declared order. The last attempt's error is surfaced when every scheme
// fails; if that error is a decryption failure and the config tolerates
// unencrypted data, the stored value is returned as legacy plaintext.
// Configuration failures abort immediately and are never tolerated.
func (f *Field) decryptText(ctx context.Context, stored string) (string, error) {
	plaintext, err := f.decryptWithScheme(ctx, f.scheme, stored)
	if err == nil {
		return plaintext, nil
	}
	if IsDecryptionError(err) {
		for _, prev := range f.scheme.previous {
			plaintext, prevErr := f.decryptWithScheme(ctx, prev, stored)
			if prevErr == nil {
				return plaintext, nil
			}
			err = prevErr
			if !IsDecryptionError(err) {
				break
			}
		}
	}
	if IsDecryptionError(err) && f.scheme.cfg.supportUnencryptedData {
		return stored, nil
	}
	return "", err
}

func (f *Field) decryptWithScheme(ctx context.Context, s *Scheme, stored string) (string, error) {
	enc, opts := s.resolve(ctx)
	return enc.Decrypt(stored, opts)
}

// ensure guards against nil contexts so resolution can always consult
// context values.
func ensure(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
