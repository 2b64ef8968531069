package fieldseal

import "context"

// ReEncrypt decrypts a stored encoding, trying previous schemes and
// legacy tolerance as usual, and encrypts the plaintext again under the
// current scheme. Use it to migrate rows after rotating keys or changing
// schemes.
//
// Returns nil if stored is nil (NULL stays NULL).
// Returns an error if no scheme can decrypt the value.
func (f *Field) ReEncrypt(ctx context.Context, stored *string) (*string, error) {
	if stored == nil {
		return nil, nil
	}
	ctx = ensure(ctx)
	plaintext, err := f.decryptText(ctx, *stored)
	if err != nil {
		return nil, err
	}
	encoded, err := f.encryptText(ctx, f.scheme, plaintext)
	if err != nil {
		return nil, err
	}
	return &encoded, nil
}

// NeedsReEncryption reports whether stored was not written by the field's
// current encryption key, judged by stored key references: the message's
// own reference, or the master key's reference on the wrapped data key
// in envelope mode. Legacy plaintext reports true when unencrypted data
// is tolerated. Without key references there is nothing to compare and
// the result is false.
//
// Returns false for nil stored (NULL values need no migration).
func (f *Field) NeedsReEncryption(ctx context.Context, stored *string) (bool, error) {
	if stored == nil {
		return false, nil
	}
	msg, err := decodeMessage(*stored)
	if err != nil {
		if f.scheme.cfg.supportUnencryptedData {
			return true, nil
		}
		return false, err
	}
	kp := resolveKeyProvider(ensure(ctx), f.scheme.keyProvider)
	key, err := kp.EncryptionKey()
	if err != nil {
		return false, err
	}
	currentRef := keyReference(key.tags)
	if currentRef == "" {
		return false, nil
	}
	return keyReference(msg.Headers) != currentRef, nil
}

// StoredKeyID returns the key reference recorded in a stored encoding
// without decrypting it; in envelope mode this is the master key's
// reference. The second result is false when the encoding does not parse
// or carries no reference.
func StoredKeyID(stored string) (string, bool) {
	msg, err := decodeMessage(stored)
	if err != nil {
		return "", false
	}
	id := keyReference(msg.Headers)
	return id, id != ""
}

// keyReference extracts the key identifier from headers, looking through
// the wrapped data key in envelope mode.
func keyReference(h Headers) string {
	if h.EncryptedKey != nil {
		return h.EncryptedKey.Headers.KeyID
	}
	return h.KeyID
}
