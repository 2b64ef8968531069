package fieldseal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

const (
	// keyLength is the AES-256 key size in bytes.
	keyLength = 32
	// ivLength is the GCM nonce size in bytes (96 bits).
	ivLength = 12
	// tagLength is the GCM authentication tag size in bytes (128 bits).
	tagLength = 16
)

// seal encrypts plaintext under key with AES-256-GCM and returns the wire
// message. In deterministic mode the IV is derived from the key and the
// plaintext, so equal inputs always produce an identical message;
// otherwise the IV is random. The key's public tags are merged into the
// message headers.
func seal(key Key, plaintext []byte, deterministic bool) (Message, error) {
	aead, err := newAEAD(key.secret)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	var iv []byte
	if deterministic {
		iv = deterministicIV(key.secret, plaintext)
	} else {
		iv = randomIV()
	}
	sealed := aead.Seal(nil, iv, plaintext, nil)
	split := len(sealed) - tagLength
	msg := Message{
		Payload: sealed[:split],
		Headers: Headers{IV: iv, AuthTag: sealed[split:]},
	}
	msg.Headers.addTags(key.tags)
	return msg, nil
}

// open decrypts a message under a single candidate key. Authentication
// failure, including any bit flip in payload, IV, or tag, returns a
// decryption error; wrong plaintext is never returned silently.
func open(key Key, m Message) ([]byte, error) {
	if len(m.Headers.IV) != ivLength || len(m.Headers.AuthTag) != tagLength {
		return nil, fmt.Errorf("%w: bad iv or auth tag length", ErrInvalidMessage)
	}
	aead, err := newAEAD(key.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	sealed := make([]byte, 0, len(m.Payload)+tagLength)
	sealed = append(sealed, m.Payload...)
	sealed = append(sealed, m.Headers.AuthTag...)
	plaintext, err := aead.Open(nil, m.Headers.IV, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrDecryption)
	}
	return plaintext, nil
}

func newAEAD(secret []byte) (cipher.AEAD, error) {
	if len(secret) != keyLength {
		return nil, fmt.Errorf("key must be %d bytes", keyLength)
	}
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// deterministicIV derives the nonce as HMAC-SHA-256 of the plaintext
// keyed by the secret, truncated to the GCM nonce size. Equal (key,
// plaintext) pairs always map to the same nonce, which is what makes
// deterministic messages byte-identical and equality-queryable.
func deterministicIV(secret, plaintext []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(plaintext)
	return mac.Sum(nil)[:ivLength]
}

// randomIV returns a fresh random nonce.
// Panics if crypto/rand fails (catastrophic system failure).
func randomIV() []byte {
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		panic("fieldseal: randomness source failed: " + err.Error())
	}
	return iv
}
