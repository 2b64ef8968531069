package fieldseal

// Headers are the public, unencrypted properties of a Message. IV and
// AuthTag are set by the cipher on every encryption; EncryptedKey and
// KeyID are carried over from the encryption key's tags when present.
type Headers struct {
	// IV is the initialization vector the payload was sealed with.
	IV []byte
	// AuthTag is the AEAD authentication tag over the payload.
	AuthTag []byte
	// EncryptedKey holds the wrapped data key in envelope mode.
	EncryptedKey *Message
	// KeyID identifies the key that produced the message, when key
	// references are stored.
	KeyID string
}

// addTags copies the key-originated fields of tags into h. Called only
// while a message is being built.
func (h *Headers) addTags(tags Headers) {
	if tags.EncryptedKey != nil {
		h.EncryptedKey = tags.EncryptedKey
	}
	if tags.KeyID != "" {
		h.KeyID = tags.KeyID
	}
}

// Message is the wire envelope for one encrypted value: the ciphertext
// payload plus the headers needed to decrypt it. A Message is
// self-describing; decrypting one requires no state beyond a KeyProvider.
// Messages are constructed fresh on encrypt, parsed from storage on
// decrypt, and never mutated afterwards.
type Message struct {
	Payload []byte
	Headers Headers
}
