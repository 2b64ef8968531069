// Package fieldseal provides transparent per-field encryption for
// structured records: a field's logical value is encrypted before
// persistence and decrypted on read, while callers keep working with
// plaintext.
//
// Data is encrypted client side, so the datastore never sees plaintext.
// The package handles key rotation, coexistence of historical encryption
// schemes, deterministic encryption for equality queries, and tamper
// detection, without breaking values written under earlier keys or
// schemes.
//
// # Encryption
//
// Values are sealed with AES-256-GCM (96-bit IV, 128-bit tag) and stored
// as a compact, self-describing textual envelope carrying the ciphertext
// plus the headers needed to decrypt it. Keys are derived from passwords
// with PBKDF2-SHA-256 (argon2id optionally), come from a static list, or
// are produced per value in envelope mode.
//
// # Basic Usage
//
//	cfg, err := fieldseal.NewConfig(
//	    fieldseal.WithPrimaryKeys("primaryPassword"),
//	    fieldseal.WithKeyDerivationSalt("perAppSalt"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scheme, _ := cfg.NewScheme()
//	email, _ := fieldseal.NewField(scheme, fieldseal.String)
//
//	// Encrypt (for INSERT/UPDATE)
//	stored, err := email.Serialize(ctx, "alice@example.com")
//
//	// Decrypt (after SELECT)
//	value, err := email.Deserialize(ctx, stored)
//
// Serialize returns nil for nil input: NULL stays NULL, and absent values
// are never encrypted.
//
// # Deterministic Encryption
//
// Deterministic schemes derive the IV from the key and the plaintext, so
// equal values produce byte-identical stored encodings and equality
// queries keep working:
//
//	scheme, _ := cfg.NewScheme(fieldseal.WithDeterministic(), fieldseal.WithDowncase())
//	email, _ := fieldseal.NewField(scheme, fieldseal.String)
//
//	encodings, _ := email.SerializeForQuery(ctx, "Alice@Example.COM")
//	// WHERE email IN (encodings...)
//
// Deterministic schemes use the keys from WithDeterministicKeys, kept
// separate from the primary ones. Downcasing and normalizers run on both
// the write and query paths, so lookups are insensitive to formatting.
//
// # Key Rotation
//
// Key lists are ordered newest first: the first key encrypts, every key
// is tried for decryption.
//
//	cfg, _ := fieldseal.NewConfig(
//	    fieldseal.WithPrimaryKeys("newPassword", "oldPassword"),
//	    fieldseal.WithKeyDerivationSalt("perAppSalt"),
//	)
//
//	// Migrate existing rows to the newest key
//	stored, _ = field.ReEncrypt(ctx, stored)
//
// Scheme changes (different keys, different determinism) are handled with
// previous schemes, tried in order when the current one cannot decrypt:
//
//	old, _ := cfg.NewScheme()
//	cur, _ := cfg.NewScheme(fieldseal.WithDeterministic(), fieldseal.WithPrevious(old))
//
// # Envelope Encryption
//
// With WithEnvelopeEncryption every value is encrypted under a fresh
// random data key, wrapped under the primary (master) keys and carried
// inside the stored encoding. The master keys only ever encrypt data
// keys, never data, and master rotation works like direct rotation.
//
// # Scoped Overrides
//
// Behavior changes are scoped to a context.Context, never global:
//
//	raw, _ := field.Deserialize(fieldseal.WithoutEncryption(ctx), stored)   // raw stored value
//	_, err := field.Serialize(fieldseal.ProtectingEncryptedData(ctx), v)    // ErrProtected
//
// Overrides nest (the innermost wins) and never leak across goroutines.
//
// # Errors
//
// Every error wraps one of four kinds: ErrConfiguration, ErrEncryption,
// ErrDecryption, ErrProtected. Only decryption failures trigger
// previous-scheme fallback or, with WithSupportUnencryptedData, the
// legacy-plaintext tolerance that returns pre-encryption values as-is.
package fieldseal
