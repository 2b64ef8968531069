// Package credentials loads fieldseal configuration from a YAML
// credentials file, with environment variable overrides for deployments
// that inject secrets through the process environment.
package credentials

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fieldseal/fieldseal"
)

// File mirrors the YAML credentials layout:
//
//	primary_keys:
//	  - newestPassword
//	  - olderPassword
//	deterministic_keys:
//	  - deterministicPassword
//	key_derivation_salt: perAppSalt
//	support_unencrypted_data: true
//	store_key_references: true
//	envelope_encryption: false
//
// Key lists are ordered newest first, matching fieldseal's rotation
// convention.
type File struct {
	PrimaryKeys            []string `yaml:"primary_keys"`
	DeterministicKeys      []string `yaml:"deterministic_keys"`
	KeyDerivationSalt      string   `yaml:"key_derivation_salt"`
	SupportUnencryptedData bool     `yaml:"support_unencrypted_data"`
	StoreKeyReferences     bool     `yaml:"store_key_references"`
	EnvelopeEncryption     bool     `yaml:"envelope_encryption"`
}

// Environment variables overriding file contents. List values are comma
// separated, newest first.
const (
	EnvPrimaryKeys       = "FIELDSEAL_PRIMARY_KEYS"
	EnvDeterministicKeys = "FIELDSEAL_DETERMINISTIC_KEYS"
	EnvKeyDerivationSalt = "FIELDSEAL_KEY_DERIVATION_SALT"
)

// Load reads the credentials file at path, applies environment
// overrides, and builds a Config. Extra options are appended after the
// file-derived ones, so callers can attach hooks the file cannot
// express, such as metrics or an audit logger.
func Load(path string, opts ...fieldseal.Option) (*fieldseal.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("credentials: reading %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("credentials: parsing %s: %w", path, err)
	}
	f.applyEnv()
	return f.Config(opts...)
}

func (f *File) applyEnv() {
	if v := os.Getenv(EnvPrimaryKeys); v != "" {
		f.PrimaryKeys = splitList(v)
	}
	if v := os.Getenv(EnvDeterministicKeys); v != "" {
		f.DeterministicKeys = splitList(v)
	}
	if v := os.Getenv(EnvKeyDerivationSalt); v != "" {
		f.KeyDerivationSalt = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Config validates the loaded values and builds a fieldseal.Config.
func (f *File) Config(opts ...fieldseal.Option) (*fieldseal.Config, error) {
	if len(f.PrimaryKeys) == 0 && len(f.DeterministicKeys) == 0 {
		return nil, fmt.Errorf("credentials: no keys configured")
	}
	if f.KeyDerivationSalt == "" {
		return nil, fmt.Errorf("credentials: key_derivation_salt is required")
	}
	built := []fieldseal.Option{
		fieldseal.WithKeyDerivationSalt(f.KeyDerivationSalt),
	}
	if len(f.PrimaryKeys) > 0 {
		built = append(built, fieldseal.WithPrimaryKeys(f.PrimaryKeys...))
	}
	if len(f.DeterministicKeys) > 0 {
		built = append(built, fieldseal.WithDeterministicKeys(f.DeterministicKeys...))
	}
	if f.SupportUnencryptedData {
		built = append(built, fieldseal.WithSupportUnencryptedData())
	}
	if f.StoreKeyReferences {
		built = append(built, fieldseal.WithStoreKeyReferences())
	}
	if f.EnvelopeEncryption {
		built = append(built, fieldseal.WithEnvelopeEncryption())
	}
	built = append(built, opts...)
	return fieldseal.NewConfig(built...)
}
