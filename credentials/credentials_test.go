package credentials

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldseal/fieldseal"
)

func writeCredentials(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fieldseal.yml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoad_BuildsWorkingConfig(t *testing.T) {
	path := writeCredentials(t, `
primary_keys:
  - newest-password
  - older-password
deterministic_keys:
  - deterministic-password
key_derivation_salt: per-app-salt
`)

	cfg, err := Load(path, fieldseal.WithPBKDF2Iterations(1<<10))
	require.NoError(t, err)

	scheme, err := cfg.NewScheme()
	require.NoError(t, err)
	field, err := fieldseal.NewField(scheme, fieldseal.String)
	require.NoError(t, err)

	ctx := context.Background()
	stored, err := field.Serialize(ctx, "round trip")
	require.NoError(t, err)
	got, err := field.Deserialize(ctx, stored)
	require.NoError(t, err)
	require.Equal(t, "round trip", got)
}

func TestLoad_DeterministicKeys(t *testing.T) {
	path := writeCredentials(t, `
primary_keys:
  - primary-password
deterministic_keys:
  - deterministic-password
key_derivation_salt: per-app-salt
`)

	cfg, err := Load(path, fieldseal.WithPBKDF2Iterations(1<<10))
	require.NoError(t, err)

	scheme, err := cfg.NewScheme(fieldseal.WithDeterministic())
	require.NoError(t, err)
	field, err := fieldseal.NewField(scheme, fieldseal.String)
	require.NoError(t, err)

	ctx := context.Background()
	a, err := field.Serialize(ctx, "stable")
	require.NoError(t, err)
	b, err := field.Serialize(ctx, "stable")
	require.NoError(t, err)
	require.Equal(t, *a, *b)
}

func TestLoad_Flags(t *testing.T) {
	path := writeCredentials(t, `
primary_keys:
  - primary-password
key_derivation_salt: per-app-salt
support_unencrypted_data: true
store_key_references: true
`)

	cfg, err := Load(path, fieldseal.WithPBKDF2Iterations(1<<10))
	require.NoError(t, err)
	require.True(t, cfg.SupportsUnencryptedData())

	scheme, err := cfg.NewScheme()
	require.NoError(t, err)
	field, err := fieldseal.NewField(scheme, fieldseal.String)
	require.NoError(t, err)

	ctx := context.Background()
	legacy := "never encrypted"
	got, err := field.Deserialize(ctx, &legacy)
	require.NoError(t, err)
	require.Equal(t, "never encrypted", got)

	// store_key_references puts the key id on the wire.
	stored, err := field.Serialize(ctx, "tracked")
	require.NoError(t, err)
	id, ok := fieldseal.StoredKeyID(*stored)
	require.True(t, ok)
	require.NotEmpty(t, id)
}

func TestLoad_EnvelopeEncryption(t *testing.T) {
	path := writeCredentials(t, `
primary_keys:
  - master-password
key_derivation_salt: per-app-salt
envelope_encryption: true
`)

	cfg, err := Load(path, fieldseal.WithPBKDF2Iterations(1<<10))
	require.NoError(t, err)

	scheme, err := cfg.NewScheme()
	require.NoError(t, err)
	field, err := fieldseal.NewField(scheme, fieldseal.String)
	require.NoError(t, err)

	ctx := context.Background()
	stored, err := field.Serialize(ctx, "wrapped")
	require.NoError(t, err)
	got, err := field.Deserialize(ctx, stored)
	require.NoError(t, err)
	require.Equal(t, "wrapped", got)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeCredentials(t, `
primary_keys:
  - file-password
key_derivation_salt: file-salt
`)

	t.Setenv(EnvPrimaryKeys, "env-new, env-old")
	t.Setenv(EnvDeterministicKeys, "env-deterministic")
	t.Setenv(EnvKeyDerivationSalt, "env-salt")

	cfg, err := Load(path, fieldseal.WithPBKDF2Iterations(1<<10))
	require.NoError(t, err)

	// The env primary keys must decrypt what the env-built equivalent
	// config encrypts; the file password must not.
	equivalent, err := fieldseal.NewConfig(
		fieldseal.WithPrimaryKeys("env-new", "env-old"),
		fieldseal.WithKeyDerivationSalt("env-salt"),
		fieldseal.WithPBKDF2Iterations(1<<10),
	)
	require.NoError(t, err)

	ctx := context.Background()
	writeScheme, err := equivalent.NewScheme()
	require.NoError(t, err)
	writeField, err := fieldseal.NewField(writeScheme, fieldseal.String)
	require.NoError(t, err)
	stored, err := writeField.Serialize(ctx, "cross-config")
	require.NoError(t, err)

	readScheme, err := cfg.NewScheme()
	require.NoError(t, err)
	readField, err := fieldseal.NewField(readScheme, fieldseal.String)
	require.NoError(t, err)
	got, err := readField.Deserialize(ctx, stored)
	require.NoError(t, err)
	require.Equal(t, "cross-config", got)

	detScheme, err := cfg.NewScheme(fieldseal.WithDeterministic())
	require.NoError(t, err)
	_, err = fieldseal.NewField(detScheme, fieldseal.String)
	require.NoError(t, err)
}

func TestLoad_EnvListsAreTrimmed(t *testing.T) {
	path := writeCredentials(t, `
key_derivation_salt: per-app-salt
`)
	t.Setenv(EnvPrimaryKeys, " one , , two ,")

	var f File
	f.KeyDerivationSalt = "per-app-salt"
	f.applyEnv()
	require.Equal(t, []string{"one", "two"}, f.PrimaryKeys)

	_, err := Load(path, fieldseal.WithPBKDF2Iterations(1<<10))
	require.NoError(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "credentials: reading")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeCredentials(t, "primary_keys: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "credentials: parsing")
}

func TestFileConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		file    File
		wantErr string
	}{
		{
			name:    "no keys",
			file:    File{KeyDerivationSalt: "salt"},
			wantErr: "credentials: no keys configured",
		},
		{
			name:    "missing salt",
			file:    File{PrimaryKeys: []string{"password"}},
			wantErr: "credentials: key_derivation_salt is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.file.Config()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFileConfig_ExtraOptionsAppended(t *testing.T) {
	f := File{
		PrimaryKeys:       []string{"password"},
		KeyDerivationSalt: "salt",
	}

	custom := fieldseal.NewMessageEncryptor()
	cfg, err := f.Config(
		fieldseal.WithPBKDF2Iterations(1<<10),
		fieldseal.WithDefaultEncryptor(custom),
	)
	require.NoError(t, err)
	require.Same(t, custom, cfg.Encryptor())
}
