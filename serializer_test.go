package fieldseal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMessage_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{
			"plain",
			Message{
				Payload: []byte("ciphertext"),
				Headers: Headers{IV: []byte("123456789012"), AuthTag: []byte("1234567890123456")},
			},
		},
		{
			"with key id",
			Message{
				Payload: []byte{0x00, 0xff, 0x10},
				Headers: Headers{IV: []byte("123456789012"), AuthTag: []byte("1234567890123456"), KeyID: "a1b2c3d4"},
			},
		},
		{
			"with wrapped key",
			Message{
				Payload: []byte("outer"),
				Headers: Headers{
					IV:      []byte("123456789012"),
					AuthTag: []byte("1234567890123456"),
					EncryptedKey: &Message{
						Payload: []byte("wrapped data key"),
						Headers: Headers{IV: []byte("abcdefghijkl"), AuthTag: []byte("abcdefghijklmnop"), KeyID: "deadbeef"},
					},
				},
			},
		},
		{
			"empty payload",
			Message{
				Payload: []byte{},
				Headers: Headers{IV: []byte("123456789012"), AuthTag: []byte("1234567890123456")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := encodeMessage(tt.msg)
			require.NoError(t, err)

			decoded, err := decodeMessage(encoded)
			require.NoError(t, err)
			require.Equal(t, tt.msg.Payload, decoded.Payload)
			require.Equal(t, tt.msg.Headers.IV, decoded.Headers.IV)
			require.Equal(t, tt.msg.Headers.AuthTag, decoded.Headers.AuthTag)
			require.Equal(t, tt.msg.Headers.KeyID, decoded.Headers.KeyID)
			if tt.msg.Headers.EncryptedKey != nil {
				require.NotNil(t, decoded.Headers.EncryptedKey)
				require.Equal(t, *tt.msg.Headers.EncryptedKey, *decoded.Headers.EncryptedKey)
			} else {
				require.Nil(t, decoded.Headers.EncryptedKey)
			}
		})
	}
}

// TestDecodeMessage_KnownEncoding pins the wire encoding. If this test
// breaks, previously stored values have become unreadable.
func TestDecodeMessage_KnownEncoding(t *testing.T) {
	encoded := `{"p":"YWJj","h":{"iv":"MTIzNDU2Nzg5MDEy","at":"MTIzNDU2Nzg5MDEyMzQ1Ng=="}}`

	msg, err := decodeMessage(encoded)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), msg.Payload)
	require.Equal(t, []byte("123456789012"), msg.Headers.IV)
	require.Equal(t, []byte("1234567890123456"), msg.Headers.AuthTag)
	require.Empty(t, msg.Headers.KeyID)
	require.Nil(t, msg.Headers.EncryptedKey)
}

func TestEncodeMessage_Stable(t *testing.T) {
	msg := Message{
		Payload: []byte("deterministic"),
		Headers: Headers{IV: []byte("123456789012"), AuthTag: []byte("1234567890123456"), KeyID: "a1b2c3d4"},
	}

	e1, err := encodeMessage(msg)
	require.NoError(t, err)
	e2, err := encodeMessage(msg)
	require.NoError(t, err)

	// Equal messages must encode identically, or deterministic
	// encryption loses equality queryability
	require.Equal(t, e1, e2)
}

func TestEncodeMessage_OmitsEmptyOptionalHeaders(t *testing.T) {
	msg := Message{
		Payload: []byte("x"),
		Headers: Headers{IV: []byte("123456789012"), AuthTag: []byte("1234567890123456")},
	}

	encoded, err := encodeMessage(msg)
	require.NoError(t, err)
	require.NotContains(t, encoded, `"i"`)
	require.NotContains(t, encoded, `"e"`)
}

func TestDecodeMessage_InvalidFormat(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not json", "hello world"},
		{"number", "12345"},
		{"json array", `["p","h"]`},
		{"missing headers", `{"p":"YWJj"}`},
		{"null headers", `{"p":"YWJj","h":null}`},
		{"bad payload base64", `{"p":"###","h":{"iv":"MTIzNDU2Nzg5MDEy","at":"MTIzNDU2Nzg5MDEyMzQ1Ng=="}}`},
		{"bad iv base64", `{"p":"YWJj","h":{"iv":"###","at":"MTIzNDU2Nzg5MDEyMzQ1Ng=="}}`},
		{"bad auth tag base64", `{"p":"YWJj","h":{"iv":"MTIzNDU2Nzg5MDEy","at":"###"}}`},
		{"empty iv", `{"p":"YWJj","h":{"iv":"","at":"MTIzNDU2Nzg5MDEyMzQ1Ng=="}}`},
		{"empty auth tag", `{"p":"YWJj","h":{"iv":"MTIzNDU2Nzg5MDEy","at":""}}`},
		{"legacy plaintext", "alice@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeMessage(tt.encoded)
			require.ErrorIs(t, err, ErrInvalidMessage)
			require.True(t, IsDecryptionError(err), "format errors must classify as decryption failures")
		})
	}
}

func TestDecodeMessage_IgnoresUnknownKeys(t *testing.T) {
	encoded := `{"p":"YWJj","h":{"iv":"MTIzNDU2Nzg5MDEy","at":"MTIzNDU2Nzg5MDEyMzQ1Ng==","zz":"future"},"v":2}`

	msg, err := decodeMessage(encoded)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), msg.Payload)
}

func TestDecodeMessage_WrappedKeyDepthLimit(t *testing.T) {
	leaf := `{"p":"YWJj","h":{"iv":"MTIzNDU2Nzg5MDEy","at":"MTIzNDU2Nzg5MDEyMzQ1Ng=="}}`

	// One level of wrapping (envelope mode) parses fine
	one := strings.Replace(leaf, `"}}`, `","e":`+leaf+`}}`, 1)
	msg, err := decodeMessage(one)
	require.NoError(t, err)
	require.NotNil(t, msg.Headers.EncryptedKey)

	// Nesting past the limit is rejected as malformed
	deep := leaf
	for i := 0; i < maxKeyWrapDepth+1; i++ {
		deep = strings.Replace(leaf, `"}}`, `","e":`+deep+`}}`, 1)
	}
	_, err = decodeMessage(deep)
	require.ErrorIs(t, err, ErrInvalidMessage)
}

func TestDecodeMessage_InvalidWrappedKey(t *testing.T) {
	// Inner message missing its auth tag
	encoded := `{"p":"YWJj","h":{"iv":"MTIzNDU2Nzg5MDEy","at":"MTIzNDU2Nzg5MDEyMzQ1Ng==","e":{"p":"YWJj","h":{"iv":"MTIzNDU2Nzg5MDEy","at":""}}}}`

	_, err := decodeMessage(encoded)
	require.ErrorIs(t, err, ErrInvalidMessage)
}
