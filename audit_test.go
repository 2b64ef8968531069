package fieldseal

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogAuditLogger_RecordsOperations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cfg := newTestConfig(t, WithAuditLogger(NewSlogAuditLogger(logger)))
	field := newStringField(t, cfg)
	ctx := context.Background()

	stored, err := field.Serialize(ctx, "attack at dawn")
	require.NoError(t, err)
	_, err = field.Deserialize(ctx, stored)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "fieldseal encrypt")
	require.Contains(t, out, "fieldseal decrypt")
	require.Contains(t, out, "success=true")
	require.Contains(t, out, "level=INFO")
}

func TestSlogAuditLogger_FailuresLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cfg := newTestConfig(t, WithAuditLogger(NewSlogAuditLogger(logger)))
	field := newStringField(t, cfg)

	garbage := "never encrypted"
	_, err := field.Deserialize(context.Background(), &garbage)
	require.Error(t, err)

	out := buf.String()
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "fieldseal decrypt")
	require.Contains(t, out, "success=false")
	require.Contains(t, out, "error=")
}

func TestSlogAuditLogger_NeverLogsPlaintextOrCiphertext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cfg := newTestConfig(t, WithAuditLogger(NewSlogAuditLogger(logger)))
	field := newStringField(t, cfg)
	ctx := context.Background()

	const secret = "patient has condition X"
	stored, err := field.Serialize(ctx, secret)
	require.NoError(t, err)
	_, err = field.Deserialize(ctx, stored)
	require.NoError(t, err)

	out := buf.String()
	require.NotContains(t, out, secret)
	require.NotContains(t, out, *stored)
	// Sizes are fine to record.
	require.Contains(t, out, "bytes=")
}

func TestSlogAuditLogger_NilLoggerUsesDefault(t *testing.T) {
	l := NewSlogAuditLogger(nil)
	require.NotNil(t, l.logger)
}

type recordingAuditLogger struct {
	actions []string
	success []bool
	fields  []map[string]any
}

func (r *recordingAuditLogger) Log(action string, success bool, fields map[string]any) {
	r.actions = append(r.actions, action)
	r.success = append(r.success, success)
	r.fields = append(r.fields, fields)
}

func TestAuditLogger_CustomImplementation(t *testing.T) {
	rec := &recordingAuditLogger{}
	cfg := newTestConfig(t, WithAuditLogger(rec))
	field := newStringField(t, cfg)
	ctx := context.Background()

	stored, err := field.Serialize(ctx, "alpha")
	require.NoError(t, err)
	_, err = field.Deserialize(ctx, stored)
	require.NoError(t, err)

	require.Equal(t, []string{"encrypt", "decrypt"}, rec.actions)
	require.Equal(t, []bool{true, true}, rec.success)
	require.Equal(t, len("alpha"), rec.fields[0]["bytes"])
}

func TestAuditLogger_NullsAreNotLogged(t *testing.T) {
	rec := &recordingAuditLogger{}
	cfg := newTestConfig(t, WithAuditLogger(rec))
	field := newStringField(t, cfg)
	ctx := context.Background()

	stored, err := field.Serialize(ctx, nil)
	require.NoError(t, err)
	require.Nil(t, stored)
	_, err = field.Deserialize(ctx, nil)
	require.NoError(t, err)

	require.Empty(t, rec.actions)
}

func TestAuditLogger_FieldsCarryFailureReason(t *testing.T) {
	rec := &recordingAuditLogger{}
	cfg := newTestConfig(t, WithAuditLogger(rec))
	field := newStringField(t, cfg)

	garbage := "plain"
	_, err := field.Deserialize(context.Background(), &garbage)
	require.Error(t, err)

	require.Len(t, rec.actions, 1)
	require.False(t, rec.success[0])
	reason, ok := rec.fields[0]["error"].(string)
	require.True(t, ok)
	require.True(t, strings.Contains(reason, "fieldseal"))
}
