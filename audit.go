package fieldseal

import "log/slog"

// AuditLogger receives one entry per encryption operation (see
// WithAuditLogger). Implementations must be safe for concurrent use and
// cheap enough for hot paths. Entries never contain plaintext or key
// material; fields carry operation metadata such as sizes and failure
// reasons.
type AuditLogger interface {
	Log(action string, success bool, fields map[string]any)
}

// SlogAuditLogger adapts a *slog.Logger to AuditLogger. Successes log at
// Info, failures at Warn.
type SlogAuditLogger struct {
	logger *slog.Logger
}

// NewSlogAuditLogger returns an AuditLogger writing structured records
// through logger. A nil logger uses slog.Default().
func NewSlogAuditLogger(logger *slog.Logger) *SlogAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditLogger{logger: logger}
}

func (l *SlogAuditLogger) Log(action string, success bool, fields map[string]any) {
	args := make([]any, 0, 2*(len(fields)+1))
	args = append(args, "success", success)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if success {
		l.logger.Info("fieldseal "+action, args...)
	} else {
		l.logger.Warn("fieldseal "+action, args...)
	}
}
