package audit

import (
	"context"
	"time"

	"github.com/wolfman30/careai-platform/pkg/logging"
)

const writeTimeout = 5 * time.Second

// Logger writes audit entries and usage increments on a best-effort basis.
// Neither write can fail the caller.
type Logger struct {
	store  Store
	usage  UsageTracker
	logger *logging.Logger
	now    func() time.Time
}

// NewLogger creates an audit logger. Either store or usage may be nil, in
// which case that write is skipped.
func NewLogger(store Store, usage UsageTracker, logger *logging.Logger) *Logger {
	if logger == nil {
		logger = logging.Default()
	}
	return &Logger{store: store, usage: usage, logger: logger, now: time.Now}
}

// Log persists e and bumps the user's monthly usage. It returns the audit ID,
// or "" when the entry could not be stored. Writes are detached from ctx's
// cancellation so a disconnected caller still leaves a trail.
func (l *Logger) Log(ctx context.Context, e Entry) string {
	if l == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	var id string
	if l.store != nil {
		var err error
		id, err = l.store.Insert(ctx, e)
		if err != nil {
			l.logger.Error("audit write failed",
				"skill", e.Skill,
				"user_id", e.UserID,
				"success", e.Success,
				"error", err,
			)
			id = ""
		}
	}

	if l.usage != nil && e.UserID != "" {
		tokens := e.Tokens.Input + e.Tokens.Output
		if err := l.usage.Increment(ctx, e.UserID, e.Skill, tokens, PeriodStart(l.now())); err != nil {
			l.logger.Warn("usage tracking failed",
				"skill", e.Skill,
				"user_id", e.UserID,
				"error", err,
			)
		}
	}
	return id
}
