package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists audit entries and returns the new entry's ID.
type Store interface {
	Insert(ctx context.Context, e Entry) (string, error)
}

// UsageTracker accumulates per-user monthly usage.
type UsageTracker interface {
	Increment(ctx context.Context, userID, skill string, tokens int, periodStart time.Time) error
}

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore writes to ai_audit_logs.
type PostgresStore struct {
	db rowQuerier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("audit: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

func newPostgresStoreWithExec(exec rowQuerier) *PostgresStore {
	if exec == nil {
		panic("audit: exec required")
	}
	return &PostgresStore{db: exec}
}

func (s *PostgresStore) Insert(ctx context.Context, e Entry) (string, error) {
	summary, err := json.Marshal(e.OutputSummary)
	if err != nil {
		return "", fmt.Errorf("audit: marshal output summary: %w", err)
	}

	query := `
		INSERT INTO ai_audit_logs (
			user_id, user_role, skill, provider, model,
			input_tokens, output_tokens, latency_ms, input_hash, output_summary,
			ticket_id, appointment_id, success, error_message, language
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	var id string
	err = s.db.QueryRow(ctx, query,
		e.UserID, e.UserRole, e.Skill, nullIfEmpty(e.Provider), nullIfEmpty(e.Model),
		e.Tokens.Input, e.Tokens.Output, e.LatencyMs, e.InputHash, summary,
		nullIfEmpty(e.TicketID), nullIfEmpty(e.AppointmentID), e.Success, nullIfEmpty(e.ErrorMessage), e.Language,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("audit: insert entry: %w", err)
	}
	return id, nil
}

// PostgresUsageTracker calls the increment_ai_usage function, which upserts
// the (user_id, skill, period_start) row.
type PostgresUsageTracker struct {
	db rowQuerier
}

func NewPostgresUsageTracker(pool *pgxpool.Pool) *PostgresUsageTracker {
	if pool == nil {
		panic("audit: pgx pool required")
	}
	return &PostgresUsageTracker{db: pool}
}

func newPostgresUsageTrackerWithExec(exec rowQuerier) *PostgresUsageTracker {
	if exec == nil {
		panic("audit: exec required")
	}
	return &PostgresUsageTracker{db: exec}
}

func (t *PostgresUsageTracker) Increment(ctx context.Context, userID, skill string, tokens int, periodStart time.Time) error {
	if _, err := t.db.Exec(ctx, `SELECT increment_ai_usage($1, $2, $3, $4)`, userID, skill, periodStart, tokens); err != nil {
		return fmt.Errorf("audit: increment usage: %w", err)
	}
	return nil
}

// PeriodStart is the first instant of t's calendar month in UTC.
func PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
