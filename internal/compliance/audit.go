// Package compliance provides healthcare regulatory compliance features:
// localized disclaimers and safety messages, and the compliance event trail.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuditEventType represents the type of compliance event.
type AuditEventType string

const (
	// EventEmergencyDetected is logged when a request is short-circuited by the emergency scan.
	EventEmergencyDetected AuditEventType = "compliance.emergency_detected"
	// EventResponseModified is logged when post-checks rewrite or flag model output.
	EventResponseModified AuditEventType = "compliance.response_modified"
	// EventResponseRejected is logged when model output fails structural validation.
	EventResponseRejected AuditEventType = "compliance.response_rejected"
	// EventQuotaExceeded is logged when a rate limit or tier policy refuses a request.
	EventQuotaExceeded AuditEventType = "compliance.quota_exceeded"
)

// AuditEvent represents an immutable compliance audit record. It never
// carries user text or model output, only classifications.
type AuditEvent struct {
	ID        string          `json:"id"`
	EventType AuditEventType  `json:"event_type"`
	UserID    string          `json:"user_id"`
	UserRole  string          `json:"user_role,omitempty"`
	Skill     string          `json:"skill"`
	Language  Language        `json:"language"`
	Reasons   []string        `json:"reasons,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditService handles compliance audit logging.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// LogEvent records a compliance audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if s == nil || s.db == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if len(event.Details) == 0 {
		event.Details = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO compliance_audit_events (
			id, event_type, user_id, user_role, skill,
			language, reasons, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.UserID,
		nullString(event.UserRole),
		event.Skill,
		string(event.Language),
		pq.Array(event.Reasons),
		[]byte(event.Details),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}

	return nil
}

// LogEmergencyDetected records which emergency categories fired.
func (s *AuditService) LogEmergencyDetected(ctx context.Context, userID, role, skill string, lang Language, categories []string) error {
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventEmergencyDetected,
		UserID:    userID,
		UserRole:  role,
		Skill:     skill,
		Language:  lang,
		Reasons:   categories,
	})
}

// LogResponseModified records the post-check warnings applied to an output.
func (s *AuditService) LogResponseModified(ctx context.Context, userID, role, skill string, lang Language, warnings []string) error {
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventResponseModified,
		UserID:    userID,
		UserRole:  role,
		Skill:     skill,
		Language:  lang,
		Reasons:   warnings,
	})
}

// LogResponseRejected records an output that failed structural validation.
func (s *AuditService) LogResponseRejected(ctx context.Context, userID, role, skill string, lang Language, requiredKeys []string) error {
	details, _ := json.Marshal(map[string]any{"required_any_of": requiredKeys})
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventResponseRejected,
		UserID:    userID,
		UserRole:  role,
		Skill:     skill,
		Language:  lang,
		Reasons:   []string{"structure_invalid"},
		Details:   details,
	})
}

// LogQuotaExceeded records a refused request and the policy that refused it.
func (s *AuditService) LogQuotaExceeded(ctx context.Context, userID, role, skill string, lang Language, reason string) error {
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventQuotaExceeded,
		UserID:    userID,
		UserRole:  role,
		Skill:     skill,
		Language:  lang,
		Reasons:   []string{reason},
	})
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	UserID    string
	Skill     string
	EventType AuditEventType
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// QueryEvents retrieves audit events with filters, newest first.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	query := `
		SELECT id, event_type, user_id, user_role, skill,
			   language, reasons, details, created_at
		FROM compliance_audit_events
		WHERE 1 = 1
	`
	var args []interface{}
	argIdx := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.Skill != "" {
		query += fmt.Sprintf(" AND skill = $%d", argIdx)
		args = append(args, filter.Skill)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var role sql.NullString
		var lang string
		var details []byte
		err := rows.Scan(
			&e.ID, &e.EventType, &e.UserID, &role, &e.Skill,
			&lang, pq.Array(&e.Reasons), &details, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.UserRole = role.String
		e.Language = Language(lang)
		e.Details = json.RawMessage(details)
		events = append(events, e)
	}

	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
