package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_LogEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAuditService(db)

	tests := []struct {
		name    string
		event   AuditEvent
		execErr error
		wantErr bool
	}{
		{
			name: "emergency detected",
			event: AuditEvent{
				EventType: EventEmergencyDetected,
				UserID:    uuid.NewString(),
				UserRole:  "patient",
				Skill:     "extract_symptoms",
				Language:  LanguageEnglish,
				Reasons:   []string{"breathing"},
			},
		},
		{
			name: "response modified without role",
			event: AuditEvent{
				EventType: EventResponseModified,
				UserID:    uuid.NewString(),
				Skill:     "generate_care_plan",
				Language:  LanguageFrench,
				Reasons:   []string{"dangerous_advice_flagged"},
			},
		},
		{
			name: "database failure is wrapped",
			event: AuditEvent{
				EventType: EventResponseRejected,
				UserID:    "user-1",
				Skill:     "summarize_lab",
			},
			execErr: errors.New("connection reset"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := mock.ExpectExec("INSERT INTO compliance_audit_events")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err := service.LogEvent(context.Background(), tt.event)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "compliance: failed to log audit event")
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_LogEmergencyDetected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAuditService(db)

	mock.ExpectExec("INSERT INTO compliance_audit_events").
		WithArgs(sqlmock.AnyArg(), EventEmergencyDetected, "user-1", "patient", "extract_symptoms", "ar", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = service.LogEmergencyDetected(context.Background(), "user-1", "patient", "extract_symptoms", LanguageArabic, []string{"self_harm"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_LogResponseRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAuditService(db)

	mock.ExpectExec("INSERT INTO compliance_audit_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = service.LogResponseRejected(context.Background(), "user-2", "doctor", "triage_message", LanguageEnglish, []string{"urgency", "category"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_NilIsNoop(t *testing.T) {
	var service *AuditService
	assert.NoError(t, service.LogQuotaExceeded(context.Background(), "u", "patient", "triage_message", LanguageEnglish, "rate_limited"))
}

func TestAuditService_QueryEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAuditService(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "event_type", "user_id", "user_role", "skill",
		"language", "reasons", "details", "created_at",
	}).AddRow(
		uuid.NewString(), EventResponseModified, "user-1", nil, "generate_care_plan",
		"en", "{dangerous_advice_flagged,diagnostic_language_softened}", []byte(`{}`), now,
	)

	mock.ExpectQuery("SELECT (.+) FROM compliance_audit_events").
		WithArgs("user-1", EventResponseModified, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	events, err := service.QueryEvents(context.Background(), AuditFilter{
		UserID:    "user-1",
		EventType: EventResponseModified,
		StartTime: now.Add(-24 * time.Hour),
		EndTime:   now,
		Limit:     100,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventResponseModified, events[0].EventType)
	assert.Equal(t, LanguageEnglish, events[0].Language)
	assert.Equal(t, []string{"dangerous_advice_flagged", "diagnostic_language_softened"}, events[0].Reasons)
	assert.Empty(t, events[0].UserRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}
