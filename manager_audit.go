package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

const (
	auditEventLoginSuccess   = "login_success"
	auditEventLoginFailure   = "login_failure"
	auditEventRefreshSuccess = "refresh_success"
	auditEventRefreshFailure = "refresh_failure"
	auditEventSessionReject  = "session_rejected"
	auditEventLogout         = "logout"
	auditEventLogoutFailure  = "logout_failure"
	auditEventStoreFailure   = "store_failure"
)

// AuditErrorCode is the stable, non-sensitive classification written to AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrInvalidToken          AuditErrorCode = "invalid_token"
	auditErrExpired               AuditErrorCode = "expired"
	auditErrWrongTokenType        AuditErrorCode = "wrong_token_type"
	auditErrMissingUserID         AuditErrorCode = "missing_user_id"
	auditErrSessionAbsent         AuditErrorCode = "session_absent"
	auditErrSessionCreationFailed AuditErrorCode = "session_creation_failed"
	auditErrSessionInvalidation   AuditErrorCode = "session_invalidation_failed"
	auditErrClaimsUnavailable     AuditErrorCode = "claims_unavailable"
	auditErrUnavailable           AuditErrorCode = "backend_unavailable"
	auditErrInternal              AuditErrorCode = "internal_error"
)

var errSessionAbsent = errors.New("session absent")

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrSessionCreationFailed):
		return auditErrSessionCreationFailed
	case errors.Is(err, ErrSessionInvalidationFailed):
		return auditErrSessionInvalidation
	case errors.Is(err, errSessionAbsent):
		return auditErrSessionAbsent
	case errors.Is(err, ErrClaimsUnavailable):
		return auditErrClaimsUnavailable
	case errors.Is(err, token.ErrExpired):
		return auditErrExpired
	case errors.Is(err, token.ErrWrongTokenType):
		return auditErrWrongTokenType
	case errors.Is(err, token.ErrMissingUserID):
		return auditErrMissingUserID
	case token.IsRejection(err):
		return auditErrInvalidToken
	case errors.Is(err, store.ErrStoreUnavailable),
		errors.Is(err, store.ErrStoreClosed):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
