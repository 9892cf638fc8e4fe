package enums

import "fmt"

// AuditAction names the privacy-relevant events we keep a trail for.
type AuditAction string

const (
	AuditActionInstall          AuditAction = "install"
	AuditActionSessionCreated   AuditAction = "session_created"
	AuditActionLogout           AuditAction = "logout"
	AuditActionDataExport       AuditAction = "data_export"
	AuditActionNotificationRead AuditAction = "notification_read"
	AuditActionSuggestionReview AuditAction = "suggestion_review"
)

var validAuditActions = []AuditAction{
	AuditActionInstall,
	AuditActionSessionCreated,
	AuditActionLogout,
	AuditActionDataExport,
	AuditActionNotificationRead,
	AuditActionSuggestionReview,
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
