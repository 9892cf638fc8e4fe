package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
	NotificationTypeCompetitorAlert    NotificationType = "competitor_alert"
	NotificationTypeAnalyticsDigest    NotificationType = "analytics_digest"
	NotificationTypeSecurityAlert      NotificationType = "security_alert"
	NotificationTypeBilling            NotificationType = "billing"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeSystemAnnouncement,
	NotificationTypeCompetitorAlert,
	NotificationTypeAnalyticsDigest,
	NotificationTypeSecurityAlert,
	NotificationTypeBilling,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationCategory groups notifications for dashboard filtering.
type NotificationCategory string

const (
	NotificationCategoryGeneral     NotificationCategory = "general"
	NotificationCategoryCompetitors NotificationCategory = "competitors"
	NotificationCategoryAnalytics   NotificationCategory = "analytics"
	NotificationCategoryAccount     NotificationCategory = "account"
)

var validNotificationCategories = []NotificationCategory{
	NotificationCategoryGeneral,
	NotificationCategoryCompetitors,
	NotificationCategoryAnalytics,
	NotificationCategoryAccount,
}

// IsValid reports whether the value is a known NotificationCategory.
func (n NotificationCategory) IsValid() bool {
	for _, candidate := range validNotificationCategories {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationCategory converts raw input into a NotificationCategory.
func ParseNotificationCategory(value string) (NotificationCategory, error) {
	for _, candidate := range validNotificationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification category %q", value)
}

// NotificationScope marks how widely a notification is surfaced in the UI.
type NotificationScope string

const (
	NotificationScopeBanner NotificationScope = "banner"
	NotificationScopeInbox  NotificationScope = "inbox"
	NotificationScopeToast  NotificationScope = "toast"
)

var validNotificationScopes = []NotificationScope{
	NotificationScopeBanner,
	NotificationScopeInbox,
	NotificationScopeToast,
}

// IsValid reports whether the value is a known NotificationScope.
func (n NotificationScope) IsValid() bool {
	for _, candidate := range validNotificationScopes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationScope converts raw input into a NotificationScope.
func ParseNotificationScope(value string) (NotificationScope, error) {
	for _, candidate := range validNotificationScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification scope %q", value)
}
