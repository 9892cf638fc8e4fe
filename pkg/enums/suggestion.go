package enums

import "fmt"

// SuggestionSource records where a competitor suggestion came from.
type SuggestionSource string

const (
	SuggestionSourceCrawler     SuggestionSource = "crawler"
	SuggestionSourceManual      SuggestionSource = "manual"
	SuggestionSourcePartnerFeed SuggestionSource = "partner_feed"
)

var validSuggestionSources = []SuggestionSource{
	SuggestionSourceCrawler,
	SuggestionSourceManual,
	SuggestionSourcePartnerFeed,
}

// IsValid reports whether the value is a known SuggestionSource.
func (s SuggestionSource) IsValid() bool {
	for _, candidate := range validSuggestionSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSuggestionSource converts raw input into a SuggestionSource.
func ParseSuggestionSource(value string) (SuggestionSource, error) {
	for _, candidate := range validSuggestionSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid suggestion source %q", value)
}

// SuggestionStatus tracks the merchant review decision on a suggestion.
type SuggestionStatus string

const (
	SuggestionStatusNew      SuggestionStatus = "new"
	SuggestionStatusApproved SuggestionStatus = "approved"
	SuggestionStatusIgnored  SuggestionStatus = "ignored"
)

var validSuggestionStatuses = []SuggestionStatus{
	SuggestionStatusNew,
	SuggestionStatusApproved,
	SuggestionStatusIgnored,
}

// IsValid reports whether the value is a known SuggestionStatus.
func (s SuggestionStatus) IsValid() bool {
	for _, candidate := range validSuggestionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSuggestionStatus converts raw input into a SuggestionStatus.
func ParseSuggestionStatus(value string) (SuggestionStatus, error) {
	for _, candidate := range validSuggestionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid suggestion status %q", value)
}
