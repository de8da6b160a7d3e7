package domain

import (
	"strings"
	"time"
)

// DefaultTimezone is applied to profiles and slots created without one.
const DefaultTimezone = "UTC"

// CleanTags trims every tag and drops blank entries, preserving order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// ValidateTimezone checks that tz names a location in the IANA database.
func ValidateTimezone(field, tz string) error {
	if strings.TrimSpace(tz) == "" {
		return NewValidationError(field, "is required", nil)
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return NewValidationError(field, "is not a valid IANA timezone", nil)
	}
	return nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required", nil)
	}
	return nil
}
