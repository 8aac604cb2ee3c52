package enums

import "fmt"

// ContactStatus tracks how far a contact request has been handled.
type ContactStatus string

const (
	ContactStatusPending  ContactStatus = "pending"
	ContactStatusOngoing  ContactStatus = "ongoing"
	ContactStatusComplete ContactStatus = "complete"
)

var validContactStatuses = []ContactStatus{
	ContactStatusPending,
	ContactStatusOngoing,
	ContactStatusComplete,
}

// String returns the literal string for the status.
func (c ContactStatus) String() string {
	return string(c)
}

// IsValid reports whether the status is known.
func (c ContactStatus) IsValid() bool {
	for _, candidate := range validContactStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContactStatus converts raw input into a ContactStatus.
func ParseContactStatus(value string) (ContactStatus, error) {
	for _, candidate := range validContactStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contact status %q", value)
}
