package enums

import "fmt"

// OrphanStatus describes where an orphaned upload is in its cleanup lifecycle.
type OrphanStatus string

const (
	OrphanStatusPending     OrphanStatus = "pending"
	OrphanStatusFailed      OrphanStatus = "failed"
	// OrphanStatusUnconfirmed marks uploads whose record may have been saved; the sweeper
	// checks the collaborator's list before deleting them.
	OrphanStatusUnconfirmed OrphanStatus = "unconfirmed"
)

var validOrphanStatuses = []OrphanStatus{
	OrphanStatusPending,
	OrphanStatusFailed,
	OrphanStatusUnconfirmed,
}

func (o OrphanStatus) String() string {
	return string(o)
}

func (o OrphanStatus) IsValid() bool {
	for _, candidate := range validOrphanStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrphanStatus converts raw input into an OrphanStatus.
func ParseOrphanStatus(value string) (OrphanStatus, error) {
	for _, candidate := range validOrphanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid orphan status %q", value)
}
