package enums

import "fmt"

// QuoteStatus tracks a quotation request. Note the terminal value is "completed",
// unlike ContactStatus.
type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusOngoing   QuoteStatus = "ongoing"
	QuoteStatusCompleted QuoteStatus = "completed"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusPending,
	QuoteStatusOngoing,
	QuoteStatusCompleted,
}

func (q QuoteStatus) String() string {
	return string(q)
}

func (q QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
