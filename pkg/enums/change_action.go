package enums

// ChangeAction names the kind of write behind a content change event.
type ChangeAction string

const (
	ChangeSaved   ChangeAction = "saved"
	ChangeDeleted ChangeAction = "deleted"
	ChangeStatus  ChangeAction = "status"
	ChangeFlagged ChangeAction = "flagged"
)

func (a ChangeAction) String() string {
	return string(a)
}
