package domain

// UpdateKind tells which of the three inbound shapes an update carries.
type UpdateKind int

const (
	UpdateUnknown UpdateKind = iota
	UpdateCommand
	UpdateCallback
	UpdateText
)

// Sender is the profile of the user behind an update.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Update is a decoded inbound platform event.
type Update struct {
	ID        int64
	Kind      UpdateKind
	Sender    Sender
	ChatID    int64
	MessageID int64

	// Command is the command name without the leading slash; Args is the rest of the text.
	Command string
	Args    string

	CallbackID   string
	CallbackData string

	Text string
}

// Key returns the session key of the update's sender.
func (u Update) Key() SessionKey {
	return SessionKey{Platform: PlatformTelegram, UserID: u.Sender.ID}
}
