package domain

import (
	"fmt"
	"time"
)

// PlatformTelegram is the only platform the bot currently speaks.
const PlatformTelegram = "telegram"

// SessionKey identifies one user on one platform.
type SessionKey struct {
	Platform string
	UserID   int64
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s:%d", k.Platform, k.UserID)
}

// ConversationState is the state of the side-flow state machine.
type ConversationState int

const (
	StateIdle ConversationState = iota
	StateAwaitingContactInput
	StateAwaitingFeedbackInput
)

func (s ConversationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingContactInput:
		return "awaiting_contact_input"
	case StateAwaitingFeedbackInput:
		return "awaiting_feedback_input"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionContext is the ephemeral per-user state kept outside persistent storage.
type SessionContext struct {
	Key             SessionKey        `json:"-"`
	ChatID          int64             `json:"chatId"`
	PromptMessageID int64             `json:"promptMessageId,omitempty"`
	ContactTargetID int64             `json:"contactTargetId,omitempty"`
	State           ConversationState `json:"state"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Disposable reports whether the context carries nothing worth keeping.
func (c SessionContext) Disposable() bool {
	return c.PromptMessageID == 0 && c.State == StateIdle && c.ContactTargetID == 0
}
