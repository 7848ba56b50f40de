package app

import (
	"context"
	"errors"
	"time"

	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/logger"
)

// Prompts keeps at most one live prompt per user: the previous prompt is
// deleted (best effort) before the next one is sent and tracked.
type Prompts struct {
	platform Platform
	sessions SessionStore
	notifier *Notifier
	log      *logger.Logger
	now      func() time.Time
}

func NewPrompts(platform Platform, sessions SessionStore, notifier *Notifier, log *logger.Logger) *Prompts {
	if log == nil {
		log = logger.Nop()
	}
	return &Prompts{
		platform: platform,
		sessions: sessions,
		notifier: notifier,
		log:      log.With("component", "prompts"),
		now:      time.Now,
	}
}

// Current returns the tracked prompt id, zero when none is tracked.
func (m *Prompts) Current(ctx context.Context, key domain.SessionKey) (int64, error) {
	sc, err := m.sessions.Load(ctx, key)
	if err != nil {
		return 0, err
	}
	return sc.PromptMessageID, nil
}

// ShowNext replaces the user's current prompt with p and returns the new message id.
func (m *Prompts) ShowNext(ctx context.Context, key domain.SessionKey, chatID int64, p domain.Prompt) (int64, error) {
	sc, err := m.sessions.Load(ctx, key)
	if err != nil {
		return 0, err
	}
	m.deleteBestEffort(ctx, key, chatID, sc.PromptMessageID)
	sc.PromptMessageID = 0
	sc.ChatID = chatID
	sc.UpdatedAt = m.now()

	id, sendErr := m.Send(ctx, chatID, p)
	if sendErr == nil {
		sc.PromptMessageID = id
	}
	if err := saveOrRelease(ctx, m.sessions, sc); err != nil {
		return id, err
	}
	return id, sendErr
}

// ClearCurrent deletes the tracked prompt, if any, and forgets it.
func (m *Prompts) ClearCurrent(ctx context.Context, key domain.SessionKey, chatID int64) error {
	sc, err := m.sessions.Load(ctx, key)
	if err != nil {
		return err
	}
	if sc.PromptMessageID == 0 {
		return nil
	}
	m.deleteBestEffort(ctx, key, chatID, sc.PromptMessageID)
	sc.PromptMessageID = 0
	sc.UpdatedAt = m.now()
	return saveOrRelease(ctx, m.sessions, sc)
}

// Retire freezes the tracked prompt in place with text and no buttons, then forgets it.
// A prompt that cannot be edited is deleted instead.
func (m *Prompts) Retire(ctx context.Context, key domain.SessionKey, chatID int64, text string) error {
	sc, err := m.sessions.Load(ctx, key)
	if err != nil {
		return err
	}
	if sc.PromptMessageID == 0 {
		return nil
	}
	if err := m.platform.EditText(ctx, chatID, sc.PromptMessageID, text, nil); err != nil {
		m.log.Debug("prompt not editable, deleting", "user_id", key.UserID, "message_id", sc.PromptMessageID, "error", err)
		m.deleteBestEffort(ctx, key, chatID, sc.PromptMessageID)
	}
	sc.PromptMessageID = 0
	sc.UpdatedAt = m.now()
	return saveOrRelease(ctx, m.sessions, sc)
}

// Send delivers p without tracking it.
func (m *Prompts) Send(ctx context.Context, chatID int64, p domain.Prompt) (int64, error) {
	if p.PhotoURL != "" {
		return m.platform.SendPhoto(ctx, chatID, p.PhotoURL, p.Text, p.Keyboard)
	}
	return m.platform.SendText(ctx, chatID, p.Text, p.Keyboard)
}

func (m *Prompts) deleteBestEffort(ctx context.Context, key domain.SessionKey, chatID, messageID int64) {
	if messageID == 0 {
		return
	}
	err := m.platform.DeleteMessage(ctx, chatID, messageID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMessageGone):
		m.log.Debug("prompt already gone", "user_id", key.UserID, "message_id", messageID)
	default:
		m.notifier.ReportError(ctx, "delete prompt", err, "user_id", key.UserID, "message_id", messageID)
	}
}

// saveOrRelease drops contexts that carry no state so finished sessions do not accumulate.
func saveOrRelease(ctx context.Context, sessions SessionStore, sc domain.SessionContext) error {
	if sc.Disposable() {
		return sessions.Delete(ctx, sc.Key)
	}
	return sessions.Save(ctx, sc)
}
