package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/logger"
)

type conversationEvent int

const (
	eventEnterContact conversationEvent = iota
	eventEnterFeedback
	eventEnterFeedbackInline
	eventText
	eventCancel
)

type conversationAction int

const (
	actionNone conversationAction = iota
	actionPromptContact
	actionPromptFeedback
	actionForwardContact
	actionForwardFeedback
	actionCancelled
	actionNothingToCancel
)

// transition is the side-flow state machine. Entry events supersede whatever
// flow was pending; text only completes a flow that is awaiting input.
func transition(state domain.ConversationState, ev conversationEvent) (domain.ConversationState, conversationAction) {
	switch ev {
	case eventEnterContact:
		return domain.StateAwaitingContactInput, actionPromptContact
	case eventEnterFeedback:
		return domain.StateAwaitingFeedbackInput, actionPromptFeedback
	case eventEnterFeedbackInline:
		return domain.StateIdle, actionForwardFeedback
	case eventText:
		switch state {
		case domain.StateAwaitingContactInput:
			return domain.StateIdle, actionForwardContact
		case domain.StateAwaitingFeedbackInput:
			return domain.StateIdle, actionForwardFeedback
		default:
			return domain.StateIdle, actionNone
		}
	case eventCancel:
		switch state {
		case domain.StateAwaitingContactInput, domain.StateAwaitingFeedbackInput:
			return domain.StateIdle, actionCancelled
		default:
			return domain.StateIdle, actionNothingToCancel
		}
	}
	return domain.StateIdle, actionNone
}

// Conversations runs the contact and feedback side-flows. Their prompts are not
// tracked by Prompts, so a quiz question on screen survives a side-flow.
type Conversations struct {
	platform Platform
	sessions SessionStore
	refs     *References
	notifier *Notifier
	log      *logger.Logger
	now      func() time.Time
}

func NewConversations(platform Platform, sessions SessionStore, refs *References, notifier *Notifier, log *logger.Logger) *Conversations {
	if log == nil {
		log = logger.Nop()
	}
	return &Conversations{
		platform: platform,
		sessions: sessions,
		refs:     refs,
		notifier: notifier,
		log:      log.With("component", "conversations"),
		now:      time.Now,
	}
}

// StartContact enters the contact flow; targetID is zero when no outcome entity is attached.
func (c *Conversations) StartContact(ctx context.Context, upd domain.Update, targetID int64) error {
	_, err := c.apply(ctx, upd, eventEnterContact, targetID, "")
	return err
}

// StartFeedback enters the feedback flow, or forwards immediately when the command carried text.
func (c *Conversations) StartFeedback(ctx context.Context, upd domain.Update) error {
	if inline := strings.TrimSpace(upd.Args); inline != "" {
		_, err := c.apply(ctx, upd, eventEnterFeedbackInline, 0, inline)
		return err
	}
	_, err := c.apply(ctx, upd, eventEnterFeedback, 0, "")
	return err
}

// HandleText feeds free text to the pending flow. It reports false when no flow was waiting.
func (c *Conversations) HandleText(ctx context.Context, upd domain.Update) (bool, error) {
	return c.apply(ctx, upd, eventText, 0, strings.TrimSpace(upd.Text))
}

// Cancel leaves a pending flow without forwarding anything.
func (c *Conversations) Cancel(ctx context.Context, upd domain.Update) error {
	_, err := c.apply(ctx, upd, eventCancel, 0, "")
	return err
}

// Abandon silently drops a pending flow, used when the user re-enters the quiz.
func (c *Conversations) Abandon(ctx context.Context, key domain.SessionKey) error {
	sc, err := c.sessions.Load(ctx, key)
	if err != nil {
		return err
	}
	if sc.State == domain.StateIdle && sc.ContactTargetID == 0 {
		return nil
	}
	sc.State = domain.StateIdle
	sc.ContactTargetID = 0
	sc.UpdatedAt = c.now()
	return saveOrRelease(ctx, c.sessions, sc)
}

func (c *Conversations) apply(ctx context.Context, upd domain.Update, ev conversationEvent, targetID int64, payload string) (bool, error) {
	key := upd.Key()
	sc, err := c.sessions.Load(ctx, key)
	if err != nil {
		return false, err
	}
	if ev == eventText && payload == "" && sc.State != domain.StateIdle {
		return true, c.reply(ctx, upd.ChatID, textEmptySubmission)
	}

	next, action := transition(sc.State, ev)
	c.log.Debug("conversation transition", "user_id", key.UserID, "from", sc.State.String(), "to", next.String())

	pendingTarget := sc.ContactTargetID
	sc.State = next
	sc.ChatID = upd.ChatID
	sc.ContactTargetID = 0
	if action == actionPromptContact {
		sc.ContactTargetID = targetID
	}
	sc.UpdatedAt = c.now()
	if err := saveOrRelease(ctx, c.sessions, sc); err != nil {
		return false, err
	}

	switch action {
	case actionPromptContact:
		return true, c.reply(ctx, upd.ChatID, c.contactPromptText(ctx, targetID))
	case actionPromptFeedback:
		return true, c.reply(ctx, upd.ChatID, textFeedbackPrompt)
	case actionForwardContact:
		text := contactForward(upd.Sender, c.outcomeName(ctx, pendingTarget), payload)
		return true, c.forward(ctx, upd, NotificationContact, text, textContactThanks)
	case actionForwardFeedback:
		return true, c.forward(ctx, upd, NotificationFeedback, feedbackForward(upd.Sender, payload), textFeedbackThanks)
	case actionCancelled:
		return true, c.reply(ctx, upd.ChatID, textCancelled)
	case actionNothingToCancel:
		return true, c.reply(ctx, upd.ChatID, textNothingToCancel)
	default:
		return false, nil
	}
}

func (c *Conversations) forward(ctx context.Context, upd domain.Update, kind, text, thanks string) error {
	if err := c.notifier.Forward(ctx, kind, text); err != nil {
		c.notifier.ReportError(ctx, "forward "+kind, err, "user_id", upd.Sender.ID)
		return c.reply(ctx, upd.ChatID, textDeliveryFailed)
	}
	return c.reply(ctx, upd.ChatID, thanks)
}

func (c *Conversations) contactPromptText(ctx context.Context, targetID int64) string {
	if name := c.outcomeName(ctx, targetID); name != "" {
		return fmt.Sprintf(textContactPromptFor, name)
	}
	return textContactPrompt
}

func (c *Conversations) outcomeName(ctx context.Context, targetID int64) string {
	if targetID == 0 {
		return ""
	}
	o, ok, err := c.refs.OutcomeEntity(ctx, targetID)
	if err != nil {
		c.log.Warn("contact target lookup failed", "outcome_id", targetID, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return o.Name
}

func (c *Conversations) reply(ctx context.Context, chatID int64, text string) error {
	_, err := c.platform.SendText(ctx, chatID, text, nil)
	return err
}
