package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"totem-quiz-bot/internal/logger"
)

const operatorSendTimeout = 10 * time.Second

// Notifier is the error and notification sink. Errors are logged locally and
// mirrored to the operator chat without blocking the user-facing response.
// A zero operator chat id disables the platform side; logging and the feed still work.
type Notifier struct {
	platform       Platform
	operatorChatID int64
	feed           *Feed
	log            *logger.Logger
	now            func() time.Time

	wg sync.WaitGroup
}

func NewNotifier(platform Platform, operatorChatID int64, feed *Feed, log *logger.Logger) *Notifier {
	if feed == nil {
		feed = NewFeed()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{
		platform:       platform,
		operatorChatID: operatorChatID,
		feed:           feed,
		log:            log.With("component", "notifier"),
		now:            time.Now,
	}
}

// ReportError logs an operational error and mirrors it to the operator channel in the background.
func (n *Notifier) ReportError(ctx context.Context, op string, err error, keysAndValues ...interface{}) {
	kv := append([]interface{}{"op", op, "error", err}, keysAndValues...)
	n.log.Error("operation failed", kv...)

	text := fmt.Sprintf("⚠️ %s: %v", op, err)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		text += fmt.Sprintf("\n%v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	note := n.publish(NotificationError, text)

	if n.operatorChatID == 0 {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), operatorSendTimeout)
		defer cancel()
		if _, err := n.platform.SendText(sendCtx, n.operatorChatID, note.Text, nil); err != nil {
			n.log.Warn("operator notification not delivered", "op", op, "error", err)
		}
	}()
}

// Forward delivers a user-authored message (contact request, feedback) to the operator channel.
func (n *Notifier) Forward(ctx context.Context, kind, text string) error {
	n.publish(kind, text)
	if n.operatorChatID == 0 {
		n.log.Warn("operator chat not configured, message kept in log only", "kind", kind, "text", text)
		return nil
	}
	if _, err := n.platform.SendText(ctx, n.operatorChatID, text, nil); err != nil {
		return fmt.Errorf("forward %s: %w", kind, err)
	}
	n.log.Info("forwarded to operator", "kind", kind)
	return nil
}

// Wait blocks until background operator sends have finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) publish(kind, text string) Notification {
	note := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      text,
		CreatedAt: n.now().UTC(),
	}
	n.feed.Publish(note)
	return note
}
