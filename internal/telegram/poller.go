package telegram

import (
	"context"
	"time"

	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/logger"
)

// Dispatcher accepts decoded updates for processing.
type Dispatcher interface {
	Dispatch(ctx context.Context, upd domain.Update)
}

// UpdateSource yields batches of updates; *Client implements it.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Poller feeds long-polled updates into a Dispatcher until its context ends.
type Poller struct {
	source     UpdateSource
	dispatcher Dispatcher
	timeout    time.Duration
	backoff    time.Duration
	log        *logger.Logger
}

func NewPoller(source UpdateSource, dispatcher Dispatcher, timeout time.Duration, log *logger.Logger) *Poller {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Poller{
		source:     source,
		dispatcher: dispatcher,
		timeout:    timeout,
		backoff:    2 * time.Second,
		log:        log.With("component", "poller"),
	}
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	// Updates already taken off the queue are finished even during shutdown.
	handleCtx := context.WithoutCancel(ctx)
	p.log.Info("long polling started", "timeout", p.timeout.String())
	for {
		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if ctx.Err() != nil {
			p.log.Info("long polling stopped")
			return nil
		}
		if err != nil {
			p.log.Warn("get updates failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.backoff):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			upd := Decode(u)
			if upd.Kind == domain.UpdateUnknown {
				p.log.Debug("update skipped", "update_id", u.UpdateID)
				continue
			}
			p.dispatcher.Dispatch(handleCtx, upd)
		}
	}
}
