package app

import (
	"context"
	"sync"

	"totem-quiz-bot/internal/domain"
)

// Handler processes a single update.
type Handler interface {
	Handle(ctx context.Context, upd domain.Update)
}

// Dispatcher runs updates of different users concurrently while keeping the
// updates of one user strictly in arrival order.
type Dispatcher struct {
	handler Handler

	mu     sync.Mutex
	queues map[domain.SessionKey][]domain.Update
	wg     sync.WaitGroup
}

func NewDispatcher(handler Handler) *Dispatcher {
	return &Dispatcher{
		handler: handler,
		queues:  make(map[domain.SessionKey][]domain.Update),
	}
}

// Dispatch enqueues upd and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, upd domain.Update) {
	key := upd.Key()

	d.mu.Lock()
	if pending, busy := d.queues[key]; busy {
		d.queues[key] = append(pending, upd)
		d.mu.Unlock()
		return
	}
	d.queues[key] = []domain.Update{}
	d.mu.Unlock()

	d.wg.Add(1)
	go d.drain(ctx, key, upd)
}

func (d *Dispatcher) drain(ctx context.Context, key domain.SessionKey, first domain.Update) {
	defer d.wg.Done()
	upd := first
	for {
		d.handler.Handle(ctx, upd)

		d.mu.Lock()
		pending := d.queues[key]
		if len(pending) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		upd = pending[0]
		d.queues[key] = pending[1:]
		d.mu.Unlock()
	}
}

// Wait blocks until every dispatched update has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
