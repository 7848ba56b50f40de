package app

import (
	"sync"
	"time"
)

// Notification is one operator-facing event.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	NotificationError    = "error"
	NotificationContact  = "contact"
	NotificationFeedback = "feedback"
)

// Feed fans operator notifications out to live subscribers (the websocket ops feed).
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan Notification]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan Notification]struct{})}
}

// Subscribe returns a channel that receives notifications published after the call.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *Feed) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish never blocks; a slow subscriber loses its oldest pending notification.
func (f *Feed) Publish(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- n:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- n
		}
	}
}

// Subscribers reports the number of live subscribers.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
