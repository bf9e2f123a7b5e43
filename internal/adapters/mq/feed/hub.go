package feed

import (
	"context"
	"sync"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
)

// Subscription receives changes for one collection.
type Subscription struct {
	collection string
	ch         chan Change
	done       chan struct{}
	once       sync.Once
	remove     func(*Subscription)
}

// C returns the delivery channel. It is closed after Unsubscribe.
func (s *Subscription) C() <-chan Change { return s.ch }

// Collection is the subscribed collection.
func (s *Subscription) Collection() string { return s.collection }

// Done is closed once the subscription has ended.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Unsubscribe ends the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.remove(s)
		close(s.done)
	})
}

// hub fans changes out to local subscribers.
type hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	closed bool
}

func newHub(buffer int) *hub {
	return &hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

func (h *hub) subscribe(ctx context.Context, collection string) (*Subscription, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	sub := &Subscription{
		collection: collection,
		ch:         make(chan Change, h.buffer),
		done:       make(chan struct{}),
		remove:     h.remove,
	}
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[*Subscription]struct{})
	}
	h.subs[collection][sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// remove detaches sub and closes its channel. Sends happen under h.mu, so
// nothing can write to the channel after it is closed here.
func (h *hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.collection]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.ch)
		}
	}
}

// deliver hands c to every subscriber of its collection without blocking.
func (h *hub) deliver(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[c.Collection] {
		select {
		case sub.ch <- c:
		default:
			metrics.RecordFeedDropped(c.Collection)
		}
	}
}

func (h *hub) count(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

// close ends every subscription.
func (h *hub) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.Unsubscribe()
	}
}
