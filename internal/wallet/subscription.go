package wallet

import "sync"

// Topics that the store publishes on.
const (
	TopicSession = "session"
	TopicBalance = "balance"
	TopicHistory = "history"
)

// Subscription is a cancellable handle on a store topic. C receives one
// (possibly coalesced) signal per publication and is closed by Cancel.
type Subscription struct {
	C      <-chan struct{}
	cancel func()
	once   sync.Once
}

// Cancel detaches the subscription and closes C. It is safe to call more
// than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]chan struct{})}
}

func (h *hub) subscribe(topic string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan struct{})
	}
	ch := make(chan struct{}, 1)
	h.subs[topic][id] = ch
	return &Subscription{
		C: ch,
		cancel: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if listeners, ok := h.subs[topic]; ok {
				if _, live := listeners[id]; live {
					delete(listeners, id)
					close(ch)
				}
			}
		},
	}
}

// publish signals all listeners on topic without blocking: a listener that
// has not drained its previous signal sees the new one coalesced into it.
func (h *hub) publish(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *hub) listenerCount(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}
