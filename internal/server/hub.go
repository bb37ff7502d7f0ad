package server

import "sync"

// hub fans out accepted versions to feed subscribers.
// Slow subscribers miss intermediate versions, never the latest one.
type hub struct {
	mu   sync.Mutex
	subs map[chan int]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan int]struct{})}
}

func (h *hub) subscribe() (<-chan int, func()) {
	ch := make(chan int, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

func (h *hub) publish(version int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- version:
		default:
			// Replace the pending version with the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- version
		}
	}
}
