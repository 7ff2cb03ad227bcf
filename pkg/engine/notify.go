package engine

import "sync"

// =============================================================================
// Change Notifier
// =============================================================================

// Listener receives the decision set produced by a solve. Listeners are
// invoked synchronously, in subscription order, once per solve.
type Listener func(*LayoutResult)

// notifier is a typed observer list with unsubscribe-by-handle semantics.
// It is mutex-guarded because unsubscribe handles may be called from timer
// goroutines.
type notifier struct {
	mu   sync.Mutex
	next int
	subs []subscription
}

type subscription struct {
	id int
	fn Listener
}

// subscribe registers a listener and returns its unsubscribe handle.
// Unsubscribing twice is harmless.
func (n *notifier) subscribe(fn Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// emit delivers one result to every subscriber. The subscriber list is
// copied under the lock so a listener may unsubscribe itself mid-emit.
func (n *notifier) emit(r *LayoutResult) {
	n.mu.Lock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		s.fn(r)
	}
}

// count returns the number of active subscriptions.
func (n *notifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
