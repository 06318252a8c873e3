package player

import "sync"

// EventKind identifies what changed in the player.
type EventKind string

// Player event kinds.
const (
	StateChanged EventKind = "state_changed"
	QueueChanged EventKind = "queue_changed"
)

// Event carries a structured player change notification with a
// consistent snapshot taken at publish time.
type Event struct {
	Kind     EventKind `json:"kind"`
	Snapshot Snapshot  `json:"snapshot"`
}

const subscriberBuffer = 16

// notifier fans player events out to subscribers without blocking
// playback operations.
type notifier struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[chan Event]struct{})}
}

func (n *notifier) subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

func (n *notifier) unsubscribe(ch chan Event) {
	n.mu.Lock()
	if _, ok := n.subs[ch]; ok {
		delete(n.subs, ch)
		close(ch)
	}
	n.mu.Unlock()
}

func (n *notifier) publish(event Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
