package library

import (
	"sync"

	"github.com/google/uuid"
)

// EventKind identifies what changed in the library.
type EventKind string

// Library change event kinds.
const (
	SongAdded       EventKind = "song_added"
	SongRemoved     EventKind = "song_removed"
	PlaylistCreated EventKind = "playlist_created"
	PlaylistUpdated EventKind = "playlist_updated"
	PlaylistDeleted EventKind = "playlist_deleted"
)

// Event carries a structured library change notification.
type Event struct {
	Kind       EventKind `json:"kind"`
	SongID     string    `json:"song_id,omitempty"`
	PlaylistID uuid.UUID `json:"playlist_id,omitempty"`
}

// subscriberBuffer is the channel capacity handed to each subscriber.
const subscriberBuffer = 16

// notifier fans library events out to subscribers. Sends never block:
// a subscriber that falls behind misses events rather than stalling
// library mutations.
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
