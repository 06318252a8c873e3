package player

import (
	"math/rand"

	"github.com/lemonstring/strum/internal/models"
)

// Queue holds the current play context: an ordered list of songs, the
// playing position, and shuffle/repeat state. It is in-memory only and
// replaced wholesale whenever playback starts from a new source view.
type Queue struct {
	items        []models.Song
	currentIndex int // -1 when the queue is empty
	original     []models.Song
	shuffled     bool
	repeat       RepeatMode
}

// NewQueue creates a new empty queue.
func NewQueue() *Queue {
	return &Queue{
		items:        make([]models.Song, 0),
		currentIndex: -1,
		repeat:       RepeatOff,
	}
}

// Replace swaps in a new play context and positions the queue on the
// song with currentID. An ID not present in the context leaves the
// index at -1; that is a caller error, tolerated rather than fatal.
func (q *Queue) Replace(songs []models.Song, currentID string) {
	q.items = make([]models.Song, len(songs))
	copy(q.items, songs)
	q.original = make([]models.Song, len(songs))
	copy(q.original, songs)
	q.shuffled = false
	q.currentIndex = q.indexOf(currentID)
}

// Current returns the song at the current position, or nil.
func (q *Queue) Current() *models.Song {
	if q.currentIndex < 0 || q.currentIndex >= len(q.items) {
		return nil
	}
	return &q.items[q.currentIndex]
}

// CurrentIndex returns the current position (-1 when empty).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Items returns a copy of the queued songs.
func (q *Queue) Items() []models.Song {
	items := make([]models.Song, len(q.items))
	copy(items, q.items)
	return items
}

// Len returns the number of queued songs.
func (q *Queue) Len() int {
	return len(q.items)
}

// IsEmpty returns true if no songs are queued.
func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

// Shuffled reports whether the queue order is currently shuffled.
func (q *Queue) Shuffled() bool {
	return q.shuffled
}

// Repeat returns the current repeat mode.
func (q *Queue) Repeat() RepeatMode {
	return q.repeat
}

// CycleRepeat advances the repeat mode and returns the new value.
func (q *Queue) CycleRepeat() RepeatMode {
	q.repeat = q.repeat.Next()
	return q.repeat
}

// Advance moves to the next position. Past the end it wraps to 0 when
// repeat is "all", otherwise it clamps to the last index and reports
// false so the caller can pause instead of playing.
func (q *Queue) Advance() bool {
	if q.IsEmpty() {
		return false
	}

	q.currentIndex++
	if q.currentIndex >= len(q.items) {
		if q.repeat == RepeatAll {
			q.currentIndex = 0
			return true
		}
		q.currentIndex = len(q.items) - 1
		return false
	}
	return true
}

// Retreat moves to the previous position, clamped at 0.
func (q *Queue) Retreat() {
	if q.IsEmpty() {
		return
	}
	q.currentIndex--
	if q.currentIndex < 0 {
		q.currentIndex = 0
	}
}

// ToggleShuffle flips shuffle state. Shuffling relocates the currently
// playing song to position 0 and resets the index there; unshuffling
// restores the original order and recomputes the index by song ID.
func (q *Queue) ToggleShuffle(rng *rand.Rand) {
	if q.IsEmpty() {
		q.shuffled = !q.shuffled
		return
	}

	// Capture the ID before reordering; Current returns a pointer into
	// items, so it would name whatever song lands in that slot instead.
	currentID := ""
	if current := q.Current(); current != nil {
		currentID = current.ID
	}

	if !q.shuffled {
		rng.Shuffle(len(q.items), func(i, j int) {
			q.items[i], q.items[j] = q.items[j], q.items[i]
		})
		if currentID != "" {
			idx := q.indexOf(currentID)
			if idx > 0 {
				q.items[0], q.items[idx] = q.items[idx], q.items[0]
			}
			q.currentIndex = 0
		}
		q.shuffled = true
		return
	}

	q.items = make([]models.Song, len(q.original))
	copy(q.items, q.original)
	if currentID != "" {
		q.currentIndex = q.indexOf(currentID)
	}
	q.shuffled = false
}

// indexOf returns the position of the song with the given ID, or -1.
func (q *Queue) indexOf(id string) int {
	for i := range q.items {
		if q.items[i].ID == id {
			return i
		}
	}
	return -1
}
