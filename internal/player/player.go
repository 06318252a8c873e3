// Package player owns the playback state machine and the in-memory
// queue. It drives an external media sink, records play counts through
// the library service, and publishes typed state/queue notifications.
package player

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/lemonstring/strum/internal/library"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/models"
)

// ErrSinkFailure indicates the media sink rejected an operation. The
// player recovers by skipping to the next song; callers should treat
// this as a warning, not a fatal condition.
var ErrSinkFailure = errors.New("media sink failure")

// ErrNoSong indicates an operation that needs a loaded song was called
// while the player was idle.
var ErrNoSong = errors.New("no song loaded")

// Options configures playback policy.
type Options struct {
	// ErrorSkipDelay is how long to wait after a sink error before
	// auto-advancing.
	ErrorSkipDelay time.Duration
	// RestartThreshold is the elapsed time past which Previous restarts
	// the current song instead of moving back.
	RestartThreshold time.Duration
}

// Player is the playback state machine. One mutex guards all state;
// sink callbacks take the same lock, so a Sink must never invoke a
// Handle* callback synchronously from inside one of its own methods.
type Player struct {
	mu      sync.Mutex
	sink    Sink
	library *library.Service
	queue   *Queue
	opts    Options

	state   State
	current *models.Song
	// counted is set once the play count has been recorded for the
	// current load, so pause/resume cycles do not double count.
	counted bool
	// generation bumps on every load; a pending error-skip aborts when
	// a newer load superseded it (last-writer-wins).
	generation uint64

	rng      *rand.Rand
	notifier *notifier
}

// New creates a player over the given sink and library service.
func New(sink Sink, lib *library.Service, opts Options) *Player {
	if opts.ErrorSkipDelay <= 0 {
		opts.ErrorSkipDelay = time.Second
	}
	if opts.RestartThreshold <= 0 {
		opts.RestartThreshold = 3 * time.Second
	}
	return &Player{
		sink:     sink,
		library:  lib,
		queue:    NewQueue(),
		opts:     opts,
		state:    StateIdle,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		notifier: newNotifier(),
	}
}

// Subscribe registers a listener for player events.
func (p *Player) Subscribe() chan Event {
	return p.notifier.subscribe()
}

// Unsubscribe removes a listener and closes its channel.
func (p *Player) Unsubscribe(ch chan Event) {
	p.notifier.unsubscribe(ch)
}

// Snapshot is a consistent read-only view of the player for projections.
type Snapshot struct {
	State        State         `json:"state"`
	Current      *models.Song  `json:"current,omitempty"`
	Queue        []models.Song `json:"queue"`
	CurrentIndex int           `json:"current_index"`
	Shuffled     bool          `json:"shuffled"`
	Repeat       RepeatMode    `json:"repeat"`
	Position     float64       `json:"position_seconds"`
	Duration     float64       `json:"duration_seconds"`
}

// Snapshot returns the current player view.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// snapshot builds a Snapshot; callers must hold p.mu.
func (p *Player) snapshot() Snapshot {
	var current *models.Song
	if p.current != nil {
		c := *p.current
		current = &c
	}
	return Snapshot{
		State:        p.state,
		Current:      current,
		Queue:        p.queue.Items(),
		CurrentIndex: p.queue.CurrentIndex(),
		Shuffled:     p.queue.Shuffled(),
		Repeat:       p.queue.Repeat(),
		Position:     p.sink.CurrentTime(),
		Duration:     p.sink.Duration(),
	}
}

// Play starts playback of song. A non-nil playContext replaces the
// whole queue with a fresh snapshot of that context; a nil playContext
// keeps the current queue (used for next/previous within a context).
func (p *Player) Play(ctx context.Context, song models.Song, playContext []models.Song) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if playContext != nil {
		p.queue.Replace(playContext, song.ID)
		p.publish(QueueChanged)
	}

	return p.load(song)
}

// load points the sink at a song; callers must hold p.mu.
func (p *Player) load(song models.Song) error {
	p.generation++
	p.current = &song
	p.counted = false

	if err := p.sink.Load(song.ID); err != nil {
		p.handleSinkError(err)
		return errors.Join(ErrSinkFailure, err)
	}

	p.state = StateLoaded
	logger.Log.Debug().
		Str("song_id", song.ID).
		Str("title", song.Title).
		Msg("Song loaded")
	p.publish(StateChanged)
	return nil
}

// Next advances the queue. Past the end it wraps when repeat is "all",
// otherwise it clamps at the last song and pauses. An empty queue is a
// no-op.
func (p *Player) Next(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next()
}

// next implements Next; callers must hold p.mu.
func (p *Player) next() error {
	if p.queue.IsEmpty() {
		return nil
	}

	if !p.queue.Advance() {
		if err := p.sink.Pause(); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to pause sink at end of queue")
		}
		p.state = StatePaused
		p.publish(StateChanged)
		return nil
	}

	current := p.queue.Current()
	if current == nil {
		return nil
	}
	return p.load(*current)
}

// Previous restarts the current song when more than the restart
// threshold has elapsed, otherwise steps back one song (clamped at the
// first).
func (p *Player) Previous(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queue.IsEmpty() {
		return nil
	}

	if p.sink.CurrentTime() > p.opts.RestartThreshold.Seconds() {
		if err := p.sink.SeekTo(0); err != nil {
			return errors.Join(ErrSinkFailure, err)
		}
		return nil
	}

	p.queue.Retreat()
	current := p.queue.Current()
	if current == nil {
		return nil
	}
	return p.load(*current)
}

// TogglePlayPause asks the sink to flip between playing and paused.
// State only changes once the sink confirms via a callback.
func (p *Player) TogglePlayPause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.IsActive() {
		return ErrNoSong
	}

	var err error
	if p.state == StatePlaying {
		err = p.sink.Pause()
	} else {
		err = p.sink.Play()
	}
	if err != nil {
		return errors.Join(ErrSinkFailure, err)
	}
	return nil
}

// ToggleShuffle flips shuffle mode on the queue.
func (p *Player) ToggleShuffle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.ToggleShuffle(p.rng)
	p.publish(QueueChanged)
}

// ToggleRepeat cycles the repeat mode and returns the new value.
func (p *Player) ToggleRepeat() RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	mode := p.queue.CycleRepeat()
	p.publish(QueueChanged)
	return mode
}

// Seek maps a 0..1 fraction of the total duration to an absolute seek.
// Without a known duration it is a no-op.
func (p *Player) Seek(fraction float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	duration := p.sink.Duration()
	if duration <= 0 {
		return nil
	}

	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	if err := p.sink.SeekTo(duration * fraction); err != nil {
		return errors.Join(ErrSinkFailure, err)
	}
	return nil
}

// SetVolume forwards the volume to the sink and persists it.
func (p *Player) SetVolume(ctx context.Context, volume int) error {
	if err := p.library.SetVolume(ctx, volume); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.sink.SetVolume(volume); err != nil {
		return errors.Join(ErrSinkFailure, err)
	}
	return nil
}

// Mute mutes the sink without touching the persisted volume.
func (p *Player) Mute() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.sink.Mute(); err != nil {
		return errors.Join(ErrSinkFailure, err)
	}
	return nil
}

// Unmute restores sink output.
func (p *Player) Unmute() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.sink.Unmute(); err != nil {
		return errors.Join(ErrSinkFailure, err)
	}
	return nil
}

// HandlePlaying is called by the sink once playback actually starts.
// The first confirmation per load records the play count.
func (p *Player) HandlePlaying() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StatePlaying
	p.publish(StateChanged)

	if p.counted || p.current == nil {
		return
	}
	p.counted = true

	songID := p.current.ID
	go func() {
		if err := p.library.UpdatePlayCount(context.Background(), songID); err != nil {
			logger.Log.Warn().
				Err(err).
				Str("song_id", songID).
				Msg("Failed to update play count")
		}
	}()
}

// HandlePaused is called by the sink when playback pauses.
func (p *Player) HandlePaused() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.IsActive() {
		return
	}
	p.state = StatePaused
	p.publish(StateChanged)
}

// HandleEnded is called by the sink when the current song finishes.
// Repeat one restarts the song; anything else advances the queue.
func (p *Player) HandleEnded() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.IsActive() {
		return
	}
	p.state = StateEnded
	p.publish(StateChanged)

	if p.queue.Repeat() == RepeatOne {
		p.counted = false
		if err := p.sink.SeekTo(0); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to restart song")
			return
		}
		if err := p.sink.Play(); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to restart song")
		}
		return
	}

	if err := p.next(); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to advance after song ended")
	}
}

// HandleError is called by the sink on a playback error. The session
// recovers by skipping to the next song after a short delay; a newer
// load cancels the pending skip.
func (p *Player) HandleError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handleSinkError(err)
}

// handleSinkError schedules the auto-advance; callers must hold p.mu.
func (p *Player) handleSinkError(err error) {
	songID := ""
	if p.current != nil {
		songID = p.current.ID
	}
	logger.Log.Warn().
		Err(err).
		Str("song_id", songID).
		Msg("Playback error, skipping to next song")

	gen := p.generation
	time.AfterFunc(p.opts.ErrorSkipDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation != gen {
			// A newer play superseded this error
			return
		}
		if err := p.next(); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to skip after playback error")
		}
	})
}

// publish emits an event with a current snapshot; callers must hold p.mu.
func (p *Player) publish(kind EventKind) {
	p.notifier.publish(Event{Kind: kind, Snapshot: p.snapshot()})
}
