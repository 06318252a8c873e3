package player

// State represents the playback state machine.
//
// Valid transitions:
//   - Idle    → Loaded  (via Play, once the sink accepts a load)
//   - Loaded  → Playing (sink confirms playback start)
//   - Playing → Paused  (pause, or clamping at the end of the queue)
//   - Paused  → Playing (resume)
//   - Playing → Ended   (sink reports the track finished)
//   - Ended   → Loaded  (next track loads) or Idle (queue exhausted,
//     repeat off)
//
// Invalid transitions are ignored rather than treated as faults; the
// sink is an external collaborator and may report states out of order.
type State string

// Playback states.
const (
	StateIdle    State = "idle"
	StateLoaded  State = "loaded"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
)

// IsActive returns true if a song is loaded (any state but Idle).
func (s State) IsActive() bool {
	return s != StateIdle
}

// RepeatMode controls what happens when the queue reaches its end.
type RepeatMode string

// Repeat modes.
const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// Next cycles off → all → one → off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}
