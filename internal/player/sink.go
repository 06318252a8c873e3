package player

// Sink is the media playback collaborator. Implementations are out of
// scope here; the player only drives this contract and reacts to the
// Handle* callbacks the sink fires.
type Sink interface {
	// Load prepares the sink to play the given song ID. Playback is
	// confirmed asynchronously via Player.HandlePlaying.
	Load(id string) error
	Play() error
	Pause() error
	// SeekTo seeks to an absolute position in seconds.
	SeekTo(seconds float64) error
	// CurrentTime returns elapsed playback time in seconds.
	CurrentTime() float64
	// Duration returns the total duration in seconds, or 0 if unknown.
	Duration() float64
	SetVolume(volume int) error
	Mute() error
	Unmute() error
}

// NopSink accepts every operation and plays nothing. It stands in when
// the service runs headless and a client on the other side of the API
// renders the audio.
type NopSink struct{}

func (NopSink) Load(id string) error { return nil }

func (NopSink) Play() error { return nil }

func (NopSink) Pause() error { return nil }

func (NopSink) SeekTo(seconds float64) error { return nil }

func (NopSink) CurrentTime() float64 { return 0 }

func (NopSink) Duration() float64 { return 0 }

func (NopSink) SetVolume(volume int) error { return nil }

func (NopSink) Mute() error { return nil }

func (NopSink) Unmute() error { return nil }

var _ Sink = NopSink{}
