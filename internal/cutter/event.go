package cutter

// Reason explains why a cut was committed.
type Reason int

const (
	SpeakerChange Reason = iota
	SilenceWide
	ReactionShot
	ForcedMinDuration
)

func (r Reason) String() string {
	switch r {
	case SpeakerChange:
		return "speaker_change"
	case SilenceWide:
		return "silence_wide"
	case ReactionShot:
		return "reaction"
	case ForcedMinDuration:
		return "forced_min_duration_expiry"
	}
	return "unknown"
}

// Event is one committed cut: from this time on, show this camera.
type Event struct {
	T      float64
	Camera string
	Reason Reason
}
