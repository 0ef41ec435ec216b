package shot

// Kind classifies what a camera shows in a candidate shot.
type Kind int

const (
	Closeup Kind = iota
	Wide
	Reaction
	Cutaway
)

func (k Kind) String() string {
	switch k {
	case Closeup:
		return "closeup"
	case Wide:
		return "wide"
	case Reaction:
		return "reaction"
	case Cutaway:
		return "cutaway"
	}
	return "unknown"
}

// Trigger records which mapping rule produced a candidate. The cut
// state machine turns it into the committed cut's reason.
type Trigger int

const (
	TriggerSpeaker Trigger = iota
	TriggerSilence
	TriggerReaction
	TriggerCrossTalk
)

// Candidate is one ranked proposal for which camera to show at a tick.
type Candidate struct {
	Camera  string
	Kind    Kind
	Speaker string
	Score   float64
	Trigger Trigger

	// Degraded marks a fallback chosen because no camera covers the
	// active speaker.
	Degraded bool
}
