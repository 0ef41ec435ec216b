package timeline

// SpeakerLevel is one speaker's smoothed activity level at a tick.
type SpeakerLevel struct {
	Speaker string
	Level   float64
}

// Sample is one resolved tick of the active-speaker timeline.
// Speaker is empty when the tick is silent or ambiguous.
type Sample struct {
	T          float64
	Speaker    string
	Confidence float64

	// Active lists every speaker above the activity threshold for this
	// tick, strongest first. Two or more entries means cross-talk.
	Active []SpeakerLevel

	// Reactions maps camera id to the smoothed reaction-signal level
	// from the vision extractor.
	Reactions map[string]float64
}
