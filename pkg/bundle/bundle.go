package bundle

import (
	"encoding/json"
	"fmt"
	"os"
)

// Sample is one extractor tick: a confidence reading at a timestamp.
type Sample struct {
	T          float64 `json:"t"`
	Confidence float64 `json:"confidence"`
}

// Channel carries the activity signal of one camera/audio channel.
// SpeakerID is empty for channels that do not map to a speaker
// (e.g., a room microphone feeding the wide camera).
type Channel struct {
	CameraID  string   `json:"camera_id"`
	SpeakerID string   `json:"speaker_id,omitempty"`
	Samples   []Sample `json:"samples"`
}

// Reaction carries a per-camera reaction signal from the vision
// extractor (expression/motion while not speaking).
type Reaction struct {
	CameraID string   `json:"camera_id"`
	Samples  []Sample `json:"samples"`
}

// Turn is one speaker turn from the diarization collaborator.
type Turn struct {
	SpeakerID string  `json:"speaker_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

// Bundle is the full pre-extracted input for one editing session.
type Bundle struct {
	SessionID       string     `json:"session_id,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	Channels        []Channel  `json:"channels"`
	Reactions       []Reaction `json:"reactions,omitempty"`
	Turns           []Turn     `json:"turns,omitempty"`
}

// Load reads and validates a session bundle from a JSON file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validate bundle: %w", err)
	}

	return &b, nil
}

// Validate checks the structural invariants of the bundle.
// Gaps in channel coverage are allowed (they read as zero confidence),
// but whatever samples exist must be ordered and in range.
func (b *Bundle) Validate() error {
	if b.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive, got %v", b.DurationSeconds)
	}
	if len(b.Channels) == 0 {
		return fmt.Errorf("bundle has no channels")
	}

	for _, ch := range b.Channels {
		if ch.CameraID == "" {
			return fmt.Errorf("channel with empty camera_id")
		}
		if err := validateSamples(ch.CameraID, ch.Samples); err != nil {
			return err
		}
	}

	for _, r := range b.Reactions {
		if r.CameraID == "" {
			return fmt.Errorf("reaction signal with empty camera_id")
		}
		if err := validateSamples(r.CameraID, r.Samples); err != nil {
			return err
		}
	}

	for i, t := range b.Turns {
		if t.SpeakerID == "" {
			return fmt.Errorf("turn %d has empty speaker_id", i)
		}
		if t.End <= t.Start {
			return fmt.Errorf("turn %d has end <= start (%v <= %v)", i, t.End, t.Start)
		}
		if i > 0 && t.Start < b.Turns[i-1].Start {
			return fmt.Errorf("turn %d out of order: start %v before previous %v", i, t.Start, b.Turns[i-1].Start)
		}
	}

	return nil
}

func validateSamples(cameraID string, samples []Sample) error {
	for i, s := range samples {
		if s.Confidence < 0 || s.Confidence > 1 {
			return fmt.Errorf("channel %s sample %d confidence out of range: %v", cameraID, i, s.Confidence)
		}
		if i > 0 && s.T <= samples[i-1].T {
			return fmt.Errorf("channel %s sample %d out of order: t=%v after t=%v", cameraID, i, s.T, samples[i-1].T)
		}
	}
	return nil
}
