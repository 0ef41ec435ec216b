package timeline

import (
	"context"
	"testing"

	"github.com/podops/autocut/internal/config"
	"github.com/podops/autocut/internal/logger"
	"github.com/podops/autocut/pkg/bundle"
)

func engineConfig() config.EngineConfig {
	return config.EngineConfig{
		TickInterval:      0.1,
		ActivityThreshold: 0.35,
		SmoothingAlpha:    0.3,
		OverrideMargin:    0.2,
		SilenceToWide:     2.0,
		GuardTime:         3.0,
		HysteresisWindow:  0.6,
		MinShotLength:     2.0,
		Lookahead:         1.0,
		DefaultWideCamera: "wide",
	}
}

// constChannel builds a channel with constant confidence over [from, to).
func constChannel(camera, speaker string, conf, from, to float64) bundle.Channel {
	ch := bundle.Channel{CameraID: camera, SpeakerID: speaker}
	for t := from; t < to-1e-9; t += 0.1 {
		ch.Samples = append(ch.Samples, bundle.Sample{T: t, Confidence: conf})
	}
	return ch
}

func drain(t *testing.T, r *Resolver) []Sample {
	t.Helper()
	ctx := context.Background()
	var out []Sample
	for {
		s, ok := r.Next(ctx)
		if !ok {
			break
		}
		out = append(out, s)
	}
	return out
}

func sampleAt(t *testing.T, samples []Sample, at float64) Sample {
	t.Helper()
	for _, s := range samples {
		if s.T > at-0.05 && s.T < at+0.05 {
			return s
		}
	}
	t.Fatalf("no sample near t=%v", at)
	return Sample{}
}

func newLog() logger.Logger { return logger.New("error", "text") }

func TestResolverTicks(t *testing.T) {
	b := &bundle.Bundle{
		DurationSeconds: 3.0,
		Channels:        []bundle.Channel{constChannel("cam-host", "host", 0.9, 0, 3.0)},
	}
	r := NewResolver(engineConfig(), b, newLog())
	if r.Ticks() != 30 {
		t.Errorf("Ticks() = %d, want 30", r.Ticks())
	}
	if got := len(drain(t, r)); got != 30 {
		t.Errorf("emitted %d samples, want 30", got)
	}
}

func TestResolverSmoothingRampUp(t *testing.T) {
	b := &bundle.Bundle{
		DurationSeconds: 5.0,
		Channels:        []bundle.Channel{constChannel("cam-host", "host", 0.9, 0, 5.0)},
	}
	samples := drain(t, NewResolver(engineConfig(), b, newLog()))

	// First tick: one smoothing step of 0.9 is 0.27, below threshold.
	if s := samples[0]; s.Speaker != "" {
		t.Errorf("first tick speaker = %q, want silence while smoothing ramps", s.Speaker)
	}
	// By half a second the smoothed level is well above threshold.
	s := sampleAt(t, samples, 0.5)
	if s.Speaker != "host" {
		t.Errorf("speaker at t=0.5 = %q, want host", s.Speaker)
	}
	if s.Confidence <= 0.35 || s.Confidence > 0.9 {
		t.Errorf("confidence at t=0.5 = %v, want in (0.35, 0.9]", s.Confidence)
	}
}

func TestResolverBelowThresholdStaysSilent(t *testing.T) {
	b := &bundle.Bundle{
		DurationSeconds: 5.0,
		Channels:        []bundle.Channel{constChannel("cam-host", "host", 0.3, 0, 5.0)},
	}
	for _, s := range drain(t, NewResolver(engineConfig(), b, newLog())) {
		if s.Speaker != "" {
			t.Fatalf("speaker at t=%v = %q, want silence for sub-threshold signal", s.T, s.Speaker)
		}
	}
}

func TestResolverStrongerSpeakerWins(t *testing.T) {
	b := &bundle.Bundle{
		DurationSeconds: 5.0,
		Channels: []bundle.Channel{
			constChannel("cam-host", "host", 0.9, 0, 5.0),
			constChannel("cam-guest", "guest", 0.5, 0, 5.0),
		},
	}
	samples := drain(t, NewResolver(engineConfig(), b, newLog()))

	s := sampleAt(t, samples, 2.0)
	if s.Speaker != "host" {
		t.Errorf("speaker = %q, want host", s.Speaker)
	}
	if len(s.Active) != 2 {
		t.Fatalf("len(Active) = %d, want 2 (cross-talk)", len(s.Active))
	}
	if s.Active[0].Speaker != "host" || s.Active[1].Speaker != "guest" {
		t.Errorf("Active order = %v, want host first", s.Active)
	}
}

func TestResolverChannelGapDecaysToSilence(t *testing.T) {
	ch := constChannel("cam-host", "host", 0.9, 0, 1.0)
	// No data in [1.0, 5.0): treated as zero confidence, never fatal.
	b := &bundle.Bundle{DurationSeconds: 5.0, Channels: []bundle.Channel{ch}}
	samples := drain(t, NewResolver(engineConfig(), b, newLog()))

	if s := sampleAt(t, samples, 0.9); s.Speaker != "host" {
		t.Errorf("speaker at t=0.9 = %q, want host", s.Speaker)
	}
	if s := sampleAt(t, samples, 3.0); s.Speaker != "" {
		t.Errorf("speaker at t=3.0 = %q, want silence after channel gap", s.Speaker)
	}
}

func TestResolverAllChannelsMissing(t *testing.T) {
	b := &bundle.Bundle{
		DurationSeconds: 2.0,
		Channels:        []bundle.Channel{{CameraID: "cam-host", SpeakerID: "host"}},
	}
	samples := drain(t, NewResolver(engineConfig(), b, newLog()))

	if len(samples) != 20 {
		t.Fatalf("emitted %d samples, want 20", len(samples))
	}
	for _, s := range samples {
		if s.Speaker != "" || len(s.Active) != 0 {
			t.Fatalf("sample at t=%v not silent: %+v", s.T, s)
		}
	}
}

func TestResolverTurnOverride(t *testing.T) {
	// Audio says host at a middling confidence; diarization says guest.
	// The turn wins because the audio winner is not certain enough.
	b := &bundle.Bundle{
		DurationSeconds: 5.0,
		Channels: []bundle.Channel{
			constChannel("cam-host", "host", 0.6, 0, 5.0),
			constChannel("cam-guest", "guest", 0.1, 0, 5.0),
		},
		Turns: []bundle.Turn{{SpeakerID: "guest", Start: 0, End: 5.0}},
	}
	samples := drain(t, NewResolver(engineConfig(), b, newLog()))

	s := sampleAt(t, samples, 2.0)
	if s.Speaker != "guest" {
		t.Errorf("speaker = %q, want guest (turn override)", s.Speaker)
	}
	if s.Confidence < 0.35 {
		t.Errorf("confidence = %v, want at least the activity threshold", s.Confidence)
	}
	if len(s.Active) == 0 || s.Active[0].Speaker != "guest" {
		t.Errorf("Active = %v, want guest first", s.Active)
	}
}

func TestResolverTurnAgreesNoOverride(t *testing.T) {
	// A near-certain audio winner survives a disagreeing turn.
	b := &bundle.Bundle{
		DurationSeconds: 5.0,
		Channels:        []bundle.Channel{constChannel("cam-host", "host", 0.95, 0, 5.0)},
		Turns:           []bundle.Turn{{SpeakerID: "guest", Start: 0, End: 5.0}},
	}
	samples := drain(t, NewResolver(engineConfig(), b, newLog()))

	if s := sampleAt(t, samples, 4.0); s.Speaker != "host" {
		t.Errorf("speaker = %q, want host (audio winner above override margin)", s.Speaker)
	}
}

func TestResolverTurnOverridesSilence(t *testing.T) {
	// No audio at all, but a diarization turn covers the tick.
	b := &bundle.Bundle{
		DurationSeconds: 3.0,
		Channels:        []bundle.Channel{{CameraID: "cam-host", SpeakerID: "host"}},
		Turns:           []bundle.Turn{{SpeakerID: "host", Start: 1.0, End: 2.0}},
	}
	samples := drain(t, NewResolver(engineConfig(), b, newLog()))

	if s := sampleAt(t, samples, 0.5); s.Speaker != "" {
		t.Errorf("speaker at t=0.5 = %q, want silence before turn", s.Speaker)
	}
	if s := sampleAt(t, samples, 1.5); s.Speaker != "host" {
		t.Errorf("speaker at t=1.5 = %q, want host from turn", s.Speaker)
	}
	if s := sampleAt(t, samples, 2.5); s.Speaker != "" {
		t.Errorf("speaker at t=2.5 = %q, want silence after turn", s.Speaker)
	}
}

func TestResolverReactionLevels(t *testing.T) {
	b := &bundle.Bundle{
		DurationSeconds: 3.0,
		Channels:        []bundle.Channel{constChannel("cam-host", "host", 0.9, 0, 3.0)},
		Reactions: []bundle.Reaction{
			constReaction("cam-guest", 0.9, 0, 3.0),
		},
	}
	samples := drain(t, NewResolver(engineConfig(), b, newLog()))

	s := sampleAt(t, samples, 2.0)
	if lvl := s.Reactions["cam-guest"]; lvl < 0.35 {
		t.Errorf("reaction level = %v, want above threshold after smoothing", lvl)
	}
}

func constReaction(camera string, conf, from, to float64) bundle.Reaction {
	r := bundle.Reaction{CameraID: camera}
	for t := from; t < to-1e-9; t += 0.1 {
		r.Samples = append(r.Samples, bundle.Sample{T: t, Confidence: conf})
	}
	return r
}
