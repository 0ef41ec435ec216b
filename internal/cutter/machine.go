package cutter

import (
	"context"

	"github.com/podops/autocut/internal/config"
	"github.com/podops/autocut/internal/logger"
	"github.com/podops/autocut/internal/shot"
)

// Machine is the cut decision state machine. It consumes the ranked
// candidate stream tick by tick and emits cut events, enforcing guard
// time, hysteresis and minimum shot length. It is fully deterministic:
// identical input and config produce identical events.
//
// States: stable (pending == nil) and pending-switch (pending != nil).
type Machine struct {
	guardTime  float64
	hysteresis float64
	minShot    float64

	initial   string
	current   string
	lastCut   float64
	everCut   bool
	pending   *pendingSwitch
	lastShown map[string]float64

	logger logger.Logger
}

// timeEps absorbs float accumulation error in tick timestamps so
// window comparisons land on the intended tick.
const timeEps = 1e-9

type pendingSwitch struct {
	cand     shot.Candidate
	since    float64
	deferred bool
}

// New creates a machine starting stable on the default wide camera at t=0.
func New(cfg config.EngineConfig, log logger.Logger) *Machine {
	return &Machine{
		guardTime:  cfg.GuardTime,
		hysteresis: cfg.HysteresisWindow,
		minShot:    cfg.MinShotLength,
		initial:    cfg.DefaultWideCamera,
		current:    cfg.DefaultWideCamera,
		lastShown:  map[string]float64{cfg.DefaultWideCamera: 0},
		logger:     log,
	}
}

// Current returns the camera currently on screen.
func (m *Machine) Current() string { return m.current }

// InitialCamera returns the camera the session opens on. It starts as
// the default wide camera and may be replaced once by startup adoption;
// after the first committed cut it is fixed.
func (m *Machine) InitialCamera() string { return m.initial }

// Step evaluates one tick. A non-nil result is a committed cut; nil
// means the current shot holds. An empty candidate list is a hold:
// it also cancels any pending switch.
func (m *Machine) Step(ctx context.Context, now float64, cands []shot.Candidate) *Event {
	top, ok := m.pickTop(cands)
	if !ok {
		m.pending = nil
		return nil
	}

	// A switch is normally only considered once the guard time since
	// the last cut has elapsed. Before the first cut there is one
	// exception: while the opening shot is still shorter than the
	// minimum shot length, a stable candidate replaces the initial
	// camera outright instead of cutting away from a shot the viewer
	// has barely seen.
	canConsider := now-m.lastCut >= m.guardTime-timeEps
	grace := !m.everCut && now < m.minShot

	if m.pending == nil {
		if top.Camera != m.current && (canConsider || grace) {
			m.pending = &pendingSwitch{cand: top, since: now}
		}
		return nil
	}

	if top.Camera == m.current {
		// The signal reverted before the hysteresis window elapsed;
		// the flicker is suppressed without ever cutting.
		m.pending = nil
		return nil
	}
	if top.Camera != m.pending.cand.Camera {
		// A third candidate took over; drop the pending switch and
		// re-evaluate from stable on the next tick.
		m.pending = nil
		return nil
	}

	if now-m.pending.since < m.hysteresis-timeEps {
		return nil
	}

	if !canConsider {
		if grace {
			m.adoptInitial(ctx, now, top.Camera)
		} else {
			// The grace window closed while this switch was pending
			// and the guard time still blocks a real cut.
			m.pending = nil
		}
		return nil
	}

	if now-m.lastCut < m.minShot-timeEps {
		// Committing now would leave the current shot too short.
		// Keep the candidate and retry until the minimum is met.
		m.pending.deferred = true
		return nil
	}

	reason := reasonFor(m.pending.cand)
	if m.pending.deferred {
		reason = ForcedMinDuration
	}

	ev := &Event{T: now, Camera: top.Camera, Reason: reason}
	m.logger.Debug(ctx, "Cut at t=%.2fs: %s -> %s (%s)", now, m.current, top.Camera, reason)

	m.lastShown[m.current] = now
	m.lastShown[top.Camera] = now
	m.current = top.Camera
	m.lastCut = now
	m.everCut = true
	m.pending = nil
	return ev
}

// adoptInitial rewrites the opening shot instead of emitting a cut.
// The guard time keeps running from session start, so the first real
// cut still respects it.
func (m *Machine) adoptInitial(ctx context.Context, now float64, camera string) {
	m.logger.Debug(ctx, "Adopting initial camera %s at t=%.2fs (was %s)", camera, now, m.current)
	m.lastShown[m.current] = now
	m.lastShown[camera] = now
	m.initial = camera
	m.current = camera
	m.pending = nil
}

// pickTop selects the highest-ranked candidate with a total order:
// score, then the active speaker's own closeup, then the camera shown
// least recently, then camera id.
func (m *Machine) pickTop(cands []shot.Candidate) (shot.Candidate, bool) {
	if len(cands) == 0 {
		return shot.Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if m.better(c, best) {
			best = c
		}
	}
	return best, true
}

func (m *Machine) better(a, b shot.Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	aSpk := a.Kind == shot.Closeup && a.Trigger == shot.TriggerSpeaker
	bSpk := b.Kind == shot.Closeup && b.Trigger == shot.TriggerSpeaker
	if aSpk != bSpk {
		return aSpk
	}
	if m.lastShown[a.Camera] != m.lastShown[b.Camera] {
		return m.lastShown[a.Camera] < m.lastShown[b.Camera]
	}
	return a.Camera < b.Camera
}

func reasonFor(c shot.Candidate) Reason {
	switch c.Trigger {
	case shot.TriggerSilence:
		return SilenceWide
	case shot.TriggerReaction:
		return ReactionShot
	}
	return SpeakerChange
}
