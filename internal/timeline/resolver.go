package timeline

import (
	"context"
	"math"
	"sort"

	"github.com/podops/autocut/internal/config"
	"github.com/podops/autocut/internal/logger"
	"github.com/podops/autocut/pkg/bundle"
)

// Resolver fuses per-channel activity signals and optional diarization
// turns into a single tick-aligned active-speaker stream. It is a
// single-pass iterator; one instance per session.
type Resolver struct {
	tickInterval   float64
	threshold      float64
	alpha          float64
	overrideMargin float64

	nTicks int
	tick   int

	channels  []*channelState
	reactions []*reactionState
	turns     []bundle.Turn
	turnIdx   int

	logger        logger.Logger
	warnedNoInput bool
}

type channelState struct {
	camera   string
	speaker  string
	raw      []float64
	covered  []bool
	smoothed float64
}

type reactionState struct {
	camera   string
	raw      []float64
	smoothed float64
}

// NewResolver builds a resolver for one session bundle. Channel samples
// are binned onto the tick grid; gaps read as zero confidence and
// exclude the channel from the vote for that tick.
func NewResolver(cfg config.EngineConfig, b *bundle.Bundle, log logger.Logger) *Resolver {
	nTicks := int(math.Ceil(b.DurationSeconds/cfg.TickInterval - 1e-9))

	r := &Resolver{
		tickInterval:   cfg.TickInterval,
		threshold:      cfg.ActivityThreshold,
		alpha:          cfg.SmoothingAlpha,
		overrideMargin: cfg.OverrideMargin,
		nTicks:         nTicks,
		turns:          b.Turns,
		logger:         log,
	}

	for _, ch := range b.Channels {
		cs := &channelState{
			camera:  ch.CameraID,
			speaker: ch.SpeakerID,
			raw:     make([]float64, nTicks),
			covered: make([]bool, nTicks),
		}
		for _, s := range ch.Samples {
			if idx := r.tickIndex(s.T); idx >= 0 {
				cs.raw[idx] = s.Confidence
				cs.covered[idx] = true
			}
		}
		r.channels = append(r.channels, cs)
	}

	for _, rc := range b.Reactions {
		rs := &reactionState{
			camera: rc.CameraID,
			raw:    make([]float64, nTicks),
		}
		for _, s := range rc.Samples {
			if idx := r.tickIndex(s.T); idx >= 0 {
				rs.raw[idx] = s.Confidence
			}
		}
		r.reactions = append(r.reactions, rs)
	}

	return r
}

func (r *Resolver) tickIndex(t float64) int {
	idx := int(math.Round(t / r.tickInterval))
	if idx < 0 || idx >= r.nTicks {
		return -1
	}
	return idx
}

// Ticks returns the total number of ticks this resolver will emit.
func (r *Resolver) Ticks() int { return r.nTicks }

// Next emits the resolved sample for the next tick. The second return
// value is false once the session is exhausted.
func (r *Resolver) Next(ctx context.Context) (Sample, bool) {
	if r.tick >= r.nTicks {
		return Sample{}, false
	}
	now := float64(r.tick) * r.tickInterval

	// Smooth every channel and collect per-speaker levels. A channel
	// with no data for this tick decays toward zero but casts no vote.
	anyInput := false
	levels := map[string]float64{}
	for _, ch := range r.channels {
		raw := 0.0
		voting := ch.covered[r.tick]
		if voting {
			raw = ch.raw[r.tick]
			anyInput = true
		}
		ch.smoothed = r.alpha*raw + (1-r.alpha)*ch.smoothed
		if !voting || ch.speaker == "" {
			continue
		}
		if ch.smoothed > levels[ch.speaker] {
			levels[ch.speaker] = ch.smoothed
		}
	}

	if !anyInput && len(r.channels) > 0 && !r.warnedNoInput {
		r.logger.Warn(ctx, "No channel data from t=%.2fs, emitting silence", now)
		r.warnedNoInput = true
	}

	var active []SpeakerLevel
	for spk, lvl := range levels {
		if lvl >= r.threshold {
			active = append(active, SpeakerLevel{Speaker: spk, Level: lvl})
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Level != active[j].Level {
			return active[i].Level > active[j].Level
		}
		return active[i].Speaker < active[j].Speaker
	})

	s := Sample{T: now, Reactions: r.reactionLevels()}
	if len(active) > 0 {
		s.Speaker = active[0].Speaker
		s.Confidence = active[0].Level
	}
	s.Active = active

	r.applyTurnOverride(&s, levels)

	r.tick++
	return s, true
}

// applyTurnOverride lets a diarization turn covering this tick win over
// the audio vote. Turns are treated as confidence 1.0, so the audio
// winner survives only when its own confidence is within the override
// margin of certainty.
func (r *Resolver) applyTurnOverride(s *Sample, levels map[string]float64) {
	for r.turnIdx < len(r.turns) && r.turns[r.turnIdx].End <= s.T {
		r.turnIdx++
	}
	var turn *bundle.Turn
	for i := r.turnIdx; i < len(r.turns); i++ {
		if r.turns[i].Start > s.T {
			break
		}
		if s.T < r.turns[i].End {
			turn = &r.turns[i]
			break
		}
	}
	if turn == nil || turn.SpeakerID == s.Speaker {
		return
	}
	if s.Confidence >= 1.0-r.overrideMargin {
		return
	}

	conf := levels[turn.SpeakerID]
	if conf < r.threshold {
		conf = r.threshold
	}
	s.Speaker = turn.SpeakerID
	s.Confidence = conf

	// Keep Active consistent with the override: the turn speaker leads.
	filtered := []SpeakerLevel{{Speaker: turn.SpeakerID, Level: conf}}
	for _, sl := range s.Active {
		if sl.Speaker != turn.SpeakerID {
			filtered = append(filtered, sl)
		}
	}
	s.Active = filtered
}

func (r *Resolver) reactionLevels() map[string]float64 {
	if len(r.reactions) == 0 {
		return nil
	}
	out := make(map[string]float64, len(r.reactions))
	for _, rs := range r.reactions {
		rs.smoothed = r.alpha*rs.raw[r.tick] + (1-r.alpha)*rs.smoothed
		out[rs.camera] = rs.smoothed
	}
	return out
}
