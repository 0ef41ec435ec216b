package shot

import (
	"context"
	"math"
	"sort"

	"github.com/podops/autocut/internal/config"
	"github.com/podops/autocut/internal/logger"
	"github.com/podops/autocut/internal/timeline"
)

// Mapper turns each resolved activity sample into a ranked list of
// shot candidates. It keeps only the running silence duration as
// state; one instance per session.
type Mapper struct {
	reg *Registry

	threshold     float64
	silenceToWide float64
	tickInterval  float64
	window        int // look-ahead window in ticks

	silenceFor float64

	logger logger.Logger
}

// NewMapper creates a mapper for one session.
func NewMapper(cfg config.EngineConfig, reg *Registry, log logger.Logger) *Mapper {
	return &Mapper{
		reg:           reg,
		threshold:     cfg.ActivityThreshold,
		silenceToWide: cfg.SilenceToWide,
		tickInterval:  cfg.TickInterval,
		window:        int(math.Round(cfg.Lookahead / cfg.TickInterval)),
		logger:        log,
	}
}

// Map ranks the eligible cameras for one tick. ahead holds the next
// resolved samples up to the look-ahead window; it may be shorter near
// the end of the session. A nil result means no proposal: hold the
// current shot.
func (m *Mapper) Map(ctx context.Context, s timeline.Sample, ahead []timeline.Sample) []Candidate {
	if s.Speaker == "" {
		m.silenceFor += m.tickInterval
		if m.silenceFor <= m.silenceToWide {
			return nil
		}
		return []Candidate{{Camera: m.reg.Wide(), Kind: Wide, Score: 1.0, Trigger: TriggerSilence}}
	}
	m.silenceFor = 0

	if len(s.Active) >= 2 {
		return m.crossTalk(s)
	}

	cam, ok := m.reg.CloseupFor(s.Speaker)
	if !ok {
		// Active speaker is off-frame; fall back to the wide shot.
		m.logger.Debug(ctx, "No camera covers speaker %s at t=%.2fs, degrading to wide", s.Speaker, s.T)
		return []Candidate{{Camera: m.reg.Wide(), Kind: Wide, Score: 1.0, Trigger: TriggerSpeaker, Degraded: true}}
	}

	score := 1.0
	if m.isBlip(s.Speaker, ahead) {
		score = 0.4
	}

	cands := []Candidate{{Camera: cam, Kind: Closeup, Speaker: s.Speaker, Score: score, Trigger: TriggerSpeaker}}
	if rc, ok := m.reactionCandidate(s, cam); ok {
		cands = append(cands, rc)
	}
	cands = append(cands, Candidate{Camera: m.reg.Wide(), Kind: Wide, Score: 0.5, Trigger: TriggerSpeaker})
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
	return cands
}

// crossTalk ranks the wide shot first when several speakers talk over
// each other, keeping the individual closeups as weak alternatives.
func (m *Mapper) crossTalk(s timeline.Sample) []Candidate {
	cands := []Candidate{{Camera: m.reg.Wide(), Kind: Wide, Score: 1.0, Trigger: TriggerCrossTalk}}
	for _, sl := range s.Active {
		if cam, ok := m.reg.CloseupFor(sl.Speaker); ok {
			cands = append(cands, Candidate{Camera: cam, Kind: Closeup, Speaker: sl.Speaker, Score: 0.4, Trigger: TriggerCrossTalk})
		}
	}
	return cands
}

// reactionCandidate inserts a reaction shot of a listener whose camera
// shows strong reaction signal while a single speaker is talking.
func (m *Mapper) reactionCandidate(s timeline.Sample, speakerCam string) (Candidate, bool) {
	bestCam := ""
	bestLevel := 0.0
	for cam, lvl := range s.Reactions {
		if cam == speakerCam || lvl < m.threshold {
			continue
		}
		if _, ok := m.reg.SpeakerOf(cam); !ok {
			continue
		}
		if lvl > bestLevel || (lvl == bestLevel && cam < bestCam) {
			bestCam, bestLevel = cam, lvl
		}
	}
	if bestCam == "" {
		return Candidate{}, false
	}
	listener, _ := m.reg.SpeakerOf(bestCam)
	return Candidate{Camera: bestCam, Kind: Reaction, Speaker: listener, Score: 0.8, Trigger: TriggerReaction}, true
}

// isBlip demotes a speaker who is about to vanish: if the look-ahead
// window is fully available and the speaker is inactive for more than
// half of it, the closeup is not worth cutting to.
func (m *Mapper) isBlip(speaker string, ahead []timeline.Sample) bool {
	if m.window == 0 || len(ahead) < m.window {
		return false
	}
	inactive := 0
	for _, a := range ahead[:m.window] {
		if a.Speaker != speaker {
			inactive++
		}
	}
	return inactive > m.window/2
}
