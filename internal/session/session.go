package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/podops/autocut/internal/cutter"
	"github.com/podops/autocut/internal/edl"
	"github.com/podops/autocut/internal/shot"
	"github.com/podops/autocut/internal/timeline"
	"github.com/podops/autocut/pkg/bundle"
)

// Process runs the full auto-edit pipeline for one session bundle:
// resolve speaker activity, rank shot candidates, decide cuts and
// write the EDL. The session either produces a complete valid EDL
// file or fails without writing anything.
func (p *implProcessor) Process(ctx context.Context, bundlePath string) error {
	startTime := time.Now()
	name := filepath.Base(bundlePath)

	b, err := bundle.Load(bundlePath)
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}

	runID := b.SessionID
	if runID == "" {
		runID = uuid.NewString()
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting auto-edit session %s: %s", runID, bundlePath)
	p.logger.Info(ctx, "Duration: %.1fs, channels: %d, turns: %d", b.DurationSeconds, len(b.Channels), len(b.Turns))
	p.logger.Info(ctx, "========================================")

	list, err := p.run(ctx, b)
	if err != nil {
		return fmt.Errorf("session %s: %w", runID, err)
	}

	outputPath := filepath.Join(p.cfg.Paths.Output, strings.TrimSuffix(name, filepath.Ext(name))+".edl.json")
	if err := p.writeEDL(list, outputPath); err != nil {
		return fmt.Errorf("write edl: %w", err)
	}

	if err := p.moveToArchived(ctx, bundlePath); err != nil {
		p.logger.Warn(ctx, "Failed to move bundle to archived folder: %v", err)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Session %s completed successfully!", runID)
	p.logger.Info(ctx, "Output EDL: %s (%d segments)", outputPath, len(list))
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return nil
}

// run executes the single-pass decision loop. The only buffering is
// the look-ahead window the mapper needs.
func (p *implProcessor) run(ctx context.Context, b *bundle.Bundle) (edl.List, error) {
	eng := p.cfg.Engine

	p.fillChannelSpeakers(b)

	reg := shot.NewRegistry(p.cfg.Cameras, eng.DefaultWideCamera)
	resolver := timeline.NewResolver(eng, b, p.logger)
	mapper := shot.NewMapper(eng, reg, p.logger)
	machine := cutter.New(eng, p.logger)

	window := int(eng.Lookahead/eng.TickInterval + 0.5)

	var buf []timeline.Sample
	var events []cutter.Event
	for {
		for len(buf) < window+1 {
			s, ok := resolver.Next(ctx)
			if !ok {
				break
			}
			buf = append(buf, s)
		}
		if len(buf) == 0 {
			break
		}
		s := buf[0]
		buf = buf[1:]

		cands := mapper.Map(ctx, s, buf)
		if ev := machine.Step(ctx, s.T, cands); ev != nil {
			events = append(events, *ev)
		}
	}

	list, err := edl.Build(machine.InitialCamera(), events, b.DurationSeconds, eng.MinShotLength, eng.TickInterval)
	if err != nil {
		return nil, fmt.Errorf("build edl: %w", err)
	}
	return list, nil
}

// fillChannelSpeakers maps unlabeled channels to speakers via the
// camera registry, so a closeup's audio channel votes for its speaker
// even when the extractor did not label it.
func (p *implProcessor) fillChannelSpeakers(b *bundle.Bundle) {
	bySpeakerCam := map[string]string{}
	for _, cam := range p.cfg.Cameras {
		if cam.Speaker != "" {
			bySpeakerCam[cam.ID] = cam.Speaker
		}
	}
	for i := range b.Channels {
		if b.Channels[i].SpeakerID == "" {
			b.Channels[i].SpeakerID = bySpeakerCam[b.Channels[i].CameraID]
		}
	}
}

// writeEDL writes the EDL only after the full list validated; a failed
// session leaves no partial output behind.
func (p *implProcessor) writeEDL(list edl.List, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := list.WriteJSON(f); err != nil {
		return fmt.Errorf("encode edl: %w", err)
	}
	return nil
}

// moveToArchived moves a consumed bundle out of the inbox
func (p *implProcessor) moveToArchived(ctx context.Context, bundlePath string) error {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return fmt.Errorf("create archived dir: %w", err)
	}

	destPath := filepath.Join(p.cfg.Paths.Archived, filepath.Base(bundlePath))
	p.logger.Debug(ctx, "Archiving bundle: %s -> %s", bundlePath, destPath)

	if err := os.Rename(bundlePath, destPath); err != nil {
		return fmt.Errorf("move to archived: %w", err)
	}
	return nil
}
