package edl

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/podops/autocut/internal/cutter"
)

// Segment is one camera dwell in the final cut.
type Segment struct {
	Camera string  `json:"camera_id"`
	Start  float64 `json:"start_seconds"`
	End    float64 `json:"end_seconds"`
	Reason string  `json:"reason"`
}

// List is an edit decision list: contiguous segments covering the
// whole session, serialized as a JSON array for the renderer.
type List []Segment

// MalformedError indicates the built EDL violated its invariants.
// The state machine guarantees this never happens; the check is a
// regression guard and the error is fatal for the session.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "malformed EDL: " + e.Reason
}

// ReasonSessionStart marks the implicit opening segment on the default
// wide camera; it is not a committed cut.
const ReasonSessionStart = "session_start"

// Build pairs consecutive cut events into contiguous segments from t=0
// to the session end and validates the result. On validation failure no
// list is returned.
func Build(initialCamera string, events []cutter.Event, duration, minShot, tickInterval float64) (List, error) {
	list := List{{Camera: initialCamera, Start: 0, Reason: ReasonSessionStart}}
	for _, ev := range events {
		list[len(list)-1].End = ev.T
		list = append(list, Segment{Camera: ev.Camera, Start: ev.T, Reason: ev.Reason.String()})
	}
	list[len(list)-1].End = duration

	if err := list.Validate(duration, minShot, tickInterval); err != nil {
		return nil, err
	}
	return list, nil
}

// Validate enforces the EDL invariants: full coverage of the session
// with no gaps or overlaps, no zero-length segments, no consecutive
// segments on the same camera, and the minimum shot length for every
// segment except the first and last. Tolerance is half a tick.
func (l List) Validate(duration, minShot, tickInterval float64) error {
	if len(l) == 0 {
		return &MalformedError{Reason: "empty list"}
	}
	eps := tickInterval / 2

	if math.Abs(l[0].Start) > eps {
		return &MalformedError{Reason: fmt.Sprintf("first segment starts at %v, not 0", l[0].Start)}
	}
	if math.Abs(l[len(l)-1].End-duration) > eps {
		return &MalformedError{Reason: fmt.Sprintf("last segment ends at %v, session is %v", l[len(l)-1].End, duration)}
	}

	for i, seg := range l {
		if seg.End <= seg.Start {
			return &MalformedError{Reason: fmt.Sprintf("segment %d has end <= start (%v <= %v)", i, seg.End, seg.Start)}
		}
		if i > 0 {
			if math.Abs(seg.Start-l[i-1].End) > eps {
				return &MalformedError{Reason: fmt.Sprintf("segment %d not contiguous: starts at %v, previous ends at %v", i, seg.Start, l[i-1].End)}
			}
			if seg.Camera == l[i-1].Camera {
				return &MalformedError{Reason: fmt.Sprintf("segment %d repeats camera %s (no-op cut)", i, seg.Camera)}
			}
		}
		if i > 0 && i < len(l)-1 && seg.End-seg.Start < minShot-eps {
			return &MalformedError{Reason: fmt.Sprintf("segment %d shorter than minimum shot length: %v", i, seg.End-seg.Start)}
		}
	}

	return nil
}

// TotalDuration sums the segment durations.
func (l List) TotalDuration() float64 {
	total := 0.0
	for _, seg := range l {
		total += seg.End - seg.Start
	}
	return total
}

// WriteJSON serializes the list in the renderer's wire format.
func (l List) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}
