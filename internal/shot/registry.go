package shot

import (
	"github.com/podops/autocut/internal/config"
)

// Registry resolves speakers and shot kinds to cameras for one session.
type Registry struct {
	closeups map[string]string // speaker -> closeup camera
	speakers map[string]string // closeup camera -> speaker
	wide     string
}

// NewRegistry builds the camera lookup from the configured camera list.
// The config is validated before it reaches here, so the default wide
// camera is known to exist.
func NewRegistry(cameras []config.CameraConfig, defaultWide string) *Registry {
	r := &Registry{
		closeups: map[string]string{},
		speakers: map[string]string{},
		wide:     defaultWide,
	}
	for _, cam := range cameras {
		if cam.Kind == config.KindCloseup {
			r.closeups[cam.Speaker] = cam.ID
			r.speakers[cam.ID] = cam.Speaker
		}
	}
	return r
}

// CloseupFor returns the closeup camera covering a speaker.
func (r *Registry) CloseupFor(speaker string) (string, bool) {
	cam, ok := r.closeups[speaker]
	return cam, ok
}

// SpeakerOf returns the speaker a closeup camera covers.
func (r *Registry) SpeakerOf(camera string) (string, bool) {
	spk, ok := r.speakers[camera]
	return spk, ok
}

// Wide returns the default wide camera.
func (r *Registry) Wide() string { return r.wide }
