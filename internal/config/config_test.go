package config

import (
	"errors"
	"os"
	"testing"
)

func validCameras() []CameraConfig {
	return []CameraConfig{
		{ID: "cam-host", Kind: "closeup", Speaker: "host"},
		{ID: "cam-guest", Kind: "closeup", Speaker: "guest"},
		{ID: "wide", Kind: "wide"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Engine:  EngineConfig{DefaultWideCamera: "wide"},
				Cameras: validCameras(),
			},
			wantErr: false,
		},
		{
			name: "missing default wide camera",
			config: Config{
				Cameras: validCameras(),
			},
			wantErr: true,
		},
		{
			name: "default wide camera not declared",
			config: Config{
				Engine:  EngineConfig{DefaultWideCamera: "drone"},
				Cameras: validCameras(),
			},
			wantErr: true,
		},
		{
			name: "default wide camera is a closeup",
			config: Config{
				Engine:  EngineConfig{DefaultWideCamera: "cam-host"},
				Cameras: validCameras(),
			},
			wantErr: true,
		},
		{
			name: "no cameras",
			config: Config{
				Engine: EngineConfig{DefaultWideCamera: "wide"},
			},
			wantErr: true,
		},
		{
			name: "closeup without speaker",
			config: Config{
				Engine: EngineConfig{DefaultWideCamera: "wide"},
				Cameras: []CameraConfig{
					{ID: "cam-host", Kind: "closeup"},
					{ID: "wide", Kind: "wide"},
				},
			},
			wantErr: true,
		},
		{
			name: "duplicate camera id",
			config: Config{
				Engine: EngineConfig{DefaultWideCamera: "wide"},
				Cameras: []CameraConfig{
					{ID: "wide", Kind: "wide"},
					{ID: "wide", Kind: "wide"},
				},
			},
			wantErr: true,
		},
		{
			name: "negative threshold",
			config: Config{
				Engine:  EngineConfig{DefaultWideCamera: "wide", ActivityThreshold: -0.1},
				Cameras: validCameras(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("Validate() returned %T, want *ValidationError", err)
				}
			}
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Config{
		Engine:  EngineConfig{DefaultWideCamera: "wide"},
		Cameras: validCameras(),
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Engine.TickInterval != 0.1 {
		t.Errorf("TickInterval = %v, want 0.1", cfg.Engine.TickInterval)
	}
	if cfg.Engine.ActivityThreshold != 0.35 {
		t.Errorf("ActivityThreshold = %v, want 0.35", cfg.Engine.ActivityThreshold)
	}
	if cfg.Engine.GuardTime != 3.0 {
		t.Errorf("GuardTime = %v, want 3.0", cfg.Engine.GuardTime)
	}
	if cfg.Engine.HysteresisWindow != 0.6 {
		t.Errorf("HysteresisWindow = %v, want 0.6", cfg.Engine.HysteresisWindow)
	}
	if cfg.Engine.MinShotLength != 2.0 {
		t.Errorf("MinShotLength = %v, want 2.0", cfg.Engine.MinShotLength)
	}
	if cfg.Performance.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %v, want 2", cfg.Performance.MaxConcurrent)
	}
}

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
engine:
  guard_time_seconds: 1.5
  default_wide_camera: wide

cameras:
  - id: cam-host
    kind: closeup
    speaker: host
  - id: wide
    kind: wide

paths:
  inbox: data/inbox
  output: data/output

logging:
  level: info
  format: text
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test loading
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.GuardTime != 1.5 {
		t.Errorf("GuardTime = %v, want %v", cfg.Engine.GuardTime, 1.5)
	}
	if cfg.Engine.DefaultWideCamera != "wide" {
		t.Errorf("DefaultWideCamera = %v, want %v", cfg.Engine.DefaultWideCamera, "wide")
	}
	if cfg.Paths.Inbox != "data/inbox" {
		t.Errorf("Inbox = %v, want %v", cfg.Paths.Inbox, "data/inbox")
	}
	// Defaults filled for keys not in the file
	if cfg.Engine.MinShotLength != 2.0 {
		t.Errorf("MinShotLength = %v, want 2.0", cfg.Engine.MinShotLength)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
