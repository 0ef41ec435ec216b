package session

import (
	"github.com/podops/autocut/internal/config"
	"github.com/podops/autocut/internal/logger"
)

type implProcessor struct {
	cfg    *config.Config
	logger logger.Logger
}

// New creates a new Processor instance
func New(cfg *config.Config, log logger.Logger) Processor {
	return &implProcessor{
		cfg:    cfg,
		logger: log,
	}
}
