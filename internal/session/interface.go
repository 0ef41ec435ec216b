package session

import "context"

// Processor defines the interface for running one editing session
type Processor interface {
	Process(ctx context.Context, bundlePath string) error
}
