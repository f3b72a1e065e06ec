package decorator

import (
	"context"
	"time"

	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/srvcerror"
)

// WithCmdLogging logs the outcome and duration of every command handled by h.
func WithCmdLogging[P any](name string, h CmdHandler[P]) CmdHandler[P] {
	return cmdLogging[P]{name: name, next: h}
}

type cmdLogging[P any] struct {
	name string
	next CmdHandler[P]
}

func (d cmdLogging[P]) Handle(ctx context.Context, p P) error {
	start := time.Now()
	err := d.next.Handle(ctx, p)
	log := logger.FromContext(ctx).With("cmd", d.name, "took", time.Since(start))
	if err == nil {
		log.Debug("command handled")
		return nil
	}
	// validation and rate limit errors are the caller's fault
	switch srvcerror.CategoryOf(err) {
	case srvcerror.CategoryStorage, srvcerror.CategoryDatabase:
		log.Error("command failed", "error", err)
	default:
		log.Info("command rejected", "error", err)
	}
	return err
}
