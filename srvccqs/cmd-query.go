// Package decorator holds the command handler shape shared by the services
// and the decorators wrapped around it.
package decorator

import "context"

// CmdHandler changes state and reports only success or failure.
// P is the command parameters.
type CmdHandler[P any] interface {
	Handle(ctx context.Context, p P) error
}

// CmdHandlerFunc adapts a plain function to CmdHandler.
type CmdHandlerFunc[P any] func(ctx context.Context, p P) error

func (f CmdHandlerFunc[P]) Handle(ctx context.Context, p P) error {
	return f(ctx, p)
}
