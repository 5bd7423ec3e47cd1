package components

import (
	"context"

	"order-checkout/internal/usecase/commands"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		commands.NewIdempotencyCleaner,
	),
	fx.Invoke(runIdempotencyCleaner),
)

// runIdempotencyCleaner ties the background sweep loop to the fx lifecycle:
// started with the app, stopped (and drained) on shutdown.
func runIdempotencyCleaner(lc fx.Lifecycle, cleaner *commands.IdempotencyCleaner) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				cleaner.Run(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
