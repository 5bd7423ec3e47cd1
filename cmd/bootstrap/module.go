package bootstrap

import (
	"order-checkout/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	MetricsModule,
	components.RepositoryModule,
	components.GatewayModule,
	components.UseCaseModule,
	components.WorkerModule,
	components.HandlerModule,
)
