package components

import (
	"order-checkout/internal/infra/gateway"
	"order-checkout/internal/pkg/config"
	"order-checkout/internal/usecase/commands"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			NewPaymentClient,
			fx.As(new(commands.PaymentGateway)),
		),
		fx.Annotate(
			NewCartClient,
			fx.As(new(commands.CartGateway)),
		),
	),
)

func NewPaymentClient(cfg config.Config) *gateway.PaymentClient {
	return gateway.NewPaymentClient(cfg.Payment)
}

func NewCartClient(cfg config.Config) *gateway.CartClient {
	return gateway.NewCartClient(cfg.Cart)
}
