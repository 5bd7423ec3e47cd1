package components

import (
	"order-checkout/internal/infra/db"
	"order-checkout/internal/infra/readstore"
	"order-checkout/internal/infra/writerepo"
	"order-checkout/internal/usecase/commands"
	"order-checkout/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			writerepo.NewInventoryRepository,
			fx.As(new(commands.InventoryRepository)),
		),
		fx.Annotate(
			writerepo.NewOrderRepository,
			fx.As(new(commands.OrderRepository)),
		),
		fx.Annotate(
			writerepo.NewIdempotencyRepository,
			fx.As(new(commands.IdempotencyRepository)),
		),
		// Read-side stores for queries
		fx.Annotate(
			readstore.NewInventoryReadStore,
			fx.As(new(queries.InventoryReadStore)),
		),
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
