package components

import (
	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/infra/readstore"
	"rentaldesk/internal/infra/uow"
	"rentaldesk/internal/usecase/queries"
	"rentaldesk/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Read-side stores for queries
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			readstore.NewTransitionReadStore,
			fx.As(new(queries.TransitionReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
