package components

import (
	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/pkg/clock"
	"rentaldesk/internal/pkg/config"
	"rentaldesk/internal/usecase"
	"rentaldesk/internal/usecase/commands"
	"rentaldesk/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	usecase.NewConflictScanner,
	usecase.NewResolutionExecutor,
	NewFailsafeConfig,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewTransitionCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewTransitionQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewFailsafeConfig(cfg config.Config) failsafe.Config {
	return failsafe.Config{
		RevenueThresholdCents:   cfg.Failsafe.RevenueThresholdCents,
		CustomerThreshold:       cfg.Failsafe.CustomerThreshold,
		HighValueThresholdCents: cfg.Failsafe.HighValueThresholdCents,
		RollbackWindow:          cfg.Failsafe.RollbackWindow,
	}
}
