package components

import (
	"rentaldesk/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(worker.StartRescanWorker),
)
