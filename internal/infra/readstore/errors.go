package readstore

import (
	"errors"
	"log/slog"

	"rentaldesk/internal/infra"

	"github.com/jackc/pgx/v5"
)

func wrapReadErr(logger *slog.Logger, msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return infra.WrapRepoErr(logger, infra.KindNotFound, msg, err)
	}
	return infra.WrapRepoErr(logger, infra.KindDBFailure, msg, err)
}
