package infra

import (
	"errors"
	"fmt"
	"log/slog"

	"rentaldesk/internal/pkg/errs"
)

type RepositoryErrorKind string

const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindVersionConflict    RepositoryErrorKind = "VERSION_CONFLICT"
)

// RepositoryError classifies a persistence failure. Usecases branch on the
// kind via IsKind and never see driver-level error types.
type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.msg, e.err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr logs the failure at the infra boundary and returns it classified.
func WrapRepoErr(logger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	logger.Error("repository error: "+msg, slog.String("kind", string(kind)))

	if err != nil {
		err = errs.Wrap(err, msg)
	}
	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var repoErr RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.Kind == kind
	}
	return false
}
