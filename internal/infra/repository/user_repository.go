package repository

import (
	"context"
	"log/slog"

	"rentaldesk/internal/domain/user"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

type userRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewUserRepository(dbtx db.DBTX) shared.UserRepository {
	return &userRepository{db: dbtx, logger: slog.Default()}
}

const updateLastLoginQuery = `
UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`

func (r *userRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, updateLastLoginQuery, userID)
	if err != nil {
		return wrapDBErr(r.logger, "failed to update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "user not found", nil)
	}
	return nil
}

const roleByIDQuery = `SELECT role FROM users WHERE id = $1`

func (r *userRepository) RoleByID(ctx context.Context, userID uuid.UUID) (user.Role, error) {
	var roleStr string
	if err := r.db.QueryRow(ctx, roleByIDQuery, userID).Scan(&roleStr); err != nil {
		return "", wrapDBErr(r.logger, "failed to find user role", err)
	}

	role, err := user.NewRole(roleStr)
	if err != nil {
		return "", infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt user role", err)
	}
	return role, nil
}
