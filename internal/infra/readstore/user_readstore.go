package readstore

import (
	"context"
	"log/slog"

	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx, logger: slog.Default()}
}

const findUserByIDQuery = `
SELECT id, email, role, branch_id, last_login, is_active, created_at, updated_at
FROM users
WHERE id = $1`

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	view, _, err := s.scanUser(s.db.QueryRow(ctx, findUserByIDQuery, id), false)
	if err != nil {
		return nil, wrapReadErr(s.logger, "failed to find user", err)
	}
	return view, nil
}

const findUserByEmailQuery = `
SELECT id, email, role, branch_id, last_login, is_active, created_at, updated_at, password_hash
FROM users
WHERE email = $1`

func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	view, hashed, err := s.scanUser(s.db.QueryRow(ctx, findUserByEmailQuery, email), true)
	if err != nil {
		return nil, "", wrapReadErr(s.logger, "failed to find user by email", err)
	}
	return view, hashed, nil
}

func (s *UserReadStore) scanUser(row pgx.Row, withPassword bool) (*queries.AuthorizedUserView, string, error) {
	var (
		view   queries.AuthorizedUserView
		hashed string
	)

	dest := []any{&view.ID, &view.Email, &view.Role, &view.BranchID,
		&view.LastLogin, &view.IsActive, &view.CreatedAt, &view.UpdatedAt}
	if withPassword {
		dest = append(dest, &hashed)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, "", err
	}
	return &view, hashed, nil
}
