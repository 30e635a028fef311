package commands

import (
	"context"
	"log/slog"

	"rentaldesk/internal/domain/user"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/pkg/errs"
	"rentaldesk/internal/pkg/jwt"
	"rentaldesk/internal/pkg/password"
	"rentaldesk/internal/usecase/queries"
	"rentaldesk/internal/usecase/shared"
)

var (
	ErrInvalidCredentials  = errs.New("invalid credentials")
	ErrInvalidRefreshToken = errs.New("invalid refresh token")
)

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *queries.AuthorizedUserView
}

type AuthCommands interface {
	Login(ctx context.Context, creds user.Credentials) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	userReads  queries.UserReadStore
	jwtService *jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, userReads queries.UserReadStore, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		userReads:  userReads,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, creds user.Credentials) (*LoginResult, error) {
	view, hashedPassword, err := a.userReads.FindByEmail(ctx, creds.Email().Value())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !view.IsActive {
		return nil, queries.ErrUserInactive
	}

	if err := password.ComparePassword(hashedPassword, creds.Password().Value()); err != nil {
		return nil, ErrInvalidCredentials
	}

	result, err := a.issueTokens(view)
	if err != nil {
		return nil, err
	}

	// Last-login bookkeeping must never block a successful login.
	if err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, view.ID)
	}); err != nil {
		slog.Warn("failed to update last login", "user_id", view.ID, "error", err.Error())
	}

	return result, nil
}

func (a *authCommandsImpl) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	view, err := a.userReads.FindByID(ctx, claims.UserID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !view.IsActive {
		return nil, queries.ErrUserInactive
	}

	return a.issueTokens(view)
}

func (a *authCommandsImpl) issueTokens(view *queries.AuthorizedUserView) (*LoginResult, error) {
	role, err := user.NewRole(view.Role)
	if err != nil {
		return nil, err
	}

	accessToken, err := a.jwtService.GenerateAccessToken(view.ID, role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := a.jwtService.GenerateRefreshToken(view.ID, role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         view,
	}, nil
}
