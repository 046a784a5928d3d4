package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/selin/labmatch/internal/app/models"
	appRepos "github.com/selin/labmatch/internal/app/repositories"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	pkgAuth "github.com/selin/labmatch/internal/pkg/auth"
)

// CreateDefaultData ensures a bootstrap admin account exists so a fresh
// deployment can be administered before any real user signs up.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger, emailDomain string) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default admin account...")

	adminEmail := "admin" + emailDomain
	if _, err := userRepo.GetUserByEmail(ctx, adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking for default admin account")
		return err
	}

	// Default credentials are for first boot only; deployments must rotate them
	hashed, err := pkgAuth.HashPassword("ChangeMe123")
	if err != nil {
		return err
	}

	username := "admin"
	admin := &appModels.User{
		Email:         adminEmail,
		Username:      &username,
		Password:      &hashed,
		FirstName:     "System",
		LastName:      "Administrator",
		Role:          appModels.RoleAdmin,
		EmailVerified: true,
		IsActive:      true,
		SetupComplete: true,
	}

	if _, err := userRepo.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) || errors.Is(err, apperrors.ErrUsernameExists) {
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating default admin account")
		return err
	}

	lgr.Info().Str("email", adminEmail).Msg("Default admin account created")
	return nil
}
