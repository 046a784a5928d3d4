package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	"github.com/selin/labmatch/internal/pkg/dberrors"
	"github.com/selin/labmatch/internal/pkg/logger"
)

// userColumns is the canonical column list scanned by scanUser
var userColumns = []string{
	"id", "email", "username", "password", "first_name", "last_name", "role",
	"department", "phone", "graduation_year", "gpa", "external_id",
	"email_verified", "is_active", "setup_complete",
	"created_at", "updated_at", "last_login_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Password, &u.FirstName, &u.LastName, &u.Role,
		&u.Department, &u.Phone, &u.GraduationYear, &u.GPA, &u.ExternalID,
		&u.EmailVerified, &u.IsActive, &u.SetupComplete,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user and returns it with the generated ID
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	sql, args, err := r.sb.Insert("users").
		Columns("email", "username", "password", "first_name", "last_name", "role",
			"department", "phone", "graduation_year", "gpa", "external_id",
			"email_verified", "is_active", "setup_complete", "created_at", "updated_at").
		Values(user.Email, user.Username, user.Password, user.FirstName, user.LastName, user.Role,
			user.Department, user.Phone, user.GraduationYear, user.GPA, user.ExternalID,
			user.EmailVerified, user.IsActive, user.SetupComplete, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return nil, fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsDuplicateConstraintError(err, "users_username_key") {
			return nil, apperrors.ErrUsernameExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("id", id).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"email": email})
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"username": username})
}

// GetUserByExternalID retrieves a user by the identity-provider subject
func (r *UserRepository) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"external_id": externalID})
}

func (r *UserRepository) getUserWhere(ctx context.Context, pred squirrel.Eq) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(pred).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// UpdateProfile updates the mutable profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("department", user.Department).
		Set("phone", user.Phone).
		Set("graduation_year", user.GraduationYear).
		Set("gpa", user.GPA).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", user.ID).Msg("Error executing update profile query")
		return fmt.Errorf("error updating profile: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// CompleteSetup assigns the username, credentials and role chosen during the
// one-time setup flow. The WHERE clause guards against repeated submission;
// zero affected rows means setup was already completed (or the user is gone).
func (r *UserRepository) CompleteSetup(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Update("users").
		Set("username", user.Username).
		Set("password", user.Password).
		Set("role", user.Role).
		Set("department", user.Department).
		Set("phone", user.Phone).
		Set("graduation_year", user.GraduationYear).
		Set("gpa", user.GPA).
		Set("setup_complete", true).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": user.ID, "setup_complete": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build complete setup query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_username_key") {
			return apperrors.ErrUsernameExists
		}
		logger.Error().Err(err).Int64("id", user.ID).Msg("Error executing complete setup query")
		return fmt.Errorf("error completing setup: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSetupAlreadyDone
	}

	return nil
}

// UpdateLastLogin records a successful login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("id", userID).Msg("Error updating last login")
		return fmt.Errorf("error updating last login: %w", err)
	}

	return nil
}
