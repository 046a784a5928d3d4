package services

import (
	"context"
	"errors"
	"time"

	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	"github.com/selin/labmatch/internal/pkg/auth"
	"github.com/selin/labmatch/internal/pkg/logger"
	"github.com/selin/labmatch/internal/pkg/validation"
)

// userStore is the persistence surface the auth service needs
type userStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	CompleteSetup(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID int64) error
}

type tokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// AuthService defines authentication operations
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, identifier, password string) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	OAuthCallback(ctx context.Context, req dto.OAuthCallbackRequest) (*dto.AuthResponse, error)
	CompleteSetup(ctx context.Context, userID int64, req dto.CompleteSetupRequest) (*dto.UserResponse, error)
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type authServiceImpl struct {
	users       userStore
	tokens      tokenStore
	jwtService  *auth.JWTService
	emailDomain string
}

// NewAuthService creates a new AuthService
func NewAuthService(users userStore, tokens tokenStore, jwtService *auth.JWTService, emailDomain string) AuthService {
	return &authServiceImpl{
		users:       users,
		tokens:      tokens,
		jwtService:  jwtService,
		emailDomain: emailDomain,
	}
}

// Register creates a new account with credentials chosen up front.
// The institutional domain check runs before anything else touches the email.
func (s *authServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := validation.ValidateInstitutionalEmail(req.Email, s.emailDomain); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.Role != models.RoleStudent && req.Role != models.RoleTeacher {
		return nil, apperrors.NewBadRequestError("Role must be STUDENT or TEACHER")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	username := req.Username
	user := &models.User{
		Email:         req.Email,
		Username:      &username,
		Password:      &hashed,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          req.Role,
		IsActive:      true,
		SetupComplete: true,
	}

	user, err = s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User registered")

	return s.issueTokens(ctx, user)
}

// Login authenticates by email or username
func (s *authServiceImpl) Login(ctx context.Context, identifier, password string) (*dto.AuthResponse, error) {
	var user *models.User
	var err error

	if validation.ValidateEmailFormat(identifier) == nil {
		// Email sign-in enforces the institutional domain before any lookup
		if err := validation.ValidateInstitutionalEmail(identifier, s.emailDomain); err != nil {
			return nil, err
		}
		user, err = s.users.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if user.Password == nil {
		// OAuth-only account that never finished setup
		return nil, apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPassword(*user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a refresh token and returns a fresh pair
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, _, err := s.tokens.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	// Rotation: the presented token is revoked before a new one is issued
	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &resp.Token, nil
}

// Logout revokes the presented refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeToken(ctx, refreshToken)
}

// OAuthCallback signs in (or provisions) a profile for a provider-verified
// identity. First-time arrivals get a STUDENT profile that must complete the
// setup flow before it can hold a username or password.
func (s *authServiceImpl) OAuthCallback(ctx context.Context, req dto.OAuthCallbackRequest) (*dto.AuthResponse, error) {
	if err := validation.ValidateInstitutionalEmail(req.Email, s.emailDomain); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByExternalID(ctx, req.ExternalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}

		// Same email registered through the credentials path is a conflict,
		// not an implicit account link
		if _, emailErr := s.users.GetUserByEmail(ctx, req.Email); emailErr == nil {
			return nil, apperrors.ErrEmailAlreadyExists
		} else if !errors.Is(emailErr, apperrors.ErrUserNotFound) {
			return nil, emailErr
		}

		externalID := req.ExternalID
		user = &models.User{
			Email:         req.Email,
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Role:          models.RoleStudent,
			ExternalID:    &externalID,
			EmailVerified: true,
			IsActive:      true,
			SetupComplete: false,
		}
		user, err = s.users.CreateUser(ctx, user)
		if err != nil {
			return nil, err
		}
		logger.Info().Int64("userID", user.ID).Msg("Provisioned profile from OAuth identity")
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	return s.issueTokens(ctx, user)
}

// CompleteSetup finishes an OAuth-provisioned profile. It is one-shot: a
// second submission fails regardless of payload.
func (s *authServiceImpl) CompleteSetup(ctx context.Context, userID int64, req dto.CompleteSetupRequest) (*dto.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SetupComplete {
		return nil, apperrors.ErrSetupAlreadyDone
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.Role != models.RoleStudent && req.Role != models.RoleTeacher {
		return nil, apperrors.NewBadRequestError("Role must be STUDENT or TEACHER")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	username := req.Username
	user.Username = &username
	user.Password = &hashed
	user.Role = req.Role
	if req.Department != "" {
		user.Department = &req.Department
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	user.GraduationYear = req.GraduationYear
	user.GPA = req.GPA

	if err := s.users.CompleteSetup(ctx, user); err != nil {
		return nil, err
	}
	user.SetupComplete = true

	logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("Account setup completed")

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// GetProfile returns the caller's profile
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile updates the caller's mutable profile fields
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID int64, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if req.Department != "" {
		user.Department = &req.Department
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	if req.GraduationYear != nil {
		user.GraduationYear = req.GraduationYear
	}
	if req.GPA != nil {
		user.GPA = req.GPA
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.CreateToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(expiresIn),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: int64(refreshExpiresIn),
		},
		User: dto.ToUserResponse(user),
	}, nil
}
