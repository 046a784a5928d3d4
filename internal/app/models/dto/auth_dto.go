package dto

import "github.com/selin/labmatch/internal/app/models"

// LoginRequest represents login credentials. The identifier accepts either
// the account email or the username chosen during setup.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterRequest represents a direct (non-OAuth) registration request
type RegisterRequest struct {
	Email     string      `json:"email" binding:"required,email"`
	Username  string      `json:"username" binding:"required"`
	Password  string      `json:"password" binding:"required,min=8"`
	FirstName string      `json:"firstName" binding:"required"`
	LastName  string      `json:"lastName" binding:"required"`
	Role      models.Role `json:"role" binding:"required"`
}

// OAuthCallbackRequest carries the identity asserted by the external
// provider after a successful authorization code exchange.
type OAuthCallbackRequest struct {
	ExternalID string `json:"externalId" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
}

// CompleteSetupRequest finishes a profile created through OAuth. It may be
// submitted exactly once per account.
type CompleteSetupRequest struct {
	Username       string      `json:"username" binding:"required"`
	Password       string      `json:"password" binding:"required,min=8"`
	Role           models.Role `json:"role" binding:"required"`
	Department     string      `json:"department,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	GraduationYear *int        `json:"graduationYear,omitempty"`
	GPA            *float64    `json:"gpa,omitempty"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName      string   `json:"firstName" binding:"required"`
	LastName       string   `json:"lastName" binding:"required"`
	Department     string   `json:"department,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	GraduationYear *int     `json:"graduationYear,omitempty"`
	GPA            *float64 `json:"gpa,omitempty"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID             int64    `json:"id"`
	Email          string   `json:"email"`
	Username       *string  `json:"username,omitempty"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Role           string   `json:"role"`
	Department     *string  `json:"department,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	GraduationYear *int     `json:"graduationYear,omitempty"`
	GPA            *float64 `json:"gpa,omitempty"`
	SetupComplete  bool     `json:"setupComplete"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// ToUserResponse maps a user model to its API representation
func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           string(u.Role),
		Department:     u.Department,
		Phone:          u.Phone,
		GraduationYear: u.GraduationYear,
		GPA:            u.GPA,
		SetupComplete:  u.SetupComplete,
	}
}
