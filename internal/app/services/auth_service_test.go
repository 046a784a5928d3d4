package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	"github.com/selin/labmatch/internal/pkg/auth"
)

const testDomain = "@campus.edu.tr"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "labmatch-test",
	})
}

func newAuthFixture() (AuthService, *fakeUserStore, *fakeTokenStore) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	svc := NewAuthService(users, tokens, newTestJWTService(), testDomain)
	return svc, users, tokens
}

func registerStudent(t *testing.T, svc AuthService, email, username string) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     email,
		Username:  username,
		Password:  "s3cretPass",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      models.RoleStudent,
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterRejectsForeignDomainBeforeAnyLookup(t *testing.T) {
	svc, users, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "ada@gmail.com",
		Username:  "ada",
		Password:  "s3cretPass",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      models.RoleStudent,
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidEmailDomain)
	require.Zero(t, users.calls, "a foreign-domain email must never reach the store")
}

func TestLoginRejectsForeignDomainBeforeAnyLookup(t *testing.T) {
	svc, users, _ := newAuthFixture()
	registerStudent(t, svc, "ada"+testDomain, "ada")
	users.calls = 0

	_, err := svc.Login(context.Background(), "eve@gmail.com", "s3cretPass")
	require.ErrorIs(t, err, apperrors.ErrInvalidEmailDomain)
	require.Zero(t, users.calls, "a foreign-domain email must never reach the store")
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "ada" + testDomain,
		Username:  "ada",
		Password:  "s3cretPass",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      models.RoleAdmin,
	})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()

	reg := registerStudent(t, svc, "ada"+testDomain, "ada")
	require.NotEmpty(t, reg.Token.AccessToken)
	require.NotEmpty(t, reg.Token.RefreshToken)
	require.Equal(t, "Bearer", reg.Token.TokenType)
	require.True(t, reg.User.SetupComplete)

	byEmail, err := svc.Login(context.Background(), "ada"+testDomain, "s3cretPass")
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, byEmail.User.ID)

	byUsername, err := svc.Login(context.Background(), "ada", "s3cretPass")
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, byUsername.User.ID)

	_, err = svc.Login(context.Background(), "ada", "wrongPass1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnknownUserMapsToInvalidCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), "nobody"+testDomain, "s3cretPass")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, users, _ := newAuthFixture()

	reg := registerStudent(t, svc, "ada"+testDomain, "ada")
	users.mu.Lock()
	users.users[reg.User.ID].IsActive = false
	users.mu.Unlock()

	_, err := svc.Login(context.Background(), "ada", "s3cretPass")
	require.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _, _ := newAuthFixture()

	reg := registerStudent(t, svc, "ada"+testDomain, "ada")
	first := reg.Token.RefreshToken

	rotated, err := svc.RefreshToken(context.Background(), first)
	require.NoError(t, err)
	require.NotEqual(t, first, rotated.RefreshToken)

	// The presented token was revoked during rotation
	_, err = svc.RefreshToken(context.Background(), first)
	require.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	// The replacement still works
	_, err = svc.RefreshToken(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	reg := registerStudent(t, svc, "ada"+testDomain, "ada")
	require.NoError(t, svc.Logout(context.Background(), reg.Token.RefreshToken))

	_, err := svc.RefreshToken(context.Background(), reg.Token.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestOAuthCallbackProvisionsStudentProfile(t *testing.T) {
	svc, _, _ := newAuthFixture()

	resp, err := svc.OAuthCallback(context.Background(), dto.OAuthCallbackRequest{
		ExternalID: "sub-123",
		Email:      "grace" + testDomain,
		FirstName:  "Grace",
		LastName:   "Hopper",
	})
	require.NoError(t, err)
	require.Equal(t, string(models.RoleStudent), resp.User.Role)
	require.False(t, resp.User.SetupComplete)

	// A repeat arrival signs into the same profile instead of creating another
	again, err := svc.OAuthCallback(context.Background(), dto.OAuthCallbackRequest{
		ExternalID: "sub-123",
		Email:      "grace" + testDomain,
		FirstName:  "Grace",
		LastName:   "Hopper",
	})
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, again.User.ID)
}

func TestOAuthCallbackRejectsForeignDomain(t *testing.T) {
	svc, users, _ := newAuthFixture()

	_, err := svc.OAuthCallback(context.Background(), dto.OAuthCallbackRequest{
		ExternalID: "sub-123",
		Email:      "grace@gmail.com",
		FirstName:  "Grace",
		LastName:   "Hopper",
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidEmailDomain)
	require.Zero(t, users.calls)
}

func TestOAuthCallbackDoesNotLinkCredentialAccounts(t *testing.T) {
	svc, _, _ := newAuthFixture()

	registerStudent(t, svc, "ada"+testDomain, "ada")

	_, err := svc.OAuthCallback(context.Background(), dto.OAuthCallbackRequest{
		ExternalID: "sub-456",
		Email:      "ada" + testDomain,
		FirstName:  "Ada",
		LastName:   "Lovelace",
	})
	require.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestCompleteSetupIsOneShot(t *testing.T) {
	svc, _, _ := newAuthFixture()

	resp, err := svc.OAuthCallback(context.Background(), dto.OAuthCallbackRequest{
		ExternalID: "sub-123",
		Email:      "grace" + testDomain,
		FirstName:  "Grace",
		LastName:   "Hopper",
	})
	require.NoError(t, err)

	setup := dto.CompleteSetupRequest{
		Username: "ghopper",
		Password: "s3cretPass",
		Role:     models.RoleTeacher,
	}
	profile, err := svc.CompleteSetup(context.Background(), resp.User.ID, setup)
	require.NoError(t, err)
	require.True(t, profile.SetupComplete)
	require.Equal(t, string(models.RoleTeacher), profile.Role)

	_, err = svc.CompleteSetup(context.Background(), resp.User.ID, setup)
	require.ErrorIs(t, err, apperrors.ErrSetupAlreadyDone)

	// The chosen credentials work for a password login afterwards
	login, err := svc.Login(context.Background(), "ghopper", "s3cretPass")
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, login.User.ID)
}

func TestCompleteSetupRejectedForRegisteredAccount(t *testing.T) {
	svc, _, _ := newAuthFixture()

	reg := registerStudent(t, svc, "ada"+testDomain, "ada")

	_, err := svc.CompleteSetup(context.Background(), reg.User.ID, dto.CompleteSetupRequest{
		Username: "ada2",
		Password: "s3cretPass",
		Role:     models.RoleStudent,
	})
	require.ErrorIs(t, err, apperrors.ErrSetupAlreadyDone)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newAuthFixture()

	reg := registerStudent(t, svc, "ada"+testDomain, "ada")

	year := 2027
	gpa := 3.6
	updated, err := svc.UpdateProfile(context.Background(), reg.User.ID, dto.UpdateProfileRequest{
		FirstName:      "Ada",
		LastName:       "King",
		Department:     "Computer Engineering",
		GraduationYear: &year,
		GPA:            &gpa,
	})
	require.NoError(t, err)
	require.Equal(t, "King", updated.LastName)
	require.NotNil(t, updated.GraduationYear)
	require.Equal(t, 2027, *updated.GraduationYear)

	profile, err := svc.GetProfile(context.Background(), reg.User.ID)
	require.NoError(t, err)
	require.Equal(t, "King", profile.LastName)
}
