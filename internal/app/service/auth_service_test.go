package service

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthServiceTest(t *testing.T) (AuthService, repository.UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(
		userRepo,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	return authService, userRepo
}

func TestAuthService_Register(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		phone    string
		wantErr  error
	}{
		{
			name:     "Valid registration",
			email:    "test@example.com",
			password: "password123",
			userName: "Test User",
			phone:    "555-0100",
			wantErr:  nil,
		},
		{
			name:     "Password too short",
			email:    "short@example.com",
			password: "abc",
			userName: "Short",
			wantErr:  util.ErrPasswordTooShort,
		},
		{
			name:     "Duplicate email",
			email:    "test@example.com",
			password: "password456",
			userName: "Another User",
			phone:    "555-0199",
			wantErr:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(
				tt.email,
				tt.password,
				tt.userName,
				tt.phone,
			)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.userName, user.Name)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	// Register a user first
	email := "test@example.com"
	password := "password123"
	_, _, err := authService.Register(email, password, "Test User", "555-0100")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "Valid login",
			email:    email,
			password: password,
			wantErr:  nil,
		},
		{
			name:     "Wrong password",
			email:    email,
			password: "wrongpassword",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Non-existing user",
			email:    "notfound@example.com",
			password: "password123",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	// Register a user
	user, _, err := authService.Register(
		"test@example.com",
		"password123",
		"Test User",
		"555-0100",
	)
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  uint
		wantErr error
	}{
		{
			name:    "Existing user",
			userID:  user.ID,
			wantErr: nil,
		},
		{
			name:    "Non-existing user",
			userID:  9999,
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := authService.GetUserByID(tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, user.Email, found.Email)
				assert.Equal(t, user.Name, found.Name)
			}
		})
	}
}

func TestAuthService_PasswordSecurity(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	password := "mySecretPassword123"
	user, _, err := authService.Register(
		"test@example.com",
		password,
		"Test User",
		"555-0100",
	)
	require.NoError(t, err)

	// Password should be hashed
	assert.NotEqual(t, password, user.PasswordHash)
	assert.Contains(t, user.PasswordHash, "$2a$")
}

func TestAuthService_TokenGeneration(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, tokens, err := authService.Register(
		"test@example.com",
		"password123",
		"Test User",
		"555-0100",
	)
	require.NoError(t, err)

	// Tokens should be different
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

	// Tokens should be valid JWT format
	assert.Contains(t, tokens.AccessToken, ".")
	assert.Contains(t, tokens.RefreshToken, ".")

	// Login should generate new tokens
	_, newTokens, err := authService.Login("test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, newTokens.AccessToken)
	assert.NotEmpty(t, newTokens.RefreshToken)

	_ = user
}

func TestAuthService_Refresh(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("refresh@example.com", "password123", "Refresh", "")
	require.NoError(t, err)

	refreshed, err := authService.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = authService.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, userRepo := setupAuthServiceTest(t)

	user, _, err := authService.Register("profile@example.com", "password123", "Before", "555-0100")
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, ProfileUpdate{Name: "After", Address: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "555-0100", updated.Phone, "empty fields are left alone")

	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", stored.Address)

	_, err = authService.UpdateProfile(9999, ProfileUpdate{Name: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_LogoutWithoutRedis(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("logout@example.com", "password123", "Logout", "")
	require.NoError(t, err)

	assert.NoError(t, authService.Logout(context.Background(), tokens.AccessToken))
	assert.Error(t, authService.Logout(context.Background(), "garbage"))
}
