package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasklyhq/taskly-api/internal/constants"
	"github.com/tasklyhq/taskly-api/internal/encryption"
	"github.com/tasklyhq/taskly-api/internal/mailer"
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"github.com/tasklyhq/taskly-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("an active account with this email already exists")
	ErrAccountDeactivated   = errors.New("an account with this email was previously deactivated")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUsernameLength       = errors.New("invalid username length")
	ErrUserNotFound         = errors.New("user not found")
	ErrResetTokenInvalid    = errors.New("reset token is invalid or expired")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles signup, login and password recovery.
type AuthService struct {
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	encryptor      *encryption.Encryptor
	mail           mailer.Mailer
	publicBaseURL  string
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	encryptor *encryption.Encryptor,
	mail mailer.Mailer,
	publicBaseURL string,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		encryptor:      encryptor,
		mail:           mail,
		publicBaseURL:  publicBaseURL,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// SignupResult carries the created user plus non-fatal warnings, such as a
// failed invitation claim.
type SignupResult struct {
	User     *models.User
	Warnings []string
}

// Signup creates a new user and claims any invitations that were sent to the
// address before the account existed.
//
// Uniqueness is checked against active users by plaintext and against
// deactivated accounts by ciphertext: an anonymized account still reserves
// its original email and username until it is reactivated or erased.
func (s *AuthService) Signup(input SignupInput) (*SignupResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if len(username) < constants.MinUsernameLength || len(username) > constants.MaxUsernameLength {
		return nil, ErrUsernameLength
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindActiveByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	encryptedEmail, err := s.encryptor.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt email: %w", err)
	}
	if _, err := s.userRepo.FindDeletedByCiphertext(encryptedEmail); err == nil {
		return nil, ErrAccountDeactivated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check deactivated accounts: %w", err)
	}

	if _, err := s.userRepo.FindActiveByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	encryptedUsername, err := s.encryptor.Encrypt(strings.ToLower(username))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt username: %w", err)
	}
	if _, err := s.userRepo.FindDeletedByCiphertext(encryptedUsername); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check deactivated accounts: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Image:        constants.DefaultProfileImage,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result := &SignupResult{User: user}

	// Attach invitations that were waiting for this address. The account is
	// already durable; a claim failure is a warning, never a signup failure.
	if err := s.membershipRepo.ClaimInvitations(user.ID, email); err != nil {
		result.Warnings = append(result.Warnings,
			"Some pending invitations could not be linked to your new account.")
	}

	return result, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindActiveByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	// Best effort; a failed timestamp update must not block the login.
	_ = s.userRepo.Update(user)

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ForgotPassword issues a reset token and mails the reset link. It succeeds
// silently when the address is unknown so that responses do not reveal which
// emails have accounts.
func (s *AuthService) ForgotPassword(email string) error {
	user, err := s.userRepo.FindActiveByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, hash, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiry := time.Now().Add(constants.ResetTokenTTL)
	user.ResetTokenHash = &hash
	user.ResetTokenExpiry = &expiry
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.publicBaseURL, token)
	msg := mailer.PasswordReset(user.Username, resetURL)
	if err := s.mail.Send(user.Email, msg.Subject, msg.PlainText, msg.HTMLBody); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.FindActiveByResetTokenHash(utils.HashResetToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetTokenHash = nil
	user.ResetTokenExpiry = nil
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
