package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tasklyhq/taskly-api/internal/constants"
	"github.com/tasklyhq/taskly-api/internal/encryption"
	"github.com/tasklyhq/taskly-api/internal/images"
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrImageHostNotConfigured = errors.New("image host is not configured")
	ErrImageUploadFailed      = errors.New("failed to upload image")
)

// AccountService handles the account lifecycle: profile changes,
// deactivation with PII anonymization, and reactivation.
type AccountService struct {
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	tasklistRepo   repository.TasklistRepository
	encryptor      *encryption.Encryptor
	imageHost      images.Host
}

// NewAccountService creates a new AccountService. imageHost may be nil when
// no image host is configured; profile image updates are then rejected.
func NewAccountService(
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	tasklistRepo repository.TasklistRepository,
	encryptor *encryption.Encryptor,
	imageHost images.Host,
) *AccountService {
	return &AccountService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		tasklistRepo:   tasklistRepo,
		encryptor:      encryptor,
		imageHost:      imageHost,
	}
}

// DeactivateResult reports a completed deactivation. Warnings list the
// tasklists whose cleanup failed; the account itself is already anonymized.
type DeactivateResult struct {
	Warnings []string
}

// Deactivate anonymizes the account after verifying the password.
//
// The user row is rewritten in place with placeholder identity values, which
// frees the original email and username for new signups, while a DeletedUser
// row keeps the encrypted originals for a possible reactivation. Both writes
// happen in one transaction. Membership cleanup afterwards is best effort:
// owned lists are soft-deleted whole, other memberships are removed, and
// per-list failures are collected instead of aborting the remainder.
func (s *AccountService) Deactivate(userID uint64, password string) (*DeactivateResult, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	encryptedEmail, err := s.encryptor.Encrypt(strings.ToLower(user.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt email: %w", err)
	}
	encryptedUsername, err := s.encryptor.Encrypt(strings.ToLower(user.Username))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt username: %w", err)
	}

	archived := &models.DeletedUser{
		UserID:            user.ID,
		EmailEncrypted:    encryptedEmail,
		UsernameEncrypted: encryptedUsername,
		DeletedAt:         time.Now(),
	}

	user.Email = fmt.Sprintf("anonymoususer%d@email.com", user.ID)
	user.Username = fmt.Sprintf("anonymoususer%d", user.ID)
	user.IsActive = false

	if err := s.userRepo.ArchiveAndAnonymize(user, archived); err != nil {
		return nil, fmt.Errorf("failed to deactivate account: %w", err)
	}

	result := &DeactivateResult{}

	memberships, err := s.membershipRepo.ListForUser(userID)
	if err != nil {
		result.Warnings = append(result.Warnings,
			"Your tasklists could not be cleaned up. Please contact support.")
		return result, nil
	}

	for _, m := range memberships {
		if m.Role == models.RoleOwner {
			if err := s.tasklistRepo.SoftDelete(m.ListID); err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Tasklist %q could not be deleted.", m.Tasklist.Title))
			}
			continue
		}

		if _, err := s.membershipRepo.DeleteByListAndUser(m.ListID, userID); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Your membership in %q could not be removed.", m.Tasklist.Title))
		}
	}

	return result, nil
}

// Reactivate restores a deactivated account from its DeletedUser archive.
//
// The lookup encrypts the lowercased input and compares ciphertext, which
// works because the cipher is deterministic. Every failure path returns the
// same ErrInvalidCredentials so that responses cannot be used to probe which
// accounts exist.
func (s *AccountService) Reactivate(emailOrUsername, password string) (*models.User, error) {
	cipherText, err := s.encryptor.Encrypt(strings.ToLower(strings.TrimSpace(emailOrUsername)))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt lookup value: %w", err)
	}

	archived, err := s.userRepo.FindDeletedByCiphertext(cipherText)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up deactivated account: %w", err)
	}

	user, err := s.userRepo.FindByID(archived.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	username, err := s.encryptor.Decrypt(archived.UsernameEncrypted)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	email, err := s.encryptor.Decrypt(archived.EmailEncrypted)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user.Username = username
	user.Email = email
	user.IsActive = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to restore account: %w", err)
	}

	if err := s.userRepo.DeleteDeletedUser(archived.ID); err != nil {
		return nil, fmt.Errorf("failed to remove archive record: %w", err)
	}

	return user, nil
}

// UpdateUsername changes the username after the same uniqueness checks as
// signup, including anonymized accounts.
func (s *AccountService) UpdateUsername(userID uint64, newUsername string) (*models.User, error) {
	username := strings.TrimSpace(newUsername)
	if len(username) < constants.MinUsernameLength || len(username) > constants.MaxUsernameLength {
		return nil, ErrUsernameLength
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if existing, err := s.userRepo.FindActiveByUsername(username); err == nil {
		if existing.ID != userID {
			return nil, ErrUsernameTaken
		}
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

	user.Username = username
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update username: %w", err)
	}

	return user, nil
}

// UpdateEmail changes the email after the same uniqueness checks as signup.
func (s *AccountService) UpdateEmail(userID uint64, newEmail string) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(newEmail))
	if email == "" {
		return nil, errors.New("email is required")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if existing, err := s.userRepo.FindActiveByEmail(email); err == nil {
		if existing.ID != userID {
			return nil, ErrEmailTaken
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	encryptedEmail, err := s.encryptor.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt email: %w", err)
	}
	if _, err := s.userRepo.FindDeletedByCiphertext(encryptedEmail); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check deactivated accounts: %w", err)
	}

	user.Email = email
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update email: %w", err)
	}

	return user, nil
}

// UpdatePassword verifies the current password and sets a new one.
func (s *AccountService) UpdatePassword(userID uint64, currentPassword, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpdateProfileImage uploads a new profile image, stores its URL and removes
// the previous image from the host. The default image is shared between
// accounts and is never deleted.
func (s *AccountService) UpdateProfileImage(ctx context.Context, userID uint64, file io.Reader) (*models.User, error) {
	if s.imageHost == nil {
		return nil, ErrImageHostNotConfigured
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	url, err := s.imageHost.Upload(ctx, file)
	if err != nil {
		return nil, ErrImageUploadFailed
	}

	oldImage := user.Image
	user.Image = url
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile image: %w", err)
	}

	if oldImage != "" && oldImage != constants.DefaultProfileImage {
		// Best effort; an orphaned image on the host is not worth failing
		// the update over.
		_ = s.imageHost.Delete(ctx, images.PublicIDFromURL(oldImage))
	}

	return user, nil
}
