package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tasklyhq/taskly-api/internal/models"
)

func TestDeactivate_AnonymizesAndCascades(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "victim", "victim@example.com")
	other := env.createUser(t, "other", "other@example.com")

	owned := env.createList(t, user.ID, "Owned List")
	shared := env.createList(t, other.ID, "Shared List")
	env.addMember(t, shared.ID, user.ID, models.RoleContributor)

	result, err := env.account.Deactivate(user.ID, "supersecret")
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	// Identity replaced in place; original values are gone from the row.
	reloaded, err := env.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("anonymoususer%d", user.ID), reloaded.Username)
	require.Equal(t, fmt.Sprintf("anonymoususer%d@email.com", user.ID), reloaded.Email)
	require.False(t, reloaded.IsActive)

	// The archive row holds ciphertext, not the raw address.
	var archived models.DeletedUser
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&archived).Error)
	require.NotEqual(t, "victim@example.com", archived.EmailEncrypted)
	require.NotEqual(t, "victim", archived.UsernameEncrypted)

	// The owned list is gone whole; the shared list survives without them.
	_, err = env.tasklistRepo.FindActiveByID(owned.ID)
	require.Error(t, err)

	_, err = env.tasklistRepo.FindActiveByID(shared.ID)
	require.NoError(t, err)
	role, err := env.membershipRepo.GetRole(user.ID, shared.ID)
	require.NoError(t, err)
	require.Nil(t, role)
	otherRole, err := env.membershipRepo.GetRole(other.ID, shared.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleOwner, *otherRole)
}

func TestDeactivate_WrongPassword(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "victim", "victim@example.com")

	_, err := env.account.Deactivate(user.ID, "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	reloaded, err := env.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	require.True(t, reloaded.IsActive)
	require.Equal(t, "victim", reloaded.Username)
}

func TestReactivate_RestoresIdentity(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "victim", "victim@example.com")
	_, err := env.account.Deactivate(user.ID, "supersecret")
	require.NoError(t, err)

	restored, err := env.account.Reactivate("victim@example.com", "supersecret")
	require.NoError(t, err)
	require.Equal(t, user.ID, restored.ID)
	require.Equal(t, "victim", restored.Username)
	require.Equal(t, "victim@example.com", restored.Email)
	require.True(t, restored.IsActive)

	// Archive row is consumed; a second reactivation cannot find it.
	_, err = env.account.Reactivate("victim@example.com", "supersecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestReactivate_ByUsername(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "victim", "victim@example.com")
	_, err := env.account.Deactivate(user.ID, "supersecret")
	require.NoError(t, err)

	restored, err := env.account.Reactivate("Victim", "supersecret")
	require.NoError(t, err)
	require.Equal(t, "victim", restored.Username)
}

func TestReactivate_GenericFailures(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "victim", "victim@example.com")
	_, err := env.account.Deactivate(user.ID, "supersecret")
	require.NoError(t, err)

	// Wrong password and unknown identifier answer identically.
	_, wrongPassword := env.account.Reactivate("victim@example.com", "wrongpassword")
	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)

	_, unknown := env.account.Reactivate("nobody@example.com", "supersecret")
	require.ErrorIs(t, unknown, ErrInvalidCredentials)
}

func TestSignup_DeactivatedEmailBlocked(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "victim", "victim@example.com")
	_, err := env.account.Deactivate(user.ID, "supersecret")
	require.NoError(t, err)

	// The plaintext is gone from the users table, but the ciphertext match
	// still reserves the address.
	_, err = env.auth.Signup(SignupInput{
		Username: "someoneelse",
		Email:    "victim@example.com",
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrAccountDeactivated)

	_, err = env.auth.Signup(SignupInput{
		Username: "victim",
		Email:    "fresh@example.com",
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSignup_DuplicateActive(t *testing.T) {
	env := setupServiceTestEnv(t)

	env.createUser(t, "victim", "victim@example.com")

	_, err := env.auth.Signup(SignupInput{
		Username: "other",
		Email:    "victim@example.com",
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.auth.Signup(SignupInput{
		Username: "victim",
		Email:    "other@example.com",
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "victim", "victim@example.com")
	_, err := env.account.Deactivate(user.ID, "supersecret")
	require.NoError(t, err)

	_, err = env.auth.Login(LoginInput{Username: "victim", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateUsername_TakenByDeactivated(t *testing.T) {
	env := setupServiceTestEnv(t)

	victim := env.createUser(t, "victim", "victim@example.com")
	_, err := env.account.Deactivate(victim.ID, "supersecret")
	require.NoError(t, err)

	user := env.createUser(t, "someone", "someone@example.com")
	_, err = env.account.UpdateUsername(user.ID, "victim")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUpdateUsername_SelfRename(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "someone", "someone@example.com")

	// Keeping the same name is not a collision with yourself.
	updated, err := env.account.UpdateUsername(user.ID, "someone")
	require.NoError(t, err)
	require.Equal(t, "someone", updated.Username)

	updated, err = env.account.UpdateUsername(user.ID, "newname")
	require.NoError(t, err)
	require.Equal(t, "newname", updated.Username)
}

func TestUpdatePassword(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "someone", "someone@example.com")

	require.ErrorIs(t,
		env.account.UpdatePassword(user.ID, "wrongpassword", "newpassword1"),
		ErrInvalidCredentials)
	require.ErrorIs(t,
		env.account.UpdatePassword(user.ID, "supersecret", "short"),
		ErrPasswordTooShort)

	require.NoError(t, env.account.UpdatePassword(user.ID, "supersecret", "newpassword1"))

	_, err := env.auth.Login(LoginInput{Username: "someone", Password: "newpassword1"})
	require.NoError(t, err)
}

func TestUpdateProfileImage_NoHost(t *testing.T) {
	env := setupServiceTestEnv(t)

	user := env.createUser(t, "someone", "someone@example.com")

	_, err := env.account.UpdateProfileImage(context.Background(), user.ID, nil)
	require.ErrorIs(t, err, ErrImageHostNotConfigured)
}
