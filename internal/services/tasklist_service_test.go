package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tasklyhq/taskly-api/internal/models"
)

func TestTasklistCreate_OwnerMembership(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := env.createUser(t, "owner", "owner@example.com")
	list := env.createList(t, owner.ID, "Groceries")

	role, err := env.membershipRepo.GetRole(owner.ID, list.ID)
	require.NoError(t, err)
	require.NotNil(t, role)
	require.Equal(t, models.RoleOwner, *role)

	membership, err := env.membershipRepo.FindByListAndUser(list.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationAccepted, membership.InvitationStatus)
	require.True(t, membership.IsActive)
}

func TestTasklistCreate_TitleRequired(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := env.createUser(t, "owner", "owner@example.com")

	_, err := env.tasklists.Create(CreateInput{CallerID: owner.ID, Title: "   "})
	require.ErrorIs(t, err, ErrTitleRequired)
}

func TestTasklistGet_OutsiderForbidden(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := env.createUser(t, "owner", "owner@example.com")
	outsider := env.createUser(t, "outsider", "outsider@example.com")
	list := env.createList(t, owner.ID, "Groceries")

	_, err := env.tasklists.Get(outsider.ID, list.ID)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestTasklistGet_Detail(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := env.createUser(t, "owner", "owner@example.com")
	alice := env.createUser(t, "alice", "alice@example.com")
	list := env.createList(t, owner.ID, "Groceries")
	env.addMember(t, list.ID, alice.ID, models.RoleContributor)

	detail, err := env.tasklists.Get(alice.ID, list.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleContributor, detail.Role)
	require.Len(t, detail.Contributors, 2)
	require.Empty(t, detail.Tasks)
}

func TestTasklistSoftDelete_Cascade(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := env.createUser(t, "owner", "owner@example.com")
	alice := env.createUser(t, "alice", "alice@example.com")
	list := env.createList(t, owner.ID, "Groceries")
	env.addMember(t, list.ID, alice.ID, models.RoleContributor)

	require.NoError(t, env.tasklists.SoftDelete(owner.ID, list.ID))

	_, err := env.tasklistRepo.FindActiveByID(list.ID)
	require.Error(t, err)

	// Memberships died with the list.
	role, err := env.membershipRepo.GetRole(alice.ID, list.ID)
	require.NoError(t, err)
	require.Nil(t, role)
}

func TestTasklistSoftDelete_AdminForbidden(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := env.createUser(t, "owner", "owner@example.com")
	admin := env.createUser(t, "admin", "admin@example.com")
	list := env.createList(t, owner.ID, "Groceries")
	env.addMember(t, list.ID, admin.ID, models.RoleAdmin)

	require.ErrorIs(t, env.tasklists.SoftDelete(admin.ID, list.ID), ErrNotOwner)
}

func TestTasklistListForUser_SortByTitle(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := env.createUser(t, "owner", "owner@example.com")
	env.createList(t, owner.ID, "zeta")
	env.createList(t, owner.ID, "Alpha")

	summaries, err := env.tasklists.ListForUser(owner.ID, SortByTitle)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "Alpha", summaries[0].Tasklist.Title)
	require.Equal(t, "zeta", summaries[1].Tasklist.Title)
}

func TestTasklistListForUser_ExcludesPending(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := env.createUser(t, "owner", "owner@example.com")
	invitee := env.createUser(t, "invitee", "invitee@example.com")
	list := env.createList(t, owner.ID, "Groceries")

	_, err := env.invitations.Invite(InviteInput{
		CallerID: owner.ID,
		ListID:   list.ID,
		Email:    "invitee@example.com",
		Role:     models.RoleContributor,
	})
	require.NoError(t, err)

	summaries, err := env.tasklists.ListForUser(invitee.ID, SortByDate)
	require.NoError(t, err)
	require.Empty(t, summaries)
}
