package services

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tasklyhq/taskly-api/internal/encryption"
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sentMail struct {
	To      string
	Subject string
}

// fakeMailer records outgoing mail and can be told to fail on demand.
type fakeMailer struct {
	sent     []sentMail
	failNext bool
}

func (m *fakeMailer) Send(to, subject, plainText, htmlBody string) error {
	if m.failNext {
		m.failNext = false
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

type serviceTestEnv struct {
	db             *gorm.DB
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	tasklistRepo   repository.TasklistRepository
	taskRepo       repository.TaskRepository
	mailer         *fakeMailer

	auth        *AuthService
	account     *AccountService
	invitations *InvitationService
	memberships *MembershipService
	tasklists   *TasklistService
	tasks       *TaskService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.DeletedUser{},
		&models.Tasklist{},
		&models.Membership{},
		&models.Task{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	iv := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))
	encryptor, err := encryption.New(key, iv)
	require.NoError(t, err)

	mail := &fakeMailer{}

	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	tasklistRepo := repository.NewTasklistRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return &serviceTestEnv{
		db:             db,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		tasklistRepo:   tasklistRepo,
		taskRepo:       taskRepo,
		mailer:         mail,
		auth:           NewAuthService(userRepo, membershipRepo, encryptor, mail, "http://localhost:8080"),
		account:        NewAccountService(userRepo, membershipRepo, tasklistRepo, encryptor, nil),
		invitations:    NewInvitationService(membershipRepo, userRepo, tasklistRepo, mail, "http://localhost:8080"),
		memberships:    NewMembershipService(membershipRepo),
		tasklists:      NewTasklistService(tasklistRepo, membershipRepo, taskRepo),
		tasks:          NewTaskService(taskRepo, membershipRepo, tasklistRepo),
	}
}

func (env *serviceTestEnv) createUser(t *testing.T, username, email string) *models.User {
	t.Helper()

	result, err := env.auth.Signup(SignupInput{
		Username: username,
		Email:    email,
		Password: "supersecret",
	})
	require.NoError(t, err)
	return result.User
}

func (env *serviceTestEnv) createList(t *testing.T, ownerID uint64, title string) *models.Tasklist {
	t.Helper()

	list, err := env.tasklists.Create(CreateInput{
		CallerID: ownerID,
		Title:    title,
	})
	require.NoError(t, err)
	return list
}

func (env *serviceTestEnv) addMember(t *testing.T, listID, userID uint64, role models.ListRole) *models.Membership {
	t.Helper()

	m := &models.Membership{
		ListID:           listID,
		UserID:           &userID,
		Role:             role,
		InvitationStatus: models.InvitationAccepted,
		IsActive:         true,
		InvitedAt:        time.Now(),
	}
	require.NoError(t, env.membershipRepo.Add(m))
	return m
}
