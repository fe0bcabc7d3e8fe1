package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tasklyhq/taskly-api/internal/constants"
	"github.com/tasklyhq/taskly-api/internal/database"
	"github.com/tasklyhq/taskly-api/internal/dto"
	"github.com/tasklyhq/taskly-api/internal/encryption"
	"github.com/tasklyhq/taskly-api/internal/middleware"
	"github.com/tasklyhq/taskly-api/internal/models"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"github.com/tasklyhq/taskly-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type listTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupListTestEnv(t *testing.T) listTestEnv {
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

	database.SetDB(db)

	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	iv := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))
	encryptor, err := encryption.New(key, iv)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	tasklistRepo := repository.NewTasklistRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo, membershipRepo, encryptor, noopMailer{}, "http://localhost:8080")
	invitationService := services.NewInvitationService(membershipRepo, userRepo, tasklistRepo, noopMailer{}, "http://localhost:8080")
	membershipService := services.NewMembershipService(membershipRepo)
	tasklistService := services.NewTasklistService(tasklistRepo, membershipRepo, taskRepo)

	authHandler := NewAuthHandler(authService)
	tasklistHandler := NewTasklistHandler(tasklistService)
	membershipHandler := NewMembershipHandler(membershipService, invitationService)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	api := r.Group("/api")
	api.POST("/auth/signup", authHandler.Signup)

	lists := api.Group("/lists")
	lists.Use(middleware.RequireAuth())
	lists.POST("", tasklistHandler.Create)

	member := lists.Group("/:id")
	member.Use(middleware.RequireListAccess())
	member.GET("/contributors", membershipHandler.Contributors)
	member.POST("/invitations", membershipHandler.Invite)
	member.POST("/leave", membershipHandler.Leave)

	invitations := api.Group("/invitations")
	invitations.Use(middleware.RequireAuth())
	invitations.GET("", membershipHandler.PendingInvitations)
	invitations.POST("/:listId/accept", membershipHandler.AcceptInvitation)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return listTestEnv{db: db, router: r}
}

// signupSession registers a user over HTTP and returns the session cookies.
func (env listTestEnv) signupSession(t *testing.T, username, email string) []*http.Cookie {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": "supersecret",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	return w.Result().Cookies()
}

func (env listTestEnv) do(t *testing.T, method, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestInvitationFlow_EndToEnd(t *testing.T) {
	env := setupListTestEnv(t)

	ownerCookies := env.signupSession(t, "owner", "owner@example.com")
	inviteeCookies := env.signupSession(t, "invitee", "invitee@example.com")

	// Owner creates a list.
	w := env.do(t, http.MethodPost, "/api/lists", map[string]string{"title": "Groceries"}, ownerCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var list dto.TasklistDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))

	// Owner invites the second user.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/lists/%d/invitations", list.ID), map[string]string{
		"email": "invitee@example.com",
		"role":  "contributor",
	}, ownerCookies)
	require.Equal(t, http.StatusCreated, w.Code)

	// The invitee sees the pending invitation.
	w = env.do(t, http.MethodGet, "/api/invitations", nil, inviteeCookies)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []dto.PendingInvitationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	require.Equal(t, "Groceries", pending[0].Title)

	// The list itself stays hidden until the invitation is accepted.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/lists/%d/contributors", list.ID), nil, inviteeCookies)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/invitations/%d/accept", list.ID), nil, inviteeCookies)
	require.Equal(t, http.StatusOK, w.Code)

	// Now both show up on the roster, owner first.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/lists/%d/contributors", list.ID), nil, inviteeCookies)
	require.Equal(t, http.StatusOK, w.Code)
	var contributors []dto.ContributorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contributors))
	require.Len(t, contributors, 2)
	require.Equal(t, "owner", contributors[0].Username)
	require.Equal(t, "invitee", contributors[1].Username)
}

func TestListAccess_OutsiderSees404(t *testing.T) {
	env := setupListTestEnv(t)

	ownerCookies := env.signupSession(t, "owner", "owner@example.com")
	outsiderCookies := env.signupSession(t, "outsider", "outsider@example.com")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]string{"title": "Private"}, ownerCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var list dto.TasklistDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))

	// Membership and existence are indistinguishable from outside.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/lists/%d/contributors", list.ID), nil, outsiderCookies)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/lists/424242/contributors", nil, outsiderCookies)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeave_OwnerForbidden(t *testing.T) {
	env := setupListTestEnv(t)

	ownerCookies := env.signupSession(t, "owner", "owner@example.com")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]string{"title": "Groceries"}, ownerCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var list dto.TasklistDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/lists/%d/leave", list.ID), nil, ownerCookies)
	require.Equal(t, http.StatusForbidden, w.Code)
}
