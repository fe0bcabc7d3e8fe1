package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/tasklyhq/taskly-api/internal/config"
	"github.com/tasklyhq/taskly-api/internal/constants"
	"github.com/tasklyhq/taskly-api/internal/database"
	"github.com/tasklyhq/taskly-api/internal/encryption"
	"github.com/tasklyhq/taskly-api/internal/handlers"
	"github.com/tasklyhq/taskly-api/internal/images"
	"github.com/tasklyhq/taskly-api/internal/mailer"
	"github.com/tasklyhq/taskly-api/internal/middleware"
	"github.com/tasklyhq/taskly-api/internal/repository"
	"github.com/tasklyhq/taskly-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	encryptor, err := encryption.New(cfg.EncryptionKey, cfg.EncryptionIV)
	if err != nil {
		log.Fatalf("Failed to initialize encryption: %v", err)
	}

	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SenderName, cfg.SenderEmail)

	// Image hosting is optional; without it profile image updates are
	// rejected with a clear error.
	var imageHost images.Host
	if cfg.CloudinaryURL != "" {
		host, err := images.NewCloudinaryHost(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("Failed to initialize image host: %v", err)
		}
		imageHost = host
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	tasklistRepo := repository.NewTasklistRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo, membershipRepo, encryptor, mail, cfg.PublicBaseURL)
	accountService := services.NewAccountService(userRepo, membershipRepo, tasklistRepo, encryptor, imageHost)
	invitationService := services.NewInvitationService(membershipRepo, userRepo, tasklistRepo, mail, cfg.PublicBaseURL)
	membershipService := services.NewMembershipService(membershipRepo)
	tasklistService := services.NewTasklistService(tasklistRepo, membershipRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, membershipRepo, tasklistRepo)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	tasklistHandler := handlers.NewTasklistHandler(tasklistService)
	taskHandler := handlers.NewTaskHandler(taskService)
	membershipHandler := handlers.NewMembershipHandler(membershipService, invitationService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskly API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/reactivate", accountHandler.Reactivate)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Account routes (protected)
		account := api.Group("/account")
		account.Use(middleware.RequireAuth())
		{
			account.PUT("/username", accountHandler.UpdateUsername)
			account.PUT("/email", accountHandler.UpdateEmail)
			account.PUT("/password", accountHandler.UpdatePassword)
			account.PUT("/image", accountHandler.UpdateProfileImage)
			account.POST("/deactivate", accountHandler.Deactivate)
		}

		// Tasklist routes (protected)
		lists := api.Group("/lists")
		lists.Use(middleware.RequireAuth())
		{
			lists.POST("", tasklistHandler.Create)
			lists.GET("", tasklistHandler.List)

			member := lists.Group("/:id")
			member.Use(middleware.RequireListAccess())
			{
				member.GET("", tasklistHandler.Get)
				member.PUT("", tasklistHandler.Update)
				member.DELETE("", tasklistHandler.Delete)

				member.GET("/tasks", taskHandler.List)
				member.POST("/tasks", taskHandler.Create)
				member.PUT("/tasks/:taskId", taskHandler.Update)
				member.DELETE("/tasks/:taskId", taskHandler.Delete)

				member.GET("/contributors", membershipHandler.Contributors)
				member.POST("/invitations", membershipHandler.Invite)
				member.PUT("/roles", membershipHandler.UpdateRoles)
				member.POST("/ownership", membershipHandler.TransferOwnership)
				member.POST("/leave", membershipHandler.Leave)
			}
		}

		// Invitation routes (protected). These act on pending memberships,
		// so they sit outside the list-access check.
		invitations := api.Group("/invitations")
		invitations.Use(middleware.RequireAuth())
		{
			invitations.GET("", membershipHandler.PendingInvitations)
			invitations.POST("/:listId/accept", membershipHandler.AcceptInvitation)
			invitations.POST("/:listId/decline", membershipHandler.DeclineInvitation)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
