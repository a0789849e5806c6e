// Package main runs the church management HTTP server with WebSocket dashboards
// and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parishdesk/backend/config"
	"github.com/parishdesk/backend/internal/auth"
	"github.com/parishdesk/backend/internal/authz"
	"github.com/parishdesk/backend/internal/checkin"
	"github.com/parishdesk/backend/internal/children"
	"github.com/parishdesk/backend/internal/events"
	"github.com/parishdesk/backend/internal/members"
	"github.com/parishdesk/backend/internal/messaging"
	"github.com/parishdesk/backend/internal/middleware"
	"github.com/parishdesk/backend/internal/organizations"
	"github.com/parishdesk/backend/internal/realtime"
	"github.com/parishdesk/backend/internal/roles"
	"github.com/parishdesk/backend/internal/teams"
	"github.com/parishdesk/backend/internal/verification"
	"github.com/parishdesk/backend/internal/worker"
	"github.com/parishdesk/backend/pkg/database"
	"github.com/parishdesk/backend/pkg/queue"
	"github.com/parishdesk/backend/pkg/redis"
	"github.com/parishdesk/backend/pkg/response"
	"github.com/parishdesk/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			PhotosBucket:         cfg.AWS.PhotosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, logger)

	// Roles: also the record source for permission evaluation
	roleRepo := roles.NewRepository(pool)
	roleHandler := roles.NewHandler(roleRepo, logger)

	// Members
	memberRepo := members.NewRepository(pool)
	memberHandler := members.NewHandler(memberRepo, s3Client, logger)

	// Teams
	teamRepo := teams.NewRepository(pool)
	teamHandler := teams.NewHandler(teamRepo, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, logger)

	// Children
	childRepo := children.NewRepository(pool)
	childHandler := children.NewHandler(childRepo, s3Client, logger)

	// Child check-in with live dashboard broadcasts
	checkinRepo := checkin.NewRepository(pool)
	checkinHandler := checkin.NewHandler(checkinRepo, childRepo, hub, logger)

	// Messaging: queued delivery through the worker
	jobQueue := queue.NewQueue(rdb.Client, logger)
	msgRepo := messaging.NewRepository(pool)
	msgHandler := messaging.NewHandler(msgRepo, memberRepo, jobQueue, logger)

	var emailSender *messaging.EmailSender
	if cfg.SendGrid.APIKey != "" {
		emailSender = messaging.NewEmailSender(cfg.SendGrid.APIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	}
	var phoneSender *messaging.PhoneSender
	if cfg.Twilio.AccountSID != "" {
		phoneSender = messaging.NewPhoneSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	}
	msgProcessor := worker.NewMessageProcessor(msgRepo, emailSender, phoneSender, jobQueue, logger)

	// Phone verification (codes kept in Redis with TTL)
	var verifyHandler *verification.Handler
	if phoneSender != nil {
		verifySvc := verification.NewService(
			verification.NewRedisStore(rdb.Client),
			phoneSender,
			time.Duration(cfg.Verification.CodeTTLMinutes)*time.Minute,
			cfg.Verification.MaxAttempts,
			logger,
		)
		verifyHandler = verification.NewHandler(verifySvc, authRepo, logger)
	}

	jwtValidate := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}
	dashboardAuthorize := func(ctx context.Context, userID, orgID uuid.UUID) bool {
		orgRoles, err := roleRepo.RolesForOrg(ctx, orgID)
		if err != nil {
			return false
		}
		assocs, err := roleRepo.AssignmentsForUser(ctx, userID)
		if err != nil {
			return false
		}
		e := authz.NewEvaluator(userID, orgRoles, assocs)
		return e.HasPermission(authz.ChildcareViewRooms, orgID) || e.IsAdmin(orgID)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)

		// Organization membership spans orgs, so these sit outside the
		// org-scoped group.
		api.GET("/organizations", orgHandler.ListMine)
		api.POST("/organizations", orgHandler.Create)

		if verifyHandler != nil {
			api.POST("/verification/phone", verifyHandler.Start)
			api.POST("/verification/phone/confirm", verifyHandler.Confirm)
		}
	}

	// Org-scoped API: every route below resolves the caller's roles in the
	// organization and enforces a permission.
	org := api.Group("/organizations/:orgId")
	org.Use(authz.LoadEvaluator(roleRepo))
	{
		org.GET("", authz.RequirePermission(authz.OrganizationView), orgHandler.Get)
		org.PATCH("", authz.RequirePermission(authz.OrganizationEdit), orgHandler.Update)
		org.DELETE("", authz.RequireAdmin(), orgHandler.Delete)

		// Roles and assignments
		org.GET("/roles", authz.RequirePermission(authz.RolesView), roleHandler.List)
		org.POST("/roles", authz.RequirePermission(authz.RolesCreate), roleHandler.Create)
		org.PATCH("/roles/:id", authz.RequirePermission(authz.RolesEdit), roleHandler.Update)
		org.DELETE("/roles/:id", authz.RequirePermission(authz.RolesDelete), roleHandler.Delete)
		org.POST("/roles/:id/assignments", authz.RequirePermission(authz.OrganizationManageAssociations), roleHandler.Assign)
		org.DELETE("/roles/:id/assignments/:userId", authz.RequirePermission(authz.OrganizationManageAssociations), roleHandler.Unassign)
		org.GET("/assignments", authz.RequirePermission(authz.RolesView), roleHandler.ListAssignments)

		// Members
		org.GET("/members", authz.RequirePermission(authz.MembersView), memberHandler.List)
		org.POST("/members", authz.RequirePermission(authz.MembersCreate), memberHandler.Create)
		org.GET("/members/:id", authz.RequirePermission(authz.MembersView), memberHandler.Get)
		org.PATCH("/members/:id", authz.RequirePermission(authz.MembersEdit), memberHandler.Update)
		org.DELETE("/members/:id", authz.RequirePermission(authz.MembersDelete), memberHandler.Delete)
		org.POST("/members/:id/photo", authz.RequirePermission(authz.MembersEdit), memberHandler.UploadPhoto)
		org.GET("/members/:id/photo-url", authz.RequirePermission(authz.MembersView), memberHandler.PhotoURL)

		// Teams
		org.GET("/teams", authz.RequirePermission(authz.TeamsView), teamHandler.List)
		org.POST("/teams", authz.RequirePermission(authz.TeamsCreate), teamHandler.Create)
		org.PATCH("/teams/:id", authz.RequirePermission(authz.TeamsEdit), teamHandler.Update)
		org.DELETE("/teams/:id", authz.RequirePermission(authz.TeamsDelete), teamHandler.Delete)
		org.GET("/teams/:id/members", authz.RequirePermission(authz.TeamsView), teamHandler.ListMembers)
		org.POST("/teams/:id/members", authz.RequirePermission(authz.MembersAssign), teamHandler.AddMember)
		org.DELETE("/teams/:id/members/:memberId", authz.RequirePermission(authz.MembersAssign), teamHandler.RemoveMember)

		// Events
		org.GET("/events", authz.RequirePermission(authz.EventsView), eventHandler.List)
		org.POST("/events", authz.RequirePermission(authz.EventsCreate), eventHandler.Create)
		org.GET("/events/:id", authz.RequirePermission(authz.EventsView), eventHandler.Get)
		org.PATCH("/events/:id", authz.RequirePermission(authz.EventsEdit), eventHandler.Update)
		org.DELETE("/events/:id", authz.RequirePermission(authz.EventsDelete), eventHandler.Delete)

		// Children
		org.GET("/children", authz.RequirePermission(authz.ChildcareCheckin), childHandler.List)
		org.POST("/children", authz.RequirePermission(authz.ChildcareCheckin), childHandler.Create)
		org.GET("/children/:id", authz.RequirePermission(authz.ChildcareCheckin), childHandler.Get)
		org.PATCH("/children/:id", authz.RequirePermission(authz.ChildcareCheckin), childHandler.Update)
		org.DELETE("/children/:id", authz.RequirePermission(authz.ChildcareCheckin), childHandler.Delete)
		org.POST("/children/:id/photo", authz.RequirePermission(authz.ChildcareCheckin), childHandler.UploadPhoto)
		org.GET("/children/:id/photo-url", authz.RequirePermission(authz.ChildcareCheckin), childHandler.PhotoURL)
		org.GET("/children/:id/room", authz.RequirePermission(authz.ChildcareAssignChildren), checkinHandler.AssignmentPreview)

		// Rooms and check-in
		org.GET("/rooms", authz.RequirePermission(authz.ChildcareViewRooms), checkinHandler.ListRooms)
		org.POST("/rooms", authz.RequirePermission(authz.ChildcareCreateRooms), checkinHandler.CreateRoom)
		org.PATCH("/rooms/:roomId", authz.RequirePermission(authz.ChildcareEditRooms), checkinHandler.UpdateRoom)
		org.DELETE("/rooms/:roomId", authz.RequirePermission(authz.ChildcareDeleteRooms), checkinHandler.DeleteRoom)
		org.GET("/rooms/:roomId/report", authz.RequirePermission(authz.ChildcareViewReports), checkinHandler.RoomReport)
		org.POST("/checkins", authz.RequirePermission(authz.ChildcareCheckin), checkinHandler.CheckIn)
		org.POST("/checkins/:checkinId/checkout", authz.RequirePermission(authz.ChildcareCheckin), checkinHandler.CheckOut)

		// Messaging
		org.POST("/messages", authz.RequirePermission(authz.MembersMessage), msgHandler.Send)
		org.GET("/messages", authz.RequirePermission(authz.MembersMessage), msgHandler.List)
		org.GET("/messages/:messageId", authz.RequirePermission(authz.MembersMessage), msgHandler.Get)
	}

	// WebSocket dashboard (token in query; no Authorization header available)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate, dashboardAuthorize))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process message worker; run cmd/worker separately to scale delivery out.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go msgProcessor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
