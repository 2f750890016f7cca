package cmd

import (
	"net"
	"net/http"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/controller"
	"github.com/vibast-solutions/ms-go-wellness/app/mailer"
	"github.com/vibast-solutions/ms-go-wellness/app/middleware"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/service"
	"github.com/vibast-solutions/ms-go-wellness/app/throttle"
	"github.com/vibast-solutions/ms-go-wellness/app/token"
	"github.com/vibast-solutions/ms-go-wellness/config"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server for the wellness account service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := openDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := openRedis(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to redis")
	}
	var limiter *throttle.Limiter
	if redisClient != nil {
		defer redisClient.Close()
		limiter = throttle.New(redisClient, cfg.Throttle)
	} else {
		logrus.Warn("REDIS_ADDR not set, lifecycle emails are not throttled")
	}

	accountService := service.NewAccountService(
		db,
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		repository.NewTokenRepository(db),
		repository.NewAuditLogRepository(db),
		token.NewIssuer(cfg.JWT),
		mailer.NewSMTPMailer(cfg.SMTP),
		cfg,
		service.WithMailLimiter(limiter),
	)
	auditLogService := service.NewAuditLogService(repository.NewAuditLogRepository(db))

	startHTTPServer(cfg, accountService, auditLogService)
}

func startHTTPServer(cfg *config.Config, accountService service.AccountService, auditLogService service.AuditLogService) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"request_id": v.RequestID,
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	registerRoutes(e, accountService, auditLogService)

	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:         httpAddr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func registerRoutes(e *echo.Echo, accountService service.AccountService, auditLogService service.AuditLogService) {
	accountController := controller.NewAccountController(accountService)
	auditLogController := controller.NewAuditLogController(auditLogService)
	authMiddleware := middleware.NewAuthMiddleware(accountService)

	api := e.Group("/api")
	api.POST("/register", accountController.Register)
	api.GET("/ValidateVerifyEmailToken", accountController.VerifyEmail)
	api.POST("/resend-verification", accountController.ResendVerification)
	api.POST("/login", accountController.Login)
	api.POST("/forgotPassword", accountController.ForgotPassword)
	api.GET("/ValidateResetPasswordToken", accountController.ValidateResetPasswordToken)
	api.POST("/change-email/confirm", accountController.ConfirmEmailChange)
	api.POST("/change-email/cancel", accountController.CancelEmailChange)
	api.POST("/delete-account/confirm", accountController.ConfirmAccountDeletion)
	api.POST("/delete-account/cancel", accountController.CancelAccountDeletion)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth)
	protected.POST("/change-password", accountController.ChangePassword)
	protected.POST("/change-email", accountController.RequestEmailChange)
	protected.DELETE("/delete-account", accountController.RequestAccountDeletion)

	e.POST("/resetPassword", accountController.ResetPassword)
	e.GET("/getLogs", auditLogController.List, authMiddleware.RequireAuth, authMiddleware.RequireAdmin)
}
