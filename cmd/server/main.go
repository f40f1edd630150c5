package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/enrollment"
	"rollcall/internal/handler"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/store"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	enrollments := enrollment.NewRepository(db.Client)
	logs := attendance.NewRepository(db.Client)
	admins := auth.NewRepository(db.Client)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		name := cfg.AdminName
		if name == "" {
			name = cfg.AdminUsername
		}
		if err := admins.Seed(ctx, name, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Printf("admin seed failed: %v", err)
		}
	}

	h := handler.New(enrollments, logs, admins, cfg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewRedisLimiter(redisClient.Client, cfg.RateLimitPerMin).GinMiddleware())

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.TLSCert != "",
	})
	r.Use(sessions.Sessions("rollcall_session", sessionStore))

	r.LoadHTMLGlob("web/templates/*")

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		redisHealthy := redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"db": dbHealthy, "redis": redisHealthy})
	})

	// Public pages.
	r.GET("/", h.Index)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/enroll/:token", h.EnrollForm)
	r.POST("/enroll/:token", h.EnrollSubmit)

	// Administrative pages behind the session gate.
	admin := r.Group("/", auth.LoginRequired())
	admin.GET("/menu", h.Menu)
	admin.GET("/admin", h.Dashboard)
	admin.GET("/admin/face_image/:token", h.FaceImage)
	admin.GET("/admin/export_excel", h.ExportExcel)
	admin.POST("/admin/delete_student/:id", h.DeleteStudent)
	admin.POST("/admin/delete_token/:token", h.DeleteToken)
	admin.POST("/admin/delete_all_tokens", h.DeleteAllTokens)
	admin.POST("/admin/delete_selected_tokens", h.DeleteSelectedTokens)

	// Kiosk API: token producer and external check-in events.
	r.POST("/api/v1/devices/register", h.RegisterDevice)
	api := r.Group("/api/v1", auth.DeviceAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
	api.POST("/enrollments", h.CreateEnrollment)
	api.POST("/checkins", h.CreateCheckin)

	r.NoRoute(h.NotFound)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		var err error
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			log.Printf("listening on https://0.0.0.0:%s", cfg.HTTPPort)
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			log.Printf("listening on http://0.0.0.0:%s", cfg.HTTPPort)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("server exited")
	return nil
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
