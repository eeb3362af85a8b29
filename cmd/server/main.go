package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/config"
	"rollcall/internal/handler"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/roster"
	"rollcall/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	client, closeStore, err := buildStoreClient(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var redisClient *store.Redis
	if cfg.RedisAddr != "" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
	}

	svc := roster.NewService(client)

	// Populate the cache before serving; a failure here is survivable, the
	// UI can hit /v1/refresh once the store is reachable.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.LoadAll(loadCtx); err != nil {
		log.Printf("warning: initial load failed: %v", err)
	}
	cancelLoad()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())

	if redisClient != nil {
		r.Use(httpmiddleware.NewRedisFixedWindow(redisClient.Client, cfg.RateLimitPerMin).GinMiddleware())
	} else {
		r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		snap := svc.Snapshot()
		body := gin.H{
			"status":   "ok",
			"courses":  len(snap.Courses),
			"students": len(snap.Students),
			"records":  len(snap.Records),
		}
		status := http.StatusOK
		if redisClient != nil {
			healthy := redisClient.Healthy(c.Request.Context())
			body["redis"] = healthy
			if !healthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, body)
	})

	handler.New(svc).Register(r.Group("/v1"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (store backend %s)", cfg.HTTPPort, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// buildStoreClient picks the backend by config and wraps it with metrics.
func buildStoreClient(cfg config.App) (store.Client, func(), error) {
	closeStore := func() {}
	var client store.Client
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closeStore = func() { _ = pg.Close() }
		client = pg
	case "memory":
		client = store.NewMemory()
	default:
		client = store.NewREST(cfg.StoreURL, cfg.StoreKey)
	}
	return store.Instrument(client), closeStore, nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
