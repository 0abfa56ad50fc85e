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
	"github.com/grevocab/api/internal/cache"
	"github.com/grevocab/api/internal/client"
	"github.com/grevocab/api/internal/config"
	"github.com/grevocab/api/internal/database"
	"github.com/grevocab/api/internal/gateway"
	"github.com/grevocab/api/internal/handler"
	"github.com/grevocab/api/internal/middleware"
	"github.com/grevocab/api/internal/prefetch"
	"github.com/grevocab/api/internal/session"
	"github.com/grevocab/api/internal/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis serves two roles: hot profile cache and sync bus. Both are
	// optional; the server degrades to Postgres-only and single-context.
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisCache = nil
	}

	var bus gateway.Bus
	if redisBus, err := gateway.NewRedisBus(cfg.RedisURL); err != nil {
		log.Printf("Warning: sync bus unavailable: %v", err)
	} else {
		bus = redisBus
	}

	localStore, err := gateway.NewFileStore(cfg.SnapshotDir)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot dir: %v", err)
	}
	remoteStore := gateway.NewGormStore(db)

	sessions := session.NewManager(localStore, remoteStore, bus)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sessions.Start(ctx); err != nil {
		log.Printf("Warning: sync subscription failed: %v", err)
	}

	wordValidator, err := validator.NewWordValidator(cfg.WordListPath)
	if err != nil {
		log.Printf("Warning: Failed to load word validator: %v", err)
		wordValidator = nil
	}

	var prefetcher *prefetch.Prefetcher
	if cfg.PrefetchEnabled {
		llmClient := client.NewLLMClient(cfg.LLMProxyURL)
		prefetcher, err = prefetch.New(db, llmClient, prefetch.Config{
			WordListPath: cfg.WordListPath,
			Interval:     cfg.PrefetchInterval,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize prefetcher: %v", err)
		} else {
			go prefetcher.Start(ctx)
			log.Println("Background profile prefetcher started")
		}
	}

	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	wordHandler := handler.NewWordHandler(db, redisCache, cfg, wordValidator, sessions)
	studyHandler := handler.NewStudyHandler(sessions)
	favoriteHandler := handler.NewFavoriteHandler(sessions)
	snapshotHandler := handler.NewSnapshotHandler(sessions)
	exportHandler := handler.NewExportHandler(sessions)
	reportHandler := handler.NewReportHandler(db)
	adminHandler := handler.NewAdminHandler(db, prefetcher)
	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret, googleConfig, cfg.FrontendURL)

	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// OAuth flow
	r.GET("/auth/google", authHandler.GoogleAuth)
	r.GET("/auth/google/callback", authHandler.GoogleCallback)
	r.POST("/auth/refresh", authHandler.RefreshToken)
	r.POST("/auth/logout", authHandler.Logout)

	api := r.Group("/api")
	api.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	{
		// Words
		api.POST("/words/search", wordHandler.Search)
		api.POST("/words/analyze", wordHandler.Analyze)
		api.GET("/words/suggest", wordHandler.Suggest)
		api.GET("/words/:word/exists", wordHandler.Exists)

		// Study
		api.POST("/study/action", studyHandler.Action)
		api.GET("/study/candidate", studyHandler.Candidate)
		api.GET("/study/quiz", studyHandler.Quiz)
		api.GET("/study/stats", studyHandler.Stats)

		// Favorites
		api.GET("/favorites", favoriteHandler.List)
		api.POST("/favorites", favoriteHandler.Add)
		api.DELETE("/favorites/:word", favoriteHandler.Remove)

		// Dataset
		api.GET("/snapshot", snapshotHandler.Get)
		api.POST("/snapshot/import", snapshotHandler.Import)
		api.GET("/settings", snapshotHandler.GetSettings)
		api.PUT("/settings", snapshotHandler.UpdateSettings)
		api.GET("/history", snapshotHandler.GetHistory)
		api.GET("/export", exportHandler.Export)

		// Cloud sync (login merge happens here, once)
		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			authed.GET("/auth/me", authHandler.Me)
			authed.POST("/sync/login", snapshotHandler.SyncLogin)
			authed.POST("/sync/logout", snapshotHandler.SyncLogout)
			authed.POST("/reports", reportHandler.Submit)
			authed.GET("/reports/my", reportHandler.ListMy)
		}

		// Admin
		admin := api.Group("/admin")
		admin.Use(middleware.AdminMiddleware(cfg.JWTSecret, cfg.AdminEmails))
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/prefetch/status", adminHandler.PrefetchStatus)
			admin.GET("/reports", reportHandler.List)
			admin.PATCH("/reports/:id/status", reportHandler.UpdateStatus)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	// Flush pending debounced saves so no study progress is lost.
	sessions.Shutdown()
	if prefetcher != nil {
		prefetcher.Stop()
	}
	if redisCache != nil {
		redisCache.Close()
	}
	if rb, ok := bus.(*gateway.RedisBus); ok && rb != nil {
		rb.Close()
	}
	log.Println("Shutdown complete")
}
