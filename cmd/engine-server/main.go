package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Darius662/Readloom-Angular-sub001/internal/cache"
	"github.com/Darius662/Readloom-Angular-sub001/internal/engine"
	"github.com/Darius662/Readloom-Angular-sub001/internal/knowledge"
	"github.com/Darius662/Readloom-Angular-sub001/internal/resolver"
	"github.com/Darius662/Readloom-Angular-sub001/internal/sources"
	"github.com/Darius662/Readloom-Angular-sub001/pkg/config"
	"github.com/Darius662/Readloom-Angular-sub001/pkg/database"
)

func main() {
	// .env is optional; env vars win either way
	_ = godotenv.Load()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	cfg := config.LoadEngine()

	store := cache.NewStore(db)
	kb, err := knowledge.New(knowledge.NewOverlayStore(db))
	if err != nil {
		log.Fatalf("knowledge base init failed: %v", err)
	}
	res := resolver.New(store, kb, sources.DefaultSet(cfg)...)

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	h := engine.NewHandler(res, store, kb)
	h.RegisterRoutes(router.Group("/engine"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("engine server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
