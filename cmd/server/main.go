package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"studybuddy-backend/internal/config"
	"studybuddy-backend/internal/database"
	"studybuddy-backend/internal/handlers"
	"studybuddy-backend/internal/router"
	"studybuddy-backend/internal/services"
	"studybuddy-backend/internal/session"
	"studybuddy-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Study Buddy Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis (optional) ────
	var cacheClient, pubsubClient *redis.Client
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		cacheClient = redisClients.Cache
		pubsubClient = redisClients.PubSub
		log.Println("✓ Redis connected")
	} else {
		log.Println("- Redis not configured; caching disabled")
	}

	// ──── Step 3: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, cacheClient)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Question generator initialized")

	// ──── Step 4: Start WebSocket Hub ────
	wsHub := websocket.NewHub(pubsubClient)
	log.Println("✓ WebSocket hub started")

	// ──── Step 5: Initialize Session Store ────
	sessionStore := session.NewStore(wsHub.Publish)
	defer sessionStore.Close()

	// ──── Initialize Services & Handlers ────
	fileExtractService := services.NewFileExtractService()
	defaultCounts := services.QuestionCounts{
		Easy:   cfg.DefaultEasyCount,
		Medium: cfg.DefaultMediumCount,
		Hard:   cfg.DefaultHardCount,
	}
	questionHandler := handlers.NewQuestionHandler(fileExtractService, geminiService, cacheClient, cfg.MaxUploadMB, defaultCounts)
	sessionHandler := handlers.NewSessionHandler(sessionStore)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(questionHandler, sessionHandler, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		sessionStore.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Study Buddy Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
