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

	"fairplayServer/api"
	"fairplayServer/config"
	"fairplayServer/db"
	"fairplayServer/engine"
	"fairplayServer/state"
	"fairplayServer/ws"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables")
	} else {
		log.Println("✅ Loaded environment variables from .env")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serverOpts []api.Option

	// Sessions: Redis when reachable, otherwise process memory
	var sessions state.SessionStore
	if cfg.RedisURL != "" {
		client, err := db.InitRedis(cfg)
		if err != nil {
			log.Printf("⚠️  Warning: Redis initialization failed: %v", err)
			log.Println("   Sessions will be kept in memory and lost on restart")
		} else {
			defer func() {
				log.Println("🔌 Closing Redis connection...")
				client.Close()
			}()
			store := db.NewRedisSessionStore(client, cfg.SessionTTL)
			sessions = store
			serverOpts = append(serverOpts, api.WithHealthCheck("redis", store))
		}
	}
	if sessions == nil {
		sessions = state.NewMemorySessionStore()
	}

	// History and leaderboard: PostgreSQL when reachable, otherwise memory
	var (
		ledger      state.HistoryLedger
		leaderboard state.Leaderboard
	)
	if cfg.DatabaseURL != "" {
		pg, err := db.InitPostgres(ctx, cfg.DatabaseURL, cfg.MaxHistoryPerUser)
		if err != nil {
			log.Printf("⚠️  Warning: PostgreSQL initialization failed: %v", err)
			log.Println("   Game history and leaderboard will be kept in memory")
		} else {
			defer pg.Close()
			ledger, leaderboard = pg, pg
			serverOpts = append(serverOpts, api.WithHealthCheck("postgres", pg))
		}
	}
	if ledger == nil {
		mem := state.NewMemoryLedger(cfg.MaxHistoryPerUser)
		ledger, leaderboard = mem, mem
	}

	hub := ws.NewHub(cfg.MaxHistoryPerUser)
	go hub.Run(ctx)
	serverOpts = append(serverOpts, api.WithFeed(http.HandlerFunc(hub.ServeWS)))

	e := engine.New(sessions, ledger,
		engine.WithStartingBalance(cfg.StartingBalance),
		engine.WithPublisher(hub),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(e, leaderboard, serverOpts...).Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", srv.Addr)
		log.Println("")
		log.Println("🔌 API Endpoints:")
		log.Println("   POST /api/game - initialize, getSession, playRoulette, playMines, playWheel, getHistory")
		log.Println("   POST /api/verify - Recompute a round from revealed seeds")
		log.Println("   GET  /api/leaderboard - Wallet PnL ranking")
		log.Println("   GET  /api/health - Health check")
		log.Println("")
		log.Println("📡 WebSocket Endpoints:")
		log.Println("   /ws - Subscribe to 'rounds' or 'user:<address>'")
		log.Println("")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Server error:", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Graceful shutdown failed: %v", err)
	}
}
