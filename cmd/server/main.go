package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vntrieu/avalon-engine/internal/auth"
	"github.com/vntrieu/avalon-engine/internal/config"
	"github.com/vntrieu/avalon-engine/internal/database"
	"github.com/vntrieu/avalon-engine/internal/httpapi"
	"github.com/vntrieu/avalon-engine/internal/lobby"
	"github.com/vntrieu/avalon-engine/internal/ratelimit"
	"github.com/vntrieu/avalon-engine/internal/store"
	"github.com/vntrieu/avalon-engine/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if cfg.UsesDevSecret() {
		log.Warn().Msg("AVALON_TOKEN_SECRET is not set; using the development secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to PostgreSQL.
	dbPool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		log.Fatal().Err(err).Msg("database connect")
	}
	defer dbPool.Close()
	log.Info().Msg("connected to database")

	// Run pending migrations.
	if err := database.Migrate(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("database migrate")
	}
	log.Info().Msg("migrations up to date")

	signer, err := auth.NewSigner([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token signer")
	}

	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if cfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.NewInMemory(cfg.RateLimitPerMinute, time.Minute)
	}

	manager := lobby.NewManager(store.NewGameStore(dbPool))
	hub := websocket.NewHub(nil)
	hub.SetEventHandler(websocket.NewEventHandler(manager, limiter))
	manager.SetPublisher(hub)

	go hub.Run(ctx)
	go manager.RunTimeouts(ctx, cfg.TimeoutPoll)

	router := httpapi.NewRouter(httpapi.Options{
		Games:       manager,
		Players:     store.NewPlayerStore(dbPool),
		Signer:      signer,
		WS:          websocket.NewWSHandler(hub, manager, signer),
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		DB:          dbPool,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("avalon engine listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	cancel()
}
