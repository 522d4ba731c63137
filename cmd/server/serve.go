package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/songlesson/api/internal/auth"
	"github.com/songlesson/api/internal/client"
	"github.com/songlesson/api/internal/config"
	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/middleware"
	"github.com/songlesson/api/internal/server"
	"github.com/songlesson/api/internal/service"
	"github.com/songlesson/api/internal/store"
	ws "github.com/songlesson/api/internal/websocket"
)

func newServeCommand(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, getConfig())
		},
	}
}

func newMigrateCommand(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			log := logging.New("migrate")

			st, err := store.Open(cmd.Context(), &cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			log.Infof("migrated %s store", cfg.Database.Driver)
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.New("server")

	st, err := store.Open(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	log.Infof("using %s store", cfg.Database.Driver)

	// Redis backs rate limiting only
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warnf("redis not available, rate limits are not enforced: %v", err)
	}
	cancel()

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	// External clients
	groqClient := client.NewGroqClient(&cfg.Groq)
	sunoClient := client.NewSunoClient(&cfg.Suno)
	if !groqClient.IsConfigured() {
		log.Infof("groq not configured, lyrics use the offline generator")
	}
	if !sunoClient.IsConfigured() {
		log.Warnf("suno not configured, song generation will fail at job submission")
	}
	if cfg.Suno.CallbackURL == "" {
		log.Warnf("no callback URL configured, audio completion relies on polling")
	}

	// R2 storage is optional
	var storage client.StorageClient
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Client, err := client.NewR2Client(ctx, &cfg.R2)
		if err != nil {
			log.Warnf("R2 client not initialized: %v", err)
		} else {
			storage = r2Client
		}
	} else {
		log.Infof("R2 storage not configured, original files are not kept")
	}

	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	lyricsService := service.NewLyricsService(groqClient, cfg.Lyrics.CulturalContext)
	audioService := service.NewAudioService(sunoClient, st, hub)
	songService := service.NewSongService(st, lyricsService, audioService)
	documentService := service.NewDocumentService(st, storage)

	app := server.New(server.Deps{
		Config:    cfg,
		Songs:     songService,
		Audio:     audioService,
		Documents: documentService,
		Hub:       hub,
		Verifier:  verifier,
		Limiter:   middleware.NewRateLimiter(redisClient),
		AccessLog: true,
		Health: func() fiber.Map {
			return fiber.Map{
				"store": cfg.Database.Driver,
				"services": fiber.Map{
					"groq": groqClient.IsConfigured(),
					"suno": sunoClient.IsConfigured(),
					"r2":   storage != nil,
					"auth": cfg.Auth.Enabled,
				},
			}
		},
	})

	go func() {
		<-ctx.Done()
		log.Infof("shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Infof("server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// buildVerifier prefers the identity provider's JWKS and falls back to the
// shared HMAC secret
func buildVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if !cfg.Auth.Enabled {
		return nil, nil
	}
	log := logging.New("auth")

	var chain auth.Chain
	if cfg.Zitadel.Issuer != "" {
		jwks, err := auth.NewJWKSVerifier(ctx, &cfg.Zitadel)
		if err != nil {
			log.Warnf("JWKS verifier not initialized: %v", err)
		} else {
			chain = append(chain, jwks)
		}
	}
	if cfg.Auth.JWTSecret != "" {
		chain = append(chain, auth.NewHMACVerifier(cfg.Auth.JWTSecret))
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("auth is enabled but neither an issuer nor a JWT secret is usable")
	}
	return chain, nil
}
