// cmd/match-service/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"alumni-match/internal/api"
	"alumni-match/internal/common/config"
	"alumni-match/internal/common/database"
	"alumni-match/internal/common/logger"
	"alumni-match/internal/common/observability"
	"alumni-match/internal/identity"
	"alumni-match/internal/match"
	"alumni-match/internal/pipeline"
	"alumni-match/internal/ratelimit"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Credential verification ---
	keys, err := identity.NewConfigKeyProvider(cfg.Auth)
	if err != nil {
		zapLog.Fatal("key material setup failed", zap.Error(err))
	}
	verifier := identity.NewVerifier(cfg.Auth.Algorithm, keys, log)

	// --- Admission control ---
	local := ratelimit.NewLocalLimiter(cfg.RateLimit.Window, cfg.RateLimit.LocalLimit)
	var shared *ratelimit.RedisLimiter
	if cfg.RateLimit.UseShared {
		redisClient := database.NewRedis(cfg.Database.Redis)
		defer redisClient.Close()
		shared = ratelimit.NewRedisLimiter(redisClient.Client, cfg.RateLimit.Window, cfg.RateLimit.SharedLimit)
	}
	admitter := ratelimit.NewController(local, shared, cfg.RateLimit.FallbackPolicy, log)
	admitter.StartProbe(ctx, 30*time.Second)

	// --- Profile repository ---
	var repo match.ProfileRepository
	switch cfg.Matching.ProfileStore {
	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres setup failed", zap.Error(err))
		}
		defer pg.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := pg.Ping(pingCtx); err != nil {
			cancel()
			zapLog.Fatal("postgres unreachable", zap.Error(err))
		}
		cancel()
		repo = match.NewPostgresRepository(pg.DB)
	default:
		mem := match.NewMemoryRepository()
		mem.Seed(demoProfiles()...)
		repo = mem
		log.Warn("using in-memory profile store; profiles reset on restart", nil)
	}

	engine := match.NewEngine(repo, cfg.Matching.DefaultLimit, cfg.Matching.MaxLimit, log)

	// Matching is a student-facing operation.
	p := pipeline.New(verifier, admitter, engine,
		[]identity.Role{identity.RoleStudent}, obs, log)

	server := api.NewServer(p, cfg.Server, log)
	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("match service listening", map[string]interface{}{
			"address":      cfg.Server.Address,
			"environment":  cfg.App.Environment,
			"profileStore": cfg.Matching.ProfileStore,
		})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

// demoProfiles seeds the in-memory store for local development.
func demoProfiles() []match.Profile {
	return []match.Profile{
		{
			ID: "student-demo", Name: "Demo Student", Role: identity.RoleStudent,
			Industry:  "Technology",
			Skills:    []string{"python"},
			Interests: []string{"data science", "ml"},
		},
		{
			ID: "alumni-demo-1", Name: "Demo Mentor", Role: identity.RoleAlumni,
			Industry:            "Technology",
			Skills:              []string{"data science", "python", "ml"},
			Tags:                []string{"mentorship"},
			MentorshipAvailable: true,
		},
		{
			ID: "alumni-demo-2", Name: "Demo Mentor Two", Role: identity.RoleAlumni,
			Industry: "Finance",
			Skills:   []string{"sql", "python"},
		},
	}
}
