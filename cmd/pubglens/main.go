// pubglens - PUBG stats and AI match coaching web backend.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/notify"
	"github.com/pubglens/internal/services/ai"
	"github.com/pubglens/internal/services/pubg"
	"github.com/pubglens/internal/storage"
	"github.com/pubglens/internal/supervisor"
	"github.com/pubglens/internal/web"
	"github.com/pubglens/pkg/healthcheck"
)

func init() {
	// Collect more often unless the operator tuned GOGC.
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(50)
	}
}

func main() {
	// Health check flag for Docker
	healthFlag := flag.Bool("health", false, "Run health check against the local server and exit")
	flag.Parse()

	if *healthFlag {
		addr := os.Getenv("LISTEN_ADDR")
		if addr == "" {
			addr = ":8080"
		}
		if err := healthcheck.Check(context.Background(), healthcheck.URL(addr)); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config error")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("config invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("pubglens stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	cache := storage.NewRedisClient(ctx, cfg.Redis)
	defer cache.Close()

	var opts []pubg.Option
	if cache.Enabled() {
		opts = append(opts, pubg.WithCache(cache, pubg.CacheTTL{
			Player: cfg.Redis.PlayerTTL,
			Stats:  cfg.Redis.StatsTTL,
			Match:  cfg.Redis.MatchTTL,
		}))
	}
	stats := pubg.NewClient(cfg.PUBG, opts...)

	chain := ai.NewChainFromConfig(cfg.AI)
	analyzer := ai.NewAnalyzer(chain, cfg.AI.Language)

	sharer, err := notify.NewDiscord(cfg.Discord)
	if err != nil {
		return err
	}

	srv := web.New(cfg, web.Deps{
		Stats:     stats,
		Analyzer:  analyzer,
		Sharer:    sharer,
		Cache:     cache,
		Providers: chain.Providers(),
	})
	httpServer := web.NewHTTPServer(cfg.Server.Addr, srv.Handler(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	sup := supervisor.New(logging.NewSlogLogger(), supervisor.Config{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	sup.Add(web.NewService(httpServer, cfg.Server.ShutdownTimeout))

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("platform", cfg.PUBG.DefaultPlatform).
		Strs("ai_providers", chain.Providers()).
		Bool("cache", cache.Enabled()).
		Bool("discord", sharer.Enabled()).
		Msg("pubglens starting")

	// A supervisor that stops before ctx is done has failed.
	if err := sup.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
