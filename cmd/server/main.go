package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/camps"
	"github.com/lojf/campreg/internal/config"
	"github.com/lojf/campreg/internal/db"
	"github.com/lojf/campreg/internal/handlers"
	"github.com/lojf/campreg/internal/kv"
	"github.com/lojf/campreg/internal/logging"
	"github.com/lojf/campreg/internal/remote"
	"github.com/lojf/campreg/internal/report"
	"github.com/lojf/campreg/internal/services"
	"github.com/lojf/campreg/internal/web"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "campreg",
	Short: "Camp population registry and reporting service",
	Long: `campreg keeps camp, family and member records and builds filtered
population reports over them.

Configuration is read from CAMPREG_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogFormat, "campreg")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func main() {
	rootCmd.AddCommand(serveCmd, userCmd, delegatesCmd, reportCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openRegistry opens the database and returns the local registry.
func openRegistry() (*services.Registry, error) {
	if err := db.Init(cfg.DBPath, logger); err != nil {
		return nil, fmt.Errorf("db init: %w", err)
	}
	return services.NewRegistry(db.Conn(), logger, cfg.PhoneCC), nil
}

// listSource picks where camp lists and report data come from.
func listSource(reg *services.Registry) (handlers.Store, camps.Reachability) {
	if cfg.Source == config.SourceRemote {
		c := remote.New(cfg.RemoteURL, remote.Options{
			Timeout: cfg.RemoteTimeout,
			Retries: cfg.RemoteRetries,
			Token:   cfg.RemoteToken,
			Logger:  logger.Named("remote"),
		})
		return c, c
	}
	return reg, reg
}

func openKV(ctx context.Context) (kv.KV, error) {
	if cfg.KVBackend != config.KVRedis {
		return kv.NewMemoryKV(), nil
	}
	r := kv.NewRedisKV(kv.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.Ping(pctx); err != nil {
		return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	return r, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := openRegistry()
	if err != nil {
		return err
	}
	store, err := openKV(ctx)
	if err != nil {
		return err
	}
	src, reach := listSource(reg)

	sessions := camps.NewSessions(func() *camps.Store {
		return camps.NewStore(src, reach, store, camps.Options{
			CacheTTL: cfg.CampCacheTTL,
			Logger:   logger.Named("camps"),
		})
	}, logger)
	camps.StartRefreshLoop(ctx, cfg.RefreshInterval, sessions)

	h := handlers.New(reg, src, sessions, report.NewEngine(cfg.Language()), logger)
	h.ReadOnly = cfg.Source == config.SourceRemote

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.Router(h, cfg.JWTSecret, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("campreg listening",
		zap.String("addr", cfg.Addr),
		zap.String("source", cfg.Source),
		zap.String("kv", cfg.KVBackend),
		zap.Bool("read_only", h.ReadOnly),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
