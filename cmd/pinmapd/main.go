package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"pinmap/internal/config"
	appLog "pinmap/internal/log"
	"pinmap/internal/store"
	"pinmap/internal/web"
)

// flagConfig holds CLI flag values; non-empty values override the
// config file.
type flagConfig struct {
	configPath string
	listen     string
	dataPath   string
	once       bool
}

func main() {
	appLog.Info("pinmapd starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.dataPath != "" {
		conf.DataPath = flags.dataPath
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"data_path", conf.DataPath,
		"timezone", conf.Timezone,
		"lookahead_hours", conf.LookaheadHours,
		"prune", conf.PruneCron,
		"prune_after_days", conf.PruneAfterDays,
		"once", flags.once,
	)

	st, err := store.Open(conf.DataPath)
	if err != nil {
		appLog.Error("failed to open pin store", err, "data_path", conf.DataPath)
		os.Exit(1)
	}

	if flags.once {
		// Single prune pass and exit.
		n, err := st.PruneExpired(time.Now(), conf.PruneAfterDays)
		if err != nil {
			appLog.Error("prune failed", err)
			os.Exit(1)
		}
		appLog.Info("prune completed", "removed", n)
		return
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Expired-pin janitor on the configured cron schedule.
	janitor := cron.New()
	_, err = janitor.AddFunc(conf.PruneCron, func() {
		n, err := st.PruneExpired(time.Now(), conf.PruneAfterDays)
		if err != nil {
			appLog.Error("scheduled prune failed", err)
			return
		}
		if n > 0 {
			appLog.Info("scheduled prune completed", "removed", n)
		}
	})
	if err != nil {
		appLog.Error("invalid prune schedule", err, "prune", conf.PruneCron)
		os.Exit(1)
	}
	janitor.Start()
	defer janitor.Stop()

	srv := &http.Server{
		Addr:              conf.Listen,
		Handler:           web.NewServer(conf, st).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("HTTP shutdown failed", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}

	appLog.Info("pinmapd exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/pinmapd/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.dataPath, "data", "", "Pin store path (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one expired-pin prune pass and exit")

	flag.Parse()

	return cfg
}
