package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/planline/internal/config"
	"github.com/me/planline/internal/logging"
	"github.com/me/planline/internal/project"
	"github.com/me/planline/internal/server"
	"github.com/me/planline/internal/store"
)

func main() {
	var flags config.ServerConfig
	defaults := config.DefaultServerConfig()

	flag.StringVar(&flags.Addr, "addr", defaults.Addr, "Listen address")
	flag.StringVar(&flags.LogLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&flags.LogFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
	flag.StringVar(&flags.DBPath, "db", defaults.DBPath, "Database path (default ~/.planline/planline.db)")
	configFile := flag.String("config", "", "Path to a YAML config file; flags override its values")
	maxImport := flag.Int64("max-import-bytes", 8<<20, "Largest accepted import document")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	cfg := defaults
	if *configFile != "" {
		if err := config.LoadFile(&cfg, *configFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = flags.Addr
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "log-format":
			cfg.LogFormat = flags.LogFormat
		case "db":
			cfg.DBPath = flags.DBPath
		}
	})
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	ed := project.NewEditor(st, logger)
	if err := ed.Hydrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "load project: %v\n", err)
		os.Exit(1)
	}

	srv := server.New(cfg, ed, logger, server.WithMaxImportBytes(*maxImport))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
