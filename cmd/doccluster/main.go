package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"doccluster/internal/api"
	"doccluster/internal/config"
	"doccluster/internal/domain"
	"doccluster/internal/ingest"
	"doccluster/internal/logging"
	"doccluster/internal/service"
	"doccluster/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		k       string
		asJSON  bool
		serve   bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/doccluster/config.yaml if not provided)")
	flag.StringVar(&k, "k", "", "Number of clusters (defaults to clustering.default_k)")
	flag.BoolVar(&asJSON, "json", false, "Print the clusters as JSON instead of opening the terminal UI")
	flag.BoolVar(&serve, "serve", false, "Run the HTTP server")
	flag.Parse()
	inputs := flag.Args()
	if !serve && len(inputs) == 0 {
		fmt.Println("Usage: doccluster [--config=config.yaml] [--k=N] [--json] file1.txt [file2.txt ...]")
		fmt.Println("       doccluster [--config=config.yaml] --serve")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, cfgPath, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err == nil {
		err = config.ApplyEnv(cfg, os.Environ())
	}
	if err == nil {
		err = config.Validate(cfg)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if !serve && !asJSON {
		// The terminal UI owns the screen; run errors are shown in its status line.
		logging.SetupWriter(io.Discard, cfg.Log.Level, false)
	}

	stages, err := buildStages(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	svc := service.NewClusterService(stages, service.OptionsFromConfig(cfg), log.Logger)

	if serve {
		runServer(cfg, cfgPath, svc)
		return
	}

	paths, err := ingest.ExpandPaths(inputs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid input path:", err)
		os.Exit(1)
	}
	docs, err := ingest.ReadFiles(context.Background(), paths)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to read documents:", err)
		os.Exit(1)
	}
	result, err := svc.RunRaw(docs, k)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Clustering failed:", err)
		os.Exit(1)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatal().Err(err).Msg("Failed to write result")
		}
		return
	}

	m := tui.New(svc, docs, result)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Terminal UI failed:", err)
		os.Exit(1)
	}
}

func runServer(cfg *config.AppConfig, cfgPath string, svc *service.ClusterServiceImpl) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfgPath != "" {
		err := config.Watch(ctx, cfgPath, func(next *config.AppConfig) {
			if err := config.ApplyEnv(next, os.Environ()); err != nil {
				log.Warn().Err(err).Msg("Ignoring reloaded config")
				return
			}
			svc.SetOptions(service.OptionsFromConfig(next))
		})
		if err != nil {
			log.Warn().Err(err).Str("path", cfgPath).Msg("Failed to watch config file")
		}
	}

	handler := api.NewHandler(svc, cfg.Server.MaxUploadMB)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("Starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
}
