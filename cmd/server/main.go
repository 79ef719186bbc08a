package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pid-digitizer/backend/internal/api"
	"github.com/pid-digitizer/backend/internal/config"
	"github.com/pid-digitizer/backend/internal/export"
	"github.com/pid-digitizer/backend/internal/history"
	"github.com/pid-digitizer/backend/internal/logging"
	"github.com/pid-digitizer/backend/internal/parser"
	"github.com/pid-digitizer/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, config.FileName)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(cfg.Advanced.LogLevel)
	api.ShowErrorDetails = strings.EqualFold(cfg.Advanced.LogLevel, "debug")
	logger := logging.New("server")

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.Storage.ExportsDirectory)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Export history is optional; the service runs without it.
	var (
		recorder export.Recorder
		reader   api.HistoryReader
	)
	if cfg.Storage.HistoryDatabase != "" {
		hist, err := history.Open(cfg.Storage.HistoryDatabase, history.Options{
			Threads:     cfg.Advanced.DuckDBThreads,
			MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		})
		if err != nil {
			logger.Warnf("export history disabled: %v", err)
		} else {
			defer hist.Close()
			recorder, reader = hist, hist
		}
	}

	exportMgr := export.NewManager(fileStore, recorder, export.Options{
		Timeout:       cfg.JobTimeout(),
		MaxConcurrent: cfg.Export.MaxConcurrentExports,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background job cleanup
	exportMgr.StartCleanup(ctx,
		time.Duration(cfg.Export.CleanupIntervalMinutes)*time.Minute,
		time.Duration(cfg.Export.JobRetentionMinutes)*time.Minute)

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, cfg)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:    fileStore,
		Exports:  exportMgr,
		History:  reader,
		Decoders: parser.GetGlobalRegistry(),
		Config:   cfg,
		Version:  Version,
	}))

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           P&ID CAD Export Server                          ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Exports:   %-46s║\n", cfg.Storage.ExportsDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
