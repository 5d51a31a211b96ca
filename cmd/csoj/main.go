package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/csoj/csoj/internal/api"
	"github.com/csoj/csoj/internal/config"
	"github.com/csoj/csoj/internal/core"
	"github.com/csoj/csoj/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev-build"

var (
	configPath   string
	useStorage   bool
	resetStorage bool
	flushData    bool
)

func main() {
	root := &cobra.Command{
		Use:   "csoj",
		Short: "CSOJ online judge server",
		RunE:  run,
	}
	root.Flags().StringVar(&configPath, "config", "", "path to config file (required)")
	root.Flags().BoolVar(&useStorage, "storage", false, "enable sqlite-backed persistence")
	root.Flags().BoolVar(&resetStorage, "reset-storage", false, "clear and seed persistent tables on startup")
	root.Flags().BoolVar(&flushData, "flush-data", false, "reserved")
	root.MarkFlagRequired("config")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	fmt.Fprintf(os.Stderr, "CSOJ %s - Online Judge Service\n\n", Version)

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	for _, warning := range cfg.CaseCountWarnings() {
		zap.S().Warn(warning)
	}

	var st core.Store
	if useStorage {
		s, err := store.Open("csoj.db")
		if err != nil {
			zap.S().Fatalf("failed to open store: %v", err)
		}
		st = s
	} else {
		st = store.Disabled()
	}

	problemIDs := make([]uint32, len(cfg.Problems))
	caseCounts := make([]int, len(cfg.Problems))
	for i, p := range cfg.Problems {
		problemIDs[i] = p.ID
		caseCounts[i] = len(p.Cases)
	}

	state := core.NewState(st, problemIDs, caseCounts)

	if resetStorage {
		if err := state.ResetStorage(); err != nil {
			zap.S().Fatalf("failed to reset storage: %v", err)
		}
		zap.S().Info("storage reset to freshly constructed defaults")
	} else if err := state.LoadFromStore(); err != nil {
		zap.S().Fatalf("failed to load storage: %v", err)
	}

	engine := api.NewRouter(state, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.BindPort)
	srv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		zap.S().Infof("starting server at %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
