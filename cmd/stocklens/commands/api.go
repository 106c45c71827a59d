package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stocklens/backend/internal/api"
	"github.com/stocklens/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                      - Health check
  GET  /api/sentiment?stock=SYM     - 뉴스 감성 분석
  GET  /api/analyze/{symbol}        - 복합 분석 (?news=true|false)
  GET  /api/indicators/{symbol}     - 기술적 지표
  GET  /api/verdicts/{symbol}       - 저장된 분석 이력 (DB 필요)
  GET  /metrics                     - Prometheus (METRICS_PORT)

Example:
  go run ./cmd/stocklens api
  go run ./cmd/stocklens api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (PORT 대체)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "=== StockLens API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Wire dependencies
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Create handlers
	var verdicts handlers.VerdictReader
	if a.repo != nil {
		verdicts = a.repo
	}
	analysisHandler := handlers.NewAnalysisHandler(a.analyzer, verdicts, log)
	sentimentHandler := handlers.NewSentimentHandler(a.analyzer, log)

	// 4. Create router + servers
	router := api.NewRouter(analysisHandler, sentimentHandler, log)
	server := api.New(cfg, log, router)

	servers := []*api.Server{server}
	if cfg.MetricsEnabled {
		servers = append(servers, api.NewMetricsServer(cfg, log))
	}

	// 5. Start servers with graceful shutdown
	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *api.Server) {
			if err := srv.Start(); err != nil {
				errCh <- err
			}
		}(srv)
	}

	log.Info("API server started successfully")
	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		log.WithError(serveErr).Error("Server failed")
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	log.Info("Server stopped")
	return serveErr
}
