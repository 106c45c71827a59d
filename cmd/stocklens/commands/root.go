package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stocklens",
	Short: "StockLens - 기술적 지표 + 뉴스 감성 종목 분석",
	Long: `StockLens Unified CLI

가격 시계열 확보, 기술적 지표 계산, 뉴스 감성 분류,
복합 점수 산출까지 한 번에 수행합니다.

Usage:
  go run ./cmd/stocklens [command]

Examples:
  go run ./cmd/stocklens analyze INFY
  go run ./cmd/stocklens indicators TCS
  go run ./cmd/stocklens news RELIANCE --save
  go run ./cmd/stocklens api --port 8080
  go run ./cmd/stocklens scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
