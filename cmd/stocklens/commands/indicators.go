package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stocklens/backend/internal/contracts"
)

// indicatorsCmd represents the indicators command
var indicatorsCmd = &cobra.Command{
	Use:   "indicators SYMBOL",
	Short: "기술적 지표 계산 (RSI, MACD, Bollinger)",
	Long: `심볼 후보(SYM, SYM.NS, SYM.BO, SYM.NSE)를 순서대로 시도해
가격 시계열을 확보하고 지표를 계산합니다.

Example:
  go run ./cmd/stocklens indicators INFY
  go run ./cmd/stocklens indicators INFY --json`,
	Args: cobra.ExactArgs(1),
	RunE: runIndicators,
}

var indicatorsJSON bool

func init() {
	rootCmd.AddCommand(indicatorsCmd)

	indicatorsCmd.Flags().BoolVar(&indicatorsJSON, "json", false, "JSON 출력")
}

func runIndicators(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	set, err := a.analyzer.ComputeIndicators(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if indicatorsJSON {
		return PrintJSON(out, set)
	}

	PrintHeader(out, fmt.Sprintf("Indicators: %s", set.Symbol))
	printIndicators(out, set)
	PrintSeparator(out)
	return nil
}

func printIndicators(w io.Writer, set contracts.IndicatorSet) {
	PrintKeyValue(w, "Symbol", set.Symbol, 10)
	PrintKeyValue(w, "RSI", formatValue(set.RSI), 10)
	PrintKeyValue(w, "MACD", formatValue(set.MACD), 10)
	PrintKeyValue(w, "Signal", formatValue(set.Signal), 10)
	PrintKeyValue(w, "BB Upper", formatValue(set.BollUpper), 10)
	PrintKeyValue(w, "BB Middle", formatValue(set.BollMiddle), 10)
	PrintKeyValue(w, "BB Lower", formatValue(set.BollLower), 10)
}
