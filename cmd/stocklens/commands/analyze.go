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

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "종목 복합 분석 (기술적 지표 + 뉴스)",
	Long: `가격 시계열을 확보하고 지표를 계산한 뒤, 뉴스 감성과 결합해
복합 점수와 라벨(Positive/Negative/Neutral)을 출력합니다.

데이터를 확보하지 못해도 실패하지 않고 error 필드가 채워진
중립 결과를 출력합니다.

Example:
  go run ./cmd/stocklens analyze INFY
  go run ./cmd/stocklens analyze TCS --no-news --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeNoNews bool
	analyzeJSON   bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeNoNews, "no-news", false, "기술적 지표만 사용")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "JSON 출력")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	symbol := args[0]
	useNews := a.analyzer.NewsEnabled() && !analyzeNoNews

	verdict := a.analyzer.Analyze(ctx, symbol, useNews)

	out := cmd.OutOrStdout()
	if analyzeJSON {
		return PrintJSON(out, verdict)
	}

	printVerdict(out, symbol, verdict)
	return nil
}

func printVerdict(w io.Writer, symbol string, v contracts.CompositeVerdict) {
	PrintHeader(w, fmt.Sprintf("Analysis: %s", symbol))
	PrintKeyValue(w, "Label", string(v.Label), 10)
	PrintKeyValue(w, "Score", fmt.Sprintf("%.2f", v.Score), 10)

	if v.Indicators != nil {
		PrintSeparator(w)
		printIndicators(w, *v.Indicators)
	}

	if v.NewsSentiment != nil {
		PrintSeparator(w)
		n := v.NewsSentiment
		PrintKeyValue(w, "News", string(n.Overall), 10)
		PrintKeyValue(w, "Articles", fmt.Sprintf("%d (+%d / -%d / =%d)", n.Total, n.Positive, n.Negative, n.Neutral), 10)
	}

	PrintSeparator(w)
	if v.Degraded() {
		PrintWarning(w, v.Error)
		return
	}
	PrintSuccess(w, "Analysis completed")
}
