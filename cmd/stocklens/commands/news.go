package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// newsCmd represents the news command
var newsCmd = &cobra.Command{
	Use:   "news SYMBOL",
	Short: "뉴스 수집 + 감성 분석",
	Long: `뉴스를 가져와 기사별 감성을 분류하고, 전체 감성과 요약문을 출력합니다.

--save 를 지정하면 기사 분석 결과와 요약을 DB에 저장합니다
(DATABASE_URL 필요).

Example:
  go run ./cmd/stocklens news INFY
  go run ./cmd/stocklens news INFY --webhook https://example.ngrok.app/webhook --save`,
	Args: cobra.ExactArgs(1),
	RunE: runNews,
}

var (
	newsWebhook string
	newsSave    bool
	newsJSON    bool
)

func init() {
	rootCmd.AddCommand(newsCmd)

	newsCmd.Flags().StringVar(&newsWebhook, "webhook", "", "뉴스 webhook URL (NEWS_WEBHOOK_URL 대체)")
	newsCmd.Flags().BoolVar(&newsSave, "save", false, "결과를 DB에 저장")
	newsCmd.Flags().BoolVar(&newsJSON, "json", false, "JSON 출력")
}

func runNews(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if newsWebhook != "" {
		cfg.News.WebhookURL = strings.TrimRight(newsWebhook, "/")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.analyzer.ProcessNews(ctx, args[0])
	if err != nil {
		return fmt.Errorf("process news: %w", err)
	}

	out := cmd.OutOrStdout()

	if newsSave {
		if a.repo == nil {
			PrintWarning(out, "DATABASE_URL not set, skipping --save")
		} else if err := a.analyzer.SaveNews(ctx, report); err != nil {
			return err
		}
	}

	if newsJSON {
		return PrintJSON(out, report)
	}

	PrintHeader(out, fmt.Sprintf("News: %s", report.Symbol))

	widths := []int{9, 6, 60}
	PrintTableHeader(out, []string{"Sentiment", "Score", "Headline"}, widths)
	for _, article := range report.Articles {
		PrintTableRow(out, []string{string(article.Sentiment), formatValue(article.Score), article.Headline}, widths)
	}
	PrintSeparator(out)

	if s := report.OverallSentiment; s != nil {
		PrintKeyValue(out, "Overall", string(s.Overall), 8)
		PrintKeyValue(out, "Articles", fmt.Sprintf("%d (+%d / -%d / =%d)", s.Total, s.Positive, s.Negative, s.Neutral), 8)
	}
	fmt.Fprintf(out, "\n%s\n", report.SummaryText)

	if newsSave && a.repo != nil {
		PrintSuccess(out, "Saved article analysis and summary")
	}
	return nil
}
