package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stocklens/backend/internal/scheduler"
	"github.com/stocklens/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/stocklens scheduler start
  go run ./cmd/stocklens scheduler list
  go run ./cmd/stocklens scheduler run watchlist_analysis`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- watchlist_analysis: WATCHLIST_SCHEDULE (기본 평일 16:30) 관심종목 분석

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== StockLens Scheduler ===")

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	PrintSuccess(out, "Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Fprintf(out, "  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	stats := sched.GetJobStats()

	fmt.Fprintln(out, "Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Fprintf(out, "  - %s [%s]\n", jobName, stats[jobName].Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Running job: %s\n", jobName)

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sched.RunJobSync(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func initScheduler(cmd *cobra.Command) (*app, *scheduler.Scheduler, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 2. Wire dependencies
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}

	if a.repo == nil {
		a.log.Warn("DATABASE_URL not set, watchlist verdicts will not be persisted")
	}

	// 3. Create scheduler
	sched := scheduler.New(a.log)

	// 4. Register jobs
	watchlist := jobs.NewWatchlistJob(a.analyzer, cfg.Watchlist, cfg.WatchlistSchedule, a.log)
	if err := sched.AddJob(watchlist); err != nil {
		a.Close()
		return nil, nil, err
	}

	return a, sched, nil
}
