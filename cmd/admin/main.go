package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"tandem/internal/domain/query"
	"tandem/internal/scheduler"
	"tandem/internal/shared/config"
)

const usage = `Tandem Admin CLI - Management commands for the Tandem API

Usage:
  admin <command> [options]

Commands:
  budget-sweep   Run the budget threshold sweep once and report the outcome
  rate-refresh   Refresh cached exchange rates for the configured warm pairs
  ask            Answer a natural-language query for a user from the terminal

Examples:
  # Sweep all users with configured thresholds
  admin budget-sweep

  # Sweep with a custom timeout
  admin budget-sweep --timeout=10m

  # Warm the rate cache
  admin rate-refresh

  # Refresh a specific pair
  admin rate-refresh --pair=USD/BRL

  # Ask a question as user 42
  admin ask --user-id=42 "how much did we spend on food this month?"
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	_ = godotenv.Load()

	switch os.Args[1] {
	case "budget-sweep":
		runBudgetSweep(os.Args[2:])
	case "rate-refresh":
		runRateRefresh(os.Args[2:])
	case "ask":
		runAsk(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		fmt.Print(usage + "\n")
		os.Exit(1)
	}
}

func setup(timeout time.Duration) (*App, *config.Config, context.Context, context.CancelFunc) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	app, err := NewApp(ctx, cfg)
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	return app, cfg, ctx, cancel
}

func runBudgetSweep(args []string) {
	fs := flag.NewFlagSet("budget-sweep", flag.ExitOnError)
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid timeout format: %v\n", err)
		os.Exit(1)
	}

	app, _, ctx, cancel := setup(timeout)
	defer cancel()
	defer app.Close()

	start := time.Now()
	report, err := app.Sweeper.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Budget sweep ===\n")
	fmt.Printf("  Users evaluated: %d\n", report.Users)
	fmt.Printf("  Users alerted:   %d\n", report.Alerted)
	fmt.Printf("  Failures:        %d\n", report.Failures)
	fmt.Printf("  Took:            %v\n", time.Since(start))

	if report.Failures > 0 {
		os.Exit(1)
	}
}

func runRateRefresh(args []string) {
	fs := flag.NewFlagSet("rate-refresh", flag.ExitOnError)
	pair := fs.String("pair", "", "Single pair to refresh (FROM/TO); defaults to configured warm pairs")
	timeoutStr := fs.String("timeout", "2m", "Timeout for the operation")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid timeout format: %v\n", err)
		os.Exit(1)
	}

	app, cfg, ctx, cancel := setup(timeout)
	defer cancel()
	defer app.Close()

	pairs := cfg.Rates.WarmPairs
	if *pair != "" {
		pairs = []string{*pair}
	}

	jobs := scheduler.RateRefreshJobs(app.Rates, pairs)
	if len(jobs) == 0 {
		fmt.Fprintln(os.Stderr, "No valid pairs to refresh")
		os.Exit(1)
	}

	failed := 0
	for _, job := range jobs {
		if err := job.Execute(ctx); err != nil {
			fmt.Printf("  %-8s FAILED: %v\n", job.Key(), err)
			failed++
			continue
		}
		fmt.Printf("  %-8s ok\n", job.Key())
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	userIDStr := fs.String("user-id", "", "User ID to ask as (required)")
	langPref := fs.String("lang", "", "Preferred language (en, pt-BR)")
	timeoutStr := fs.String("timeout", "30s", "Timeout for the operation")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" || fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: admin ask --user-id=<id> \"question\"")
		os.Exit(1)
	}

	userID, err := strconv.ParseInt(*userIDStr, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user ID %q: %v\n", *userIDStr, err)
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid timeout format: %v\n", err)
		os.Exit(1)
	}

	app, _, ctx, cancel := setup(timeout)
	defer cancel()
	defer app.Close()

	req := query.Request{
		UserID:   userID,
		Text:     fs.Arg(0),
		Language: *langPref,
	}
	if u, err := app.Users.GetByID(ctx, userID); err == nil {
		if req.Language == "" {
			req.Language = u.PreferredLanguage
		}
		req.BaseCurrency = u.BaseCurrency
	}

	resp, err := app.Engine.Answer(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n[%s / %s]\n%s\n", resp.Intent, resp.Language, resp.Text)
}
