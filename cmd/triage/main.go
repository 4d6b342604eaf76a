package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helpdeskhq/support-triage/internal/ai"
	"github.com/helpdeskhq/support-triage/internal/ai/gemini"
	"github.com/helpdeskhq/support-triage/internal/ai/hfclass"
	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/logging"
	"github.com/helpdeskhq/support-triage/internal/pipeline"
	"github.com/helpdeskhq/support-triage/internal/respond"
	"github.com/helpdeskhq/support-triage/internal/store"
	"github.com/helpdeskhq/support-triage/internal/triage"
	"github.com/helpdeskhq/support-triage/internal/version"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	case "version":
		fmt.Println(version.Current)
		return
	case "run":
		os.Exit(runBatch(ctx, os.Args[2:]))
	case "list":
		os.Exit(runList(ctx, os.Args[2:]))
	case "show":
		os.Exit(runShow(ctx, os.Args[2:]))
	case "send":
		os.Exit(runSend(ctx, os.Args[2:]))
	case "stats":
		os.Exit(runStats(ctx, os.Args[2:]))
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runBatch(ctx context.Context, args []string) int {
	env, err := loadOptionsFromEnv()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", logging.RedactSecrets(err.Error()))
		return 2
	}

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var inputPath string
	var dbPath string
	var configPath string
	var metricsAddr string
	var workers int
	var maxRetries int
	var rateLimitRPS float64
	var queueCapacity int
	var geminiModel string
	var geminiBaseURL string
	var classifierURL string
	var verbose bool

	fs.StringVar(&inputPath, "input", "", "Input CSV file path (sender, subject, body, sent_date columns)")
	fs.StringVar(&dbPath, "db", env.DBPath, "SQLite database path (env: TRIAGE_DB)")
	fs.StringVar(&configPath, "config", "", "Optional YAML config overlay")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "If set, serve Prometheus metrics on this address (e.g. :9090)")
	fs.IntVar(&workers, "workers", env.Workers, "Number of concurrent analysis workers (env: WORKERS)")
	fs.IntVar(&maxRetries, "max-retries", env.MaxRetries, "Max retries per email for transient failures (env: MAX_RETRIES)")
	fs.Float64Var(&rateLimitRPS, "rate-limit-rps", env.RateLimitRPS, "Global request rate limit (RPS), 0 disables (env: RATE_LIMIT_RPS)")
	fs.IntVar(&queueCapacity, "queue-capacity", env.QueueCapacity, "Priority queue capacity (env: QUEUE_CAPACITY)")
	fs.StringVar(&geminiModel, "gemini-model", env.GeminiModel, "Gemini model name (env: GEMINI_MODEL)")
	fs.StringVar(&geminiBaseURL, "gemini-base-url", env.GeminiBaseURL, "Gemini API base URL override (env: GEMINI_BASE_URL)")
	fs.StringVar(&classifierURL, "classifier-url", env.ClassifierURL, "Sentiment classifier endpoint override (env: CLASSIFIER_URL)")
	fs.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inputPath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "run requires --input")
		return 2
	}

	log, err := logging.New(verbose)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logging error: %s\n", err)
		return 2
	}
	defer log.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", logging.RedactSecrets(err.Error()))
		return 2
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics server stopped", logging.RedactedError(err))
			}
		}()
		defer srv.Shutdown(ctx)
	}

	var generator ai.Generator
	if env.GeminiAPIKey != "" {
		generator, err = gemini.New(ctx, gemini.Config{
			APIKey:  env.GeminiAPIKey,
			Model:   geminiModel,
			BaseURL: geminiBaseURL,
		})
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "gemini config error: %s\n", logging.RedactSecrets(err.Error()))
			return 2
		}
	} else {
		log.Info("GEMINI_API_KEY not set, using template responses")
	}

	var classifier ai.SentimentClassifier
	if env.ClassifierToken != "" {
		classifier, err = hfclass.New(hfclass.Config{
			Token: env.ClassifierToken,
			URL:   classifierURL,
		})
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "classifier config error: %s\n", logging.RedactSecrets(err.Error()))
			return 2
		}
	} else {
		log.Info("HUGGINGFACE_API_KEY not set, skipping classifier tier")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "store error: %s\n", logging.RedactSecrets(err.Error()))
		return 1
	}
	defer db.Close()

	resolver := triage.NewSentimentResolver(cfg.Sentiment, triage.ResolverOptions{
		Classifier: classifier,
		Generator:  generator,
	}, log)
	analyzer := triage.NewAnalyzer(cfg, resolver, log)
	responder := respond.NewResponder(cfg.Templates, generator, log)
	p := pipeline.New(cfg, analyzer, responder, db, pipeline.Options{
		QueueCapacity: queueCapacity,
		Workers:       workers,
		MaxRetries:    maxRetries,
		RateLimitRPS:  rateLimitRPS,
	}, log)

	in, err := os.Open(inputPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "open input: %s\n", err)
		return 1
	}
	defer in.Close()

	sum, err := p.Run(ctx, in)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "run failed: %s\n", logging.RedactSecrets(err.Error()))
		return 1
	}

	fmt.Printf("Processed %d emails (%d support) in %s\n", sum.Ingested, sum.Admitted, sum.Elapsed.Round(time.Millisecond))
	fmt.Printf("  analyzed: %d  responded: %d  duplicates: %d  failed: %d  rejected: %d\n",
		sum.Analyzed, sum.Responded, sum.Duplicates, sum.Failed, sum.Rejected)
	return 0
}

func runList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dbPath := fs.String("db", envString("TRIAGE_DB", "data/triage.db"), "SQLite database path (env: TRIAGE_DB)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "store error: %s\n", err)
		return 1
	}
	defer db.Close()

	records, err := db.ListEmails(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "list failed: %s\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Println("No emails stored.")
		return 0
	}

	fmt.Printf("%-5s %-8s %-9s %-10s %-5s %-30s %s\n", "ID", "PRIORITY", "SENT.", "STATUS", "RESP", "SENDER", "SUBJECT")
	for _, r := range records {
		resp := "-"
		if r.HasResponse {
			resp = "yes"
		}
		fmt.Printf("%-5d %-8s %-9s %-10s %-5s %-30s %s\n",
			r.ID, r.Priority, r.Sentiment, r.Status, resp, truncate(r.Sender, 30), truncate(r.Subject, 50))
	}
	return 0
}

func runShow(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dbPath := fs.String("db", envString("TRIAGE_DB", "data/triage.db"), "SQLite database path (env: TRIAGE_DB)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	id, ok := parseID(fs.Args())
	if !ok {
		_, _ = fmt.Fprintln(os.Stderr, "show requires an email id")
		return 2
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "store error: %s\n", err)
		return 1
	}
	defer db.Close()

	rec, err := db.GetEmail(ctx, id)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "show failed: %s\n", err)
		return 1
	}
	if rec == nil {
		_, _ = fmt.Fprintf(os.Stderr, "no email with id %d\n", id)
		return 1
	}

	fmt.Printf("From:      %s\n", rec.Sender)
	fmt.Printf("Subject:   %s\n", rec.Subject)
	fmt.Printf("Sent:      %s\n", rec.SentDate.Format(time.RFC1123))
	fmt.Printf("Priority:  %s\n", rec.Priority)
	fmt.Printf("Sentiment: %s (%.2f)\n", rec.Sentiment, rec.SentimentConfidence)
	fmt.Printf("Status:    %s\n\n", rec.Status)
	fmt.Println(rec.Body)

	resp, err := db.GetResponse(ctx, id)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load response: %s\n", err)
		return 1
	}
	if resp == nil {
		fmt.Println("\n-- no response drafted --")
		return 0
	}
	sent := "draft"
	if resp.IsSent {
		sent = "sent"
	}
	fmt.Printf("\n-- response (%s) --\n%s\n", sent, resp.Final)
	return 0
}

func runSend(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dbPath := fs.String("db", envString("TRIAGE_DB", "data/triage.db"), "SQLite database path (env: TRIAGE_DB)")
	finalText := fs.String("final", "", "Replace the draft with this text before sending")
	draft := fs.Bool("draft", false, "Save the edit without marking the response sent")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	id, ok := parseID(fs.Args())
	if !ok {
		_, _ = fmt.Fprintln(os.Stderr, "send requires an email id")
		return 2
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "store error: %s\n", err)
		return 1
	}
	defer db.Close()

	text := *finalText
	if text == "" {
		resp, err := db.GetResponse(ctx, id)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "load response: %s\n", err)
			return 1
		}
		if resp == nil {
			_, _ = fmt.Fprintf(os.Stderr, "email %d has no drafted response\n", id)
			return 1
		}
		text = resp.Final
	}

	if err := db.MarkSent(ctx, id, text, !*draft); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "send failed: %s\n", err)
		return 1
	}
	if *draft {
		fmt.Printf("Draft for email %d updated.\n", id)
	} else {
		fmt.Printf("Response for email %d marked sent.\n", id)
	}
	return 0
}

func runStats(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dbPath := fs.String("db", envString("TRIAGE_DB", "data/triage.db"), "SQLite database path (env: TRIAGE_DB)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "store error: %s\n", err)
		return 1
	}
	defer db.Close()

	stats, err := db.Stats(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "stats failed: %s\n", err)
		return 1
	}

	fmt.Printf("Emails:    %d total, %d pending, %d resolved\n", stats.TotalEmails, stats.PendingEmails, stats.ResolvedEmails)
	fmt.Printf("Responses: %d drafted, %d without\n", stats.WithResponses, stats.WithoutResponses)
	fmt.Println("By priority:")
	for _, p := range []triage.Priority{triage.PriorityUrgent, triage.PriorityHigh, triage.PriorityNormal, triage.PriorityLow} {
		if n := stats.PriorityDistribution[string(p)]; n > 0 {
			fmt.Printf("  %-7s %d\n", p, n)
		}
	}
	fmt.Println("By sentiment:")
	for label, n := range stats.SentimentDistribution {
		fmt.Printf("  %-9s %d\n", label, n)
	}
	return 0
}

func usage(w *os.File) {
	_, _ = fmt.Fprintf(w, `triage: support email triage pipeline

Usage:
  triage <command> [flags]

Commands:
  run      Ingest a CSV batch: analyze, queue, store, and draft responses
  list     List stored emails in priority order
  show     Show one email with its analysis and drafted response
  send     Mark a drafted response as sent (optionally editing it first)
  stats    Print stored email analytics
  version  Print the release version

Examples:
  triage run --input emails.csv --db data/triage.db
  triage show 3
  triage send 3 --final "Custom reply text"

Environment:
  GEMINI_API_KEY       Gemini API key (optional; template fallback without it)
  GEMINI_MODEL         Gemini model name (default gemini-2.0-flash)
  GEMINI_BASE_URL      Optional base URL override (proxies/testing)
  HUGGINGFACE_API_KEY  Hosted sentiment classifier token (optional)
  CLASSIFIER_URL       Classifier endpoint override
  TRIAGE_DB            SQLite database path (default data/triage.db)
  WORKERS              Concurrent analysis workers (default 4)
  MAX_RETRIES          Retries per transient failure (default 2)
  RATE_LIMIT_RPS       Global request rate limit, 0 disables
  QUEUE_CAPACITY       Priority queue capacity (default 1000)

`)
}

type envOptions struct {
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	ClassifierToken string
	ClassifierURL   string
	DBPath          string
	Workers         int
	MaxRetries      int
	RateLimitRPS    float64
	QueueCapacity   int
}

func loadOptionsFromEnv() (envOptions, error) {
	workers, err := envInt("WORKERS", 4)
	if err != nil {
		return envOptions{}, err
	}
	maxRetries, err := envInt("MAX_RETRIES", 2)
	if err != nil {
		return envOptions{}, err
	}
	rateLimitRPS, err := envFloat("RATE_LIMIT_RPS", 0)
	if err != nil {
		return envOptions{}, err
	}
	queueCapacity, err := envInt("QUEUE_CAPACITY", 1000)
	if err != nil {
		return envOptions{}, err
	}

	return envOptions{
		GeminiAPIKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:     envString("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:   strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		ClassifierToken: strings.TrimSpace(os.Getenv("HUGGINGFACE_API_KEY")),
		ClassifierURL:   strings.TrimSpace(os.Getenv("CLASSIFIER_URL")),
		DBPath:          envString("TRIAGE_DB", "data/triage.db"),
		Workers:         workers,
		MaxRetries:      maxRetries,
		RateLimitRPS:    rateLimitRPS,
		QueueCapacity:   queueCapacity,
	}, nil
}

func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func envString(varName, fallback string) string {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(varName string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envFloat(varName string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
