package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"HoldingsWatch/internal/calendar"
	"HoldingsWatch/internal/collector"
	"HoldingsWatch/internal/config"
	"HoldingsWatch/internal/diskcache"
	"HoldingsWatch/internal/holdings"
	"HoldingsWatch/internal/notifier"
	"HoldingsWatch/internal/ratelimit"
	"HoldingsWatch/internal/report"
	"HoldingsWatch/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] HoldingsWatch starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if len(os.Args) > 1 {
		cfg.Funds = nil
		for _, arg := range os.Args[1:] {
			cfg.Funds = append(cfg.Funds, strings.ToUpper(arg))
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	cal, err := calendar.New(cfg.Calendar.Timezone)
	if err != nil {
		log.Fatalf("[FATAL] calendar: %v", err)
	}
	mode, err := report.ParseMode(cfg.DataSource.Mode)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Init fetchers
	var series collector.SeriesFetcher
	var quotes collector.QuoteFetcher
	switch mode {
	case report.ModeRealtime:
		quotes = collector.NewIEXFetcher(cfg.IEX.BaseURL, cfg.IEX.Token, cfg.Proxy)
	default:
		cache := diskcache.New(cfg.Cache.Dir, cal)
		throttle := ratelimit.NewThrottle(cfg.AlphaVantage.CallsPerMinute)
		av := collector.NewAlphaVantageFetcher(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey, cfg.Proxy, cache, throttle)
		av.Cooldown = cfg.AlphaVantage.QuotaCooldown
		series = av
		log.Printf("[INFO] cache dir %s, %d calls/min", cfg.Cache.Dir, cfg.AlphaVantage.CallsPerMinute)
	}
	col := collector.NewCollector(series, quotes, cal)
	log.Printf("[INFO] data source: %s", col)

	// Init holdings source
	var source holdings.Source
	if cfg.Holdings.Source == "html" {
		hs := holdings.NewHTMLSource(cfg.Holdings.HTML.URLTemplate)
		hs.RowSelector = cfg.Holdings.HTML.RowSelector
		hs.SymbolColumn = cfg.Holdings.HTML.SymbolColumn
		hs.WeightColumn = cfg.Holdings.HTML.WeightColumn
		source = hs
	} else {
		source = holdings.NewStaticSource(cfg.Holdings.Static)
	}

	// Init notifiers
	notifiers := notifier.Multi{notifier.NewConsole(os.Stdout)}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.Enabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notifiers = append(notifiers, tn)
		log.Println("[INFO] Telegram delivery enabled")
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := report.NewRunner(source, col, mode, cal)
	sched := scheduler.NewScheduler(ctx, runner, notifiers, cfg.Funds)

	if cfg.Schedule.ReportCron == "" {
		if err := sched.RunNow(); err != nil {
			log.Printf("[ERROR] %v", err)
			cancel()
			os.Exit(1)
		}
		return
	}

	if err := sched.Register(cfg.Schedule.ReportCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, reporting now")
		go func() { _ = sched.RunNow() }()
	}

	log.Printf("[INFO] HoldingsWatch is running (%s). Press Ctrl+C to stop.", cfg.Schedule.ReportCron)
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}
