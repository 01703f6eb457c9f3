package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"PortfolioLens/internal/api"
	"PortfolioLens/internal/calculator"
	"PortfolioLens/internal/collector"
	"PortfolioLens/internal/commentary"
	"PortfolioLens/internal/config"
	"PortfolioLens/internal/holdings"
	"PortfolioLens/internal/logger"
	"PortfolioLens/internal/metrics"
	"PortfolioLens/internal/news"
	"PortfolioLens/internal/notifier"
	"PortfolioLens/internal/recorder"
	"PortfolioLens/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	lg := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	lg.Info().Msg("PortfolioLens starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "vstrader":
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	lg.Info().Str("provider", fetcher.Name()).Msg("data source selected")

	col := collector.NewCollector(fetcher, collector.Options{
		Benchmark:     cfg.DataSource.Benchmark,
		RiskBenchmark: cfg.DataSource.RiskBenchmark,
		Workers:       cfg.DataSource.Workers,
		LookbackDays:  cfg.Risk.LookbackDays,
		Risk: calculator.RiskOptions{
			RiskFreeRate:   cfg.Risk.RiskFreeRate,
			Confidence:     cfg.Risk.VaRConfidence,
			PeriodsPerYear: calculator.TradingDaysPerYear,
		},
	}, m, lg)

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, lg)
		if err != nil {
			lg.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	book, err := holdings.NewManager(cfg.Store.StateFile, col, rec, cfg.DataSource.Workers, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("init holdings")
	}

	svc := commentary.NewService(nil, lg)
	if cfg.AI.GeminiAPIKey != "" {
		gc, err := commentary.NewGeminiClient(ctx, cfg.AI.GeminiAPIKey,
			commentary.WithModel(cfg.AI.Model), commentary.WithLogger(lg))
		if err != nil {
			lg.Warn().Err(err).Msg("gemini unavailable, commentary disabled")
		} else {
			svc = commentary.NewService(gc, lg)
		}
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, lg)

	sched := scheduler.NewScheduler(ctx, scheduler.Deps{
		Portfolio:  book,
		Market:     col,
		News:       news.New(cfg.News.FinnhubAPIKey, nil, lg),
		Commentary: svc,
		Notifier:   tn,
		Recorder:   rec,
		Metrics:    m,
		NewsDays:   cfg.News.LookbackDays,
	}, lg)
	if err := sched.RegisterAll(cfg.Schedule.WatchlistCron, cfg.Schedule.PortfolioCron, cfg.Schedule.ReportCron); err != nil {
		lg.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	lg.Info().Msg("telegram polling started")

	var srv *api.Server
	if cfg.HTTP.Addr != "" {
		srv = api.New(api.Config{
			Addr:         cfg.HTTP.Addr,
			Portfolio:    book,
			Market:       col,
			Transactions: rec,
			Gatherer:     prometheus.DefaultGatherer,
			Log:          lg,
		})
		go func() {
			if err := srv.Start(); err != nil {
				lg.Error().Err(err).Msg("HTTP server")
			}
		}()
	}

	if os.Getenv("RUN_ON_START") == "true" {
		lg.Info().Msg("RUN_ON_START enabled, sending report now")
		go sched.RunReportNow()
	}

	lg.Info().Msg("PortfolioLens is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	lg.Info().Msg("shutdown signal received, stopping...")
	cancel()
	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error().Err(err).Msg("HTTP shutdown")
		}
	}
	lg.Info().Msg("PortfolioLens stopped")
}
