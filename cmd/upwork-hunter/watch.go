package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/upwork-hunter/internal/clients/gemini"
	"github.com/maxaizer/upwork-hunter/internal/clients/google"
	"github.com/maxaizer/upwork-hunter/internal/config"
	"github.com/maxaizer/upwork-hunter/internal/events"
	"github.com/maxaizer/upwork-hunter/internal/ingest"
	"github.com/maxaizer/upwork-hunter/internal/metrics"
	"github.com/maxaizer/upwork-hunter/internal/notifier"
	"github.com/maxaizer/upwork-hunter/internal/repositories"
	"github.com/maxaizer/upwork-hunter/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scheduled scraping as a daemon",
	Long:  "Run the scrape pipeline on the configured schedule, optionally chaining outreach after each pass; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {

	cfg, cleanup := setup()
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartMetricsServer()

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		return err
	}
	defer dbContext.Close()
	if err = dbContext.Migrate(); err != nil {
		return err
	}
	ledger := repositories.NewProcessedJobsRepository(dbContext.DB)

	cleaner, err := services.NewLedgerCleaner(ledger, cfg.Watch.LedgerExpirationDays)
	if err != nil {
		return err
	}
	defer cleaner.Stop()

	bus := EventBus.New()

	if cfg.Watch.OutreachEnabled {
		closeOutreach, err := subscribeOutreach(ctx, cfg, bus, ledger)
		if err != nil {
			return err
		}
		defer closeOutreach()
	}

	if cfg.Watch.TelegramToken != "" {
		tg, err := notifier.NewTelegram(cfg.Watch.TelegramToken, cfg.Watch.TelegramChatID, bus)
		if err != nil {
			return err
		}
		defer tg.Close()
	}

	watcher, err := services.NewWatcher(bus, buildIngestion(cfg), services.IngestionRequest{
		Queries: splitList(cfg.Watch.SearchQueries),
		Limit:   cfg.Watch.Limit,
		Criteria: ingest.Criteria{
			RequireVerifiedPayment: cfg.Watch.VerifiedPayment,
			MinSpent:               cfg.Watch.MinSpent,
			ExperienceLevels:       splitList(cfg.Watch.ExperienceLevels),
			DaysBack:               cfg.Watch.DaysBack,
		},
		OutputPath: cfg.Watch.OutputPath,
	}, cfg.Watch.Schedule)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	<-ctx.Done()
	log.Info("shutting down services...")
	return nil
}

// subscribeOutreach chains the outreach pipeline to every completed scrape
// pass. The event only signals that a fresh jobs file exists; the pipeline
// still reads everything from the file itself.
func subscribeOutreach(ctx context.Context, cfg *config.Config, bus EventBus.Bus,
	ledger *repositories.ProcessedJobs) (func(), error) {

	if err := requireAIKey(cfg); err != nil {
		return nil, err
	}

	aiClient, err := gemini.NewClient(ctx, cfg.AI.Key, cfg.AI.Model)
	if err != nil {
		return nil, err
	}
	aiClient.SetMinuteRateLimit(cfg.AI.MaxRequestsPerMinute)
	aiClient.SetDayRateLimit(cfg.AI.MaxRequestsPerDay)

	docs, err := google.NewDocsClient(ctx, cfg.Google.CredentialsFile)
	if err != nil {
		return nil, err
	}
	sheets, err := google.NewSheetsClient(ctx, cfg.Google.CredentialsFile)
	if err != nil {
		return nil, err
	}

	service := services.NewOutreachService(
		services.NewAIService(aiClient),
		docs, sheets, ledger, &sync.Mutex{},
		readBio(cfg.Google.BioFile), 1,
	)

	handler := func(event events.IngestCompleted) {
		if event.Admitted == 0 {
			return
		}
		_, err := service.Run(ctx, services.OutreachRequest{
			InputPath: event.Path,
			SheetID:   cfg.Watch.SheetID,
		})
		if err != nil {
			log.Errorf("chained outreach failed: %v", err)
		}
	}
	if err = bus.Subscribe(events.IngestCompletedTopic, handler); err != nil {
		return nil, err
	}

	return func() {
		bus.Unsubscribe(events.IngestCompletedTopic, handler)
		_ = aiClient.Close()
	}, nil
}
