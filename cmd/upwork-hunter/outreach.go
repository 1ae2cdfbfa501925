package main

import (
	"os/signal"
	"sync"
	"syscall"

	"github.com/maxaizer/upwork-hunter/internal/clients/gemini"
	"github.com/maxaizer/upwork-hunter/internal/clients/google"
	"github.com/maxaizer/upwork-hunter/internal/repositories"
	"github.com/maxaizer/upwork-hunter/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var outreachFlags struct {
	input   string
	workers int
	sheetID string
	dryRun  bool
	output  string
}

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Generate outreach texts for scraped jobs",
	Long:  "Read a jobs file, generate a cover letter and proposal per job, store them as Google Docs and append each job to the bookkeeping sheet.",
	RunE:  runOutreach,
}

func init() {
	outreachCmd.Flags().StringVar(&outreachFlags.input, "input", "", "path of the jobs file to process")
	outreachCmd.Flags().IntVar(&outreachFlags.workers, "workers", 1, "number of concurrent job workers")
	outreachCmd.Flags().StringVar(&outreachFlags.sheetID, "sheet-id", "", "existing spreadsheet ID, a new one is created when empty")
	outreachCmd.Flags().BoolVar(&outreachFlags.dryRun, "dry-run", false, "generate texts without touching Google Docs or Sheets")
	outreachCmd.Flags().StringVarP(&outreachFlags.output, "output", "o", "", "optional path for the per-job results file")
	_ = outreachCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(outreachCmd)
}

func runOutreach(cmd *cobra.Command, args []string) error {

	cfg, cleanup := setup()
	defer cleanup()

	if err := requireAIKey(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aiClient, err := gemini.NewClient(ctx, cfg.AI.Key, cfg.AI.Model)
	if err != nil {
		return err
	}
	defer aiClient.Close()
	aiClient.SetMinuteRateLimit(cfg.AI.MaxRequestsPerMinute)
	aiClient.SetDayRateLimit(cfg.AI.MaxRequestsPerDay)

	var docs *google.DocsClient
	var sheets *google.SheetsClient
	if !outreachFlags.dryRun {
		if docs, err = google.NewDocsClient(ctx, cfg.Google.CredentialsFile); err != nil {
			return err
		}
		if sheets, err = google.NewSheetsClient(ctx, cfg.Google.CredentialsFile); err != nil {
			return err
		}
	}

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		return err
	}
	defer dbContext.Close()
	if err = dbContext.Migrate(); err != nil {
		return err
	}
	ledger := repositories.NewProcessedJobsRepository(dbContext.DB)

	service := services.NewOutreachService(
		services.NewAIService(aiClient),
		docs, sheets, ledger, &sync.Mutex{},
		readBio(cfg.Google.BioFile),
		outreachFlags.workers,
	)

	results, err := service.Run(ctx, services.OutreachRequest{
		InputPath:   outreachFlags.input,
		SheetID:     outreachFlags.sheetID,
		DryRun:      outreachFlags.dryRun,
		ResultsPath: outreachFlags.output,
	})
	if err != nil {
		return err
	}

	succeeded := 0
	failed := 0
	for _, result := range results {
		switch result.Status {
		case services.StatusSuccess:
			succeeded++
		case services.StatusFailed:
			failed++
		}
	}
	log.Infof("outreach finished: %v succeeded, %v failed, %v total", succeeded, failed, len(results))
	return nil
}
