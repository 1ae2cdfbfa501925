package main

import (
	"os/signal"
	"syscall"

	"github.com/maxaizer/upwork-hunter/internal/ingest"
	"github.com/maxaizer/upwork-hunter/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scrapeFlags struct {
	searchQueries   string
	limit           int
	days            int
	verifiedPayment bool
	minSpent        float64
	experience      string
	output          string
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch and filter fresh job postings",
	Long:  "Fetch fresh postings from the scraping provider, apply the admission rules and write the survivors to a jobs file.",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeFlags.searchQueries, "search-queries", "workflow automation", "comma separated search queries")
	scrapeCmd.Flags().IntVar(&scrapeFlags.limit, "limit", 50, "maximum number of postings to fetch")
	scrapeCmd.Flags().IntVar(&scrapeFlags.days, "days", 1, "how many days back to search")
	scrapeCmd.Flags().BoolVar(&scrapeFlags.verifiedPayment, "verified-payment", false, "only admit clients with verified payment")
	scrapeCmd.Flags().Float64Var(&scrapeFlags.minSpent, "min-spent", 1000, "minimum client historical spend in USD")
	scrapeCmd.Flags().StringVar(&scrapeFlags.experience, "experience", "", "comma separated allowed experience levels, empty admits all")
	scrapeCmd.Flags().StringVarP(&scrapeFlags.output, "output", "o", "", "path of the jobs file to write")
	_ = scrapeCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {

	cfg, cleanup := setup()
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingestion := buildIngestion(cfg)
	result, err := ingestion.Run(ctx, services.IngestionRequest{
		Queries: splitList(scrapeFlags.searchQueries),
		Limit:   scrapeFlags.limit,
		Criteria: ingest.Criteria{
			RequireVerifiedPayment: scrapeFlags.verifiedPayment,
			MinSpent:               scrapeFlags.minSpent,
			ExperienceLevels:       splitList(scrapeFlags.experience),
			DaysBack:               scrapeFlags.days,
		},
		OutputPath: scrapeFlags.output,
	})
	if err != nil {
		return err
	}

	log.Infof("scrape finished: %v fetched, %v admitted", result.Fetched, result.Admitted)
	return nil
}
