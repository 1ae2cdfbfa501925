package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/maxaizer/upwork-hunter/internal/clients/apify"
	"github.com/maxaizer/upwork-hunter/internal/config"
	"github.com/maxaizer/upwork-hunter/internal/logger"
	"github.com/maxaizer/upwork-hunter/internal/services"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "upwork-hunter",
	Short:        "Upwork job hunter",
	Long:         "upwork-hunter scrapes fresh Upwork postings, filters them against client-quality rules and prepares outreach texts for the survivors.",
	SilenceUsage: true,
}

// setup loads config and initializes logging. Every subcommand calls it first
// and defers the returned cleanup.
func setup() (*config.Config, func()) {
	cfg := config.Get()
	logger.Setup(cfg.Logger)
	return cfg, logger.Cleanup
}

func buildIngestion(cfg *config.Config) *services.IngestionService {
	client := apify.NewClient(cfg.Apify.Token)
	if cfg.Apify.MaxRequestsPerSecond > 0 {
		client.SetRateLimit(cfg.Apify.MaxRequestsPerSecond)
	}
	return services.NewIngestionService(client)
}

// splitList turns a comma separated flag or config value into clean items.
func splitList(value string) []string {
	parts := lo.Map(strings.Split(value, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return lo.Compact(parts)
}

// readBio loads the freelancer bio that grounds the generated texts. A
// missing file is tolerated, generation then leans on general expertise only.
func readBio(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnf("failed to read bio file %v: %v", path, err)
		return ""
	}
	return strings.TrimSpace(string(data))
}

func requireAIKey(cfg *config.Config) error {
	if cfg.AI.Key == "" {
		return fmt.Errorf("missing AI key: set AI_KEY or ai.key in config")
	}
	return nil
}
