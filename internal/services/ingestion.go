package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maxaizer/upwork-hunter/internal/clients/apify"
	"github.com/maxaizer/upwork-hunter/internal/domain/models"
	"github.com/maxaizer/upwork-hunter/internal/ingest"
	"github.com/maxaizer/upwork-hunter/internal/logger"
	"github.com/maxaizer/upwork-hunter/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type jobsFetcher interface {
	FetchJobs(ctx context.Context, parameters apify.SearchParameters) ([]models.RawJob, error)
}

// IngestionService runs the ingestion pipeline: fetch raw jobs from the
// provider, filter them, normalize the survivors and write the intermediate
// file that hands off to the outreach pipeline.
type IngestionService struct {
	fetcher jobsFetcher
}

func NewIngestionService(fetcher jobsFetcher) *IngestionService {
	return &IngestionService{fetcher: fetcher}
}

type IngestionRequest struct {
	Queries    []string
	Limit      int
	Criteria   ingest.Criteria
	OutputPath string
}

type IngestionResult struct {
	Fetched  int
	Admitted int
}

// Run executes one ingestion pass. Only a provider fetch failure is fatal;
// individual records never are, the core degrades them to typed defaults.
func (s *IngestionService) Run(ctx context.Context, request IngestionRequest) (IngestionResult, error) {

	start := time.Now()
	raw, err := s.fetcher.FetchJobs(ctx, apify.SearchParameters{
		Queries:  request.Queries,
		Limit:    request.Limit,
		DaysBack: request.Criteria.DaysBack,
	})
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApifyApi).
			Errorf("failed to fetch jobs: %v", err)
		return IngestionResult{}, fmt.Errorf("fetch failed: %w", err)
	}

	log.Infof("fetched %v raw jobs", len(raw))
	metrics.FetchedJobsCounter.Add(float64(len(raw)))

	admitted := s.filterJobs(raw, request.Criteria)
	log.Infof("filtered down to %v jobs", len(admitted))

	normalized := ingest.TransformAll(admitted)
	if err = writeJobsFile(request.OutputPath, normalized); err != nil {
		return IngestionResult{}, err
	}

	log.Infof("saved %v jobs to %v", len(normalized), request.OutputPath)
	return IngestionResult{Fetched: len(raw), Admitted: len(admitted)}, nil
}

func (s *IngestionService) filterJobs(raw []models.RawJob, criteria ingest.Criteria) []models.RawJob {

	filter := ingest.NewFilter(criteria)

	admitted := make([]models.RawJob, 0, len(raw))
	for _, job := range raw {
		ok, reason := filter.Admit(job)
		if !ok {
			metrics.RejectedJobsCounter.WithLabelValues(reason).Inc()
			log.Debugf("rejected job %v: %v", ingest.ResolveJobURL(job), reason)
			continue
		}
		admitted = append(admitted, job)
	}

	metrics.AdmittedJobsCounter.Add(float64(len(admitted)))
	return admitted
}

// writeJobsFile writes the hand-off contract: a pretty-printed, UTF-8 JSON
// array with non-ASCII characters left intact.
func writeJobsFile(path string, jobs []models.NormalizedJob) error {

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err = encoder.Encode(jobs); err != nil {
		return fmt.Errorf("failed to encode jobs: %w", err)
	}

	return nil
}
