package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/maxaizer/upwork-hunter/internal/domain/models"
	"github.com/maxaizer/upwork-hunter/internal/logger"
	"github.com/maxaizer/upwork-hunter/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

type documentCreator interface {
	CreateDocument(ctx context.Context, title string, content string) (string, error)
}

type sheetWriter interface {
	CreateSpreadsheet(ctx context.Context, title string) (string, error)
	AppendRow(ctx context.Context, spreadsheetID string, row []any) error
}

type processedJobsLedger interface {
	IsProcessed(ctx context.Context, jobID string) (bool, error)
	Record(ctx context.Context, jobID string, title string, docURL string) error
}

var sheetHeaders = []any{
	"Title", "Job URL", "Budget", "Experience", "Skills", "Category",
	"Client Country", "Client Spent", "Client Hires", "Connects",
	"Proposal Count", "Posted Age", "Apply Link", "Cover Letter",
	"Proposal Doc", "Status", "Rejection Reason",
}

const defaultSheetTitle = "Upwork Proposals"

// OutreachService reads the intermediate jobs file and, per job, generates the
// outreach texts, persists them as a Google Doc and appends a ledger row to
// the bookkeeping sheet. Jobs fan out across a small worker pool; document
// creation is serialized through docGate because the Docs API misbehaves under
// concurrent creation from one process.
type OutreachService struct {
	ai      *AIService
	docs    documentCreator
	sheets  sheetWriter
	ledger  processedJobsLedger
	cache   *gocache.Cache
	docGate *sync.Mutex
	bio     string
	workers int
	now     func() time.Time
}

func NewOutreachService(ai *AIService, docs documentCreator, sheets sheetWriter,
	ledger processedJobsLedger, docGate *sync.Mutex, bio string, workers int) *OutreachService {

	if workers < 1 {
		workers = 1
	}

	return &OutreachService{
		ai:      ai,
		docs:    docs,
		sheets:  sheets,
		ledger:  ledger,
		cache:   gocache.New(10*time.Minute, 20*time.Minute),
		docGate: docGate,
		bio:     bio,
		workers: workers,
		now:     time.Now,
	}
}

type OutreachRequest struct {
	InputPath   string
	SheetID     string
	DryRun      bool
	ResultsPath string
}

type JobResult struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	DocURL string `json:"doc_url,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Run processes every job from the input file. Per-job failures never abort
// the batch; only a missing or unreadable input file is fatal.
func (s *OutreachService) Run(ctx context.Context, request OutreachRequest) ([]JobResult, error) {

	jobs, err := readJobsFile(request.InputPath)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded %v jobs from %v", len(jobs), request.InputPath)

	sheetID := request.SheetID
	if request.DryRun {
		log.Info("dry run enabled, skipping sheet creation and updates")
		sheetID = ""
	} else if sheetID == "" {
		if sheetID, err = s.createSheet(ctx); err != nil {
			return nil, err
		}
		log.Infof("created new sheet: https://docs.google.com/spreadsheets/d/%v", sheetID)
	}

	results := s.processAll(ctx, jobs, sheetID, request.DryRun)

	if request.ResultsPath != "" {
		if err = writeResultsFile(request.ResultsPath, results); err != nil {
			log.Errorf("failed to write results: %v", err)
		}
	}

	return results, nil
}

func (s *OutreachService) processAll(ctx context.Context, jobs []models.NormalizedJob,
	sheetID string, dryRun bool) []JobResult {

	jobsCh := make(chan models.NormalizedJob)
	results := make([]JobResult, 0, len(jobs))

	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsCh {
				result := s.processJob(ctx, job, sheetID, dryRun)
				resultsMu.Lock()
				results = append(results, result)
				resultsMu.Unlock()
			}
		}()
	}

	for _, job := range jobs {
		jobsCh <- job
	}
	close(jobsCh)
	wg.Wait()

	return results
}

func (s *OutreachService) processJob(ctx context.Context, job models.NormalizedJob,
	sheetID string, dryRun bool) JobResult {

	log.Infof("processing job: %v", truncate(job.Title, 30))

	if skipped, result := s.alreadyHandled(ctx, job); skipped {
		return result
	}

	start := s.now()
	coverLetter, err := s.ai.GenerateCoverLetter(ctx, job, s.bio)
	if err == nil {
		var proposal string
		proposal, err = s.ai.GenerateProposal(ctx, job, s.bio)
		if err == nil {
			metrics.OutreachStepDuration.WithLabelValues("generation").Observe(time.Since(start).Seconds())
			return s.persistJob(ctx, job, coverLetter, proposal, sheetID, dryRun)
		}
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
		Errorf("failed to generate texts for job %v: %v", job.JobID, err)
	return JobResult{JobID: job.JobID, Status: StatusFailed, Error: err.Error()}
}

// alreadyHandled checks the durable ledger and the run-scope description
// cache. The cache catches the same posting scraped twice under different ids
// within one batch.
func (s *OutreachService) alreadyHandled(ctx context.Context, job models.NormalizedJob) (bool, JobResult) {

	if s.ledger != nil && job.JobID != "" {
		processed, err := s.ledger.IsProcessed(ctx, job.JobID)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to check ledger for job %v: %v", job.JobID, err)
		} else if processed {
			log.Infof("job %v already processed, skipping", job.JobID)
			return true, JobResult{JobID: job.JobID, Status: StatusSkipped}
		}
	}

	descriptionHash := sha256.Sum256([]byte(job.Description))
	cacheID := hex.EncodeToString(descriptionHash[:])
	if _, found := s.cache.Get(cacheID); found {
		log.Infof("duplicate description for job %v, skipping", job.JobID)
		return true, JobResult{JobID: job.JobID, Status: StatusSkipped}
	}
	if err := s.cache.Add(cacheID, "", gocache.DefaultExpiration); err != nil {
		log.Errorf("failed to add description to cache: %v", err)
	}

	return false, JobResult{}
}

func (s *OutreachService) persistJob(ctx context.Context, job models.NormalizedJob,
	coverLetter string, proposal string, sheetID string, dryRun bool) JobResult {

	docURL := ""
	if !dryRun {
		title := fmt.Sprintf("Proposal: %s - %s", job.Title, job.JobID)
		content := fmt.Sprintf("Cover Letter:\n%s\n\nProposal:\n%s", coverLetter, proposal)

		var err error
		start := s.now()
		docURL, err = s.createDocument(ctx, title, content)
		metrics.OutreachStepDuration.WithLabelValues("doc").Observe(time.Since(start).Seconds())
		if err != nil {
			// the texts still reach the sheet row, only the doc link is lost
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeGoogleApi).
				Errorf("failed to create doc for %v: %v", job.JobID, err)
			docURL = ""
		}
	}

	row := s.buildRow(job, coverLetter, docURL)

	if !dryRun && sheetID != "" {
		start := s.now()
		err := s.sheets.AppendRow(ctx, sheetID, row)
		metrics.OutreachStepDuration.WithLabelValues("sheet").Observe(time.Since(start).Seconds())
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeGoogleApi).
				Errorf("failed to update sheet for %v: %v", job.JobID, err)
			return JobResult{JobID: job.JobID, Status: StatusFailed, DocURL: docURL, Error: err.Error()}
		}
	}

	if s.ledger != nil && job.JobID != "" {
		if err := s.ledger.Record(ctx, job.JobID, job.Title, docURL); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to record job %v in ledger: %v", job.JobID, err)
		}
	}

	metrics.ProcessedJobsCounter.Inc()
	return JobResult{JobID: job.JobID, Status: StatusSuccess, DocURL: docURL}
}

// createDocument serializes doc creation behind the injected gate and retries
// with doubling backoff, mirroring the Docs API's rate-limit behavior.
func (s *OutreachService) createDocument(ctx context.Context, title string, content string) (string, error) {

	s.docGate.Lock()
	defer s.docGate.Unlock()

	backoff := 1500 * time.Millisecond
	var lastErr error

	for attempt := 0; attempt < 4; attempt++ {
		docURL, err := s.docs.CreateDocument(ctx, title, content)
		if err == nil {
			return docURL, nil
		}
		lastErr = err
		log.Warnf("error creating doc (attempt %v): %v", attempt+1, err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return "", lastErr
}

func (s *OutreachService) createSheet(ctx context.Context) (string, error) {

	sheetID, err := s.sheets.CreateSpreadsheet(ctx, defaultSheetTitle)
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	if err = s.sheets.AppendRow(ctx, sheetID, sheetHeaders); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}
	return sheetID, nil
}

func (s *OutreachService) buildRow(job models.NormalizedJob, coverLetter string, docURL string) []any {
	return []any{
		job.Title,
		job.JobURL,
		formatBudget(job.Budget),
		job.ExperienceLevel,
		strings.Join(job.Skills, ", "),
		"", // Category: not exposed by the current actor schema
		job.ClientCountry,
		formatAmount(job.ClientTotalSpent),
		formatAmount(job.ClientHires),
		"", // Connects: not exposed by the current actor schema
		formatProposalCount(job.ProposalCount),
		formatAge(s.now(), job.PostedDate),
		job.ApplyURL,
		coverLetter,
		docURL,
		"Ready",
		"",
	}
}

func readJobsFile(path string) ([]models.NormalizedJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var jobs []models.NormalizedJob
	if err = json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode input file: %w", err)
	}
	return jobs, nil
}

func writeResultsFile(path string, results []JobResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(results)
}

// formatBudget renders the provider's opaque budget shape for the sheet:
// "$500" for fixed budgets, "$30-$60 /hr" for hourly ranges with "?" filling
// absent bounds.
func formatBudget(budget any) string {

	mapped, ok := budget.(map[string]any)
	if !ok {
		if budget == nil {
			return ""
		}
		return fmt.Sprint(budget)
	}

	if fixed, ok := mapped["fixedBudget"].(float64); ok && fixed > 0 {
		return "$" + formatAmount(fixed)
	}

	if hourly, ok := mapped["hourlyRate"].(map[string]any); ok {
		minRate := rateOrPlaceholder(hourly["min"])
		maxRate := rateOrPlaceholder(hourly["max"])
		if minRate != "?" || maxRate != "?" {
			return fmt.Sprintf("$%s-$%s /hr", minRate, maxRate)
		}
	}

	return ""
}

func rateOrPlaceholder(value any) string {
	if rate, ok := value.(float64); ok && rate > 0 {
		return formatAmount(rate)
	}
	return "?"
}

// formatAmount renders zero as empty, matching the "unknown collapses to
// blank cell" convention of the sheet.
func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func formatProposalCount(count any) string {
	if count == nil {
		return ""
	}
	if number, ok := count.(float64); ok {
		return strconv.FormatFloat(number, 'f', -1, 64)
	}
	return fmt.Sprint(count)
}

// formatAge turns the best-effort ISO timestamp into "2d ago" style text;
// unparsable dates render as empty rather than failing the row.
func formatAge(now time.Time, postedDate string) string {

	if postedDate == "" {
		return ""
	}

	posted, err := time.Parse(time.RFC3339, postedDate)
	if err != nil {
		return ""
	}

	diff := now.Sub(posted)
	switch {
	case diff >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	case diff >= time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		minutes := int(diff.Minutes())
		if minutes < 0 {
			minutes = 0
		}
		return fmt.Sprintf("%dm ago", minutes)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
