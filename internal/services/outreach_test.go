package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maxaizer/upwork-hunter/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAiClient struct {
	mock.Mock
}

func (m *mockAiClient) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockDocs struct {
	mock.Mock
}

func (m *mockDocs) CreateDocument(ctx context.Context, title string, content string) (string, error) {
	args := m.Called(ctx, title, content)
	return args.String(0), args.Error(1)
}

type mockSheets struct {
	mock.Mock
}

func (m *mockSheets) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

func (m *mockSheets) AppendRow(ctx context.Context, spreadsheetID string, row []any) error {
	args := m.Called(ctx, spreadsheetID, row)
	return args.Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) IsProcessed(ctx context.Context, jobID string) (bool, error) {
	args := m.Called(ctx, jobID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) Record(ctx context.Context, jobID string, title string, docURL string) error {
	args := m.Called(ctx, jobID, title, docURL)
	return args.Error(0)
}

func coverLetterPrompt() any {
	return mock.MatchedBy(func(prompt string) bool {
		return strings.HasPrefix(prompt, "Write a max 35-word cover letter")
	})
}

func proposalPrompt() any {
	return mock.MatchedBy(func(prompt string) bool {
		return strings.HasPrefix(prompt, "Write a 200-350 word proposal")
	})
}

func writeInputFile(t *testing.T, jobs []models.NormalizedJob) string {
	t.Helper()

	data, err := json.Marshal(jobs)
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "jobs.json")
	assert.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func newTestOutreach(ai *mockAiClient, docs *mockDocs, sheets *mockSheets, ledger processedJobsLedger) *OutreachService {
	service := NewOutreachService(NewAIService(ai), docs, sheets, ledger, &sync.Mutex{}, "my bio", 1)
	service.now = func() time.Time {
		return time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC)
	}
	return service
}

func Test_Outreach_ShouldBuildSheetRowCorrectly(t *testing.T) {

	job := models.NormalizedJob{
		JobID:            "~0198abc",
		Title:            "Build automation",
		Description:      "need a workflow",
		Skills:           []string{"Go", "n8n"},
		Budget:           map[string]any{"fixedBudget": float64(500)},
		ExperienceLevel:  "expert",
		ClientCountry:    "Germany",
		ClientTotalSpent: 2500,
		ClientHires:      12,
		ProposalCount:    float64(5),
		PostedDate:       "2026-01-15T12:00:00Z",
		JobURL:           "https://www.upwork.com/jobs/~0198abc",
		ApplyURL:         "https://www.upwork.com/nx/proposals/job/~0198abc/apply/",
	}

	ai := new(mockAiClient)
	ai.On("GenerateResponse", mock.Anything, coverLetterPrompt()).Return("cover text", nil)
	ai.On("GenerateResponse", mock.Anything, proposalPrompt()).Return("proposal text", nil)

	docs := new(mockDocs)
	docs.On("CreateDocument", mock.Anything, "Proposal: Build automation - ~0198abc",
		"Cover Letter:\ncover text\n\nProposal:\nproposal text").
		Return("https://docs.google.com/document/d/doc1/edit", nil)

	var appended []any
	sheets := new(mockSheets)
	sheets.On("AppendRow", mock.Anything, "sheet1", mock.Anything).
		Run(func(args mock.Arguments) { appended = args.Get(2).([]any) }).
		Return(nil)

	service := newTestOutreach(ai, docs, sheets, nil)
	results, err := service.Run(context.Background(), OutreachRequest{
		InputPath: writeInputFile(t, []models.NormalizedJob{job}),
		SheetID:   "sheet1",
	})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, "https://docs.google.com/document/d/doc1/edit", results[0].DocURL)

	expectedRow := []any{
		"Build automation",
		"https://www.upwork.com/jobs/~0198abc",
		"$500",
		"expert",
		"Go, n8n",
		"",
		"Germany",
		"2500",
		"12",
		"",
		"5",
		"1d ago",
		"https://www.upwork.com/nx/proposals/job/~0198abc/apply/",
		"cover text",
		"https://docs.google.com/document/d/doc1/edit",
		"Ready",
		"",
	}
	assert.Equal(t, expectedRow, appended)
}

func Test_Outreach_ShouldCreateSheetWithHeaderWhenNoID(t *testing.T) {

	ai := new(mockAiClient)
	ai.On("GenerateResponse", mock.Anything, mock.Anything).Return("text", nil)

	docs := new(mockDocs)
	docs.On("CreateDocument", mock.Anything, mock.Anything, mock.Anything).Return("doc-url", nil)

	sheets := new(mockSheets)
	sheets.On("CreateSpreadsheet", mock.Anything, defaultSheetTitle).Return("fresh-sheet", nil)
	sheets.On("AppendRow", mock.Anything, "fresh-sheet", sheetHeaders).Return(nil).Once()
	sheets.On("AppendRow", mock.Anything, "fresh-sheet", mock.Anything).Return(nil)

	service := newTestOutreach(ai, docs, sheets, nil)
	_, err := service.Run(context.Background(), OutreachRequest{
		InputPath: writeInputFile(t, []models.NormalizedJob{{JobID: "~1", Title: "t"}}),
	})

	assert.NoError(t, err)
	sheets.AssertExpectations(t)
}

func Test_Outreach_DryRunShouldSkipGoogleCalls(t *testing.T) {

	ai := new(mockAiClient)
	ai.On("GenerateResponse", mock.Anything, mock.Anything).Return("text", nil)

	docs := new(mockDocs)
	sheets := new(mockSheets)

	service := newTestOutreach(ai, docs, sheets, nil)
	results, err := service.Run(context.Background(), OutreachRequest{
		InputPath: writeInputFile(t, []models.NormalizedJob{{JobID: "~1", Title: "t"}}),
		DryRun:    true,
	})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Empty(t, results[0].DocURL)
	docs.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything, mock.Anything)
	sheets.AssertNotCalled(t, "AppendRow", mock.Anything, mock.Anything, mock.Anything)
}

func Test_Outreach_ShouldSkipJobsAlreadyInLedger(t *testing.T) {

	ai := new(mockAiClient)
	docs := new(mockDocs)
	sheets := new(mockSheets)

	ledger := new(mockLedger)
	ledger.On("IsProcessed", mock.Anything, "~1").Return(true, nil)

	service := newTestOutreach(ai, docs, sheets, ledger)
	results, err := service.Run(context.Background(), OutreachRequest{
		InputPath: writeInputFile(t, []models.NormalizedJob{{JobID: "~1", Title: "t"}}),
		DryRun:    true,
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusSkipped, results[0].Status)
	ai.AssertNotCalled(t, "GenerateResponse", mock.Anything, mock.Anything)
}

func Test_Outreach_ShouldSkipDuplicateDescriptionsWithinBatch(t *testing.T) {

	ai := new(mockAiClient)
	ai.On("GenerateResponse", mock.Anything, mock.Anything).Return("text", nil)
	docs := new(mockDocs)
	sheets := new(mockSheets)

	jobs := []models.NormalizedJob{
		{JobID: "~1", Title: "first", Description: "same posting"},
		{JobID: "~2", Title: "second", Description: "same posting"},
	}

	service := newTestOutreach(ai, docs, sheets, nil)
	results, err := service.Run(context.Background(), OutreachRequest{
		InputPath: writeInputFile(t, jobs),
		DryRun:    true,
	})

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusSkipped, results[1].Status)
}

func Test_Outreach_ShouldContinueBatchAfterGenerationFailure(t *testing.T) {

	ai := new(mockAiClient)
	ai.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "broken job")
	})).Return("", errors.New("quota exceeded"))
	ai.On("GenerateResponse", mock.Anything, mock.Anything).Return("text", nil)

	docs := new(mockDocs)
	sheets := new(mockSheets)

	jobs := []models.NormalizedJob{
		{JobID: "~1", Title: "broken job", Description: "a"},
		{JobID: "~2", Title: "healthy job", Description: "b"},
	}

	service := newTestOutreach(ai, docs, sheets, nil)
	results, err := service.Run(context.Background(), OutreachRequest{
		InputPath: writeInputFile(t, jobs),
		DryRun:    true,
	})

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "quota exceeded")
	assert.Equal(t, StatusSuccess, results[1].Status)
}

func Test_Outreach_ShouldRecordSuccessfulJobsInLedger(t *testing.T) {

	ai := new(mockAiClient)
	ai.On("GenerateResponse", mock.Anything, mock.Anything).Return("text", nil)
	docs := new(mockDocs)
	sheets := new(mockSheets)

	ledger := new(mockLedger)
	ledger.On("IsProcessed", mock.Anything, "~1").Return(false, nil)
	ledger.On("Record", mock.Anything, "~1", "t", "").Return(nil)

	service := newTestOutreach(ai, docs, sheets, ledger)
	_, err := service.Run(context.Background(), OutreachRequest{
		InputPath: writeInputFile(t, []models.NormalizedJob{{JobID: "~1", Title: "t"}}),
		DryRun:    true,
	})

	assert.NoError(t, err)
	ledger.AssertExpectations(t)
}

func Test_Outreach_ShouldFailOnMissingInputFile(t *testing.T) {

	service := newTestOutreach(new(mockAiClient), new(mockDocs), new(mockSheets), nil)
	_, err := service.Run(context.Background(), OutreachRequest{InputPath: "./no-such-file.json"})

	assert.Error(t, err)
}

func Test_Outreach_ShouldWriteResultsFile(t *testing.T) {

	ai := new(mockAiClient)
	ai.On("GenerateResponse", mock.Anything, mock.Anything).Return("text", nil)

	resultsPath := filepath.Join(t.TempDir(), "results.json")
	service := newTestOutreach(ai, new(mockDocs), new(mockSheets), nil)
	_, err := service.Run(context.Background(), OutreachRequest{
		InputPath:   writeInputFile(t, []models.NormalizedJob{{JobID: "~1", Title: "t"}}),
		DryRun:      true,
		ResultsPath: resultsPath,
	})
	assert.NoError(t, err)

	data, err := os.ReadFile(resultsPath)
	assert.NoError(t, err)

	var results []JobResult
	assert.NoError(t, json.Unmarshal(data, &results))
	assert.Len(t, results, 1)
	assert.Equal(t, "~1", results[0].JobID)
}

func Test_FormatBudget_ShouldRenderFixedAndHourly(t *testing.T) {

	assert.Equal(t, "$500", formatBudget(map[string]any{"fixedBudget": float64(500)}))
	assert.Equal(t, "$30-$60 /hr", formatBudget(map[string]any{
		"hourlyRate": map[string]any{"min": float64(30), "max": float64(60)},
	}))
	assert.Equal(t, "$?-$45 /hr", formatBudget(map[string]any{
		"hourlyRate": map[string]any{"max": float64(45)},
	}))
	assert.Equal(t, "", formatBudget(nil))
	assert.Equal(t, "", formatBudget(map[string]any{}))
	assert.Equal(t, "negotiable", formatBudget("negotiable"))
}

func Test_FormatAge_ShouldBucketByMagnitude(t *testing.T) {

	now := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2d ago", formatAge(now, "2026-01-14T10:00:00Z"))
	assert.Equal(t, "3h ago", formatAge(now, "2026-01-16T08:30:00Z"))
	assert.Equal(t, "15m ago", formatAge(now, "2026-01-16T11:45:00Z"))
	assert.Equal(t, "", formatAge(now, "not-a-date"))
	assert.Equal(t, "", formatAge(now, ""))
}
