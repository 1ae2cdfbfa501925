package ingest

import (
	"encoding/json"
	"testing"

	"github.com/maxaizer/upwork-hunter/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func Test_Transform_ShouldMapAllFields(t *testing.T) {

	job := models.RawJob{
		"ciphertext":  "~0198abcdef",
		"title":       "Automate invoice processing",
		"description": "We need an n8n workflow…",
		"skills":      []any{"n8n", "python"},
		"budget":      map[string]any{"fixedBudget": 500.0},
		"jobType":     "fixed-price",
		"url":         "https://www.upwork.com/jobs/~0198abcdef",
		"postedDate":  "2026-01-15T23:58:47.815Z",
		"proposals":   "5 to 10",
		"client": map[string]any{
			"totalSpent": "12,000",
			"totalHires": 8.0,
			"location":   map[string]any{"country": "Germany"},
		},
		"vendor": map[string]any{"experienceLevel": "Intermediate"},
	}

	normalized := Transform(job)

	assert.Equal(t, "~0198abcdef", normalized.JobID)
	assert.Equal(t, "Automate invoice processing", normalized.Title)
	assert.Equal(t, []string{"n8n", "python"}, normalized.Skills)
	assert.Equal(t, "fixed-price", normalized.JobType)
	assert.Equal(t, "Intermediate", normalized.ExperienceLevel)
	assert.Equal(t, "Germany", normalized.ClientCountry)
	assert.Equal(t, 12000.0, normalized.ClientTotalSpent)
	assert.Equal(t, 8.0, normalized.ClientHires)
	assert.Equal(t, "5 to 10", normalized.ProposalCount)
	assert.Equal(t, "2026-01-15T23:58:47.815Z", normalized.PostedDate)
	assert.Equal(t, "https://www.upwork.com/nx/proposals/job/~0198abcdef/apply/", normalized.ApplyURL)
}

func Test_Transform_ShouldDeriveJobIDFromURL(t *testing.T) {

	job := models.RawJob{"url": "https://x/jobs/~0198abc"}

	normalized := Transform(job)
	assert.Equal(t, "~0198abc", normalized.JobID)
	assert.Equal(t, "https://www.upwork.com/nx/proposals/job/~0198abc/apply/", normalized.ApplyURL)
}

func Test_Transform_ApplyURL_ShouldBeEmptyIffJobIDEmpty(t *testing.T) {

	withoutID := Transform(models.RawJob{"url": "https://x/jobs/readable-slug"})
	assert.Empty(t, withoutID.JobID)
	assert.Empty(t, withoutID.ApplyURL)

	withID := Transform(models.RawJob{"id": "~0def"})
	assert.NotEmpty(t, withID.JobID)
	assert.NotEmpty(t, withID.ApplyURL)
}

func Test_Transform_ShouldPreferCiphertextOverReadableID(t *testing.T) {

	job := models.RawJob{"id": "1234567890", "ciphertext": "~0198abcdef"}
	assert.Equal(t, "~0198abcdef", Transform(job).JobID)
}

func Test_Transform_OnEmptyRecord_ShouldBeTotal(t *testing.T) {

	var normalized models.NormalizedJob
	assert.NotPanics(t, func() {
		normalized = Transform(models.RawJob{})
	})

	assert.Empty(t, normalized.JobID)
	assert.Empty(t, normalized.ApplyURL)
	assert.Equal(t, []string{}, normalized.Skills)
	assert.Equal(t, 0.0, normalized.ClientTotalSpent)
}

func Test_Transform_ShouldBeIdempotent(t *testing.T) {

	job := models.RawJob{
		"ciphertext": "~0198abcdef",
		"title":      "Scraper für Immobilienportale", // non-ASCII survives both runs
		"client":     map[string]any{"totalSpent": "2,500"},
	}

	first, err := json.Marshal(Transform(job))
	assert.NoError(t, err)
	second, err := json.Marshal(Transform(job))
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func Test_TransformAll_OnEmptyBatch_ShouldSerializeAsEmptyArray(t *testing.T) {

	encoded, err := json.Marshal(TransformAll(nil))
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))
}
