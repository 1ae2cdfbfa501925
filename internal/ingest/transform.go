package ingest

import (
	"fmt"
	"strings"

	"github.com/maxaizer/upwork-hunter/internal/domain/models"
)

const applyURLTemplate = "https://www.upwork.com/nx/proposals/job/%s/apply/"

// Transform maps an admitted raw record into the output contract. It is total:
// any missing or mistyped field degrades to the attribute's typed default, so
// one malformed record can never abort a batch.
func Transform(job models.RawJob) models.NormalizedJob {

	jobURL := ResolveJobURL(job)
	jobID := deriveJobID(job, jobURL)

	applyURL := ""
	if jobID != "" {
		applyURL = fmt.Sprintf(applyURLTemplate, jobID)
	}

	budget, _ := job["budget"]
	hourlyRate, _ := job["hourlyRate"]
	title, _ := job["title"].(string)
	description, _ := job["description"].(string)
	jobType, _ := job["jobType"].(string)

	return models.NormalizedJob{
		JobID:            jobID,
		Title:            title,
		Description:      description,
		Skills:           ResolveSkills(job),
		Budget:           budget,
		HourlyRate:       hourlyRate,
		JobType:          jobType,
		ExperienceLevel:  ResolveExperienceLevel(job),
		ClientCountry:    ResolveClientCountry(job),
		ClientTotalSpent: ParseMoney(ResolveTotalSpent(job)),
		ClientHires:      ParseMoney(ResolveClientHires(job)),
		ProposalCount:    ResolveProposalCount(job),
		PostedDate:       ResolvePostedDate(job),
		JobURL:           jobURL,
		ApplyURL:         applyURL,
	}
}

// TransformAll always returns a non-nil slice so an empty batch serializes as
// an empty JSON array.
func TransformAll(jobs []models.RawJob) []models.NormalizedJob {
	normalized := make([]models.NormalizedJob, 0, len(jobs))
	for _, job := range jobs {
		normalized = append(normalized, Transform(job))
	}
	return normalized
}

// deriveJobID prefers the marketplace's opaque ciphertext over anything
// human-readable. When no direct identifier exists it falls back to the
// ~-suffix of the job's public URL, re-prefixed with ~.
func deriveJobID(job models.RawJob, jobURL string) string {
	if id := ResolveDirectJobID(job); id != "" {
		return id
	}

	if idx := strings.LastIndex(jobURL, "~"); idx >= 0 {
		return "~" + jobURL[idx+1:]
	}
	return ""
}
