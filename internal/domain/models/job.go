package models

// RawJob is a job record as returned by the scraping provider. The actor's
// output schema is not contractually fixed and drifts between versions, so no
// field can be assumed present or correctly typed.
type RawJob map[string]any

// NormalizedJob is the canonical job entity shared by both pipelines. It is
// produced once per admitted RawJob and never mutated afterwards; the outreach
// pipeline consumes it from the intermediate JSON file.
type NormalizedJob struct {
	JobID            string   `json:"job_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Skills           []string `json:"skills"`
	Budget           any      `json:"budget"`
	HourlyRate       any      `json:"hourly_rate"`
	JobType          string   `json:"job_type"`
	ExperienceLevel  string   `json:"experience_level"`
	ClientCountry    string   `json:"client_country"`
	ClientTotalSpent float64  `json:"client_total_spent"`
	ClientHires      float64  `json:"client_hires"`
	ProposalCount    any      `json:"proposal_count"`
	PostedDate       string   `json:"posted_date"`
	JobURL           string   `json:"job_url"`
	ApplyURL         string   `json:"apply_url"`
}
