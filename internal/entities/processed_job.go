package entities

import "time"

// ProcessedJob records a job the outreach pipeline has already handled, so
// re-running it over an overlapping scrape does not produce duplicate
// proposals.
type ProcessedJob struct {
	ID        int
	JobID     string `gorm:"uniqueIndex"`
	Title     string
	DocURL    string
	CreatedAt time.Time
}
