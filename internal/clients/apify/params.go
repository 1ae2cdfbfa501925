package apify

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	ErrNoQueries    = errors.New("at least one search query is required")
	ErrInvalidLimit = errors.New("limit must be positive")
)

// SearchParameters describe one actor run.
type SearchParameters struct {
	Queries  []string
	Limit    int
	DaysBack int
}

func (s SearchParameters) Validate() error {

	if len(lo.Compact(s.Queries)) == 0 {
		return ErrNoQueries
	}

	if s.Limit <= 0 {
		return ErrInvalidLimit
	}

	if s.DaysBack < 0 {
		return errors.New("days back must be non-negative")
	}

	return nil
}

// runInput is the actor's input document. The free tier only honors limit,
// fromDate and toDate; keyword matching uses flattened keys because nested
// objects are rejected with 400 "Property not allowed".
type runInput struct {
	Limit            int      `json:"limit"`
	FromDate         string   `json:"fromDate"`
	ToDate           string   `json:"toDate"`
	Keywords         []string `json:"includeKeywords.keywords"`
	MatchTitle       bool     `json:"includeKeywords.matchTitle"`
	MatchDescription bool     `json:"includeKeywords.matchDescription"`
	MatchSkills      bool     `json:"includeKeywords.matchSkills"`
}

func (s SearchParameters) toRunInput(now time.Time) runInput {

	queries := lo.Compact(lo.Map(s.Queries, func(query string, _ int) string {
		return strings.TrimSpace(query)
	}))

	return runInput{
		Limit:            s.Limit,
		FromDate:         now.UTC().AddDate(0, 0, -s.DaysBack).Format("2006-01-02"),
		ToDate:           now.UTC().Format("2006-01-02"),
		Keywords:         queries,
		MatchTitle:       true,
		MatchDescription: true,
		MatchSkills:      true,
	}
}
