package ingest

import (
	"strings"

	"github.com/maxaizer/upwork-hunter/internal/domain/models"
	"github.com/samber/lo"
)

// Rejection reasons, used as metric labels by the ingestion service.
const (
	RejectPaymentUnverified = "payment_unverified"
	RejectLowSpend          = "low_spend"
	RejectExperienceLevel   = "experience_level"
	RejectHighCompetition   = "high_competition"
)

// highCompetitionBuckets are the proposal-count buckets worth skipping.
// Boundary buckets like "10 to 15" deliberately pass: the thresholds are
// heuristic and only the phrases below have proven to be dead ends.
var highCompetitionBuckets = []string{"15 to 20", "20 to 50", "50+"}

const maxProposals = 15

// Criteria configures the admission rules for one ingestion run. DaysBack is
// not evaluated here: recency is enforced upstream through the provider's
// fromDate input, so jobs arrive pre-windowed.
type Criteria struct {
	RequireVerifiedPayment bool
	MinSpent               float64
	ExperienceLevels       []string
	DaysBack               int
}

// Filter applies the admission rules in a fixed order, short-circuiting on the
// first rejection. It never reorders records.
type Filter struct {
	criteria  Criteria
	permitted []string
}

func NewFilter(criteria Criteria) *Filter {
	permitted := lo.Map(criteria.ExperienceLevels, func(level string, _ int) string {
		return strings.ToLower(strings.TrimSpace(level))
	})
	permitted = lo.Compact(permitted)

	return &Filter{criteria: criteria, permitted: permitted}
}

// Admit decides whether a raw job passes all rules. On rejection it returns
// the name of the rule that fired.
func (f *Filter) Admit(job models.RawJob) (bool, string) {

	if f.criteria.RequireVerifiedPayment && !ResolvePaymentVerified(job) {
		return false, RejectPaymentUnverified
	}

	if f.criteria.MinSpent > 0 {
		if ParseMoney(ResolveTotalSpent(job)) < f.criteria.MinSpent {
			return false, RejectLowSpend
		}
	}

	if len(f.permitted) > 0 {
		// An absent level is not a mismatch; only a present, non-permitted
		// one rejects.
		if level := ResolveExperienceLevel(job); level != "" {
			if !lo.Contains(f.permitted, strings.ToLower(level)) {
				return false, RejectExperienceLevel
			}
		}
	}

	if tooCompetitive(ResolveProposalCount(job)) {
		return false, RejectHighCompetition
	}

	return true, ""
}

// Apply returns the admitted jobs in their original relative order.
func (f *Filter) Apply(jobs []models.RawJob) []models.RawJob {
	admitted := make([]models.RawJob, 0, len(jobs))
	for _, job := range jobs {
		if ok, _ := f.Admit(job); ok {
			admitted = append(admitted, job)
		}
	}
	return admitted
}

// tooCompetitive checks the proposal count in both shapes the provider emits:
// bucketed strings are matched against the reject phrases, numbers against the
// numeric threshold. Numeric strings such as "18" are intentionally not
// re-parsed; that asymmetry mirrors observed actor behavior.
func tooCompetitive(proposals any) bool {
	switch typed := proposals.(type) {
	case string:
		if typed == "" {
			return false
		}
		for _, bucket := range highCompetitionBuckets {
			if strings.Contains(typed, bucket) {
				return true
			}
		}
	case float64:
		return typed >= maxProposals
	case int:
		return typed >= maxProposals
	}
	return false
}
