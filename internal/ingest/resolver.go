package ingest

import (
	"github.com/maxaizer/upwork-hunter/internal/domain/models"
)

// accessor reads one candidate location of a logical attribute from a raw
// record. It reports false when the location is absent or holds a JSON null.
type accessor func(job models.RawJob) (any, bool)

func key(name string) accessor {
	return func(job models.RawJob) (any, bool) {
		value, ok := job[name]
		if !ok || value == nil {
			return nil, false
		}
		return value, true
	}
}

func path(names ...string) accessor {
	return func(job models.RawJob) (any, bool) {
		var current any = map[string]any(job)
		for _, name := range names {
			mapped, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = mapped[name]; !ok || current == nil {
				return nil, false
			}
		}
		return current, true
	}
}

// The orderings below encode the precedence of provider schema versions as
// observed in actual actor output. Do not reorder them.
var (
	jobIDAccessors           = []accessor{key("ciphertext"), key("id")}
	jobURLAccessors          = []accessor{key("url"), key("externalLink")}
	postedDateAccessors      = []accessor{key("postedDate"), key("date_created"), key("createdAt")}
	totalSpentAccessors      = []accessor{path("client", "totalSpent"), path("client", "stats", "totalSpent")}
	clientHiresAccessors     = []accessor{path("client", "totalHires"), path("client", "stats", "totalHires")}
	clientCountryAccessors   = []accessor{path("client", "location", "country"), path("client", "countryCode")}
	experienceLevelAccessors = []accessor{key("experienceLevel"), path("vendor", "experienceLevel")}
	proposalCountAccessors   = []accessor{key("proposals"), key("proposalCount")}
	paymentVerifiedAccessors = []accessor{
		key("isPaymentVerified"),
		path("client", "paymentMethodVerified"),
		path("client", "paymentVerificationStatus"),
	}
)

func resolve(job models.RawJob, chain []accessor) (any, bool) {
	for _, access := range chain {
		if value, ok := access(job); ok {
			return value, true
		}
	}
	return nil, false
}

func resolveString(job models.RawJob, chain []accessor) string {
	value, ok := resolve(job, chain)
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return str
}

func ResolveJobURL(job models.RawJob) string {
	return resolveString(job, jobURLAccessors)
}

func ResolveDirectJobID(job models.RawJob) string {
	return resolveString(job, jobIDAccessors)
}

func ResolvePostedDate(job models.RawJob) string {
	return resolveString(job, postedDateAccessors)
}

func ResolveClientCountry(job models.RawJob) string {
	return resolveString(job, clientCountryAccessors)
}

func ResolveExperienceLevel(job models.RawJob) string {
	return resolveString(job, experienceLevelAccessors)
}

// ResolveTotalSpent returns the client's spend in whatever shape the provider
// stored it; callers coerce it through ParseMoney.
func ResolveTotalSpent(job models.RawJob) any {
	value, _ := resolve(job, totalSpentAccessors)
	return value
}

func ResolveClientHires(job models.RawJob) any {
	value, _ := resolve(job, clientHiresAccessors)
	return value
}

// ResolveProposalCount may return a number or a bucketed string such as
// "20 to 50"; both shapes occur in the wild.
func ResolveProposalCount(job models.RawJob) any {
	value, _ := resolve(job, proposalCountAccessors)
	return value
}

// ResolvePaymentVerified walks the candidate flags in precedence order and
// reports true on the first affirmative one: a boolean true, or the string
// status "VERIFIED". A false flag does not short-circuit the chain.
func ResolvePaymentVerified(job models.RawJob) bool {
	for _, access := range paymentVerifiedAccessors {
		value, ok := access(job)
		if !ok {
			continue
		}
		switch typed := value.(type) {
		case bool:
			if typed {
				return true
			}
		case string:
			if typed == "VERIFIED" {
				return true
			}
		}
	}
	return false
}

// ResolveSkills keeps string elements as-is and unwraps {"name": "..."}
// objects, which older actor versions emit. Always returns a non-nil slice.
func ResolveSkills(job models.RawJob) []string {
	skills := make([]string, 0)

	raw, ok := job["skills"]
	if !ok {
		return skills
	}
	list, ok := raw.([]any)
	if !ok {
		return skills
	}

	for _, element := range list {
		switch typed := element.(type) {
		case string:
			skills = append(skills, typed)
		case map[string]any:
			if name, ok := typed["name"].(string); ok {
				skills = append(skills, name)
			}
		}
	}
	return skills
}
