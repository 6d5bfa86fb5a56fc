package score

import (
	"strings"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
)

const (
	busFactorOrgWeight          = 0.6
	busFactorContributorsWeight = 0.3
	busFactorRecencyWeight      = 0.1

	unparsableDateScore = 0.3
)

// Organizations with an established maintenance track record.
var knownOrgs = []string{
	"google", "facebook", "meta", "microsoft", "openai", "nvidia",
	"huggingface", "apple", "amazon", "ibm", "intel", "mistralai",
	"stabilityai", "allenai", "bigscience", "mozilla",
}

var orgIndicators = []string{
	"ai", "labs", "research", "team", "inc", "corp", "foundation", "institute",
}

// BusFactorMetric estimates maintenance resilience from organizational
// backing, contributor count, and update recency.
type BusFactorMetric struct {
	metricInfo
}

func NewBusFactorMetric() *BusFactorMetric {
	return &BusFactorMetric{metricInfo{name: "bus_factor", weight: defaultWeight}}
}

func (m *BusFactorMetric) Compute(snap *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())

	score := busFactorOrgWeight*orgBackingScore(snap.Str(meta.KeyAuthor)) +
		busFactorContributorsWeight*contributorScore(snap) +
		busFactorRecencyWeight*recencyScore(snap.Str(meta.KeyLastModified))

	return Value{Score: clamp(score)}
}

func orgBackingScore(author string) float64 {
	author = strings.ToLower(strings.TrimSpace(author))
	if author == "" {
		return 0.0
	}
	for _, org := range knownOrgs {
		if strings.Contains(author, org) {
			return 1.0
		}
	}
	if containsAny(author, orgIndicators) {
		return 0.6
	}
	return 0.3
}

func contributorScore(snap *meta.Snapshot) float64 {
	count, ok := snap.Int64(meta.KeyContributors)
	if !ok {
		return 0.0
	}
	switch {
	case count >= 10:
		return 1.0
	case count >= 6:
		return 0.75
	case count >= 3:
		return 0.5
	case count >= 1:
		return 0.25
	}
	return 0.0
}

func recencyScore(lastModified string) float64 {
	if lastModified == "" {
		return 0.0
	}

	t, err := parseTimestamp(lastModified)
	if err != nil {
		return unparsableDateScore
	}

	age := time.Since(t)
	switch {
	case age <= 30*24*time.Hour:
		return 1.0
	case age <= 90*24*time.Hour:
		return 0.75
	case age <= 365*24*time.Hour:
		return 0.5
	}
	return 0.25
}

func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02"}
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
