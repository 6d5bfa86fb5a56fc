package score

import (
	"strings"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
)

const (
	rampUpReadmeWeight     = 0.5
	rampUpCardWeight       = 0.2
	rampUpPopularityWeight = 0.3

	longReadmeChars = 1500

	downloadsDenominator = 1_000_000.0
	likesDenominator     = 1_000.0
	starsDenominator     = 10_000.0
)

var readmeSectionCues = []string{
	"## usage", "## example", "## install", "## quickstart",
	"how to use", "getting started",
}

// RampUpMetric estimates how quickly a new user can adopt the artifact:
// README guidance, model card completeness, and popularity.
type RampUpMetric struct {
	metricInfo
}

func NewRampUpMetric() *RampUpMetric {
	return &RampUpMetric{metricInfo{name: "ramp_up", weight: defaultWeight}}
}

func (m *RampUpMetric) Compute(snap *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())

	score := rampUpReadmeWeight*readmeScore(snap) +
		rampUpCardWeight*cardScore(snap) +
		rampUpPopularityWeight*popularityScore(snap)

	return Value{Score: clamp(score)}
}

func readmeScore(snap *meta.Snapshot) float64 {
	readme := strings.ToLower(snap.Str(meta.KeyReadme))
	if readme == "" {
		return 0.0
	}

	matched := countMatches(readme, readmeSectionCues)
	score := float64(matched) / float64(len(readmeSectionCues)) * 2.0
	if score > 0.8 {
		score = 0.8
	}
	if len(readme) >= longReadmeChars {
		score += 0.2
	}
	return clamp(score)
}

func cardScore(snap *meta.Snapshot) float64 {
	score := 0.0
	if snap.Str(meta.KeyDescription) != "" || snap.Str(meta.KeyReadme) != "" {
		score += 1.0 / 3.0
	}
	if len(snap.StrList(meta.KeyDatasets)) > 0 {
		score += 1.0 / 3.0
	}
	if len(snap.StrList(meta.KeyTags)) > 0 {
		score += 1.0 / 3.0
	}
	return score
}

// popularityScore scales downloads, likes, and stars against fixed
// denominators and averages whatever signals are present.
func popularityScore(snap *meta.Snapshot) float64 {
	ratios := make([]float64, 0, 3)
	if downloads, ok := snap.Float(meta.KeyDownloads); ok {
		ratios = append(ratios, clamp(downloads/downloadsDenominator))
	}
	if likes, ok := snap.Float(meta.KeyLikes); ok {
		ratios = append(ratios, clamp(likes/likesDenominator))
	}
	if stars, ok := snap.Float(meta.KeyStars); ok {
		ratios = append(ratios, clamp(stars/starsDenominator))
	}
	if len(ratios) == 0 {
		return 0.0
	}

	var sum float64
	for _, r := range ratios {
		sum += r
	}
	return sum / float64(len(ratios))
}
