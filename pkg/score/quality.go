package score

import (
	"strings"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
)

// Datasets with an established curation reputation. Used by the optional
// reputation helper, not by the boolean gate on the scoring path.
var knownQualityDatasets = []string{
	"squad", "imagenet", "glue", "superglue", "common_voice", "c4",
	"wikipedia", "bookcorpus", "librispeech", "mnli", "coco", "laion",
}

// DatasetQualityMetric is a boolean gate: the snapshot either documents its
// training data or it does not.
type DatasetQualityMetric struct {
	metricInfo
}

func NewDatasetQualityMetric() *DatasetQualityMetric {
	return &DatasetQualityMetric{metricInfo{name: "dataset_quality", weight: defaultWeight}}
}

func (m *DatasetQualityMetric) Compute(snap *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())
	if len(snap.StrList(meta.KeyDatasets)) > 0 {
		return Value{Score: 1.0}
	}
	return Value{Score: 0.0}
}

// DatasetReputation scores the named datasets against the known high
// quality set. Enrichment helper; not part of the net score fold.
func DatasetReputation(datasets []string) float64 {
	if len(datasets) == 0 {
		return 0.0
	}
	matched := 0
	for _, d := range datasets {
		lower := strings.ToLower(d)
		for _, known := range knownQualityDatasets {
			if strings.Contains(lower, known) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(datasets))
}

// CodeQualityMetric is a boolean gate on the presence of code files in the
// artifact listing.
type CodeQualityMetric struct {
	metricInfo
}

func NewCodeQualityMetric() *CodeQualityMetric {
	return &CodeQualityMetric{metricInfo{name: "code_quality", weight: defaultWeight}}
}

func (m *CodeQualityMetric) Compute(snap *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())
	if hasCodeFile(snap.Files(meta.KeySiblings)) {
		return Value{Score: 1.0}
	}
	return Value{Score: 0.0}
}
