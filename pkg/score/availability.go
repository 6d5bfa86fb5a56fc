package score

import (
	"path"
	"strings"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
)

// Floor credit when no files are listed but a long README carries usage cues.
const readmeOnlyCodeFloor = 0.3

var (
	datasetReadmeCues = []string{"dataset", "training data", "trained on", "corpus"}
	codeReadmeCues    = []string{"usage", "example", "```", "import ", "pip install"}
	codeFileExts      = []string{".py", ".ipynb", ".sh", ".go", ".js", ".rs", ".c", ".cpp", ".java"}
	codeFileNames     = []string{"requirements.txt", "setup.py", "pyproject.toml", "makefile", "dockerfile"}
)

// AvailabilityMetric blends a dataset-documentation signal with a
// code-availability signal, 50/50.
type AvailabilityMetric struct {
	metricInfo
}

func NewAvailabilityMetric() *AvailabilityMetric {
	return &AvailabilityMetric{metricInfo{name: "availability", weight: defaultWeight}}
}

func (m *AvailabilityMetric) Compute(snap *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())
	return Value{Score: clamp(0.5*datasetSignal(snap) + 0.5*codeSignal(snap))}
}

func datasetSignal(snap *meta.Snapshot) float64 {
	hits := 0
	if len(snap.StrList(meta.KeyDatasets)) > 0 {
		hits += 2
	}

	readme := strings.ToLower(snap.Str(meta.KeyReadme))
	if containsAny(readme, datasetReadmeCues) {
		hits++
	}

	for _, tag := range snap.StrList(meta.KeyTags) {
		if strings.HasPrefix(strings.ToLower(tag), "dataset:") {
			hits++
			break
		}
	}

	if containsAny(strings.ToLower(snap.Str(meta.KeyDescription)), datasetReadmeCues) {
		hits++
	}

	return clamp(float64(hits) / 4.0)
}

func codeSignal(snap *meta.Snapshot) float64 {
	files := snap.Files(meta.KeySiblings)
	readme := strings.ToLower(snap.Str(meta.KeyReadme))

	if len(files) == 0 {
		// No listing at all: give reduced credit for a substantial README
		// that demonstrates usage.
		if len(readme) >= longReadmeChars && containsAny(readme, codeReadmeCues) {
			return readmeOnlyCodeFloor
		}
		return 0.0
	}

	hits := 0
	if hasCodeFile(files) {
		hits += 2
	}
	if containsAny(readme, codeReadmeCues) {
		hits++
	}
	if hasWeightFile(files) {
		hits++
	}

	return clamp(float64(hits) / 4.0)
}

func hasCodeFile(files []meta.FileEntry) bool {
	for _, f := range files {
		name := strings.ToLower(f.Name)
		ext := path.Ext(name)
		for _, e := range codeFileExts {
			if ext == e {
				return true
			}
		}
		for _, n := range codeFileNames {
			if path.Base(name) == n {
				return true
			}
		}
	}
	return false
}

func hasWeightFile(files []meta.FileEntry) bool {
	for _, f := range files {
		if isWeightFile(f.Name) {
			return true
		}
	}
	return false
}
