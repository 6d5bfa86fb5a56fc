package score

import (
	"path"
	"strings"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
)

const (
	bytesPerGB = 1024 * 1024 * 1024

	// Assumed size when the snapshot carries no signal at all.
	defaultSizeGB = 1.0
)

// Deployment target tiers and their storage limits in GB.
var hardwareClasses = map[string]float64{
	"raspberry_pi": 2,
	"jetson_nano":  4,
	"desktop_pc":   16,
	"aws_server":   64,
}

var weightFileExtensions = []string{
	".safetensors", ".bin", ".pt", ".pth", ".h5", ".onnx", ".gguf", ".msgpack", ".ckpt",
}

// SizeMetric estimates deployability across fixed hardware classes. The
// artifact size is resolved through a priority chain: explicit storage
// field, safetensors manifest totals, recognized weight files in the file
// listing, then a fixed default.
type SizeMetric struct {
	metricInfo
}

func NewSizeMetric() *SizeMetric {
	return &SizeMetric{metricInfo{name: "size", weight: defaultWeight}}
}

func (m *SizeMetric) Compute(snap *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())

	sizeGB := resolveSizeGB(snap)

	scores := make(map[string]float64, len(hardwareClasses))
	for class, limit := range hardwareClasses {
		if sizeGB <= 0 {
			scores[class] = 1.0
			continue
		}
		ratio := limit / sizeGB
		if ratio > 1.0 {
			ratio = 1.0
		}
		scores[class] = ratio
	}

	return Value{ByClass: scores}
}

func resolveSizeGB(snap *meta.Snapshot) float64 {
	if b, ok := snap.Float(meta.KeyUsedStorage); ok && b > 0 {
		return b / bytesPerGB
	}
	if b, ok := snap.Float(meta.KeySize); ok && b > 0 {
		return b / bytesPerGB
	}

	if total := safetensorsTotal(snap); total > 0 {
		return total / bytesPerGB
	}

	if total := weightFileTotal(snap.Files(meta.KeySiblings)); total > 0 {
		return total / bytesPerGB
	}

	return defaultSizeGB
}

// safetensorsTotal sums the weight manifest. Hugging Face reports it either
// as {"total": n} or as a parameter-count map under "parameters".
func safetensorsTotal(snap *meta.Snapshot) float64 {
	raw, ok := snap.Raw(meta.KeySafetensors)
	if !ok {
		return 0
	}

	switch v := raw.(type) {
	case map[string]any:
		if total, ok := v["total"].(float64); ok {
			return total
		}
	case []any:
		var sum float64
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if size, ok := m["size"].(float64); ok {
					sum += size
				}
			}
		}
		return sum
	}
	return 0
}

func weightFileTotal(files []meta.FileEntry) float64 {
	var sum float64
	for _, f := range files {
		if !isWeightFile(f.Name) {
			continue
		}
		sum += float64(f.Size)
	}
	return sum
}

func isWeightFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, w := range weightFileExtensions {
		if ext == w {
			return true
		}
	}
	return false
}
