package score

import (
	"strings"
	"testing"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/stretchr/testify/assert"
)

func TestAvailabilityMetric_FullSignals(t *testing.T) {
	m := NewAvailabilityMetric()
	snap := meta.NewSnapshot(map[string]any{
		meta.KeyDatasets:    []any{"squad"},
		meta.KeyReadme:      "## Usage\n```python\nimport torch\n```\nTrained on a large corpus.",
		meta.KeyTags:        []any{"dataset:squad"},
		meta.KeyDescription: "A model trained on an open dataset.",
		meta.KeySiblings: []any{
			map[string]any{"rfilename": "inference.py"},
			map[string]any{"rfilename": "model.safetensors"},
		},
	})

	v := m.Compute(snap, meta.CategoryModel)
	assert.InDelta(t, 1.0, v.Score, 0.001)
}

func TestAvailabilityMetric_EmptySnapshot(t *testing.T) {
	m := NewAvailabilityMetric()
	v := m.Compute(meta.NewSnapshot(nil), meta.CategoryModel)
	assert.Equal(t, 0.0, v.Score)
}

func TestDatasetSignal_PartialHits(t *testing.T) {
	snap := meta.NewSnapshot(map[string]any{
		meta.KeyReadme: "trained on the c4 corpus",
	})
	assert.InDelta(t, 0.25, datasetSignal(snap), 0.001)
}

func TestCodeSignal_ReadmeOnlyFloor(t *testing.T) {
	long := "## Usage\npip install example\n" + strings.Repeat("documentation ", 200)
	snap := meta.NewSnapshot(map[string]any{meta.KeyReadme: long})
	assert.Equal(t, readmeOnlyCodeFloor, codeSignal(snap))
}

func TestCodeSignal_ShortReadmeNoFiles(t *testing.T) {
	snap := meta.NewSnapshot(map[string]any{meta.KeyReadme: "## Usage"})
	assert.Equal(t, 0.0, codeSignal(snap))
}

func TestCodeSignal_FilesWithoutCode(t *testing.T) {
	snap := meta.NewSnapshot(map[string]any{
		meta.KeySiblings: []any{
			map[string]any{"rfilename": "pytorch_model.bin"},
		},
	})
	assert.InDelta(t, 0.25, codeSignal(snap), 0.001)
}

func TestHasCodeFile(t *testing.T) {
	assert.True(t, hasCodeFile([]meta.FileEntry{{Name: "scripts/train.py"}}))
	assert.True(t, hasCodeFile([]meta.FileEntry{{Name: "requirements.txt"}}))
	assert.True(t, hasCodeFile([]meta.FileEntry{{Name: "Dockerfile"}}))
	assert.False(t, hasCodeFile([]meta.FileEntry{{Name: "weights.safetensors"}}))
	assert.False(t, hasCodeFile(nil))
}

func TestHasWeightFile(t *testing.T) {
	assert.True(t, hasWeightFile([]meta.FileEntry{{Name: "model.safetensors"}}))
	assert.False(t, hasWeightFile([]meta.FileEntry{{Name: "README.md"}}))
}
