package score

import (
	"testing"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/stretchr/testify/assert"
)

func TestDatasetQualityMetric_Documented(t *testing.T) {
	m := NewDatasetQualityMetric()
	snap := meta.NewSnapshot(map[string]any{
		meta.KeyDatasets: []any{"squad", "glue"},
	})
	assert.Equal(t, 1.0, m.Compute(snap, meta.CategoryModel).Score)
}

func TestDatasetQualityMetric_Undocumented(t *testing.T) {
	m := NewDatasetQualityMetric()
	assert.Equal(t, 0.0, m.Compute(meta.NewSnapshot(nil), meta.CategoryModel).Score)
}

func TestDatasetReputation(t *testing.T) {
	assert.Equal(t, 0.0, DatasetReputation(nil))
	assert.Equal(t, 1.0, DatasetReputation([]string{"rajpurkar/squad"}))
	assert.InDelta(t, 0.5, DatasetReputation([]string{"imagenet-1k", "acme/internal"}), 0.001)
}

func TestCodeQualityMetric_HasCode(t *testing.T) {
	m := NewCodeQualityMetric()
	snap := meta.NewSnapshot(map[string]any{
		meta.KeySiblings: []any{
			map[string]any{"rfilename": "modeling.py"},
		},
	})
	assert.Equal(t, 1.0, m.Compute(snap, meta.CategoryModel).Score)
}

func TestCodeQualityMetric_NoCode(t *testing.T) {
	m := NewCodeQualityMetric()
	snap := meta.NewSnapshot(map[string]any{
		meta.KeySiblings: []any{
			map[string]any{"rfilename": "model.safetensors"},
		},
	})
	assert.Equal(t, 0.0, m.Compute(snap, meta.CategoryModel).Score)
}
