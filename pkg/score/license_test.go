package score

import (
	"testing"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/stretchr/testify/assert"
)

func TestLicenseMetric_Classification(t *testing.T) {
	tests := []struct {
		license string
		want    float64
	}{
		{"MIT", 1.0},
		{"mit", 1.0},
		{"apache-2.0", 1.0},
		{"bsd-3-clause", 1.0},
		{"lgpl-2.1", 1.0},
		{"GPL-3.0", 0.4},
		{"agpl-3.0", 0.4},
		{"proprietary", 0.4},
		{"some-unknown-license", 0.0},
	}

	m := NewLicenseMetric()
	for _, tt := range tests {
		t.Run(tt.license, func(t *testing.T) {
			snap := meta.NewSnapshot(map[string]any{meta.KeyLicense: tt.license})
			v := m.Compute(snap, meta.CategoryModel)
			assert.InDelta(t, tt.want, v.Score, 0.001)
		})
	}
}

func TestLicenseMetric_Absent(t *testing.T) {
	m := NewLicenseMetric()
	v := m.Compute(meta.NewSnapshot(nil), meta.CategoryModel)
	assert.Equal(t, 0.0, v.Score)
}

func TestLicenseMetric_TagFallback(t *testing.T) {
	m := NewLicenseMetric()
	snap := meta.NewSnapshot(map[string]any{
		meta.KeyTags: []any{"text-generation", "license:apache-2.0"},
	})
	v := m.Compute(snap, meta.CategoryModel)
	assert.InDelta(t, 1.0, v.Score, 0.001)
}

func TestLicenseMetric_ReadmeFallback(t *testing.T) {
	m := NewLicenseMetric()
	snap := meta.NewSnapshot(map[string]any{
		meta.KeyReadme: "# Model\n\nLicense: gpl-3.0\n\nDetails follow.",
	})
	v := m.Compute(snap, meta.CategoryModel)
	assert.InDelta(t, 0.4, v.Score, 0.001)
}

func TestLicenseMetric_FieldWinsOverTag(t *testing.T) {
	m := NewLicenseMetric()
	snap := meta.NewSnapshot(map[string]any{
		meta.KeyLicense: "mit",
		meta.KeyTags:    []any{"license:gpl-3.0"},
	})
	v := m.Compute(snap, meta.CategoryModel)
	assert.InDelta(t, 1.0, v.Score, 0.001)
}

func TestExtractLicense_ReadmeLineToken(t *testing.T) {
	snap := meta.NewSnapshot(map[string]any{
		meta.KeyReadme: "license: mit, see LICENSE file",
	})
	assert.Equal(t, "mit", extractLicense(snap))
}
