package score

import (
	"encoding/json"
	"testing"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRating_MarshalJSON_FlatShape(t *testing.T) {
	r := &Rating{
		Category:        meta.CategoryModel,
		NetScore:        0.75,
		NetScoreLatency: 120,
		Scores: map[string]MetricScore{
			"license": {Value: 1.0, LatencyMS: 3},
			"size": {
				ByClass:   map[string]float64{"raspberry_pi": 0.5, "aws_server": 1.0},
				LatencyMS: 1,
			},
		},
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, "MODEL", got["category"])
	assert.Equal(t, 0.75, got["net_score"])
	assert.Equal(t, float64(120), got["net_score_latency"])
	assert.Equal(t, 1.0, got["license"])
	assert.Equal(t, float64(3), got["license_latency"])

	sizeMap, ok := got["size"].(map[string]any)
	require.True(t, ok, "size must marshal as a class map")
	assert.Equal(t, 0.5, sizeMap["raspberry_pi"])
	assert.Equal(t, 1.0, sizeMap["aws_server"])
}

func TestRating_MarshalYAML(t *testing.T) {
	r := &Rating{
		Category: meta.CategoryDataset,
		NetScore: 0.5,
		Scores:   map[string]MetricScore{"ramp_up": {Value: 0.5, LatencyMS: 2}},
	}

	out, err := r.MarshalYAML()
	require.NoError(t, err)

	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DATASET", m["category"])
	assert.Equal(t, 0.5, m["ramp_up"])
}
