package score

import (
	"context"
	"testing"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMetric returns a fixed value, optionally after a delay or via panic.
type stubMetric struct {
	metricInfo
	val   Value
	delay time.Duration
	panic bool
}

func newStub(name string, weight, score float64) *stubMetric {
	return &stubMetric{
		metricInfo: metricInfo{name: name, weight: weight},
		val:        Value{Score: score},
	}
}

func (m *stubMetric) Compute(_ *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())
	if m.panic {
		panic("stub failure")
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.val
}

func TestCalculator_WeightsSumToOne(t *testing.T) {
	c := NewCalculator(LLMConfig{})
	weights := c.Weights()
	require.Len(t, weights, 8)

	var sum float64
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 0.0001)
}

func TestCalculator_EmptySnapshotInRange(t *testing.T) {
	c := NewCalculator(LLMConfig{})
	rating := c.Evaluate(context.Background(), meta.NewSnapshot(nil), meta.CategoryModel)

	assert.GreaterOrEqual(t, rating.NetScore, 0.0)
	assert.LessOrEqual(t, rating.NetScore, 1.0)
	assert.Len(t, rating.Scores, 8)
	for name, s := range rating.Scores {
		assert.GreaterOrEqual(t, s.Value, 0.0, name)
		assert.LessOrEqual(t, s.Value, 1.0, name)
		assert.GreaterOrEqual(t, s.LatencyMS, int64(0), name)
	}
}

func TestCalculator_NilSnapshot(t *testing.T) {
	c := NewCalculatorWithMetrics(newStub("a", 1.0, 0.5))
	rating := c.Evaluate(context.Background(), nil, meta.CategoryCode)
	assert.InDelta(t, 0.5, rating.NetScore, 0.001)
}

func TestCalculator_WeightedFold(t *testing.T) {
	c := NewCalculatorWithMetrics(
		newStub("a", 0.5, 1.0),
		newStub("b", 0.25, 0.8),
		newStub("c", 0.25, 0.0),
	)

	rating := c.Evaluate(context.Background(), meta.NewSnapshot(nil), meta.CategoryModel)
	assert.InDelta(t, 0.7, rating.NetScore, 0.001)
}

func TestCalculator_Deterministic(t *testing.T) {
	c := NewCalculatorWithMetrics(
		newStub("a", 0.5, 0.6),
		newStub("b", 0.5, 0.4),
	)
	snap := meta.NewSnapshot(map[string]any{meta.KeyAuthor: "acme"})

	first := c.Evaluate(context.Background(), snap, meta.CategoryModel)
	for i := 0; i < 5; i++ {
		again := c.Evaluate(context.Background(), snap, meta.CategoryModel)
		assert.Equal(t, first.NetScore, again.NetScore)
		for name, s := range first.Scores {
			assert.Equal(t, s.Value, again.Scores[name].Value, name)
		}
	}
}

func TestCalculator_PanicIsolated(t *testing.T) {
	broken := newStub("broken", 0.5, 1.0)
	broken.panic = true

	c := NewCalculatorWithMetrics(broken, newStub("healthy", 0.5, 1.0))
	rating := c.Evaluate(context.Background(), meta.NewSnapshot(nil), meta.CategoryModel)

	assert.InDelta(t, 0.5, rating.NetScore, 0.001)
	assert.Equal(t, 0.0, rating.Scores["broken"].Value)
	assert.InDelta(t, 1.0, rating.Scores["healthy"].Value, 0.001)
}

func TestCalculator_SlowMetricTimesOut(t *testing.T) {
	slow := newStub("slow", 0.5, 1.0)
	slow.delay = 500 * time.Millisecond

	c := NewCalculatorWithMetrics(slow, newStub("fast", 0.5, 1.0))
	c.Timeout = 50 * time.Millisecond

	start := time.Now()
	rating := c.Evaluate(context.Background(), meta.NewSnapshot(nil), meta.CategoryModel)

	assert.Less(t, time.Since(start), 450*time.Millisecond)
	assert.Equal(t, 0.0, rating.Scores["slow"].Value)
	assert.Equal(t, int64(0), rating.Scores["slow"].LatencyMS)
	assert.InDelta(t, 0.5, rating.NetScore, 0.001)
}

func TestCalculator_NetScoreClamped(t *testing.T) {
	c := NewCalculatorWithMetrics(
		newStub("a", 0.8, 1.0),
		newStub("b", 0.8, 1.0),
	)
	rating := c.Evaluate(context.Background(), meta.NewSnapshot(nil), meta.CategoryModel)
	assert.Equal(t, 1.0, rating.NetScore)
}

func TestCalculator_NetScoreLatencyWallClock(t *testing.T) {
	slow := newStub("slow", 1.0, 0.5)
	slow.delay = 30 * time.Millisecond

	c := NewCalculatorWithMetrics(slow)
	rating := c.Evaluate(context.Background(), meta.NewSnapshot(nil), meta.CategoryModel)
	assert.GreaterOrEqual(t, rating.NetScoreLatency, int64(30))
}

func TestDefaultMetrics_Names(t *testing.T) {
	names := map[string]bool{}
	for _, m := range DefaultMetrics(LLMConfig{}) {
		names[m.Name()] = true
	}
	for _, want := range []string{
		"size", "license", "ramp_up", "bus_factor",
		"availability", "dataset_quality", "code_quality", "performance",
	} {
		assert.True(t, names[want], want)
	}
}
