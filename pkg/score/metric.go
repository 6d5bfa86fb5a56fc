// Package score implements the metric evaluation engine: a set of
// independent quality heuristics that run concurrently against one immutable
// metadata snapshot and fold into a single weighted trust score.
package score

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
)

// Uniform weighting across the default eight metric set.
const defaultWeight = 0.125

// Value is a single metric outcome: a scalar in [0,1] or, for the composite
// size metric only, a per-hardware-class score map.
type Value struct {
	Score   float64
	ByClass map[string]float64
}

// Effective reduces a Value to the scalar used in the weighted fold: the
// arithmetic mean of the class map when present, the scalar otherwise.
func (v Value) Effective() float64 {
	if len(v.ByClass) == 0 {
		return v.Score
	}
	var sum float64
	for _, s := range v.ByClass {
		sum += s
	}
	return sum / float64(len(v.ByClass))
}

// Metric is the capability every heuristic implements. Compute must never
// panic past its own boundary: internal failure degrades to a zero Value.
// Latency reports the duration of the last Compute call in milliseconds.
type Metric interface {
	Name() string
	Weight() float64
	Compute(snap *meta.Snapshot, category meta.Category) Value
	Latency() int64
}

// metricInfo carries the fixed name and weight assigned at construction and
// tracks self-reported latency. Embedded by every concrete metric.
type metricInfo struct {
	name      string
	weight    float64
	latencyMS atomic.Int64
}

func (m *metricInfo) Name() string    { return m.name }
func (m *metricInfo) Weight() float64 { return m.weight }
func (m *metricInfo) Latency() int64  { return m.latencyMS.Load() }

// measure records elapsed wall clock since start. Used via defer at the top
// of each Compute.
func (m *metricInfo) measure(start time.Time) {
	ms := time.Since(start).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	m.latencyMS.Store(ms)
}

func clamp(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// containsAny reports whether s contains at least one of the needles.
// Callers lowercase s first.
func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func countMatches(s string, needles []string) int {
	count := 0
	for _, n := range needles {
		if strings.Contains(s, n) {
			count++
		}
	}
	return count
}
