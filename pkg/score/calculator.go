package score

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
	"golang.org/x/sync/errgroup"
)

// Per-metric wall clock budget. A metric that exceeds it contributes a zero
// result without aborting the batch.
const DefaultMetricTimeout = 30 * time.Second

// DefaultMetrics returns the standard eight metric set with uniform weights.
func DefaultMetrics(llm LLMConfig) []Metric {
	return []Metric{
		NewSizeMetric(),
		NewLicenseMetric(),
		NewRampUpMetric(),
		NewBusFactorMetric(),
		NewAvailabilityMetric(),
		NewDatasetQualityMetric(),
		NewCodeQualityMetric(),
		NewPerformanceMetric(llm),
	}
}

// Calculator runs the metric set concurrently against one snapshot and
// folds the outcomes into a weighted, clamped net score. Stateless besides
// its fixed metric table; safe for concurrent Evaluate calls.
type Calculator struct {
	metrics []Metric

	// Timeout overrides the per-metric budget. Zero means DefaultMetricTimeout.
	Timeout time.Duration
}

func NewCalculator(llm LLMConfig) *Calculator {
	return NewCalculatorWithMetrics(DefaultMetrics(llm)...)
}

func NewCalculatorWithMetrics(metrics ...Metric) *Calculator {
	return &Calculator{metrics: metrics}
}

// Weights returns the name to weight mapping of the active metric set.
func (c *Calculator) Weights() map[string]float64 {
	w := make(map[string]float64, len(c.metrics))
	for _, m := range c.metrics {
		w[m.Name()] = m.Weight()
	}
	return w
}

// Evaluate fans the snapshot out to all metrics, collects score/latency
// pairs, and returns the folded rating. Never returns an error for metric
// failures: a failing or slow metric contributes zero.
func (c *Calculator) Evaluate(ctx context.Context, snap *meta.Snapshot, category meta.Category) *Rating {
	start := time.Now()

	if snap == nil {
		snap = meta.NewSnapshot(nil)
	}

	budget := c.Timeout
	if budget <= 0 {
		budget = DefaultMetricTimeout
	}

	type outcome struct {
		name   string
		weight float64
		val    Value
		ms     int64
	}
	outcomes := make([]outcome, len(c.metrics))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(c.metrics), runtime.NumCPU()))

	for i, m := range c.metrics {
		g.Go(func() error {
			val, ms := runWithTimeout(gctx, budget, m, snap, category)
			outcomes[i] = outcome{name: m.Name(), weight: m.Weight(), val: val, ms: ms}
			return nil
		})
	}
	// Tasks never return errors; Wait is only the join point.
	_ = g.Wait()

	rating := &Rating{
		Category: category,
		Scores:   make(map[string]MetricScore, len(outcomes)),
	}

	var net float64
	for _, o := range outcomes {
		net += o.val.Effective() * o.weight
		rating.Scores[o.name] = MetricScore{
			Value:     o.val.Score,
			ByClass:   o.val.ByClass,
			LatencyMS: o.ms,
		}
	}

	rating.NetScore = clamp(net)
	rating.NetScoreLatency = time.Since(start).Milliseconds()

	return rating
}

// runWithTimeout wraps a metric compute with the per-task budget and a
// panic barrier. On timeout or panic the metric contributes (0.0, 0).
func runWithTimeout(ctx context.Context, budget time.Duration, m Metric, snap *meta.Snapshot, category meta.Category) (Value, int64) {
	tctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan Value, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Warn("metric panicked", "metric", m.Name(), "panic", r)
				done <- Value{}
			}
		}()
		done <- m.Compute(snap, category)
	}()

	select {
	case v := <-done:
		return v, m.Latency()
	case <-tctx.Done():
		slog.Warn("metric timed out", "metric", m.Name(), "budget", budget.String())
		return Value{}, 0
	}
}
