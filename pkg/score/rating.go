package score

import (
	"encoding/json"

	"github.com/modelaudit/trustgate/pkg/meta"
)

// MetricScore is one metric's contribution to a Rating.
type MetricScore struct {
	Value     float64
	ByClass   map[string]float64
	LatencyMS int64
}

// Rating is the result bag returned by one Evaluate call: the clamped net
// score plus a score/latency pair per active metric. Immutable once
// returned; owned by the caller.
type Rating struct {
	Category        meta.Category
	NetScore        float64
	NetScoreLatency int64
	Scores          map[string]MetricScore
}

// flatten produces the wire shape: a flat object with category, net_score,
// net_score_latency, and <name> / <name>_latency pairs. The size metric's
// value is its hardware-class map.
func (r *Rating) flatten() map[string]any {
	out := make(map[string]any, len(r.Scores)*2+3)
	out["category"] = string(r.Category)
	out["net_score"] = r.NetScore
	out["net_score_latency"] = r.NetScoreLatency
	for name, s := range r.Scores {
		if s.ByClass != nil {
			out[name] = s.ByClass
		} else {
			out[name] = s.Value
		}
		out[name+"_latency"] = s.LatencyMS
	}
	return out
}

func (r *Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.flatten())
}

func (r *Rating) MarshalYAML() (any, error) {
	return r.flatten(), nil
}
