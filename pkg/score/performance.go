package score

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/modelaudit/trustgate/pkg/net"
)

const (
	defaultLLMTimeout = 30 * time.Second
	maxReadmeChars    = 6000

	evalPrompt = "You are evaluating the performance claims made in an ML artifact README. " +
		"Based on the benchmarks, metrics, and evidence presented, rate how well " +
		"substantiated the performance claims are. Respond with ONLY a number between " +
		"0.00 and 1.00 formatted to two decimal places on the first line, followed by a newline.\n\nREADME:\n"
)

// First line must be a two-decimal float immediately followed by a newline.
var scoreLinePattern = regexp.MustCompile(`^(\d\.\d{2})\n`)

// LLMConfig points the performance metric at an OpenAI-compatible chat
// completion endpoint.
type LLMConfig struct {
	URL     string
	Token   string
	Model   string
	Timeout time.Duration
}

// PerformanceMetric delegates claim evaluation to a remote text completion
// call. The only metric with an external network dependency; it carries its
// own timeout budget and degrades to 0.0 on any failure.
type PerformanceMetric struct {
	metricInfo
	cfg LLMConfig
}

func NewPerformanceMetric(cfg LLMConfig) *PerformanceMetric {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLLMTimeout
	}
	return &PerformanceMetric{
		metricInfo: metricInfo{name: "performance", weight: defaultWeight},
		cfg:        cfg,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (m *PerformanceMetric) Compute(snap *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())

	readme := snap.Str(meta.KeyReadme)
	if readme == "" || m.cfg.URL == "" {
		return Value{Score: 0.0}
	}
	if len(readme) > maxReadmeChars {
		readme = readme[:maxReadmeChars]
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
	defer cancel()

	req := chatRequest{
		Model: m.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: evalPrompt + readme},
		},
	}

	var resp chatResponse
	if err := net.PostJSON(ctx, m.cfg.URL, m.cfg.Token, req, &resp); err != nil {
		slog.Warn("performance evaluation call failed", "error", err)
		return Value{Score: 0.0}
	}
	if len(resp.Choices) == 0 {
		slog.Warn("performance evaluation returned no choices")
		return Value{Score: 0.0}
	}

	return Value{Score: parseScoreLine(resp.Choices[0].Message.Content)}
}

func parseScoreLine(content string) float64 {
	match := scoreLinePattern.FindStringSubmatch(content)
	if match == nil {
		slog.Warn("performance evaluation response not parsable")
		return 0.0
	}
	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil || score < 0.0 || score > 1.0 {
		return 0.0
	}
	return score
}
