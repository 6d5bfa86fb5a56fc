package score

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)

		resp := map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{"role": "assistant", "content": content},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readmeSnapshot() *meta.Snapshot {
	return meta.NewSnapshot(map[string]any{
		meta.KeyReadme: "## Benchmarks\nAchieves 92.4 F1 on SQuAD v1.1.",
	})
}

func TestPerformanceMetric_ParsesScoreLine(t *testing.T) {
	srv := chatServer(t, "0.85\nThe claims are well substantiated by benchmarks.")
	m := NewPerformanceMetric(LLMConfig{URL: srv.URL, Model: "test-model"})

	v := m.Compute(readmeSnapshot(), meta.CategoryModel)
	assert.InDelta(t, 0.85, v.Score, 0.001)
}

func TestPerformanceMetric_EmptyReadme(t *testing.T) {
	m := NewPerformanceMetric(LLMConfig{URL: "http://unused.invalid"})
	v := m.Compute(meta.NewSnapshot(nil), meta.CategoryModel)
	assert.Equal(t, 0.0, v.Score)
}

func TestPerformanceMetric_NoEndpointConfigured(t *testing.T) {
	m := NewPerformanceMetric(LLMConfig{})
	v := m.Compute(readmeSnapshot(), meta.CategoryModel)
	assert.Equal(t, 0.0, v.Score)
}

func TestPerformanceMetric_MalformedResponse(t *testing.T) {
	srv := chatServer(t, "The score is 0.85, roughly.")
	m := NewPerformanceMetric(LLMConfig{URL: srv.URL})

	v := m.Compute(readmeSnapshot(), meta.CategoryModel)
	assert.Equal(t, 0.0, v.Score)
}

func TestPerformanceMetric_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(srv.Close)

	m := NewPerformanceMetric(LLMConfig{URL: srv.URL})
	v := m.Compute(readmeSnapshot(), meta.CategoryModel)
	assert.Equal(t, 0.0, v.Score)
}

func TestPerformanceMetric_EndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	m := NewPerformanceMetric(LLMConfig{URL: srv.URL})
	v := m.Compute(readmeSnapshot(), meta.CategoryModel)
	assert.Equal(t, 0.0, v.Score)
}

func TestParseScoreLine(t *testing.T) {
	tests := []struct {
		content string
		want    float64
	}{
		{"0.85\nreasoning follows", 0.85},
		{"1.00\n", 1.0},
		{"0.00\n", 0.0},
		{"0.85", 0.0},
		{"Score: 0.85\n", 0.0},
		{"0.9\n", 0.0},
		{"", 0.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseScoreLine(tt.content), "content=%q", tt.content)
	}
}
