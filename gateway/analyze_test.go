package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampScore(t *testing.T) {
	assert.Equal(t, 100, ClampScore(133.7))
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 50, ClampScore(50))
	assert.Equal(t, 73, ClampScore(72.6))
	assert.Equal(t, 0, ClampScore(0))
	assert.Equal(t, 100, ClampScore(100))
}

func TestParseAnalysisClampsRawScores(t *testing.T) {
	scores, err := ParseAnalysis(`{"logos": 105, "pathos": -3, "ethos": 50, "logos_description": "a", "pathos_description": "b", "ethos_description": "c"}`)
	require.NoError(t, err)
	assert.Equal(t, 100, scores.Logos)
	assert.Equal(t, 0, scores.Pathos)
	assert.Equal(t, 50, scores.Ethos)
	assert.Equal(t, "a", scores.LogosDescription)
}

func TestParseAnalysisExtractsEmbeddedJSON(t *testing.T) {
	scores, err := ParseAnalysis("Here is the analysis:\n{\"logos\": 70, \"pathos\": 60, \"ethos\": 80}\nHope that helps.")
	require.NoError(t, err)
	assert.Equal(t, 70, scores.Logos)
	assert.Equal(t, 60, scores.Pathos)
	assert.Equal(t, 80, scores.Ethos)
}

func TestParseAnalysisRejectsMissingScores(t *testing.T) {
	_, err := ParseAnalysis(`{"logos": 70, "pathos": 60}`)
	assert.True(t, IsKind(err, KindUpstreamMalformed))

	_, err = ParseAnalysis("no json here")
	assert.True(t, IsKind(err, KindUpstreamMalformed))
}

func TestScoresOverall(t *testing.T) {
	s := Scores{Logos: 70, Pathos: 60, Ethos: 80}
	assert.Equal(t, 70, s.Overall())

	s = Scores{Logos: 100, Pathos: 100, Ethos: 99}
	assert.Equal(t, 100, s.Overall())
}

func TestAnalyzeSpeechRejectsBlankContentWithoutNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	llm := NewOpenAIWithBaseURL("test-key", server.URL)
	_, err := AnalyzeSpeech(context.Background(), llm, "gpt-4o-mini", "   \n\t ")
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, called, "blank content must not reach the network")
}

func TestAnalyzeSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		assert.True(t, strings.Contains(req.Messages[0].Content, "a fine speech"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"logos": 133.7, "pathos": -5, "ethos": 50}`}},
			},
		})
	}))
	defer server.Close()

	llm := NewOpenAIWithBaseURL("test-key", server.URL)
	scores, err := AnalyzeSpeech(context.Background(), llm, "gpt-4o-mini", "a fine speech")
	require.NoError(t, err)
	assert.Equal(t, Scores{Logos: 100, Pathos: 0, Ethos: 50}, scores)
}

func TestOpenAIRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	llm := NewOpenAIWithBaseURL("test-key", server.URL)
	_, err := llm.Complete(context.Background(), ChatRequest{Model: "gpt-3.5-turbo", User: "hi"})
	assert.True(t, IsKind(err, KindRateLimited))
}

func TestOpenAIMissingContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	llm := NewOpenAIWithBaseURL("test-key", server.URL)
	_, err := llm.Complete(context.Background(), ChatRequest{Model: "gpt-3.5-turbo", User: "hi"})
	assert.True(t, IsKind(err, KindUpstreamMalformed))
}

func TestOpenAIMissingKey(t *testing.T) {
	llm := NewOpenAI("")
	_, err := llm.Complete(context.Background(), ChatRequest{Model: "gpt-3.5-turbo", User: "hi"})
	assert.True(t, IsKind(err, KindAuthentication))
}
