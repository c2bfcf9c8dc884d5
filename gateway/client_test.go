package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talk-studio/draft"
)

func gatewayStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func TestClientGenerate(t *testing.T) {
	client := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generate", r.URL.Path)

		var brief draft.Brief
		require.NoError(t, json.NewDecoder(r.Body).Decode(&brief))
		assert.Equal(t, "T", brief.Title)
		assert.Equal(t, 15, brief.DurationMinutes)

		json.NewEncoder(w).Encode(map[string]string{"content": "generated prose"})
	})

	content, err := client.Generate(context.Background(), draft.Brief{Title: "T", Topic: "X", DurationMinutes: 15, Tone: "inspiring"})
	require.NoError(t, err)
	assert.Equal(t, "generated prose", content)
}

func TestClientGenerateValidatesBeforeNetwork(t *testing.T) {
	called := false
	client := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := client.Generate(context.Background(), draft.Brief{Topic: "X"})
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, called)
}

func TestClientGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, KindAuthentication},
		{"rate limited", http.StatusTooManyRequests, KindRateLimited},
		{"bad request", http.StatusBadRequest, KindValidation},
		{"server error", http.StatusInternalServerError, KindUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
			})

			_, err := client.Generate(context.Background(), draft.Brief{Title: "T", Topic: "X"})
			assert.True(t, IsKind(err, tc.kind), "expected kind %v, got %v", tc.kind, err)
		})
	}
}

func TestClientGenerateMissingContent(t *testing.T) {
	client := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"something": "else"})
	})

	_, err := client.Generate(context.Background(), draft.Brief{Title: "T", Topic: "X"})
	assert.True(t, IsKind(err, KindUpstreamMalformed))
}

func TestClientAnalyze(t *testing.T) {
	client := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze", r.URL.Path)

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a speech", req.SpeechContent)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"logos": 70, "pathos": 60, "ethos": 80,
			"logos_description": "solid reasoning",
		})
	})

	scores, err := client.Analyze(context.Background(), "a speech")
	require.NoError(t, err)
	assert.Equal(t, 70, scores.Logos)
	assert.Equal(t, "solid reasoning", scores.LogosDescription)
}

func TestClientAnalyzeRejectsBlankContent(t *testing.T) {
	called := false
	client := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := client.Analyze(context.Background(), "   ")
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, called)
}
