package synth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storyforge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(apiURL string) *RemoteGenerator {
	return NewRemoteGenerator(&config.Config{
		HFAPIURL: apiURL,
		HFModel:  "gpt2",
		HFToken:  "hf_test_token",
	})
}

func TestRemoteGeneratorSuccess(t *testing.T) {
	var captured inferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gpt2", r.URL.Path)
		assert.Equal(t, "Bearer hf_test_token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode([]inferenceResponse{
			{GeneratedText: "Once upon a time a robot learned to feel, and the world changed."},
		})
	}))
	defer srv.Close()

	g := newRemote(srv.URL)
	text, err := g.Attempt(context.Background(), Request{
		Prompt:      "a robot who discovers emotions",
		Genre:       "Sci-Fi",
		Creativity:  0.7,
		TargetWords: 300,
	})
	require.NoError(t, err)
	assert.Contains(t, text, "robot learned to feel")

	// Token budget: words * 1.33 rounded, floor of 70% for the minimum.
	assert.Equal(t, 399, captured.Parameters.MaxNewTokens)
	assert.Equal(t, 279, captured.Parameters.MinNewTokens)
	assert.Equal(t, 0.7, captured.Parameters.Temperature)
	assert.True(t, captured.Parameters.DoSample)
	assert.Equal(t, 0.95, captured.Parameters.TopP)

	// The instruction embeds the prompt, the target, and the genre hint.
	assert.Contains(t, captured.Inputs, "a robot who discovers emotions")
	assert.Contains(t, captured.Inputs, "approximately 300 words")
	assert.Contains(t, captured.Inputs, GenreStyleHints["Sci-Fi"])
}

func TestRemoteGeneratorTokenBudgetCap(t *testing.T) {
	var captured inferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode([]inferenceResponse{
			{GeneratedText: "a perfectly serviceable long story body"},
		})
	}))
	defer srv.Close()

	g := newRemote(srv.URL)
	_, err := g.Attempt(context.Background(), Request{
		Prompt: "an epic", Genre: "Fantasy", TargetWords: 800,
	})
	require.NoError(t, err)

	// 800 * 1.33 would exceed the cap; the budget stops at 800.
	assert.Equal(t, 800, captured.Parameters.MaxNewTokens)
	assert.Equal(t, 560, captured.Parameters.MinNewTokens)
}

func TestRemoteGeneratorStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantReason string
	}{
		{"Rate Limited", http.StatusTooManyRequests, "rate limited (429)"},
		{"Unavailable", http.StatusServiceUnavailable, "service unavailable (503)"},
		{"Deprecated", http.StatusGone, "model deprecated (410)"},
		{"Forbidden", http.StatusForbidden, "forbidden - check token (403)"},
		{"Other", http.StatusBadGateway, "error 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			g := newRemote(srv.URL)
			_, err := g.Attempt(context.Background(), Request{Prompt: "p", Genre: "Drama", TargetWords: 100})
			require.Error(t, err)
			assert.Equal(t, tt.wantReason, err.Error())
		})
	}
}

func TestRemoteGeneratorRejectsShortOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]inferenceResponse{{GeneratedText: "  nope  "}})
	}))
	defer srv.Close()

	g := newRemote(srv.URL)
	_, err := g.Attempt(context.Background(), Request{Prompt: "p", Genre: "Drama", TargetWords: 100})
	require.Error(t, err)
	assert.Equal(t, "empty response", err.Error())
}

func TestRemoteGeneratorNoToken(t *testing.T) {
	g := NewRemoteGenerator(&config.Config{HFAPIURL: "http://unused", HFModel: "gpt2"})

	_, err := g.Attempt(context.Background(), Request{Prompt: "p", TargetWords: 100})
	assert.Error(t, err)
}
