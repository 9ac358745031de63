package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"storyforge/internal/config"
)

// remoteTimeout bounds the single inference attempt. There is no retry; a
// failed call falls straight through to the local tiers.
const remoteTimeout = 30 * time.Second

// maxNewTokens caps the token budget sent to the inference API.
const maxNewTokens = 800

// GenreStyleHints is appended to the remote instruction to steer the model
// toward the selected genre.
var GenreStyleHints = map[string]string{
	"Fantasy":   "Include magical elements, mythical creatures, and an epic quest.",
	"Sci-Fi":    "Set in the future with advanced technology and space exploration themes.",
	"Mystery":   "Include a puzzling crime or enigma that needs to be solved.",
	"Romance":   "Focus on emotional connections and relationship development.",
	"Horror":    "Create suspense and fear with dark, eerie atmospheres.",
	"Adventure": "Include thrilling journeys and daring exploits.",
	"Comedy":    "Make it humorous with witty dialogue and funny situations.",
	"Drama":     "Focus on serious themes and character conflicts.",
	"Thriller":  "Build tension with fast-paced action and unexpected twists.",
}

type inferenceParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	MinNewTokens int     `json:"min_new_tokens"`
	Temperature  float64 `json:"temperature"`
	DoSample     bool    `json:"do_sample"`
	TopP         float64 `json:"top_p"`
	Details      bool    `json:"details"`
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceResponse struct {
	GeneratedText string `json:"generated_text"`
}

// RemoteGenerator calls a hosted model-inference endpoint. Any non-200
// response, a timeout, or an unusable body counts as a tier failure with a
// distinguishable reason; the caller moves to the next tier.
type RemoteGenerator struct {
	apiURL string
	model  string
	token  string
	client *http.Client
}

// NewRemoteGenerator builds the remote tier from configuration.
func NewRemoteGenerator(cfg *config.Config) *RemoteGenerator {
	return &RemoteGenerator{
		apiURL: cfg.HFAPIURL,
		model:  cfg.HFModel,
		token:  cfg.HFToken,
		client: &http.Client{Timeout: remoteTimeout},
	}
}

// Name implements Generator.
func (g *RemoteGenerator) Name() string {
	return "remote"
}

// Attempt implements Generator.
func (g *RemoteGenerator) Attempt(ctx context.Context, req Request) (string, error) {
	if g.token == "" {
		return "", errors.New("no inference token configured")
	}

	maxTokens := int(math.Round(float64(req.TargetWords) * 1.33))
	if maxTokens > maxNewTokens {
		maxTokens = maxNewTokens
	}
	minTokens := int(float64(maxTokens) * 0.7)

	instruction := fmt.Sprintf(
		"Write a creative %s story about %s that is approximately %d words long.",
		req.Genre, req.Prompt, req.TargetWords)
	if hint, ok := GenreStyleHints[req.Genre]; ok {
		instruction += " " + hint
	}
	instruction += "\n\n"

	body, err := json.Marshal(inferenceRequest{
		Inputs: instruction,
		Parameters: inferenceParameters{
			MaxNewTokens: maxTokens,
			MinNewTokens: minTokens,
			Temperature:  req.Creativity,
			DoSample:     true,
			TopP:         0.95,
			Details:      true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(g.apiURL, "/"), g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", errors.New("request timeout")
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to body parsing below
	case http.StatusTooManyRequests:
		return "", errors.New("rate limited (429)")
	case http.StatusServiceUnavailable:
		return "", errors.New("service unavailable (503)")
	case http.StatusGone:
		return "", errors.New("model deprecated (410)")
	case http.StatusForbidden:
		return "", errors.New("forbidden - check token (403)")
	default:
		return "", fmt.Errorf("error %d", resp.StatusCode)
	}

	// The API returns a list of candidates; the first one carries the text.
	var candidates []inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(candidates) == 0 {
		return "", errors.New("empty response")
	}
	text := candidates[0].GeneratedText
	if len(strings.TrimSpace(text)) <= 10 {
		return "", errors.New("empty response")
	}
	return text, nil
}
