// Package synth produces story text from a prompt and a target word count.
// Generation runs through an ordered chain of tiers: a remote inference call,
// a deterministic template builder, and a randomized fragment assembler. The
// last tier cannot fail, so Generate never surfaces an error to its caller.
package synth

import (
	"context"
	"strings"
	"time"

	"storyforge/internal/config"
	"storyforge/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Word count bounds accepted by Generate. Values outside are clamped.
const (
	MinTargetWords = 100
	MaxTargetWords = 800

	MinCreativity = 0.1
	MaxCreativity = 1.0
)

// Request describes one story generation.
type Request struct {
	Prompt      string
	Genre       string
	Creativity  float64
	TargetWords int
}

// Generator is one tier in the generation chain. A tier either produces text
// or returns an error explaining why it could not; the chain then moves on.
type Generator interface {
	Name() string
	Attempt(ctx context.Context, req Request) (string, error)
}

// Synthesizer runs the tier chain in order and post-processes the output.
type Synthesizer struct {
	chain []Generator
	log   *observability.GenLogger
}

// New builds the standard three-tier chain. The remote tier is only included
// when a usable inference token is configured.
func New(cfg *config.Config) *Synthesizer {
	var chain []Generator
	if cfg.RemoteGenerationEnabled() {
		chain = append(chain, NewRemoteGenerator(cfg))
	}
	chain = append(chain,
		NewTemplateGenerator(),
		NewFragmentGenerator(time.Now().UnixNano()),
	)
	return &Synthesizer{
		chain: chain,
		log:   observability.NewGenLogger(),
	}
}

// NewWithChain builds a synthesizer over an explicit chain. Used by tests and
// anywhere the default tiers are not wanted.
func NewWithChain(chain ...Generator) *Synthesizer {
	return &Synthesizer{
		chain: chain,
		log:   observability.NewGenLogger(),
	}
}

// Generate produces a story for the request. Tiers are tried in order and the
// first success wins; output longer than the target is truncated to exactly
// TargetWords tokens with a trailing ellipsis. Short output is returned as-is,
// never padded. Generate always returns non-empty text for a non-empty prompt.
func (s *Synthesizer) Generate(ctx context.Context, req Request) string {
	start := time.Now()
	defer observability.ObserveGeneration(start)

	ctx, span := observability.Tracer.Start(ctx, "synth.Generate")
	defer span.End()

	req = Clamp(req)
	span.SetAttributes(
		attribute.String("genre", req.Genre),
		attribute.Int("target_words", req.TargetWords),
	)

	for _, gen := range s.chain {
		text, err := gen.Attempt(ctx, req)
		if err != nil {
			s.log.LogTierResult(ctx, gen.Name(), false, err.Error())
			observability.GenerationAttempts.WithLabelValues(gen.Name(), "failure").Inc()
			continue
		}
		if strings.TrimSpace(text) == "" {
			s.log.LogTierResult(ctx, gen.Name(), false, "empty output")
			observability.GenerationAttempts.WithLabelValues(gen.Name(), "failure").Inc()
			continue
		}
		s.log.LogTierResult(ctx, gen.Name(), true, "")
		observability.GenerationAttempts.WithLabelValues(gen.Name(), "success").Inc()
		span.SetAttributes(attribute.String("tier", gen.Name()))
		return TrimToWordCount(text, req.TargetWords)
	}

	// Unreachable with the standard chain: the fragment tier always
	// produces text. Kept so a custom all-failing chain still degrades.
	return ""
}

// Clamp forces the tunable request fields into their supported ranges.
func Clamp(req Request) Request {
	if req.TargetWords < MinTargetWords {
		req.TargetWords = MinTargetWords
	}
	if req.TargetWords > MaxTargetWords {
		req.TargetWords = MaxTargetWords
	}
	if req.Creativity < MinCreativity {
		req.Creativity = MinCreativity
	}
	if req.Creativity > MaxCreativity {
		req.Creativity = MaxCreativity
	}
	return req
}

// TrimToWordCount truncates text to at most target whitespace-delimited
// tokens, appending an ellipsis when truncation actually happened.
func TrimToWordCount(text string, target int) string {
	words := strings.Fields(text)
	if len(words) <= target {
		return text
	}
	return strings.Join(words[:target], " ") + "..."
}
