package synth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// FragmentGenerator is the tier of last resort. It stitches randomly chosen
// stock fragments around the prompt until the word target is reached. Output
// varies run to run but Attempt never fails for a non-empty prompt.
type FragmentGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFragmentGenerator builds the random fragment tier. The seed fixes the
// fragment sequence, which keeps tests reproducible.
func NewFragmentGenerator(seed int64) *FragmentGenerator {
	return &FragmentGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Name implements Generator.
func (g *FragmentGenerator) Name() string {
	return "fragment"
}

var shortFragments = []string{
	"The adventure tested every ounce of courage they possessed.",
	"Nothing would ever be the same after that fateful day.",
	"Whispers of the tale spread quickly through every village and town.",
	"Even the skeptics could no longer deny what they had witnessed.",
}

var mediumFragments = []string{
	"As the journey unfolded, unexpected allies appeared from the most unlikely of places, each bringing skills that would prove essential.",
	"Storm clouds gathered on the horizon, a warning of the trials that still lay ahead for everyone involved.",
	"Old rivalries were set aside as the true scale of the challenge became impossible to ignore.",
	"Secrets long buried began to surface, changing how everyone understood the events that had brought them here.",
	"Each small victory came at a cost, and the weight of those costs grew heavier with every passing day.",
}

var longFragments = []string{
	"Through nights of doubt and days of hardship, the bonds between the companions deepened into something unbreakable, a trust forged in shared danger that no force could undo.",
	"Ancient knowledge, pieced together from fragments and half-remembered songs, slowly revealed a path forward that none of them had dared to imagine possible.",
	"The land itself seemed to respond to their passage, rivers shifting course and forests opening hidden trails, as if the world had chosen a side in the struggle.",
	"Betrayal struck from within their own ranks, and for a time all seemed lost, until loyalty proved stronger than fear and the group found its purpose renewed.",
	"Messengers rode through the night carrying word of what had happened, and in distant halls, rulers weighed their choices with newfound urgency.",
}

var epicFragments = []string{
	"Generations later, scholars would still debate the precise sequence of events, poring over conflicting accounts and weathered inscriptions, but all agreed on one thing: the world before and the world after were not the same place, and those who lived through the change carried its mark for the rest of their lives.",
	"Armies assembled on plains that had known only harvest, banners of a dozen houses snapping in the wind, and for the first time in living memory the old feuds fell silent before a threat that recognized no border, no crown, and no treaty.",
	"In the quiet that followed the great upheaval, survivors rebuilt with patient hands, raising new walls on old foundations, teaching their children the songs of what was lost and the harder songs of what was won, so that memory itself became a kind of monument.",
}

// fragmentPool picks the stock pool for a target length.
func fragmentPool(targetWords int) []string {
	switch {
	case targetWords <= 50:
		return shortFragments
	case targetWords <= 100:
		return mediumFragments
	case targetWords <= 200:
		return longFragments
	case targetWords <= 500:
		return append(append([]string{}, mediumFragments...), longFragments...)
	default:
		return append(append([]string{}, longFragments...), epicFragments...)
	}
}

// Attempt implements Generator.
func (g *FragmentGenerator) Attempt(_ context.Context, req Request) (string, error) {
	prompt := cleanPrompt(req.Prompt)
	if prompt == "" {
		return "", errors.New("empty prompt")
	}

	pool := fragmentPool(req.TargetWords)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("The story of %s began quietly, the way most great stories do.", prompt))

	g.mu.Lock()
	for len(strings.Fields(sb.String())) < req.TargetWords {
		sb.WriteString(" ")
		sb.WriteString(pool[g.rng.Intn(len(pool))])
	}
	g.mu.Unlock()

	sb.WriteString(" ")
	sb.WriteString(fmt.Sprintf("And so the tale of %s found its ending, though some say it was only the beginning.", prompt))

	return TrimToWordCount(sb.String(), req.TargetWords), nil
}
