package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TemplateGenerator builds a story from a fixed, ordered sentence set sized
// to the requested length. It is fully deterministic: the same prompt and
// target always produce the same story. It fails only for an empty prompt.
type TemplateGenerator struct{}

// NewTemplateGenerator builds the deterministic template tier.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// Name implements Generator.
func (g *TemplateGenerator) Name() string {
	return "template"
}

// cleanPrompt strips instruction wrapping that leaks in when the caller
// hands us the full remote instruction instead of the bare idea, then
// normalizes case.
func cleanPrompt(prompt string) string {
	if strings.Contains(prompt, "approximately") {
		parts := strings.Split(prompt, "about")
		prompt = parts[len(parts)-1]
		prompt = strings.Split(prompt, "that")[0]
		prompt = strings.TrimSpace(prompt)
	}
	return strings.ToLower(strings.TrimSpace(prompt))
}

// SentenceCount returns how many template sentences are used for a target
// word count. Exposed for tests that pin the tier boundaries.
func SentenceCount(targetWords int) int {
	switch {
	case targetWords < 150:
		return 5
	case targetWords < 250:
		return 8
	case targetWords < 400:
		return 11
	case targetWords < 600:
		return 14
	default:
		return 17
	}
}

// Attempt implements Generator.
func (g *TemplateGenerator) Attempt(_ context.Context, req Request) (string, error) {
	prompt := cleanPrompt(req.Prompt)
	if prompt == "" {
		return "", errors.New("empty prompt")
	}

	var sentences []string
	switch {
	case req.TargetWords < 150:
		sentences = veryShortSentences(prompt)
	case req.TargetWords < 250:
		sentences = shortSentences(prompt)
	case req.TargetWords < 400:
		sentences = mediumSentences(prompt)
	case req.TargetWords < 600:
		sentences = longSentences(prompt)
	default:
		sentences = epicSentences(prompt)
	}

	text := strings.Join(sentences, " ")
	if len(strings.TrimSpace(text)) <= 30 {
		return "", errors.New("template output too short")
	}
	return text, nil
}

// Five tiers of hand-authored sentence sets. Per-sentence length grows with
// the tier so the joined story lands near the requested word count before
// trimming.

func veryShortSentences(prompt string) []string {
	return []string{
		fmt.Sprintf("In a mystical realm, %s emerged from ancient mists, bringing both wonder and danger to all who beheld it.", prompt),
		fmt.Sprintf("The heroes gathered with courage burning in their hearts, knowing %s was their only hope for salvation against the darkness.", prompt),
		fmt.Sprintf("A great battle erupted when %s revealed its true nature, testing the resolve of even the bravest warriors.", prompt),
		"With determination in their eyes, they prepared for the final confrontation, ready to face victory or death.",
		fmt.Sprintf("Against impossible odds, they triumphed gloriously, and %s became the greatest legend of the age, remembered forever.", prompt),
	}
}

func shortSentences(prompt string) []string {
	return []string{
		fmt.Sprintf("In a mystical realm far from the lands of men, %s emerged from ancient mists that shrouded the mountains, bringing both wonder and terrible danger.", prompt),
		fmt.Sprintf("The ancient prophecy had spoken of %s and the great deeds it would accomplish in the world, changing the fate of nations.", prompt),
		fmt.Sprintf("The heroes gathered from across the kingdom with courage burning bright in their hearts, knowing %s was their only hope for salvation.", prompt),
		fmt.Sprintf("Together they journeyed across dangerous lands and through treacherous forests, discovering truths about %s that had been hidden for generations.", prompt),
		fmt.Sprintf("The magic surrounding %s was far stronger than anyone had anticipated, testing their resolve and courage at every single turn.", prompt),
		fmt.Sprintf("Great battles erupted across the landscape as %s revealed powers beyond the imagination of mortals, shaking the very foundations of the earth.", prompt),
		"With unwavering determination shining in their eyes, they prepared for the ultimate confrontation, knowing only victory or death awaited them.",
		fmt.Sprintf("Against impossible odds and overwhelming enemies, they triumphed magnificently. %s became the greatest legend ever known, remembered in songs forever.", prompt),
	}
}

func mediumSentences(prompt string) []string {
	return []string{
		fmt.Sprintf("In a mystical realm far from the lands of men, where magic flowed like rivers, %s emerged from ancient mists that had shrouded the mountains for countless centuries.", prompt),
		fmt.Sprintf("The ancient prophecy had been carved in stone by the greatest seers of old, and it spoke with certainty of %s and the magnificent deeds it would accomplish.", prompt),
		"For generations beyond count, people had waited and hoped for this momentous occasion. When it finally came, the heroes gathered with unshakeable courage burning bright.",
		fmt.Sprintf("They knew with absolute certainty that %s was their only hope for salvation, their last chance to save their beloved kingdom from the encroaching darkness.", prompt),
		"Together, bound by destiny and friendship, they undertook an epic journey across dangerous lands and through dense treacherous forests filled with ancient magic and peril.",
		fmt.Sprintf("Along the way, they discovered profound secrets about %s that had been carefully hidden and protected for countless ages by those who came before them.", prompt),
		fmt.Sprintf("The magic surrounding %s was far stronger and infinitely more complex than anyone, even the wisest sages, had ever anticipated in their wildest dreams.", prompt),
		fmt.Sprintf("Great battles erupted across the landscape like wildfire, with ancient magic clashing violently against forged steel as %s revealed powers beyond mortal comprehension.", prompt),
		"Sacrifices were made along the treacherous way, and some of the bravest warriors fell in glorious battle defending their companions and their noble cause.",
		fmt.Sprintf("With unwavering determination shining brilliantly in their eyes, they prepared for the ultimate final confrontation involving %s, knowing only victory or death awaited.", prompt),
		fmt.Sprintf("Against impossible odds that would have broken lesser warriors, they triumphed magnificently and gloriously. %s became the greatest legend the world had ever known.", prompt),
	}
}

func longSentences(prompt string) []string {
	return []string{
		fmt.Sprintf("In a mystical realm far from the lands of men, where magic flowed like rivers through enchanted valleys, %s emerged from ancient mists that had shrouded the towering mountains for countless centuries.", prompt),
		fmt.Sprintf("The ancient prophecy had been carved in stone by the greatest seers of old, written in languages long forgotten, and it spoke with absolute certainty of %s and the magnificent deeds it would accomplish.", prompt),
		"For generations beyond count, spanning hundreds of years through times of war and peace, people had waited and hoped for this momentous occasion that would change everything they knew.",
		"When it finally came upon them like a storm, the bravest heroes from across the kingdom gathered together with unshakeable courage burning bright in their hearts, ready to face any challenge.",
		fmt.Sprintf("They knew with absolute certainty, without any doubt in their minds, that %s was their only hope for salvation and survival, their last chance to save their beloved kingdom.", prompt),
		"Together, bound by destiny and unbreakable friendship, they undertook an epic journey across dangerous and unforgiving lands, through dense treacherous forests filled with ancient magic, over towering mountains that pierced the heavens.",
		fmt.Sprintf("Along their perilous journey, they discovered profound and earth-shattering secrets about %s that had been carefully hidden and zealously protected for countless ages by the ancient guardians who came before.", prompt),
		fmt.Sprintf("The magic surrounding %s was far stronger, more powerful, and infinitely more complex than anyone, even the wisest sages and most learned scholars, had ever anticipated in their wildest dreams.", prompt),
		"Great and terrible battles erupted across the landscape like wildfire spreading through dry grass, with ancient magic clashing violently against forged steel and burning fire in spectacular displays of raw power.",
		"Sacrifices were made along the treacherous way, and some of the bravest and most noble warriors fell in glorious battle, but their legacy lived on eternally in the hearts of those who continued fighting.",
		"The enemy grew desperate and more dangerous as the heroes approached their final destination, launching wave after wave of increasingly ferocious attacks in a desperate attempt to stop them.",
		fmt.Sprintf("With unwavering determination shining brilliantly like stars in their eyes, never faltering for even a moment, they prepared themselves mentally and physically for the ultimate final confrontation involving %s.", prompt),
		"Against impossible odds that would have broken lesser warriors, facing enemies that outnumbered them a hundred to one, they fought with everything they had and triumphed magnificently through sheer courage.",
		fmt.Sprintf("When the dust finally settled and the last enemy had fallen defeated, %s became the greatest legend the world had ever known, a story that would echo through history forever.", prompt),
	}
}

func epicSentences(prompt string) []string {
	return []string{
		fmt.Sprintf("In a mystical realm far from the lands of men, where magic flowed like rivers through enchanted valleys and mountains touched the clouds, %s emerged from ancient mists that had shrouded the land for countless centuries, bringing both wonder and terrible danger to all who beheld it.", prompt),
		fmt.Sprintf("The ancient prophecy had been carved in stone by the greatest seers of old, written in languages long forgotten by mortal minds, and it spoke with certainty of %s and the magnificent deeds it would accomplish in the world, changing the very fabric of reality itself.", prompt),
		"For generations beyond count, spanning hundreds of years through times of war and peace, people had waited and hoped for this momentous occasion. When it finally came upon them like a storm, the bravest heroes from across the kingdom gathered together with unshakeable courage burning bright in their hearts.",
		fmt.Sprintf("They knew with absolute certainty, without any doubt in their minds, that %s was their only hope for salvation and survival, their last and final chance to save their beloved kingdom and all they held dear from the encroaching darkness that threatened to consume everything.", prompt),
		"Together, bound by destiny and friendship that had been forged through countless trials, they undertook an epic journey across dangerous and unforgiving lands, through dense treacherous forests filled with ancient magic and creatures of nightmare, over towering mountains that pierced the heavens themselves.",
		fmt.Sprintf("Along their perilous journey through lands both beautiful and terrible, they discovered profound secrets about %s that had been carefully hidden and zealously protected for countless ages by the ancient guardians and wise keepers who came before them in ages past.", prompt),
		fmt.Sprintf("The magic surrounding %s was far stronger, more powerful, and infinitely more complex than anyone, even the wisest sages, most learned scholars, and ancient mystics had ever anticipated in their wildest dreams. It tested their resolve, their courage, and their very souls at every single turn.", prompt),
		fmt.Sprintf("Great and terrible battles erupted across the landscape like wildfire spreading through dry grass, with ancient magic clashing violently against forged steel and burning fire, as %s revealed powers and abilities that went far beyond the imagination and comprehension of mere mortals, shaking the foundations of the world itself.", prompt),
		"Sacrifices were made along the treacherous way, hearts were broken, and some of the bravest and most noble warriors fell in glorious battle fighting to their last breath, but their noble legacy and memory lived on eternally in the hearts and minds of those who continued to fight the good fight.",
		"The enemy grew desperate and more dangerous as the heroes approached their final destination, launching wave after wave of attacks with increasing ferocity and madness, throwing everything they had in a desperate attempt to stop the heroes from reaching their goal and fulfilling the ancient prophecy.",
		"Dark magic filled the skies, the earth trembled beneath their feet, and the very fabric of reality seemed to tear as the forces of darkness made their final desperate stand against the heroes who carried the hope of the world on their shoulders.",
		"Epic battles of legendary proportion erupted across the entire landscape, with magic clashing against steel in spectacular displays of power that lit up the sky like a thousand suns, creating explosions of light and shadow that could be seen from kingdoms away.",
		fmt.Sprintf("With unwavering determination shining brilliantly like stars in their eyes, never faltering for even a moment despite exhaustion and pain, they prepared themselves mentally and physically for the ultimate final confrontation involving %s, knowing full well that only complete victory or glorious death awaited them at the end of this journey.", prompt),
		fmt.Sprintf("Against impossible odds that would have broken lesser warriors and driven strong men mad with fear, facing enemies that outnumbered them a hundred to one, they fought with everything they had. Through skill, courage, determination, and the power of %s, they triumphed magnificently and gloriously over the forces of darkness.", prompt),
		fmt.Sprintf("When the dust finally settled over the battlefield and the last enemy had fallen defeated and broken, %s became the greatest legend the world had ever known, a story that would echo through the halls of history for all time, inspiring countless generations yet to come.", prompt),
		"Kingdoms that had warred for centuries were finally united under the banner of peace and mutual respect, prosperity and abundance was restored to lands that had known only suffering and despair, and the entire world entered a new golden age of enlightenment, harmony, and hope for the future.",
		fmt.Sprintf("The epic tale of %s would be told and retold for countless generations to come, remembered forever in songs sung by bards in great halls, in stories cherished and passed down by grandparents to wide-eyed children gathered around warm fires, and in the hearts of all people who believed in the power of courage and hope.", prompt),
	}
}
