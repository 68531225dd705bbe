package narrative

import (
	"fmt"
	"strings"
)

const (
	unknown = "Unknown"

	defaultSystemPrompt = "You are an expert astrologer and numerologist. You explain a luck score that has already been calculated; you never recalculate it."
	shapeEnforcer       = ` Respond ONLY with a valid JSON object using this shape: {"score":int,"caption":string,"summary":string,"explanation":string,"archetype":string,"strategy":string,"schedule":string[],"actions":string[]}. Never return plain text.`
)

func (s *service) buildSystemPrompt() string {
	base := strings.TrimSpace(s.cfg.Prompt)
	if base == "" {
		base = defaultSystemPrompt
	}
	return base + shapeEnforcer
}

// buildUserPrompt renders the factor sheet. Optional blocks are dropped first
// when the prompt exceeds the token budget.
func (s *service) buildUserPrompt(in Input) string {
	head := fmt.Sprintf(`USER CONTEXT:
- Name: %s
- Born: %s
- Intention: %s
- Date: %s
- OmniLuck score: %d/100
`, firstNonEmpty(in.Name, "User"), firstNonEmpty(in.DOB, unknown), firstNonEmpty(in.Intention, "General Luck"), in.Date, in.LuckScore)

	numbers := fmt.Sprintf(`
NUMEROLOGY:
- Life Path: %d
- Destiny: %d
- Personal Day: %d
- Harmony score: %d
`, in.Numerology.LifePath, in.Numerology.Destiny, in.Numerology.PersonalDay, in.Numerology.HarmonyScore)

	astro := fmt.Sprintf(`
ASTROLOGY:
- Sun: %s, Moon: %s, Rising: %s
- Transit score: %d
- Major transit: %s
`, firstNonEmpty(in.SunSign, in.ZodiacSign, unknown), firstNonEmpty(in.MoonSign, unknown), firstNonEmpty(in.Ascendant, unknown), in.TransitScore, firstNonEmpty(in.TopAspect, unknown))

	env := fmt.Sprintf(`
ENVIRONMENT:
- Moon phase: %s
- Weather: %s
`, firstNonEmpty(in.LunarPhase, unknown), firstNonEmpty(in.Weather, unknown))

	task := fmt.Sprintf(`
TASK:
1. Explain the score from the overlapping numerology and astrology data.
2. Compare Personal Day %d with the major transit.
3. Give today's luck archetype title (e.g. "The Empire Builder").
4. Write a strategy resolving any conflict between the internal numbers and the external transits.
5. Suggest 2-3 time blocks for action and 3 short actions.
`, in.Numerology.PersonalDay)

	blocks := []string{head, numbers, astro, env, task}
	prompt := strings.Join(blocks, "")
	if s.tokens == nil || s.cfg.MaxPromptTokens <= 0 {
		return prompt
	}
	// environment first, then astrology
	for _, drop := range []int{3, 2} {
		if s.tokens.Count(prompt) <= s.cfg.MaxPromptTokens {
			break
		}
		blocks[drop] = ""
		prompt = strings.Join(blocks, "")
	}
	return prompt
}
