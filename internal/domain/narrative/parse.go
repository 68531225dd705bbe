package narrative

import (
	"encoding/json"
	"errors"
	"strings"
)

// Per-field defaults used when the model omits a field.
const (
	defaultScore       = 75
	defaultExplanation = "The stars are aligning for you."
	defaultSummary     = "Your chart is balanced today."
	defaultStrategy    = "Balance your internal drive with external patience."
	defaultArchetype   = "Cosmic Traveler"
	defaultCaption     = "Cosmic Alignment"
)

var defaultActions = []string{"Seize the day", "Reflect inward", "Smile often"}

type resultWire struct {
	Score       *float64        `json:"score"`
	Caption     string          `json:"caption"`
	Summary     string          `json:"summary"`
	Explanation string          `json:"explanation"`
	Archetype   string          `json:"archetype"`
	Strategy    string          `json:"strategy"`
	Schedule    json.RawMessage `json:"schedule"`
	Actions     json.RawMessage `json:"actions"`
}

// parseResult decodes a model reply, tolerating markdown code fences and
// single strings where arrays are expected.
func parseResult(raw string) (Result, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))
	if sanitized == "" {
		return Result{}, errors.New("empty narrative reply")
	}

	var wire resultWire
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return Result{}, err
	}
	schedule, err := coerceStringArray(wire.Schedule)
	if err != nil {
		return Result{}, err
	}
	actions, err := coerceStringArray(wire.Actions)
	if err != nil {
		return Result{}, err
	}

	score := defaultScore
	if wire.Score != nil {
		score = clampScore(int(*wire.Score))
	}
	archetype := firstNonEmpty(wire.Archetype, defaultArchetype)
	actions = normalizeList(actions)
	if len(actions) == 0 {
		actions = append([]string(nil), defaultActions...)
	}

	return Result{
		Score:       score,
		Archetype:   archetype,
		Caption:     archetype + " | " + firstNonEmpty(wire.Caption, defaultCaption),
		Summary:     firstNonEmpty(wire.Summary, defaultSummary),
		Explanation: firstNonEmpty(wire.Explanation, defaultExplanation),
		Strategy:    firstNonEmpty(wire.Strategy, defaultStrategy),
		Schedule:    normalizeList(schedule),
		Actions:     actions,
	}, nil
}

func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, errors.New("unsupported narrative array format")
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
