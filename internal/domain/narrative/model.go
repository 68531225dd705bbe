package narrative

import (
	"time"

	"github.com/yanqian/omniluck/internal/domain/numerology"
	"github.com/yanqian/omniluck/pkg/metrics"
)

// Source values reported in Result.Source.
const (
	SourceLLM      = "llm"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Input is the context handed to the narrative writer. Every numeric field is
// already computed and is never modified here.
type Input struct {
	UID        string
	Name       string
	DOB        string
	Date       string
	Locale     string
	Intention  string
	ZodiacSign string
	LuckScore  int

	Numerology numerology.Profile

	SunSign      string
	MoonSign     string
	Ascendant    string
	TransitScore int
	TopAspect    string

	LunarPhase string
	Weather    string
}

// Result is the typed narrative. Score is the writer's own suggestion and is
// informational only.
type Result struct {
	Score       int                `json:"score"`
	Caption     string             `json:"caption"`
	Summary     string             `json:"summary"`
	Explanation string             `json:"explanation"`
	Archetype   string             `json:"archetype"`
	Strategy    string             `json:"strategy"`
	Schedule    []string           `json:"schedule"`
	Actions     []string           `json:"actions"`
	Source      string             `json:"source"`
	Usage       metrics.TokenUsage `json:"usage"`
}

// Config tunes the LLM call and caching.
type Config struct {
	Model           string
	Temperature     float32
	MaxTokens       int
	Prompt          string
	Timeout         time.Duration
	CacheTTL        time.Duration
	Workers         int
	MaxPromptTokens int
	DefaultLocale   string
}
