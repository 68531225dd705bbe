package metrics

// TokenUsage captures LLM token counts used to produce a narrative.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Estimated fills the totals from a local prompt estimate when the provider reported nothing.
func (u TokenUsage) Estimated(promptTokens int) TokenUsage {
	if !u.IsZero() {
		return u
	}
	return TokenUsage{PromptTokens: promptTokens, TotalTokens: promptTokens}
}
