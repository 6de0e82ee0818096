package metrics

// TokenUsage captures LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Add accumulates another usage sample.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// OracleUsage aggregates the cost accounting for the decision oracle over one
// trip generation: how many calls were issued and the tokens they consumed.
type OracleUsage struct {
	Calls  int        `json:"calls"`
	Tokens TokenUsage `json:"tokens"`
}

// Record adds one oracle round trip to the accounting.
func (o *OracleUsage) Record(tokens TokenUsage) {
	o.Calls++
	o.Tokens.Add(tokens)
}
