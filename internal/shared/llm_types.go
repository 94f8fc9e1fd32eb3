package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a single model call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for one generation step.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
	Attempt   int // retry pass this call belonged to, 0-based
}
