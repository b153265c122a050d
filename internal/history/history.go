// Package history stores the bounded conversation transcript and prunes it
// under a token budget using importance-weighted eviction.
package history

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// EstimateTokens gives a rough token count for text.
// Approximately 4 characters per token; a real tokenizer would be needed for
// accurate counts.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Message is a single conversation turn.
type Message struct {
	Role          string
	Content       string
	Timestamp     time.Time
	TokenEstimate int
	Importance    float64
}

// NewMessage creates a message with a computed token estimate and default
// importance.
func NewMessage(role, content string) *Message {
	return &Message{
		Role:          role,
		Content:       content,
		Timestamp:     time.Now(),
		TokenEstimate: EstimateTokens(content),
		Importance:    1.0,
	}
}

// History holds an ordered message sequence under a token budget.
// Invariant: tokenCount equals the sum of the held messages' estimates.
// System messages are never evicted.
type History struct {
	messages   []*Message
	maxTokens  int
	tokenCount int
	sessionID  string
	logger     *zap.Logger
}

// New creates a History with the given budget. If systemPrompt is non-empty
// it is added as the first message.
func New(maxTokens int, systemPrompt string, logger *zap.Logger) *History {
	if logger == nil {
		panic("history.New: logger cannot be nil")
	}
	h := &History{
		maxTokens: maxTokens,
		sessionID: uuid.NewString(),
		logger:    logger,
	}
	if systemPrompt != "" {
		h.Add(RoleSystem, systemPrompt)
	}
	return h
}

// SessionID returns the identifier assigned to this conversation.
func (h *History) SessionID() string { return h.sessionID }

// TokenCount returns the current running token total.
func (h *History) TokenCount() int { return h.tokenCount }

// Len returns the number of held messages.
func (h *History) Len() int { return len(h.messages) }

// Add appends a message, scores its importance and prunes if the budget is
// exceeded.
func (h *History) Add(role, content string) *Message {
	msg := NewMessage(role, content)
	h.messages = append(h.messages, msg)
	h.tokenCount += msg.TokenEstimate

	adjustImportance(msg)

	if h.tokenCount > h.maxTokens {
		h.prune()
	}

	return msg
}

// importance trigger words; any match raises the message score.
var importanceIndicators = []string{"important", "remember", "note", "key"}

// adjustImportance scores a message from content heuristics. Rules are
// evaluated in order and each match overwrites the score, so the last
// matching rule wins.
func adjustImportance(msg *Message) {
	content := strings.ToLower(msg.Content)

	if strings.Contains(content, "```") {
		msg.Importance = 1.5
	}

	for _, indicator := range importanceIndicators {
		if strings.Contains(content, indicator) {
			msg.Importance = 1.7
			break
		}
	}

	if len(content) > 1000 && msg.Role == RoleAssistant {
		msg.Importance = 1.3
	}

	if msg.Role == RoleAssistant &&
		(strings.Contains(content, "executing tool") || strings.Contains(content, "executing bash")) {
		msg.Importance = 1.6
	}
}

// prune evicts low-value messages until the history fits the budget.
//
// Every non-system message gets a position factor from 0.5 (oldest) to 1.0
// (newest); eviction order is ascending importance*position. The loop stops
// as soon as enough tokens are removed, so it never over-evicts.
func (h *History) prune() {
	if len(h.messages) <= 2 {
		return // keep at least system prompt + one message
	}

	type scored struct {
		msg   *Message
		score float64
	}
	var prunable []scored
	for _, msg := range h.messages {
		if msg.Role != RoleSystem {
			prunable = append(prunable, scored{msg: msg})
		}
	}
	if len(prunable) == 0 {
		return
	}

	denom := len(prunable) - 1
	if denom < 1 {
		denom = 1
	}
	for i := range prunable {
		positionFactor := 0.5 + 0.5*float64(i)/float64(denom)
		prunable[i].score = prunable[i].msg.Importance * positionFactor
	}

	sort.SliceStable(prunable, func(a, b int) bool {
		return prunable[a].score < prunable[b].score
	})

	tokensToRemove := h.tokenCount - h.maxTokens
	tokensRemoved := 0

	h.logger.Info("pruning conversation history", zap.Int("tokens_to_remove", tokensToRemove))

	for _, s := range prunable {
		if tokensRemoved >= tokensToRemove {
			break
		}
		if h.remove(s.msg) {
			tokensRemoved += s.msg.TokenEstimate
			h.tokenCount -= s.msg.TokenEstimate
			h.logger.Debug("removed message",
				zap.String("role", s.msg.Role),
				zap.Int("tokens", s.msg.TokenEstimate))
		}
	}

	h.logger.Info("pruned conversation history", zap.Int("tokens_removed", tokensRemoved))
}

// remove deletes msg from the ordered sequence by identity.
func (h *History) remove(msg *Message) bool {
	for i, m := range h.messages {
		if m == msg {
			h.messages = append(h.messages[:i], h.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops everything except system messages.
func (h *History) Clear() {
	var kept []*Message
	total := 0
	for _, msg := range h.messages {
		if msg.Role == RoleSystem {
			kept = append(kept, msg)
			total += msg.TokenEstimate
		}
	}
	h.messages = kept
	h.tokenCount = total
}

// Messages returns a copy of the current message sequence in order.
func (h *History) Messages() []*Message {
	out := make([]*Message, len(h.messages))
	copy(out, h.messages)
	return out
}
