package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 0, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("x", 100)))
}

func TestNew_WithSystemPrompt(t *testing.T) {
	h := New(16000, "You are a coding assistant.", zap.NewNop())

	require.Equal(t, 1, h.Len())
	msgs := h.Messages()
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, h.TokenCount(), msgs[0].TokenEstimate)
	assert.NotEmpty(t, h.SessionID())
}

func TestAdd_MaintainsTokenCount(t *testing.T) {
	h := New(16000, "", zap.NewNop())

	h.Add(RoleUser, strings.Repeat("a", 400))
	h.Add(RoleAssistant, strings.Repeat("b", 200))

	total := 0
	for _, m := range h.Messages() {
		total += m.TokenEstimate
	}
	assert.Equal(t, total, h.TokenCount())
	assert.Equal(t, 150, h.TokenCount())
}

func TestImportance_Rules(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		content string
		want    float64
	}{
		{"plain message", RoleUser, "hello there", 1.0},
		{"code block", RoleUser, "here:\n```go\nfunc main() {}\n```", 1.5},
		{"trigger word", RoleUser, "please remember this value", 1.7},
		{"trigger word beats code block", RoleUser, "important:\n```\nx\n```", 1.7},
		{"long assistant message", RoleAssistant, strings.Repeat("word ", 250), 1.3},
		{"long user message keeps default", RoleUser, strings.Repeat("word ", 250), 1.0},
		{
			// The execution rule runs last, so it overwrites the long-message score.
			"long assistant message mentioning execution",
			RoleAssistant,
			"Executing bash command now.\n" + strings.Repeat("output ", 200),
			1.6,
		},
		{"user mentioning execution keeps default", RoleUser, "executing tool something", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(1 << 20, "", zap.NewNop())
			msg := h.Add(tt.role, tt.content)
			assert.InDelta(t, tt.want, msg.Importance, 1e-9)
		})
	}
}

func TestPrune_NeverRemovesSystemMessages(t *testing.T) {
	h := New(100, "system prompt that stays", zap.NewNop())

	for i := 0; i < 20; i++ {
		h.Add(RoleUser, strings.Repeat("filler ", 30))
	}

	found := false
	for _, m := range h.Messages() {
		if m.Role == RoleSystem {
			found = true
		}
	}
	assert.True(t, found, "system message must survive pruning")
}

func TestPrune_BringsCountBackUnderBudget(t *testing.T) {
	h := New(200, "", zap.NewNop())

	for i := 0; i < 10; i++ {
		h.Add(RoleUser, strings.Repeat("x", 400)) // 100 tokens each
	}

	assert.LessOrEqual(t, h.TokenCount(), 200+100, "at most one message of overshoot after eviction")
	assert.True(t, h.TokenCount() <= 200 || h.Len() <= 2)
}

func TestPrune_EvictsLowImportanceFirst(t *testing.T) {
	h := New(1000, "", zap.NewNop())

	// Old but important message
	h.Add(RoleUser, "important: keep the API design "+strings.Repeat("z", 1200))
	// Newer filler messages with default importance
	h.Add(RoleUser, strings.Repeat("a", 1200))
	h.Add(RoleUser, strings.Repeat("b", 1200))
	// This one pushes over budget
	h.Add(RoleUser, strings.Repeat("c", 1200))

	var contents []string
	for _, m := range h.Messages() {
		contents = append(contents, m.Content[:9])
	}
	assert.Contains(t, contents, "important", "high-importance old message survives over newer filler")
}

func TestPrune_KeepsAtLeastTwoMessages(t *testing.T) {
	h := New(10, "", zap.NewNop())

	h.Add(RoleUser, strings.Repeat("x", 400))
	h.Add(RoleAssistant, strings.Repeat("y", 400))

	assert.GreaterOrEqual(t, h.Len(), 2)
}

func TestClear_KeepsSystemMessagesOnly(t *testing.T) {
	h := New(16000, "the system prompt", zap.NewNop())
	h.Add(RoleUser, "a question")
	h.Add(RoleAssistant, "an answer")

	h.Clear()

	require.Equal(t, 1, h.Len())
	msgs := h.Messages()
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, msgs[0].TokenEstimate, h.TokenCount())
}

func TestMessages_ReturnsOrderedCopy(t *testing.T) {
	h := New(16000, "", zap.NewNop())
	h.Add(RoleUser, "first")
	h.Add(RoleAssistant, "second")

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)

	// Mutating the returned slice must not affect the history
	msgs[0] = nil
	assert.Equal(t, "first", h.Messages()[0].Content)
}
