package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// snapshot is the persisted conversation format.
type snapshot struct {
	SessionID string            `json:"session_id"`
	Timestamp string            `json:"timestamp"`
	Messages  []snapshotMessage `json:"messages"`
}

type snapshotMessage struct {
	Role       string  `json:"role"`
	Content    string  `json:"content"`
	Timestamp  string  `json:"timestamp"`
	Importance float64 `json:"importance"`
}

// SaveToFile writes the conversation as a JSON snapshot, creating parent
// directories as needed.
func (h *History) SaveToFile(path string) error {
	snap := snapshot{
		SessionID: h.sessionID,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	for _, msg := range h.messages {
		snap.Messages = append(snap.Messages, snapshotMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			Timestamp:  msg.Timestamp.Format(time.RFC3339),
			Importance: msg.Importance,
		})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// LoadFromFile replaces the current conversation with a saved snapshot.
// Token estimates are recomputed from content; stored importance is kept.
func (h *History) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse history file: %w", err)
	}

	h.messages = nil
	h.tokenCount = 0
	if snap.SessionID != "" {
		h.sessionID = snap.SessionID
	}

	for _, sm := range snap.Messages {
		msg := NewMessage(sm.Role, sm.Content)
		if ts, err := time.Parse(time.RFC3339, sm.Timestamp); err == nil {
			msg.Timestamp = ts
		}
		if sm.Importance != 0 {
			msg.Importance = sm.Importance
		}
		h.messages = append(h.messages, msg)
		h.tokenCount += msg.TokenEstimate
	}

	return nil
}
