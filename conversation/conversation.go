// Package conversation provides the multi-turn conversation store: keyed,
// time-stamped message histories shared across concurrent request handlers,
// with age-based expiry driven by a caller-owned timer.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single entry in a conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an append-only message history with free-form metadata.
// UpdatedAt is bumped on every append or metadata change and drives expiry;
// CreatedAt never changes.
type Conversation struct {
	ID        string            `json:"id"`
	Messages  []Message         `json:"messages"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewConversation creates an empty conversation with a fresh random id.
func NewConversation() *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        uuid.NewString(),
		Messages:  []Message{},
		Metadata:  map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a message and bumps UpdatedAt. Note that on a clone
// obtained from the store this mutates only the local copy; write it back
// with Store.Update or use Store.AppendMessage for an atomic append.
func (c *Conversation) AddMessage(role, content string) {
	now := time.Now().UTC()
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: now})
	c.UpdatedAt = now
}

// SetMetadata sets a metadata key and bumps UpdatedAt.
func (c *Conversation) SetMetadata(key, value string) {
	if c.Metadata == nil {
		c.Metadata = map[string]string{}
	}
	c.Metadata[key] = value
	c.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Messages:  make([]Message, len(c.Messages)),
		Metadata:  make(map[string]string, len(c.Metadata)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	copy(clone.Messages, c.Messages)
	for k, v := range c.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
