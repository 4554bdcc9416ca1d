package model

import "time"

// Message is the immutable record of one qualifying inbound mention.
// It is unique on (conversation, platform timestamp); the store enforces
// that via the document key.
type Message struct {
	ConversationID string
	UserID         string
	Text           string
	TS             string
	ThreadTS       string
	CreatedAt      time.Time
}

// NewMessage creates a Message. threadTS defaults to the message's own
// timestamp when the event carries none (the message starts a new thread).
func NewMessage(conversationID, userID, text, ts, threadTS string) *Message {
	if threadTS == "" {
		threadTS = ts
	}
	return &Message{
		ConversationID: conversationID,
		UserID:         userID,
		Text:           text,
		TS:             ts,
		ThreadTS:       threadTS,
		CreatedAt:      time.Now().UTC(),
	}
}

// Key returns the store-level uniqueness key for the message
func (m *Message) Key() string {
	return m.ConversationID + "_" + m.TS
}
