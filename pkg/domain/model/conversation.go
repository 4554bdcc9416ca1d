package model

import "time"

// Conversation is the local record for a platform channel, keyed by the
// external ID. Membership is added lazily and never removed here.
type Conversation struct {
	ExternalID string
	Name       string
	MemberIDs  []string
	CreatedAt  time.Time
}

// NewConversation creates a Conversation record from directory metadata
func NewConversation(externalID, name string) *Conversation {
	return &Conversation{
		ExternalID: externalID,
		Name:       name,
		CreatedAt:  time.Now().UTC(),
	}
}

// HasMember reports whether the user is already a member of the conversation
func (c *Conversation) HasMember(userID string) bool {
	for _, id := range c.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
