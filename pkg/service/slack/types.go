package slack

import "context"

// Service provides the platform directory and messaging operations the intake
// pipeline depends on
type Service interface {
	// GetUser retrieves profile data for the given user ID from the directory
	GetUser(ctx context.Context, userID string) (*User, error)

	// GetConversation retrieves channel metadata for the given channel ID
	GetConversation(ctx context.Context, channelID string) (*Channel, error)

	// BotUserID returns the bot's own external identity. Resolved once per
	// process on first use and cached thereafter.
	BotUserID(ctx context.Context) (string, error)

	// PostEphemeral posts a message visible only to the given user,
	// referencing the triggering message timestamp
	PostEphemeral(ctx context.Context, channelID, userID, ts, text string) error
}

// User holds directory profile data for a platform user
type User struct {
	ID       string
	Name     string
	RealName string
	Locale   string
	Email    string
	TZOffset int
}

// Channel holds directory metadata for a conversation
type Channel struct {
	ID   string
	Name string
}
