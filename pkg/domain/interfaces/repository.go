package interfaces

import (
	"context"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	User() UserRepository
	Conversation() ConversationRepository
	Message() MessageRepository
	Close() error
}

// UserRepository provides store operations for User records
type UserRepository interface {
	// GetByExternalID retrieves a user by the platform-assigned ID.
	// Returns types.ErrNotFound when absent.
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)

	// Create stores a new user. Returns types.ErrAlreadyExists when a record
	// with the same external ID exists; callers re-read and use that record.
	Create(ctx context.Context, user *model.User) error

	// Update overwrites the profile fields of an existing user
	Update(ctx context.Context, user *model.User) error

	// List retrieves all known users
	List(ctx context.Context) ([]*model.User, error)
}

// ConversationRepository provides store operations for Conversation records
type ConversationRepository interface {
	// GetByExternalID retrieves a conversation by the platform-assigned ID.
	// Returns types.ErrNotFound when absent.
	GetByExternalID(ctx context.Context, externalID string) (*model.Conversation, error)

	// Create stores a new conversation. Returns types.ErrAlreadyExists on a
	// duplicate external ID.
	Create(ctx context.Context, conv *model.Conversation) error

	// AddMember adds a user to the conversation's member set. Idempotent.
	AddMember(ctx context.Context, conversationID, userID string) error
}

// MessageRepository provides store operations for Message records
type MessageRepository interface {
	// Create stores a new message. Returns types.ErrAlreadyExists when a
	// message with the same (conversation, timestamp) key exists, which is
	// how re-delivered events are detected.
	Create(ctx context.Context, msg *model.Message) error

	// ListByConversation retrieves messages of one conversation, newest first
	ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error)
}
