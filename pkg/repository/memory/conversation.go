package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
)

type conversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*model.Conversation
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		conversations: make(map[string]*model.Conversation),
	}
}

func copyConversation(c *model.Conversation) *model.Conversation {
	copied := *c
	if c.MemberIDs != nil {
		copied.MemberIDs = make([]string, len(c.MemberIDs))
		copy(copied.MemberIDs, c.MemberIDs)
	}
	return &copied
}

func (r *conversationRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, exists := r.conversations[externalID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "conversation not found", goerr.V("externalID", externalID))
	}

	return copyConversation(conv), nil
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conversations[conv.ExternalID]; exists {
		return goerr.Wrap(types.ErrAlreadyExists, "conversation already exists", goerr.V("externalID", conv.ExternalID))
	}

	r.conversations[conv.ExternalID] = copyConversation(conv)
	return nil
}

func (r *conversationRepository) AddMember(ctx context.Context, conversationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, exists := r.conversations[conversationID]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "conversation not found", goerr.V("externalID", conversationID))
	}

	if conv.HasMember(userID) {
		return nil
	}

	conv.MemberIDs = append(conv.MemberIDs, userID)
	return nil
}
