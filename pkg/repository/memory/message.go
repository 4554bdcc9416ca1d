package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
)

type messageRepository struct {
	mu       sync.RWMutex
	messages map[string]*model.Message
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		messages: make(map[string]*model.Message),
	}
}

func copyMessage(m *model.Message) *model.Message {
	copied := *m
	return &copied
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := msg.Key()
	if _, exists := r.messages[key]; exists {
		return goerr.Wrap(types.ErrAlreadyExists, "message already exists",
			goerr.V("conversationID", msg.ConversationID), goerr.V("ts", msg.TS))
	}

	r.messages[key] = copyMessage(msg)
	return nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			result = append(result, copyMessage(m))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TS > result[j].TS
	})

	return result, nil
}
