package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chatops-lab/chatrelay/pkg/domain/interfaces"
	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
)

const messagesCollection = "messages"

type messageRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.MessageRepository = &messageRepository{}

func newMessageRepository(client *firestore.Client) *messageRepository {
	return &messageRepository{
		client: client,
	}
}

type messageDoc struct {
	ConversationID string    `firestore:"conversation_id"`
	UserID         string    `firestore:"user_id"`
	Text           string    `firestore:"text"`
	TS             string    `firestore:"ts"`
	ThreadTS       string    `firestore:"thread_ts"`
	CreatedAt      time.Time `firestore:"created_at"`
}

func (r *messageRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + messagesCollection)
	}
	return r.client.Collection(messagesCollection)
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	doc := &messageDoc{
		ConversationID: msg.ConversationID,
		UserID:         msg.UserID,
		Text:           msg.Text,
		TS:             msg.TS,
		ThreadTS:       msg.ThreadTS,
		CreatedAt:      msg.CreatedAt,
	}

	// Document ID is (conversation, ts), so a re-delivered event hits
	// AlreadyExists instead of creating a second record.
	if _, err := r.collection().Doc(msg.Key()).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(types.ErrAlreadyExists, "message already exists",
				goerr.V("conversationID", msg.ConversationID), goerr.V("ts", msg.TS))
		}
		return goerr.Wrap(err, "failed to create message",
			goerr.V("conversationID", msg.ConversationID), goerr.V("ts", msg.TS))
	}
	return nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error) {
	iter := r.collection().
		Where("conversation_id", "==", conversationID).
		OrderBy("ts", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var messages []*model.Message
	for {
		snapshot, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages", goerr.V("conversationID", conversationID))
		}

		var doc messageDoc
		if err := snapshot.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message document")
		}
		messages = append(messages, &model.Message{
			ConversationID: doc.ConversationID,
			UserID:         doc.UserID,
			Text:           doc.Text,
			TS:             doc.TS,
			ThreadTS:       doc.ThreadTS,
			CreatedAt:      doc.CreatedAt,
		})
	}

	return messages, nil
}
