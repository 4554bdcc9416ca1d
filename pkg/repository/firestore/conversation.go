package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chatops-lab/chatrelay/pkg/domain/interfaces"
	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
)

const conversationsCollection = "conversations"

type conversationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ConversationRepository = &conversationRepository{}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{
		client: client,
	}
}

type conversationDoc struct {
	ExternalID string    `firestore:"external_id"`
	Name       string    `firestore:"name"`
	MemberIDs  []string  `firestore:"member_ids"`
	CreatedAt  time.Time `firestore:"created_at"`
}

func (r *conversationRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + conversationsCollection)
	}
	return r.client.Collection(conversationsCollection)
}

func (r *conversationRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Conversation, error) {
	snapshot, err := r.collection().Doc(externalID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "conversation not found", goerr.V("externalID", externalID))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("externalID", externalID))
	}

	var doc conversationDoc
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode conversation document", goerr.V("externalID", externalID))
	}

	return &model.Conversation{
		ExternalID: doc.ExternalID,
		Name:       doc.Name,
		MemberIDs:  doc.MemberIDs,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	doc := &conversationDoc{
		ExternalID: conv.ExternalID,
		Name:       conv.Name,
		MemberIDs:  conv.MemberIDs,
		CreatedAt:  conv.CreatedAt,
	}
	if _, err := r.collection().Doc(conv.ExternalID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(types.ErrAlreadyExists, "conversation already exists", goerr.V("externalID", conv.ExternalID))
		}
		return goerr.Wrap(err, "failed to create conversation", goerr.V("externalID", conv.ExternalID))
	}
	return nil
}

func (r *conversationRepository) AddMember(ctx context.Context, conversationID, userID string) error {
	// ArrayUnion is a no-op when the member is already present, so concurrent
	// adds of the same user stay idempotent without a transaction.
	_, err := r.collection().Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "member_ids", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrNotFound, "conversation not found", goerr.V("externalID", conversationID))
		}
		return goerr.Wrap(err, "failed to add member",
			goerr.V("externalID", conversationID), goerr.V("userID", userID))
	}
	return nil
}
