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

const usersCollection = "users"

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client: client,
	}
}

// userDoc is the Firestore persistence model. The document ID is the external
// ID, which gives the store-level uniqueness constraint for Create.
type userDoc struct {
	ExternalID string    `firestore:"external_id"`
	Name       string    `firestore:"name"`
	RealName   string    `firestore:"real_name"`
	Locale     string    `firestore:"locale"`
	Email      string    `firestore:"email"`
	TZOffset   int       `firestore:"tz_offset"`
	CreatedAt  time.Time `firestore:"created_at"`
	UpdatedAt  time.Time `firestore:"updated_at"`
}

func (r *userRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + usersCollection)
	}
	return r.client.Collection(usersCollection)
}

func (r *userRepository) toDoc(user *model.User) *userDoc {
	return &userDoc{
		ExternalID: user.ExternalID,
		Name:       user.Name,
		RealName:   user.RealName,
		Locale:     user.Locale,
		Email:      user.Email,
		TZOffset:   user.TZOffset,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func (r *userRepository) fromDoc(doc *userDoc) *model.User {
	return &model.User{
		ExternalID: doc.ExternalID,
		Name:       doc.Name,
		RealName:   doc.RealName,
		Locale:     doc.Locale,
		Email:      doc.Email,
		TZOffset:   doc.TZOffset,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	snapshot, err := r.collection().Doc(externalID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "user not found", goerr.V("externalID", externalID))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("externalID", externalID))
	}

	var doc userDoc
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user document", goerr.V("externalID", externalID))
	}

	return r.fromDoc(&doc), nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	// Create fails with AlreadyExists when the document is present, which is
	// the duplicate-insert race protection for concurrent first-sight events.
	if _, err := r.collection().Doc(user.ExternalID).Create(ctx, r.toDoc(user)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(types.ErrAlreadyExists, "user already exists", goerr.V("externalID", user.ExternalID))
		}
		return goerr.Wrap(err, "failed to create user", goerr.V("externalID", user.ExternalID))
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	// Field-level update fails with NotFound for an absent document; Set would
	// silently resurrect a record that was never created.
	_, err := r.collection().Doc(user.ExternalID).Update(ctx, []firestore.Update{
		{Path: "name", Value: user.Name},
		{Path: "real_name", Value: user.RealName},
		{Path: "locale", Value: user.Locale},
		{Path: "email", Value: user.Email},
		{Path: "tz_offset", Value: user.TZOffset},
		{Path: "updated_at", Value: user.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrNotFound, "user not found", goerr.V("externalID", user.ExternalID))
		}
		return goerr.Wrap(err, "failed to update user", goerr.V("externalID", user.ExternalID))
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		snapshot, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var doc userDoc
		if err := snapshot.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user document")
		}
		users = append(users, r.fromDoc(&doc))
	}

	return users, nil
}
