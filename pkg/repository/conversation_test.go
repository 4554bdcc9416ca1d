package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/chatops-lab/chatrelay/pkg/domain/interfaces"
	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
	"github.com/chatops-lab/chatrelay/pkg/repository/memory"
)

func runConversationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and GetByExternalID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := fmt.Sprintf("C%d", time.Now().UnixNano())
		conv := model.NewConversation(id, "general")
		gt.NoError(t, repo.Conversation().Create(ctx, conv)).Required()

		got, err := repo.Conversation().GetByExternalID(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ExternalID).Equal(id)
		gt.Value(t, got.Name).Equal("general")
		gt.Array(t, got.MemberIDs).Length(0)
	})

	t.Run("GetByExternalID returns NotFound for missing conversation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Conversation().GetByExternalID(ctx, fmt.Sprintf("C_MISSING_%d", time.Now().UnixNano()))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("Create rejects duplicate external ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := fmt.Sprintf("C%d", time.Now().UnixNano())
		gt.NoError(t, repo.Conversation().Create(ctx, model.NewConversation(id, "general"))).Required()

		err := repo.Conversation().Create(ctx, model.NewConversation(id, "general-dup"))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrAlreadyExists)).True()
	})

	t.Run("AddMember is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := fmt.Sprintf("C%d", time.Now().UnixNano())
		gt.NoError(t, repo.Conversation().Create(ctx, model.NewConversation(id, "general"))).Required()

		gt.NoError(t, repo.Conversation().AddMember(ctx, id, "U001")).Required()
		gt.NoError(t, repo.Conversation().AddMember(ctx, id, "U001")).Required()
		gt.NoError(t, repo.Conversation().AddMember(ctx, id, "U002")).Required()

		got, err := repo.Conversation().GetByExternalID(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, got.MemberIDs).Length(2)
		gt.Array(t, got.MemberIDs).Has("U001")
		gt.Array(t, got.MemberIDs).Has("U002")
		gt.Bool(t, got.HasMember("U001")).True()
		gt.Bool(t, got.HasMember("U999")).False()
	})

	t.Run("AddMember on missing conversation returns NotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Conversation().AddMember(ctx, fmt.Sprintf("C_MISSING_%d", time.Now().UnixNano()), "U001")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})
}

func TestMemoryConversationRepository(t *testing.T) {
	runConversationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreConversationRepository(t *testing.T) {
	runConversationRepositoryTest(t, newFirestoreRepository)
}
