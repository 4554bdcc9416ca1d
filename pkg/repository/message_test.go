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

func runMessageRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and ListByConversation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		convID := fmt.Sprintf("C%d", time.Now().UnixNano())
		msg := model.NewMessage(convID, "U001", "hello", "1679639978.922569", "")
		gt.NoError(t, repo.Message().Create(ctx, msg)).Required()

		msgs, err := repo.Message().ListByConversation(ctx, convID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1)
		gt.Value(t, msgs[0].ConversationID).Equal(convID)
		gt.Value(t, msgs[0].UserID).Equal("U001")
		gt.Value(t, msgs[0].Text).Equal("hello")
		gt.Value(t, msgs[0].TS).Equal("1679639978.922569")
		// Thread root defaults to the message's own timestamp
		gt.Value(t, msgs[0].ThreadTS).Equal("1679639978.922569")
	})

	t.Run("Create rejects duplicate conversation and timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		convID := fmt.Sprintf("C%d", time.Now().UnixNano())
		gt.NoError(t, repo.Message().Create(ctx, model.NewMessage(convID, "U001", "first", "1679639978.922569", ""))).Required()

		err := repo.Message().Create(ctx, model.NewMessage(convID, "U001", "replayed", "1679639978.922569", ""))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrAlreadyExists)).True()

		msgs, err := repo.Message().ListByConversation(ctx, convID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1)
		gt.Value(t, msgs[0].Text).Equal("first")
	})

	t.Run("same timestamp in another conversation is a new message", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().UnixNano()
		convA := fmt.Sprintf("C%d_a", base)
		convB := fmt.Sprintf("C%d_b", base)

		gt.NoError(t, repo.Message().Create(ctx, model.NewMessage(convA, "U001", "in a", "1679639978.922569", ""))).Required()
		gt.NoError(t, repo.Message().Create(ctx, model.NewMessage(convB, "U001", "in b", "1679639978.922569", ""))).Required()

		msgsA, err := repo.Message().ListByConversation(ctx, convA)
		gt.NoError(t, err).Required()
		gt.Array(t, msgsA).Length(1)

		msgsB, err := repo.Message().ListByConversation(ctx, convB)
		gt.NoError(t, err).Required()
		gt.Array(t, msgsB).Length(1)
	})

	t.Run("ListByConversation returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		convID := fmt.Sprintf("C%d", time.Now().UnixNano())
		for i, ts := range []string{"1679639978.000001", "1679639978.000002", "1679639978.000003"} {
			msg := model.NewMessage(convID, "U001", fmt.Sprintf("message %d", i), ts, "")
			gt.NoError(t, repo.Message().Create(ctx, msg)).Required()
		}

		msgs, err := repo.Message().ListByConversation(ctx, convID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(3)
		gt.Value(t, msgs[0].TS).Equal("1679639978.000003")
		gt.Value(t, msgs[2].TS).Equal("1679639978.000001")
	})

	t.Run("explicit thread root is preserved", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		convID := fmt.Sprintf("C%d", time.Now().UnixNano())
		msg := model.NewMessage(convID, "U001", "threaded", "1679644228.326869", "1679640009.398859")
		gt.NoError(t, repo.Message().Create(ctx, msg)).Required()

		msgs, err := repo.Message().ListByConversation(ctx, convID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1)
		gt.Value(t, msgs[0].ThreadTS).Equal("1679640009.398859")
	})

	t.Run("ListByConversation with no messages", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		msgs, err := repo.Message().ListByConversation(ctx, fmt.Sprintf("C_EMPTY_%d", time.Now().UnixNano()))
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})
}

func TestMemoryMessageRepository(t *testing.T) {
	runMessageRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreMessageRepository(t *testing.T) {
	runMessageRepositoryTest(t, newFirestoreRepository)
}
