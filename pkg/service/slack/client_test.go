package slack_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/chatops-lab/chatrelay/pkg/domain/types"
	slacksvc "github.com/chatops-lab/chatrelay/pkg/service/slack"
)

func TestNew(t *testing.T) {
	t.Run("empty token requires offline mode", func(t *testing.T) {
		_, err := slacksvc.New("")
		gt.Error(t, err)
	})

	t.Run("empty token allowed in offline mode", func(t *testing.T) {
		svc, err := slacksvc.New("", slacksvc.WithOffline(true))
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestOfflineWithoutToken(t *testing.T) {
	ctx := context.Background()

	svc, err := slacksvc.New("", slacksvc.WithOffline(true))
	gt.NoError(t, err).Required()

	t.Run("directory lookups fail instead of panicking", func(t *testing.T) {
		_, err := svc.GetUser(ctx, "U036WLG7H")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrDirectoryLookup)).True()

		_, err = svc.GetConversation(ctx, "C036WLG7Z")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrDirectoryLookup)).True()
	})

	t.Run("ephemeral post fails instead of panicking", func(t *testing.T) {
		err := svc.PostEphemeral(ctx, "C036WLG7Z", "U036WLG7H", "1679639978.922569", "notice")
		gt.Error(t, err)
	})

	t.Run("identity resolution still works", func(t *testing.T) {
		id, err := svc.BotUserID(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal(slacksvc.OfflineBotUserID)
	})
}

func TestBotUserID(t *testing.T) {
	ctx := context.Background()

	t.Run("offline mode returns placeholder identity", func(t *testing.T) {
		svc, err := slacksvc.New("", slacksvc.WithOffline(true))
		gt.NoError(t, err).Required()

		id, err := svc.BotUserID(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal(slacksvc.OfflineBotUserID)

		// Cached value on subsequent calls
		id2, err := svc.BotUserID(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, id2).Equal(id)
	})

	t.Run("explicit identity overrides resolution", func(t *testing.T) {
		svc, err := slacksvc.New("", slacksvc.WithOffline(true), slacksvc.WithBotUserID("U_FIXED"))
		gt.NoError(t, err).Required()

		id, err := svc.BotUserID(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal("U_FIXED")
	})
}
