package worker

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
	"github.com/chatops-lab/chatrelay/pkg/repository/memory"
	"github.com/chatops-lab/chatrelay/pkg/service/slack"
)

type directoryStub struct {
	users map[string]*slack.User
}

func (d *directoryStub) GetUser(ctx context.Context, userID string) (*slack.User, error) {
	user, ok := d.users[userID]
	if !ok {
		return nil, goerr.Wrap(types.ErrDirectoryLookup, "users.info failed")
	}
	return user, nil
}

func (d *directoryStub) GetConversation(ctx context.Context, channelID string) (*slack.Channel, error) {
	return nil, goerr.Wrap(types.ErrDirectoryLookup, "not implemented")
}

func (d *directoryStub) BotUserID(ctx context.Context) (string, error) {
	return slack.OfflineBotUserID, nil
}

func (d *directoryStub) PostEphemeral(ctx context.Context, channelID, userID, ts, text string) error {
	return nil
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("updates known profiles from the directory", func(t *testing.T) {
		repo := memory.New()
		gt.NoError(t, repo.User().Create(ctx, model.NewUser("U001", "alice-old", "Alice Old", "en-US", "alice@example.com", 0))).Required()

		svc := &directoryStub{users: map[string]*slack.User{
			"U001": {ID: "U001", Name: "alice", RealName: "Alice New", Locale: "ja-JP", Email: "alice@example.com", TZOffset: 32400},
		}}

		w := NewProfileRefreshWorker(repo, svc, time.Hour)
		gt.NoError(t, w.refresh(ctx)).Required()

		user, err := repo.User().GetByExternalID(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, user.Name).Equal("alice")
		gt.Value(t, user.RealName).Equal("Alice New")
		gt.Value(t, user.Locale).Equal("ja-JP")
		gt.Value(t, user.TZOffset).Equal(32400)
	})

	t.Run("failed lookup skips the user and keeps going", func(t *testing.T) {
		repo := memory.New()
		gt.NoError(t, repo.User().Create(ctx, model.NewUser("U001", "alice", "Alice", "en-US", "", 0))).Required()
		gt.NoError(t, repo.User().Create(ctx, model.NewUser("U002", "bob-old", "Bob Old", "en-US", "", 0))).Required()

		svc := &directoryStub{users: map[string]*slack.User{
			"U002": {ID: "U002", Name: "bob", RealName: "Bob New"},
		}}

		w := NewProfileRefreshWorker(repo, svc, time.Hour)
		gt.NoError(t, w.refresh(ctx)).Required()

		// U001 lookup failed, record untouched
		alice, err := repo.User().GetByExternalID(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, alice.Name).Equal("alice")

		bob, err := repo.User().GetByExternalID(ctx, "U002")
		gt.NoError(t, err).Required()
		gt.Value(t, bob.RealName).Equal("Bob New")
	})

	t.Run("Stop terminates the loop", func(t *testing.T) {
		repo := memory.New()
		svc := &directoryStub{}

		w := NewProfileRefreshWorker(repo, svc, 10*time.Millisecond)
		gt.NoError(t, w.Start(ctx)).Required()

		time.Sleep(30 * time.Millisecond)
		w.Stop()
	})
}
