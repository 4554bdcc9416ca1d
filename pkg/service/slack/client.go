package slack

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/chatops-lab/chatrelay/pkg/domain/types"
	"github.com/chatops-lab/chatrelay/pkg/utils/logging"
)

// OfflineBotUserID is the placeholder identity used when identity resolution
// runs in offline mode (tests, local development without a bot token)
const OfflineBotUserID = "TEST_BOT_ID"

// client implements Service interface
type client struct {
	api     *slack.Client
	offline bool

	mu        sync.Mutex
	botUserID string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithOffline short-circuits identity resolution to OfflineBotUserID instead
// of calling auth.test
func WithOffline(offline bool) Option {
	return func(c *client) {
		c.offline = offline
	}
}

// WithBotUserID overrides identity resolution with a fixed value
func WithBotUserID(id string) Option {
	return func(c *client) {
		c.botUserID = id
	}
}

// New creates a new Slack service with the provided bot token. The token may
// be empty only in offline mode.
func New(token string, opts ...Option) (Service, error) {
	c := &client{}
	for _, opt := range opts {
		opt(c)
	}

	if token == "" && !c.offline {
		return nil, goerr.New("Slack bot token is required")
	}
	if token != "" {
		c.api = slack.New(token)
	}

	return c, nil
}

// errNoAPIClient reports a directory or messaging call made without a bot
// token. Offline mode only covers identity resolution; the remote API still
// needs credentials.
func errNoAPIClient(op string) error {
	return goerr.Wrap(types.ErrDirectoryLookup, "bot token is not configured", goerr.V("op", op))
}

// GetUser retrieves user profile data via users.info
func (c *client) GetUser(ctx context.Context, userID string) (*User, error) {
	if c.api == nil {
		return nil, errNoAPIClient("users.info")
	}

	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(types.ErrDirectoryLookup, "users.info failed",
			goerr.V("userID", userID), goerr.V("cause", err.Error()))
	}

	return &User{
		ID:       user.ID,
		Name:     user.Name,
		RealName: user.RealName,
		Locale:   user.Locale,
		Email:    user.Profile.Email,
		TZOffset: user.TZOffset,
	}, nil
}

// GetConversation retrieves channel metadata via conversations.info
func (c *client) GetConversation(ctx context.Context, channelID string) (*Channel, error) {
	if c.api == nil {
		return nil, errNoAPIClient("conversations.info")
	}

	info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return nil, goerr.Wrap(types.ErrDirectoryLookup, "conversations.info failed",
			goerr.V("channelID", channelID), goerr.V("cause", err.Error()))
	}

	return &Channel{
		ID:   info.ID,
		Name: info.Name,
	}, nil
}

// BotUserID resolves the bot's own identity via auth.test. The result is
// cached on success only, so a transient failure is retried on the next event.
func (c *client) BotUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.botUserID != "" {
		return c.botUserID, nil
	}

	if c.offline {
		c.botUserID = OfflineBotUserID
		logging.From(ctx).Info("using offline bot identity", "bot_user_id", c.botUserID)
		return c.botUserID, nil
	}

	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", goerr.Wrap(types.ErrDirectoryLookup, "auth.test failed", goerr.V("cause", err.Error()))
	}

	c.botUserID = resp.UserID
	logging.From(ctx).Info("resolved bot identity", "bot_user_id", c.botUserID)
	return c.botUserID, nil
}

// PostEphemeral posts an ephemeral message referencing the triggering timestamp
func (c *client) PostEphemeral(ctx context.Context, channelID, userID, ts, text string) error {
	if c.api == nil {
		return errNoAPIClient("chat.postEphemeral")
	}

	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, "*"+text+"*", false, false),
		nil, nil,
	)

	_, err := c.api.PostEphemeralContext(ctx, channelID, userID,
		slack.MsgOptionTS(ts),
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(section),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post ephemeral message",
			goerr.V("channelID", channelID), goerr.V("userID", userID), goerr.V("ts", ts))
	}
	return nil
}
