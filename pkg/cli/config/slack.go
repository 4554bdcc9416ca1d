package config

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	slacksvc "github.com/chatops-lab/chatrelay/pkg/service/slack"
)

// Slack holds CLI flags for Slack API and webhook configuration
type Slack struct {
	botToken        string
	signingSecret   string
	allowChannelIDs string
	offline         bool
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for directory lookups and replies)",
			Category:    "Slack",
			Sources:     cli.EnvVars("CHATRELAY_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Sources:     cli.EnvVars("CHATRELAY_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
		&cli.StringFlag{
			Name:        "allow-channel-ids",
			Usage:       "Restrict handling to these channel IDs (whitespace or comma separated, empty allows all)",
			Category:    "Slack",
			Sources:     cli.EnvVars("CHATRELAY_ALLOW_CHANNEL_IDS"),
			Destination: &x.allowChannelIDs,
		},
		&cli.BoolFlag{
			Name:        "slack-offline",
			Usage:       "Use a fixed placeholder bot identity instead of calling auth.test (test mode)",
			Category:    "Slack",
			Sources:     cli.EnvVars("CHATRELAY_SLACK_OFFLINE"),
			Destination: &x.offline,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
		slog.String("allow-channel-ids", x.allowChannelIDs),
		slog.Bool("offline", x.offline),
	)
}

// SigningSecret returns the webhook signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// AllowChannelIDs returns the parsed allow-list. Empty means every channel
// is allowed.
func (x *Slack) AllowChannelIDs() []string {
	return splitChannelIDs(x.allowChannelIDs)
}

// Offline reports whether identity resolution runs in offline mode
func (x *Slack) Offline() bool {
	return x.offline
}

// Configure creates the Slack service from the flags
func (x *Slack) Configure() (slacksvc.Service, error) {
	svc, err := slacksvc.New(x.botToken, slacksvc.WithOffline(x.offline))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}

func splitChannelIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}
