package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
	"github.com/chatops-lab/chatrelay/pkg/utils/async"
	"github.com/chatops-lab/chatrelay/pkg/utils/logging"
)

// threadRejectionText is the ephemeral notice sent when a mention arrives
// inside a thread of a conversation that disallows threaded replies
const threadRejectionText = "Sorry, we can't continue the conversation within threads on this channel! Please mention me outside threads."

// HandleEvent processes one Events API callback. Only app_mention inner
// events are dispatched; everything else is ignored so the platform never
// sees a failure for an unrecognized but well-formed payload.
func (uc *UseCases) HandleEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	logger := logging.From(ctx)

	mention, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		logger.Debug("ignoring event", "type", event.Type, "inner_type", event.InnerEvent.Type)
		return nil
	}

	return uc.handleMention(ctx, mention)
}

// handleMention runs the dispatch pipeline for one app_mention event:
// resolve entities, gate by allow-list and thread policy, parse the mention,
// persist the message, enqueue exactly one completion job.
func (uc *UseCases) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) error {
	logger := logging.From(ctx)

	conv, err := uc.resolveConversation(ctx, ev.Channel)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve conversation", goerr.V("channel", ev.Channel))
	}

	user, err := uc.resolveUser(ctx, ev.User, conv)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve user", goerr.V("user", ev.User))
	}

	if !uc.channelAllowed(conv.ExternalID) {
		logger.Debug("channel not in allow-list, ignoring", "channel", conv.ExternalID)
		return nil
	}

	if ev.ThreadTimeStamp != "" && !uc.policy.ThreadReplyAllowed(conv) {
		logger.Info("rejecting threaded mention",
			"channel", conv.ExternalID, "user", user.ExternalID, "thread_ts", ev.ThreadTimeStamp)

		// The notice must not delay the webhook response; post it in the
		// background.
		channelID, userID, ts := conv.ExternalID, user.ExternalID, ev.TimeStamp
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.slackService.PostEphemeral(ctx, channelID, userID, ts, threadRejectionText)
		})
		return nil
	}

	botID, err := uc.slackService.BotUserID(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve bot identity")
	}

	payload, ok := ExtractMention(ev.Text, botID)
	if !ok {
		logger.Debug("message not addressed to the bot, ignoring", "channel", conv.ExternalID)
		return nil
	}

	msg := model.NewMessage(conv.ExternalID, user.ExternalID, ev.Text, ev.TimeStamp, ev.ThreadTimeStamp)
	if err := uc.repo.Message().Create(ctx, msg); err != nil {
		if errors.Is(err, types.ErrAlreadyExists) {
			// Re-delivered event; the first delivery already enqueued its job.
			logger.Warn("duplicate event delivery, skipping",
				"channel", conv.ExternalID, "ts", ev.TimeStamp)
			return nil
		}
		return goerr.Wrap(err, "failed to persist message",
			goerr.V("channel", conv.ExternalID), goerr.V("ts", ev.TimeStamp))
	}

	job := &model.CompletionJob{
		Channel:  conv.ExternalID,
		User:     user.ExternalID,
		TS:       ev.TimeStamp,
		Message:  payload,
		ThreadTS: ev.ThreadTimeStamp,
	}
	if err := uc.queue.Enqueue(ctx, job); err != nil {
		return goerr.Wrap(err, "failed to enqueue completion job",
			goerr.V("channel", conv.ExternalID), goerr.V("ts", ev.TimeStamp))
	}

	logger.Info("completion job enqueued",
		"channel", conv.ExternalID, "user", user.ExternalID, "ts", ev.TimeStamp)

	return nil
}
