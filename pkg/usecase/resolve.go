package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
	"github.com/chatops-lab/chatrelay/pkg/utils/logging"
)

// resolveConversation maps a channel external ID to the local record, lazily
// fetching metadata from the directory API on first sight. The store is the
// source of truth once populated.
func (uc *UseCases) resolveConversation(ctx context.Context, externalID string) (*model.Conversation, error) {
	conv, err := uc.repo.Conversation().GetByExternalID(ctx, externalID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to look up conversation", goerr.V("externalID", externalID))
	}

	info, err := uc.slackService.GetConversation(ctx, externalID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch conversation from directory", goerr.V("externalID", externalID))
	}

	created := model.NewConversation(externalID, info.Name)
	if err := uc.repo.Conversation().Create(ctx, created); err != nil {
		if errors.Is(err, types.ErrAlreadyExists) {
			// Lost the first-sight race; the existing record wins.
			logging.From(ctx).Info("conversation created concurrently, re-reading", "external_id", externalID)
			return uc.repo.Conversation().GetByExternalID(ctx, externalID)
		}
		return nil, goerr.Wrap(err, "failed to create conversation", goerr.V("externalID", externalID))
	}

	logging.From(ctx).Info("conversation registered", "external_id", externalID, "name", info.Name)
	return created, nil
}

// resolveUser maps a user external ID to the local record, lazily fetching
// profile data from the directory API on first sight, and ensures the user is
// a member of the conversation.
func (uc *UseCases) resolveUser(ctx context.Context, externalID string, conv *model.Conversation) (*model.User, error) {
	user, err := uc.repo.User().GetByExternalID(ctx, externalID)
	switch {
	case err == nil:
		// Known user, no directory round-trip

	case errors.Is(err, types.ErrNotFound):
		profile, err := uc.slackService.GetUser(ctx, externalID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch user from directory", goerr.V("externalID", externalID))
		}

		created := model.NewUser(externalID, profile.Name, profile.RealName, profile.Locale, profile.Email, profile.TZOffset)
		if err := uc.repo.User().Create(ctx, created); err != nil {
			if !errors.Is(err, types.ErrAlreadyExists) {
				return nil, goerr.Wrap(err, "failed to create user", goerr.V("externalID", externalID))
			}
			logging.From(ctx).Info("user created concurrently, re-reading", "external_id", externalID)
			created, err = uc.repo.User().GetByExternalID(ctx, externalID)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to re-read user after duplicate create", goerr.V("externalID", externalID))
			}
		} else {
			logging.From(ctx).Info("user registered", "external_id", externalID, "name", profile.Name)
		}
		user = created

	default:
		return nil, goerr.Wrap(err, "failed to look up user", goerr.V("externalID", externalID))
	}

	if !conv.HasMember(user.ExternalID) {
		if err := uc.repo.Conversation().AddMember(ctx, conv.ExternalID, user.ExternalID); err != nil {
			return nil, goerr.Wrap(err, "failed to add conversation member",
				goerr.V("conversationID", conv.ExternalID), goerr.V("userID", user.ExternalID))
		}
	}

	return user, nil
}
