package usecase

import (
	"github.com/chatops-lab/chatrelay/pkg/domain/interfaces"
	slacksvc "github.com/chatops-lab/chatrelay/pkg/service/slack"
)

// UseCases handles the inbound event intake and dispatch pipeline
type UseCases struct {
	repo            interfaces.Repository
	queue           interfaces.JobQueue
	slackService    slacksvc.Service
	policy          *ThreadPolicy
	allowedChannels map[string]struct{}
}

// Option is a functional option for UseCases configuration
type Option func(*UseCases)

// WithThreadPolicy sets the thread reply policy. Default: deny everywhere.
func WithThreadPolicy(policy *ThreadPolicy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

// WithAllowedChannels restricts event handling to the given conversation
// external IDs. An empty list allows every conversation.
func WithAllowedChannels(ids []string) Option {
	return func(uc *UseCases) {
		if len(ids) == 0 {
			uc.allowedChannels = nil
			return
		}
		uc.allowedChannels = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			uc.allowedChannels[id] = struct{}{}
		}
	}
}

// New creates a new UseCases instance
func New(repo interfaces.Repository, queue interfaces.JobQueue, slackService slacksvc.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		queue:        queue,
		slackService: slackService,
		policy:       NewThreadPolicy(nil),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *UseCases) channelAllowed(externalID string) bool {
	if uc.allowedChannels == nil {
		return true
	}
	_, ok := uc.allowedChannels[externalID]
	return ok
}
