package usecase

import "github.com/chatops-lab/chatrelay/pkg/domain/model"

// ThreadPolicy decides per conversation whether a reply may continue inside a
// message thread. The default is to disallow threaded replies everywhere;
// individual conversations can be opted in via configuration.
type ThreadPolicy struct {
	overrides map[string]bool
}

// NewThreadPolicy creates a policy with per-conversation overrides keyed by
// conversation external ID
func NewThreadPolicy(overrides map[string]bool) *ThreadPolicy {
	return &ThreadPolicy{
		overrides: overrides,
	}
}

// ThreadReplyAllowed reports whether the conversation permits replies inside
// threads
func (p *ThreadPolicy) ThreadReplyAllowed(conv *model.Conversation) bool {
	if p == nil || conv == nil {
		return false
	}
	if allowed, ok := p.overrides[conv.ExternalID]; ok {
		return allowed
	}
	return false
}
