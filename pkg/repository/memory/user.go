package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[string]*model.User),
	}
}

func copyUser(u *model.User) *model.User {
	copied := *u
	return &copied
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[externalID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "user not found", goerr.V("externalID", externalID))
	}

	return copyUser(user), nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ExternalID]; exists {
		return goerr.Wrap(types.ErrAlreadyExists, "user already exists", goerr.V("externalID", user.ExternalID))
	}

	r.users[user.ExternalID] = copyUser(user)
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ExternalID]; !exists {
		return goerr.Wrap(types.ErrNotFound, "user not found", goerr.V("externalID", user.ExternalID))
	}

	r.users[user.ExternalID] = copyUser(user)
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, copyUser(u))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ExternalID < result[j].ExternalID
	})

	return result, nil
}
