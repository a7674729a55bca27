package cache

import (
	"context"

	"github.com/sprava/spravaterm/internal/api"
	"go.uber.org/zap"
)

// Caches holds the cached server collections the views render from. Each is
// keyed by a refresh scope; Invalidate maps a scope to the matching reload.
type Caches struct {
	Conversations  *Resource[[]api.Conversation]
	Friends        *Resource[[]api.User]
	FriendRequests *Resource[[]api.FriendRequest]
	BlockedIDs     *Resource[[]int64]

	logger *zap.Logger
}

// New wires the caches to an API client.
func New(client *api.Client, logger *zap.Logger) *Caches {
	return &Caches{
		Conversations: NewResource(func(ctx context.Context) ([]api.Conversation, error) {
			return client.Conversations(ctx)
		}),
		Friends: NewResource(func(ctx context.Context) ([]api.User, error) {
			return client.Friends(ctx)
		}),
		FriendRequests: NewResource(func(ctx context.Context) ([]api.FriendRequest, error) {
			return client.FriendRequests(ctx)
		}),
		BlockedIDs: NewResource(func(ctx context.Context) ([]int64, error) {
			return client.BlockedUserIDs(ctx)
		}),
		logger: logger,
	}
}

// Invalidate reloads the cache named by a refresh scope. Scopes that name no
// cache here (per-thread message scopes) are ignored; the feed layer owns
// those.
func (c *Caches) Invalidate(ctx context.Context, scope string) {
	var err error
	switch scope {
	case "conversations":
		err = c.Conversations.Reload(ctx)
	case "friends":
		err = c.Friends.Reload(ctx)
	case "friend_requests":
		err = c.FriendRequests.Reload(ctx)
	case "blocked":
		err = c.BlockedIDs.Reload(ctx)
	default:
		return
	}
	if err != nil {
		c.logger.Warn("cache reload failed", zap.String("scope", scope), zap.Error(err))
	}
}

// Preload fetches every collection once, used right after login. Failures
// are logged and retried on the next invalidation.
func (c *Caches) Preload(ctx context.Context) {
	for scope, r := range map[string]interface {
		Ensure(context.Context) error
	}{
		"conversations":   c.Conversations,
		"friends":         c.Friends,
		"friend_requests": c.FriendRequests,
		"blocked":         c.BlockedIDs,
	} {
		if err := r.Ensure(ctx); err != nil {
			c.logger.Warn("cache preload failed", zap.String("scope", scope), zap.Error(err))
		}
	}
}

// Clear drops every cached collection, used on logout.
func (c *Caches) Clear() {
	c.Conversations.Clear()
	c.Friends.Clear()
	c.FriendRequests.Clear()
	c.BlockedIDs.Clear()
}
