package refresh

import (
	"fmt"

	"github.com/sprava/spravaterm/internal/transport"
)

// Scope keys for refreshable server data. Refreshing a scope re-fetches and
// replaces its cached value; nothing else.
const (
	ScopeConversations  = "conversations"
	ScopeFriends        = "friends"
	ScopeFriendRequests = "friend_requests"
)

// MessagesScope is the parameterized scope for one conversation's thread.
func MessagesScope(conversationID int64) string {
	return fmt.Sprintf("messages:%d", conversationID)
}

// Scopes maps a push event to the scope keys it dirties. Pure: no side
// effects, no state. Presence and typing events map to no scopes; they
// mutate in-memory state instead of cached server data.
//
// The legacy new_message shape carries no conversation id, so the only safe
// move is the coarser conversations refresh.
func Scopes(evt transport.Event) []string {
	switch e := evt.(type) {
	case transport.NewConversation:
		return []string{ScopeConversations}
	case transport.ConversationDeleted:
		return []string{ScopeConversations}
	case transport.NewMessage:
		if e.Legacy || e.ConversationID == 0 {
			return []string{ScopeConversations}
		}
		return []string{MessagesScope(e.ConversationID), ScopeConversations}
	case transport.MessageDeleted:
		return []string{ScopeConversations}
	case transport.MessagesRead:
		return []string{ScopeConversations, MessagesScope(e.ConversationID)}
	case transport.NewFriendRequest:
		return []string{ScopeFriendRequests}
	case transport.FriendRequestAccepted:
		return []string{ScopeFriends, ScopeConversations}
	default:
		return nil
	}
}
