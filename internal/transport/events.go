package transport

// Event is a server-pushed event decoded from the wire. Events are transient
// triggers; they carry just enough to identify what they affect and are
// never persisted.
type Event interface {
	eventType() string
}

// PresenceSnapshot replaces the whole online set.
type PresenceSnapshot struct {
	Friends []int64
}

// PresenceChange flips a single user online or offline.
type PresenceChange struct {
	UserID int64
	Online bool
}

// Typing reports a peer starting or stopping typing.
type Typing struct {
	UserID   int64
	IsTyping bool
}

// NewConversation announces a conversation created with the receiving user.
type NewConversation struct {
	ConversationID int64
	OtherUserID    int64
}

// ConversationDeleted announces a conversation removal.
type ConversationDeleted struct {
	ConversationID int64
}

// NewMessage announces an inbound message. The service pushes two shapes:
// the canonical one carries ConversationID, the legacy one does not
// (Legacy=true, ConversationID=0). Consumers must tolerate both.
type NewMessage struct {
	ConversationID int64
	MessageID      int64
	SenderID       int64
	ReceiverID     int64
	Content        string
	CreatedAt      string
	MediaIDs       []int64
	Legacy         bool
}

// MessageDeleted announces a message removal.
type MessageDeleted struct {
	MessageID int64
}

// MessagesRead announces that a peer read a conversation.
type MessagesRead struct {
	ConversationID int64
	UserID         int64
}

// NewFriendRequest announces an inbound friend request.
type NewFriendRequest struct {
	SenderID       int64
	SenderUsername string
}

// FriendRequestAccepted announces that an outbound request was accepted.
type FriendRequestAccepted struct {
	FriendID       int64
	FriendUsername string
}

func (PresenceSnapshot) eventType() string      { return "online_friends" }
func (PresenceChange) eventType() string        { return "friend_status_change" }
func (Typing) eventType() string                { return "user_typing" }
func (NewConversation) eventType() string       { return "new_conversation" }
func (ConversationDeleted) eventType() string   { return "conversation_deleted" }
func (NewMessage) eventType() string            { return "new_message" }
func (MessageDeleted) eventType() string        { return "delete_message" }
func (MessagesRead) eventType() string          { return "messages_read" }
func (NewFriendRequest) eventType() string      { return "new_friend_request" }
func (FriendRequestAccepted) eventType() string { return "friend_request_accepted" }
