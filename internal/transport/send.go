package transport

// Outbound control messages. All fire-and-forget: the service does not
// acknowledge them, and the return value only reports whether the write
// happened on an open connection.

// RequestOnlineFriends asks the service for a fresh presence snapshot.
func (t *Transport) RequestOnlineFriends() bool {
	return t.Send(map[string]any{"type": "get_online_friends"})
}

// SendTyping tells a peer the user started typing.
func (t *Transport) SendTyping(receiverID int64) bool {
	return t.Send(map[string]any{"type": "typing", "receiver_id": receiverID})
}

// SendStopTyping tells a peer the user stopped typing.
func (t *Transport) SendStopTyping(receiverID int64) bool {
	return t.Send(map[string]any{"type": "stop_typing", "receiver_id": receiverID})
}

// SendMarkRead reports a conversation as read over the push channel.
func (t *Transport) SendMarkRead(conversationID int64) bool {
	return t.Send(map[string]any{"type": "mark_read", "conversation_id": conversationID})
}

// SendMessage sends a message over the push channel.
func (t *Transport) SendMessage(receiverID int64, content string) bool {
	return t.Send(map[string]any{"type": "send_message", "receiver_id": receiverID, "content": content})
}
