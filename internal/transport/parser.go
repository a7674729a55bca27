package transport

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEvent marks a payload with an unrecognized type discriminator.
// The read loop drops these without logging above debug level.
var ErrUnknownEvent = errors.New("unknown event type")

// ParseEvent decodes a wire payload into a typed event. The payload is a
// JSON object with a "type" discriminator; anything else is an error and
// the caller drops it.
func ParseEvent(data []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch head.Type {
	case "online_friends":
		var raw struct {
			Friends []int64 `json:"friends"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return PresenceSnapshot{Friends: raw.Friends}, nil

	case "friend_status_change":
		var raw struct {
			UserID int64  `json:"user_id"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return PresenceChange{UserID: raw.UserID, Online: raw.Status == "online"}, nil

	case "user_typing":
		var raw struct {
			UserID   int64 `json:"user_id"`
			IsTyping bool  `json:"is_typing"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return Typing{UserID: raw.UserID, IsTyping: raw.IsTyping}, nil

	case "new_conversation":
		var raw struct {
			ConversationID int64 `json:"conversation_id"`
			OtherUserID    int64 `json:"other_user_id"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return NewConversation{ConversationID: raw.ConversationID, OtherUserID: raw.OtherUserID}, nil

	case "conversation_deleted":
		var raw struct {
			ConversationID int64 `json:"conversation_id"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return ConversationDeleted{ConversationID: raw.ConversationID}, nil

	case "new_message":
		return parseNewMessage(data)

	case "delete_message":
		var raw struct {
			MessageID int64 `json:"message_id"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return MessageDeleted{MessageID: raw.MessageID}, nil

	case "messages_read":
		var raw struct {
			ConversationID int64 `json:"conversation_id"`
			UserID         int64 `json:"user_id"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return MessagesRead{ConversationID: raw.ConversationID, UserID: raw.UserID}, nil

	case "new_friend_request":
		var raw struct {
			SenderID       int64  `json:"sender_id"`
			SenderUsername string `json:"sender_username"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return NewFriendRequest{SenderID: raw.SenderID, SenderUsername: raw.SenderUsername}, nil

	case "friend_request_accepted":
		var raw struct {
			FriendID       int64  `json:"friend_id"`
			FriendUsername string `json:"friend_username"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return FriendRequestAccepted{FriendID: raw.FriendID, FriendUsername: raw.FriendUsername}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, head.Type)
	}
}

// parseNewMessage tolerates both push shapes for new_message. The canonical
// shape carries conversation_id and created_at; the legacy one has
// receiver_id and timestamp instead. Whether the inconsistency is deliberate
// backward compatibility is unresolved server-side, so both stay supported.
func parseNewMessage(data []byte) (Event, error) {
	var raw struct {
		ConversationID *int64  `json:"conversation_id"`
		MessageID      int64   `json:"message_id"`
		SenderID       int64   `json:"sender_id"`
		ReceiverID     int64   `json:"receiver_id"`
		Content        string  `json:"content"`
		CreatedAt      string  `json:"created_at"`
		Timestamp      string  `json:"timestamp"`
		MediaIDs       []int64 `json:"media_ids"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	evt := NewMessage{
		MessageID: raw.MessageID,
		SenderID:  raw.SenderID,
		Content:   raw.Content,
		MediaIDs:  raw.MediaIDs,
	}
	if raw.ConversationID != nil && *raw.ConversationID != 0 {
		evt.ConversationID = *raw.ConversationID
		evt.CreatedAt = raw.CreatedAt
	} else {
		evt.Legacy = true
		evt.ReceiverID = raw.ReceiverID
		evt.CreatedAt = raw.Timestamp
	}
	return evt, nil
}
