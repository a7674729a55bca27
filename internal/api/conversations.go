package api

import (
	"context"
	"strconv"
)

// Conversations returns the full conversation list, server-ordered by last
// message time.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var out struct {
		Conversations []Conversation `json:"conversations"`
	}
	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/me/conversations")
	if err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// Messages returns one page of a conversation's history, newest first.
func (c *Client) Messages(ctx context.Context, conversationID int64, limit, offset int) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	_, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"conversation_id": strconv.FormatInt(conversationID, 10),
			"limit":           strconv.Itoa(limit),
			"offset":          strconv.Itoa(offset),
		}).
		SetResult(&out).
		Get("/conversation/messages")
	if err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessage posts a new message and returns the server-assigned id.
func (c *Client) SendMessage(ctx context.Context, conversationID int64, content string) (int64, error) {
	var out struct {
		MessageID int64 `json:"message_id"`
	}
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"conversation_id": conversationID, "content": content}).
		SetResult(&out).
		Post("/conversation/send_message")
	if err != nil {
		return 0, err
	}
	return out.MessageID, nil
}

// DeleteMessage removes one of the caller's own messages.
func (c *Client) DeleteMessage(ctx context.Context, messageID int64) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"message_id": messageID}).
		Delete("/conversation/delete_message")
	return err
}

// MarkRead marks every message in the conversation as read.
func (c *Client) MarkRead(ctx context.Context, conversationID int64) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"conversation_id": conversationID}).
		Put("/conversation/read")
	return err
}

// CreateConversation opens a conversation with another user and returns its id.
func (c *Client) CreateConversation(ctx context.Context, otherUserID int64) (int64, error) {
	var out struct {
		ConversationID int64 `json:"conversation_id"`
	}
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"user2_id": otherUserID}).
		SetResult(&out).
		Post("/create_conversation")
	if err != nil {
		return 0, err
	}
	return out.ConversationID, nil
}
