package api

import (
	"context"
	"strconv"
)

// FriendIDs returns the ids of the caller's friends.
func (c *Client) FriendIDs(ctx context.Context) ([]int64, error) {
	var out struct {
		FriendsIDs []int64 `json:"friends_ids"`
	}
	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/me/friends")
	if err != nil {
		return nil, err
	}
	return out.FriendsIDs, nil
}

// BatchUsers hydrates a set of user ids into user summaries.
func (c *Client) BatchUsers(ctx context.Context, userIDs []int64) ([]User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var out struct {
		Users []User `json:"users"`
	}
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"user_id": userIDs}).
		SetResult(&out).
		Post("/user/batch")
	if err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Friends returns the caller's friends as hydrated user summaries
// (id list then batch lookup, the way the service models it).
func (c *Client) Friends(ctx context.Context) ([]User, error) {
	ids, err := c.FriendIDs(ctx)
	if err != nil {
		return nil, err
	}
	return c.BatchUsers(ctx, ids)
}

// FriendRequests returns pending inbound friend requests.
func (c *Client) FriendRequests(ctx context.Context) ([]FriendRequest, error) {
	var out struct {
		FriendRequestsIDs []FriendRequest `json:"friend_requests_ids"`
	}
	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/me/friend_requests")
	if err != nil {
		return nil, err
	}
	return out.FriendRequestsIDs, nil
}

// SendFriendRequest sends a friend request to another user.
func (c *Client) SendFriendRequest(ctx context.Context, receiverID int64) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"receiver_id": receiverID}).
		Post("/me/send_friend_request")
	return err
}

// AcceptFriendRequest accepts a pending request from senderID.
func (c *Client) AcceptFriendRequest(ctx context.Context, senderID int64) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"sender_id": senderID}).
		Post("/me/accept_friend_request")
	return err
}

// RejectFriendRequest rejects a pending request from senderID.
func (c *Client) RejectFriendRequest(ctx context.Context, senderID int64) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"sender_id": senderID}).
		Post("/me/reject_friend_request")
	return err
}

// BlockUser blocks a user.
func (c *Client) BlockUser(ctx context.Context, userID int64) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"friend_id": userID}).
		Post("/me/block_user")
	return err
}

// UnblockUser removes a user from the blocked list.
func (c *Client) UnblockUser(ctx context.Context, userID int64) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"friend_id": userID}).
		Delete("/me/unblock_user")
	return err
}

// BlockedUserIDs returns the ids of users the caller has blocked.
func (c *Client) BlockedUserIDs(ctx context.Context) ([]int64, error) {
	var out struct {
		BlockedUsersIDs []int64 `json:"blocked_users_ids"`
	}
	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/me/blocked_users")
	if err != nil {
		return nil, err
	}
	return out.BlockedUsersIDs, nil
}

// FetchUser returns a public user summary by id.
func (c *Client) FetchUser(ctx context.Context, userID int64) (*User, error) {
	var out User
	_, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", strconv.FormatInt(userID, 10)).
		SetResult(&out).
		Get("/user")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchUserProfile returns another user's profile, filtered by their
// sharing settings.
func (c *Client) FetchUserProfile(ctx context.Context, userID int64) (*PublicProfile, error) {
	var out PublicProfile
	_, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", strconv.FormatInt(userID, 10)).
		SetResult(&out).
		Get("/user/profile")
	if err != nil {
		return nil, err
	}
	return &out, nil
}
