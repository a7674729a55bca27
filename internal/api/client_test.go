package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(ts.URL, func() string { return token }, zap.NewNop())
}

func TestCredentialHeaderAttached(t *testing.T) {
	var gotAuth, gotReqID string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]any{"user_id": 1, "username": "alice"})
	}, "tok-abc")

	if _, err := c.FetchMe(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "tok-abc" {
		t.Errorf("Authorization = %q, want tok-abc", gotAuth)
	}
	if gotReqID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestNoCredentialHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		_ = json.NewEncoder(w).Encode(map[string]any{"api_token": "t", "user_id": 2})
	}, "")

	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatal(err)
	}
	if hasAuth {
		t.Errorf("Authorization header sent without a session: %q", gotAuth)
	}
}

func TestErrorWithServerMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "not friends"})
	}, "tok")

	_, err := c.Conversations(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", apiErr.Status)
	}
	if apiErr.Error() != "status: 403, message: not friends" {
		t.Errorf("Error() = %q", apiErr.Error())
	}
}

func TestErrorWithUnparsableBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}, "tok")

	_, err := c.Conversations(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Error() != "request failed with status 500" {
		t.Errorf("Error() = %q, want generic failure message", apiErr.Error())
	}
}

func TestMessagesPaginationParams(t *testing.T) {
	var gotQuery map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"conversation_id": r.URL.Query().Get("conversation_id"),
			"limit":           r.URL.Query().Get("limit"),
			"offset":          r.URL.Query().Get("offset"),
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []any{}})
	}, "tok")

	if _, err := c.Messages(context.Background(), 42, 50, 100); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"conversation_id": "42", "limit": "50", "offset": "100"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestFriendsHydratesBatch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/friends":
			_ = json.NewEncoder(w).Encode(map[string]any{"friends_ids": []int64{7, 9}})
		case "/user/batch":
			var body struct {
				UserID []int64 `json:"user_id"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if len(body.UserID) != 2 {
				t.Errorf("batch ids = %v, want [7 9]", body.UserID)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"users": []map[string]any{
				{"user_id": 7, "username": "ana"},
				{"user_id": 9, "username": "bo"},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}, "tok")

	friends, err := c.Friends(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(friends) != 2 || friends[0].Username != "ana" {
		t.Errorf("friends = %+v", friends)
	}
}

func TestFriendsEmptySkipsBatch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/batch" {
			t.Error("batch called for empty friend list")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"friends_ids": []int64{}})
	}, "tok")

	friends, err := c.Friends(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(friends) != 0 {
		t.Errorf("friends = %+v, want empty", friends)
	}
}

func TestSendFriendRequestPostsReceiver(t *testing.T) {
	var gotPath string
	var gotBody map[string]int64
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}, "tok")

	if err := c.SendFriendRequest(context.Background(), 42); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/me/send_friend_request" {
		t.Errorf("path = %q, want /me/send_friend_request", gotPath)
	}
	if gotBody["receiver_id"] != 42 {
		t.Errorf("receiver_id = %d, want 42", gotBody["receiver_id"])
	}
}
