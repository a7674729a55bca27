package refresh

import (
	"reflect"
	"testing"

	"github.com/sprava/spravaterm/internal/bus"
	"github.com/sprava/spravaterm/internal/transport"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*Router, *[]string, *bus.Bus) {
	t.Helper()
	var invalidated []string
	b := bus.New()
	r := NewRouter(func(scope string) {
		invalidated = append(invalidated, scope)
	}, b, zap.NewNop())
	return r, &invalidated, b
}

func TestScopesMapping(t *testing.T) {
	cases := []struct {
		name string
		evt  transport.Event
		want []string
	}{
		{"new_conversation", transport.NewConversation{ConversationID: 1}, []string{"conversations"}},
		{"conversation_deleted", transport.ConversationDeleted{ConversationID: 1}, []string{"conversations"}},
		{"new_message canonical", transport.NewMessage{ConversationID: 7, MessageID: 1}, []string{"messages:7", "conversations"}},
		{"new_message legacy", transport.NewMessage{MessageID: 1, Legacy: true}, []string{"conversations"}},
		{"delete_message", transport.MessageDeleted{MessageID: 3}, []string{"conversations"}},
		{"messages_read", transport.MessagesRead{ConversationID: 9}, []string{"conversations", "messages:9"}},
		{"new_friend_request", transport.NewFriendRequest{SenderID: 4}, []string{"friend_requests"}},
		{"friend_request_accepted", transport.FriendRequestAccepted{FriendID: 4}, []string{"friends", "conversations"}},
		{"online_friends", transport.PresenceSnapshot{Friends: []int64{1}}, nil},
		{"friend_status_change", transport.PresenceChange{UserID: 1, Online: true}, nil},
		{"user_typing", transport.Typing{UserID: 1, IsTyping: true}, nil},
	}

	for _, tc := range cases {
		got := Scopes(tc.evt)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHandleInvalidatesScopes(t *testing.T) {
	r, invalidated, b := newTestRouter(t)
	ch, unsub := b.Subscribe("scope.", 8)
	defer unsub()

	r.Handle(transport.NewMessage{ConversationID: 42, MessageID: 1, SenderID: 2})

	want := []string{"messages:42", "conversations"}
	if !reflect.DeepEqual(*invalidated, want) {
		t.Fatalf("invalidated %v, want %v", *invalidated, want)
	}

	for _, scope := range want {
		evt := <-ch
		if evt.Kind != bus.KindScopeInvalidated {
			t.Fatalf("kind = %q, want %q", evt.Kind, bus.KindScopeInvalidated)
		}
		payload := evt.Payload.(bus.ScopeInvalidated)
		if payload.Scope != scope {
			t.Fatalf("scope = %q, want %q", payload.Scope, scope)
		}
	}
}

func TestPresenceSnapshotReplacesSet(t *testing.T) {
	r, invalidated, _ := newTestRouter(t)

	r.Handle(transport.PresenceSnapshot{Friends: []int64{1, 2, 3}})
	if !r.IsOnline(2) {
		t.Fatal("user 2 should be online after snapshot")
	}

	// A later snapshot is authoritative, not additive.
	r.Handle(transport.PresenceSnapshot{Friends: []int64{3}})
	if r.IsOnline(1) || r.IsOnline(2) {
		t.Fatal("snapshot should replace the online set")
	}
	if !r.IsOnline(3) {
		t.Fatal("user 3 should remain online")
	}

	if len(*invalidated) != 0 {
		t.Fatalf("presence events must not invalidate scopes, got %v", *invalidated)
	}
}

func TestPresenceChangeFlipsOneUser(t *testing.T) {
	r, _, b := newTestRouter(t)
	ch, unsub := b.Subscribe("presence.", 8)
	defer unsub()

	r.Handle(transport.PresenceChange{UserID: 5, Online: true})
	if !r.IsOnline(5) {
		t.Fatal("user 5 should be online")
	}
	evt := <-ch
	payload := evt.Payload.(bus.PresenceChanged)
	if payload.UserID != 5 || !payload.Online {
		t.Fatalf("unexpected payload %+v", payload)
	}

	r.Handle(transport.PresenceChange{UserID: 5, Online: false})
	if r.IsOnline(5) {
		t.Fatal("user 5 should be offline")
	}
}

func TestTypingRepublishedOnBus(t *testing.T) {
	r, invalidated, b := newTestRouter(t)
	ch, unsub := b.Subscribe("typing.", 8)
	defer unsub()

	r.Handle(transport.Typing{UserID: 8, IsTyping: true})

	evt := <-ch
	payload := evt.Payload.(bus.TypingChanged)
	if payload.UserID != 8 || !payload.IsTyping {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(*invalidated) != 0 {
		t.Fatalf("typing must not invalidate scopes, got %v", *invalidated)
	}
}

func TestResetClearsOnlineSet(t *testing.T) {
	r, _, _ := newTestRouter(t)
	r.Handle(transport.PresenceSnapshot{Friends: []int64{1, 2}})
	r.Reset()
	if r.IsOnline(1) || r.IsOnline(2) {
		t.Fatal("reset should clear the online set")
	}
	if got := r.OnlineIDs(); len(got) != 0 {
		t.Fatalf("OnlineIDs = %v, want empty", got)
	}
}

func TestNilInvalidatorDoesNotPanic(t *testing.T) {
	r := NewRouter(nil, nil, zap.NewNop())
	r.Handle(transport.NewConversation{ConversationID: 1})
	r.Handle(transport.PresenceSnapshot{Friends: []int64{1}})
}
