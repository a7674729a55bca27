package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sprava/spravaterm/internal/api"
	"go.uber.org/zap"
)

func newTestCaches(t *testing.T) (*Caches, *map[string]int) {
	t.Helper()
	var mu sync.Mutex
	hits := make(map[string]int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/me/conversations":
			w.Write([]byte(`{"conversations":[{"id":1,"other_user_id":2,"other_username":"ana"}]}`))
		case "/me/friends":
			w.Write([]byte(`{"friends_ids":[2]}`))
		case "/user/batch":
			w.Write([]byte(`{"users":[{"user_id":2,"username":"ana"}]}`))
		case "/me/friend_requests":
			w.Write([]byte(`{"friend_requests_ids":[]}`))
		case "/me/blocked_users":
			w.Write([]byte(`{"blocked_users_ids":[3]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, func() string { return "tok" }, zap.NewNop())
	return New(client, zap.NewNop()), &hits
}

func TestInvalidateReloadsNamedCache(t *testing.T) {
	caches, hits := newTestCaches(t)

	caches.Invalidate(context.Background(), "conversations")
	convs, ok := caches.Conversations.Get()
	if !ok || len(convs) != 1 || convs[0].OtherUsername != "ana" {
		t.Fatalf("Conversations = %v, %v", convs, ok)
	}
	if (*hits)["/me/friends"] != 0 {
		t.Fatal("invalidating conversations must not touch friends")
	}

	caches.Invalidate(context.Background(), "friends")
	friends, ok := caches.Friends.Get()
	if !ok || len(friends) != 1 || friends[0].Username != "ana" {
		t.Fatalf("Friends = %v, %v", friends, ok)
	}

	caches.Invalidate(context.Background(), "blocked")
	blocked, ok := caches.BlockedIDs.Get()
	if !ok || len(blocked) != 1 || blocked[0] != 3 {
		t.Fatalf("BlockedIDs = %v, %v", blocked, ok)
	}
}

func TestInvalidateIgnoresUnknownScopes(t *testing.T) {
	caches, hits := newTestCaches(t)

	caches.Invalidate(context.Background(), "messages:42")
	caches.Invalidate(context.Background(), "something_else")

	for path, n := range *hits {
		if n != 0 {
			t.Fatalf("unexpected request to %s", path)
		}
	}
}

func TestClearDropsEveryCollection(t *testing.T) {
	caches, _ := newTestCaches(t)
	caches.Preload(context.Background())
	if _, ok := caches.Conversations.Get(); !ok {
		t.Fatal("preload did not load conversations")
	}
	caches.Clear()
	if _, ok := caches.Conversations.Get(); ok {
		t.Fatal("conversations survived Clear")
	}
	if _, ok := caches.Friends.Get(); ok {
		t.Fatal("friends survived Clear")
	}
}
