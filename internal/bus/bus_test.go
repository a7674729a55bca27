package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("scope.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindScopeInvalidated, Timestamp: time.Now(), Payload: ScopeInvalidated{Scope: "conversations"}})

	select {
	case evt := <-ch:
		if evt.Kind != KindScopeInvalidated {
			t.Errorf("got kind %q, want %q", evt.Kind, KindScopeInvalidated)
		}
		payload, ok := evt.Payload.(ScopeInvalidated)
		if !ok {
			t.Fatalf("payload type = %T, want ScopeInvalidated", evt.Payload)
		}
		if payload.Scope != "conversations" {
			t.Errorf("scope = %q, want conversations", payload.Scope)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("presence.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindScopeInvalidated})
	b.Publish(Event{Kind: KindPresenceChanged})

	select {
	case evt := <-ch:
		if evt.Kind != KindPresenceChanged {
			t.Errorf("got kind %q, want %q", evt.Kind, KindPresenceChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure the scope event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("scope.", 10)
	unsub()

	b.Publish(Event{Kind: KindScopeInvalidated})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("typing.", 1)
	defer unsub()

	b.Publish(Event{Kind: KindTypingChanged, Payload: TypingChanged{UserID: 1, IsTyping: true}})
	// Buffer is full, this one is dropped rather than blocking the publisher.
	b.Publish(Event{Kind: KindTypingChanged, Payload: TypingChanged{UserID: 2, IsTyping: true}})

	evt := <-ch
	if evt.Payload.(TypingChanged).UserID != 1 {
		t.Errorf("got %v, want first typing event", evt.Payload)
	}
}
