package tui

import (
	"sync"
	"testing"

	"github.com/sprava/spravaterm/internal/api"
)

// The active conversation is written by the UI goroutine and read by the
// event loop and the send callbacks, so the accessors must be safe to call
// from any goroutine at once.
func TestActiveConversationAccessIsConcurrencySafe(t *testing.T) {
	a := &App{}
	conv := &api.Conversation{ID: 1, OtherUserID: 2, OtherUsername: "ana"}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if j%2 == 0 {
					a.setActive(conv)
				} else {
					a.setActive(nil)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if c := a.activeConv(); c != nil && c.ID != 1 {
					t.Error("unexpected conversation")
					return
				}
			}
		}()
	}
	wg.Wait()
}
