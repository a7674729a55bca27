package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/sprava/spravaterm/internal/api"
	"go.uber.org/zap"
)

// PageSize is the fixed page length for thread fetches. A short page means
// the thread's history is exhausted.
const PageSize = 50

// Fetcher loads one page of a conversation's messages, newest first.
type Fetcher func(ctx context.Context, conversationID int64, limit, offset int) ([]api.Message, error)

// ErrClosed is returned by operations on a closed feed.
var ErrClosed = errors.New("feed: closed")

// Feed is the paginated view over one conversation's message history. It
// holds fetched pages keyed by offset: pages[0] is the newest page, each
// further page reaches deeper into history. Pages are replaced wholesale,
// never patched.
type Feed struct {
	conversationID int64
	fetch          Fetcher
	logger         *zap.Logger

	mu       sync.Mutex
	pages    [][]api.Message
	hasMore  bool
	inflight bool
	closed   bool
	lastErr  error
}

// New creates a feed for one conversation. The feed holds no messages until
// Open fetches the first page.
func New(conversationID int64, fetch Fetcher, logger *zap.Logger) *Feed {
	return &Feed{
		conversationID: conversationID,
		fetch:          fetch,
		logger:         logger,
		hasMore:        true,
	}
}

// ConversationID returns the conversation this feed paginates.
func (f *Feed) ConversationID() int64 { return f.conversationID }

// Open fetches the newest page. Calling Open on an already-open feed
// refreshes the newest page, same as RefreshHead.
func (f *Feed) Open(ctx context.Context) error {
	return f.RefreshHead(ctx)
}

// LoadMore fetches the next page of history. It is a no-op while another
// fetch is running or when history is exhausted, so a scroll handler can
// call it freely.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.inflight || !f.hasMore {
		f.mu.Unlock()
		return nil
	}
	f.inflight = true
	offset := len(f.pages) * PageSize
	f.mu.Unlock()

	page, err := f.fetch(ctx, f.conversationID, PageSize, offset)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight = false
	if f.closed {
		return ErrClosed
	}
	if err != nil {
		// Leave pages untouched; the caller can retry.
		f.lastErr = err
		f.logger.Warn("page fetch failed",
			zap.Int64("conversation_id", f.conversationID),
			zap.Int("offset", offset),
			zap.Error(err))
		return err
	}
	f.lastErr = nil
	f.pages = append(f.pages, page)
	f.hasMore = len(page) == PageSize
	return nil
}

// RefreshHead re-fetches the newest page and replaces it in place. Deeper
// pages keep their offsets; a stale deep page is corrected the next time it
// scrolls into view.
func (f *Feed) RefreshHead(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.inflight {
		f.mu.Unlock()
		return nil
	}
	f.inflight = true
	f.mu.Unlock()

	page, err := f.fetch(ctx, f.conversationID, PageSize, 0)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight = false
	if f.closed {
		return ErrClosed
	}
	if err != nil {
		f.lastErr = err
		f.logger.Warn("head refresh failed",
			zap.Int64("conversation_id", f.conversationID),
			zap.Error(err))
		return err
	}
	f.lastErr = nil
	if len(f.pages) == 0 {
		f.pages = [][]api.Message{page}
		f.hasMore = len(page) == PageSize
	} else {
		f.pages[0] = page
	}
	return nil
}

// Messages returns the merged thread in ascending chronological order. The
// server returns each page newest first, so the deepest page contributes
// first and every page is walked back to front.
func (f *Feed) Messages() []api.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, p := range f.pages {
		total += len(p)
	}
	out := make([]api.Message, 0, total)
	for i := len(f.pages) - 1; i >= 0; i-- {
		page := f.pages[i]
		for j := len(page) - 1; j >= 0; j-- {
			out = append(out, page[j])
		}
	}
	return out
}

// HasMore reports whether deeper history may exist.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Loading reports whether a fetch is in flight.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight
}

// Err returns the error from the most recent fetch, nil after a success.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Close discards the feed's pages. A fetch completing after Close is
// dropped.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.pages = nil
}
