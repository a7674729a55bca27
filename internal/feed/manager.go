package feed

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Manager owns the open feeds, one per viewed conversation, and routes
// per-thread refresh scopes to them. Closed conversations drop their feed;
// reopening starts from a fresh first page.
type Manager struct {
	fetch  Fetcher
	logger *zap.Logger

	mu    sync.Mutex
	feeds map[int64]*Feed
}

// NewManager creates an empty feed manager.
func NewManager(fetch Fetcher, logger *zap.Logger) *Manager {
	return &Manager{
		fetch:  fetch,
		logger: logger,
		feeds:  make(map[int64]*Feed),
	}
}

// Open returns the feed for a conversation, creating and loading it on first
// use.
func (m *Manager) Open(ctx context.Context, conversationID int64) (*Feed, error) {
	m.mu.Lock()
	f, ok := m.feeds[conversationID]
	if !ok {
		f = New(conversationID, m.fetch, m.logger)
		m.feeds[conversationID] = f
	}
	m.mu.Unlock()

	if !ok {
		if err := f.Open(ctx); err != nil {
			m.mu.Lock()
			delete(m.feeds, conversationID)
			m.mu.Unlock()
			return nil, err
		}
	}
	return f, nil
}

// Get returns the open feed for a conversation, or nil.
func (m *Manager) Get(conversationID int64) *Feed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feeds[conversationID]
}

// Close discards the feed for a conversation.
func (m *Manager) Close(conversationID int64) {
	m.mu.Lock()
	f := m.feeds[conversationID]
	delete(m.feeds, conversationID)
	m.mu.Unlock()
	if f != nil {
		f.Close()
	}
}

// CloseAll discards every open feed, used on logout.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	feeds := m.feeds
	m.feeds = make(map[int64]*Feed)
	m.mu.Unlock()
	for _, f := range feeds {
		f.Close()
	}
}

// Invalidate handles a refresh scope. Only "messages:<id>" scopes concern
// the manager; a scope for a conversation with no open feed is ignored.
func (m *Manager) Invalidate(ctx context.Context, scope string) {
	id, ok := parseMessagesScope(scope)
	if !ok {
		return
	}
	f := m.Get(id)
	if f == nil {
		return
	}
	if err := f.RefreshHead(ctx); err != nil && err != ErrClosed {
		m.logger.Warn("feed refresh failed", zap.Int64("conversation_id", id), zap.Error(err))
	}
}

func parseMessagesScope(scope string) (int64, bool) {
	raw, ok := strings.CutPrefix(scope, "messages:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
