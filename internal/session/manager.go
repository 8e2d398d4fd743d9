package session

import (
	"github.com/maxaizer/solon/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"strconv"
	"sync"
	"time"
)

// Manager keeps one session per chat in memory. Sessions idle for longer than the ttl are
// dropped together with their in-flight request.
type Manager struct {
	mu          sync.Mutex
	sessions    *gocache.Cache
	classify    FailureClassifier
	wg          sync.WaitGroup
	sharedValid *bool
}

func NewManager(idleTTL time.Duration, classify FailureClassifier) *Manager {

	m := &Manager{
		sessions: gocache.New(idleTTL, idleTTL/2+time.Second),
		classify: classify,
	}

	m.sessions.OnEvicted(func(_ string, value interface{}) {
		value.(*Session).Reset()
		metrics.ActiveSessions.Dec()
	})
	return m
}

// Get returns the session of the chat, creating it when needed, and refreshes its ttl.
func (m *Manager) Get(chatID int64) *Session {

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strconv.FormatInt(chatID, 10)
	if cached, found := m.sessions.Get(key); found {
		m.sessions.SetDefault(key, cached)
		return cached.(*Session)
	}

	// an expired session the janitor has not collected yet is still stored, deleting it fires
	// the eviction callback before it is replaced
	m.sessions.Delete(key)

	created := newSession(chatID, m.classify, &m.wg)
	if m.sharedValid != nil {
		created.ApplyCheck(*m.sharedValid)
	}
	m.sessions.SetDefault(key, created)
	metrics.ActiveSessions.Inc()
	return created
}

// ApplySharedCheck remembers the result of the last shared credential check and applies it
// to every session.
func (m *Manager) ApplySharedCheck(valid bool) {

	m.mu.Lock()
	m.sharedValid = &valid
	items := m.sessions.Items()
	m.mu.Unlock()

	for _, item := range items {
		item.Object.(*Session).ApplyCheck(valid)
	}
}

func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}

// Close cancels every in-flight request and waits for the request goroutines.
func (m *Manager) Close() {
	for _, item := range m.sessions.Items() {
		item.Object.(*Session).Cancel()
	}
	m.wg.Wait()
}
