package services

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/metrics"
	"github.com/siniestros-lookup/internal/source"
	"github.com/siniestros-lookup/internal/tabular"
)

// DefaultSessionCapacity số session tối đa giữ trong bộ nhớ
const DefaultSessionCapacity = 1024

// BackendFactory builds the query backend of a new session over its index.
type BackendFactory func(idx *index.PartitionIndex) tabular.Backend

// Session một phiên tra cứu: cache riêng + request token
type Session struct {
	ID        string
	CreatedAt time.Time

	index    *index.PartitionIndex
	backend  tabular.Backend
	token    atomic.Uint64
	lastUsed atomic.Int64
}

// Index trả về partition index của session
func (s *Session) Index() *index.PartitionIndex { return s.index }

// Backend trả về backend truy vấn của session
func (s *Session) Backend() tabular.Backend { return s.backend }

// NextToken issues the request token of a new search.
func (s *Session) NextToken() uint64 {
	s.lastUsed.Store(time.Now().UnixNano())
	return s.token.Add(1)
}

// IsLatest reports whether tok belongs to the most recent search.
func (s *Session) IsLatest(tok uint64) bool {
	return s.token.Load() == tok
}

// LastUsed thời điểm search gần nhất
func (s *Session) LastUsed() time.Time {
	ns := s.lastUsed.Load()
	if ns == 0 {
		return s.CreatedAt
	}
	return time.Unix(0, ns)
}

// SessionManager giữ các session trong LRU, session bị evict sẽ bắt đầu lại từ đầu
type SessionManager struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, *Session]
	src      source.Source
	layout   index.Layout
	backend  BackendFactory
	logger   *zap.Logger
}

// NewSessionManager tạo mới SessionManager
func NewSessionManager(capacity int, src source.Source, layout index.Layout, backend BackendFactory, logger *zap.Logger) (*SessionManager, error) {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	m := &SessionManager{
		src:     src,
		layout:  layout,
		backend: backend,
		logger:  logger,
	}
	cache, err := lru.NewWithEvict[string, *Session](capacity, func(id string, _ *Session) {
		metrics.ActiveSessions.Dec()
		m.logger.Debug("Session evicted", zap.String("session_id", id))
	})
	if err != nil {
		return nil, err
	}
	m.sessions = cache
	return m, nil
}

// Get returns the session with id, creating it when id is empty or unknown.
// The returned id is the one the client must send back.
func (m *SessionManager) Get(id string) (*Session, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions.Get(id); ok {
			return s, id
		}
	} else {
		id = uuid.NewString()
	}

	idx := index.NewPartitionIndex(m.src, m.layout, m.logger).WithObserver(metrics.FetchObserver{})
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		index:     idx,
		backend:   m.backend(idx),
	}
	m.sessions.Add(id, s)
	metrics.ActiveSessions.Inc()
	m.logger.Debug("Session created", zap.String("session_id", id))
	return s, id
}

// Len số session đang hoạt động
func (m *SessionManager) Len() int {
	return m.sessions.Len()
}

// Purge xóa toàn bộ session
func (m *SessionManager) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions.Purge()
}
