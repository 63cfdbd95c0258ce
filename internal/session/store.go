package session

import (
	"log"
	"sync"

	"github.com/Devam42/Answerly-chatbot/internal/models"
)

// Session holds all in-memory state for one username: one extracted-text
// cache per source kind plus the conversation history. Nothing is shared
// between usernames and nothing survives End.
type Session struct {
	mu       sync.Mutex
	username string

	transcripts map[string]string // keyed by video ID
	files       map[string]string // keyed by filename
	websites    map[string]string // keyed by URL
	wikipedia   map[string]string // keyed by article title

	history []models.QA
}

func newSession(username string) *Session {
	return &Session{
		username:    username,
		transcripts: make(map[string]string),
		files:       make(map[string]string),
		websites:    make(map[string]string),
		wikipedia:   make(map[string]string),
	}
}

// Lock serializes access to the session. Handlers hold the lock for the
// whole request so that concurrent requests for the same username cannot
// race on the caches or lose history appends.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Username returns the owner of this session.
func (s *Session) Username() string { return s.username }

func (s *Session) cacheFor(kind models.SourceKind) map[string]string {
	switch kind {
	case models.KindVideo:
		return s.transcripts
	case models.KindFile:
		return s.files
	case models.KindWebsite:
		return s.websites
	case models.KindWikipedia:
		return s.wikipedia
	}
	return nil
}

// Cached returns previously extracted text for (kind, id), if any.
// The caller must hold the session lock.
func (s *Session) Cached(kind models.SourceKind, id string) (string, bool) {
	cache := s.cacheFor(kind)
	if cache == nil {
		return "", false
	}
	text, ok := cache[id]
	return text, ok
}

// Put stores extracted text for (kind, id). Extraction is idempotent for
// the session's lifetime, so an existing entry is reused verbatim and
// never overwritten. The caller must hold the session lock.
func (s *Session) Put(kind models.SourceKind, id, text string) {
	cache := s.cacheFor(kind)
	if cache == nil {
		return
	}
	if _, exists := cache[id]; exists {
		return
	}
	cache[id] = text
}

// CachedCount returns the total number of cached entries across all kinds.
func (s *Session) CachedCount() int {
	return len(s.transcripts) + len(s.files) + len(s.websites) + len(s.wikipedia)
}

// AppendHistory records one completed question/answer exchange. History is
// append-only; entries are never reordered or removed before teardown.
// The caller must hold the session lock.
func (s *Session) AppendHistory(question, answer string) {
	s.history = append(s.history, models.QA{Question: question, Answer: answer})
}

// RecentHistory returns up to n of the most recent exchanges, oldest first.
// The caller must hold the session lock.
func (s *Session) RecentHistory(n int) []models.QA {
	if n <= 0 || len(s.history) == 0 {
		return nil
	}
	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.QA, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

// HistoryLen returns the number of recorded exchanges.
func (s *Session) HistoryLen() int {
	return len(s.history)
}

// Store owns all active sessions, keyed by username. Sessions are created
// lazily and live until an explicit End; there is no idle expiry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for username, allocating an empty one on
// first reference. Idempotent: an existing session is returned untouched.
func (st *Store) GetOrCreate(username string) *Session {
	st.mu.RLock()
	sess, ok := st.sessions[username]
	st.mu.RUnlock()
	if ok {
		return sess
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok := st.sessions[username]; ok {
		return sess
	}
	sess = newSession(username)
	st.sessions[username] = sess
	log.Printf("👤 [SESSION] Created session for user %s", username)
	return sess
}

// End releases the entire session for username: all four content caches
// and the full conversation history. No-op when no session exists.
func (st *Store) End(username string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[username]; !ok {
		return
	}
	delete(st.sessions, username)
	log.Printf("🗑️  [SESSION] Cleared all in-memory data for user %s", username)
}

// Count returns the number of active sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
