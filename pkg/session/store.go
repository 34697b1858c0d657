package session

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/karlseguin/ccache/v3"

	"github.com/c3mb0/mindset-mcp/pkg/state"
)

const (
	DefaultTTL     = time.Hour
	DefaultMaxSize = 10_000

	// AnonymousKey is used for callers that supply no session key.
	AnonymousKey = "anonymous"

	stripes = 64
)

// Session is a snapshot of a caller's counter.
type Session struct {
	Key              string      `json:"key"`
	InteractionCount int         `json:"interaction_count"`
	LastState        state.State `json:"last_state,omitempty"`
	LastSeen         time.Time   `json:"last_seen"`
}

// Config bounds the store.
type Config struct {
	TTL     time.Duration
	MaxSize int64
}

// Store maps session keys to counters. Entries expire TTL after their last
// observation and the least recently used entries are pruned past MaxSize.
// Observations for the same key are serialized by a striped lock; different
// keys only contend when they hash to the same stripe.
type Store struct {
	cache *ccache.Cache[*Session]
	ttl   time.Duration
	locks [stripes]sync.Mutex
	now   func() time.Time
}

func NewStore(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	prune := uint32(cfg.MaxSize / 20)
	if prune == 0 {
		prune = 1
	}
	return &Store{
		cache: ccache.New(ccache.Configure[*Session]().MaxSize(cfg.MaxSize).ItemsToPrune(prune)),
		ttl:   cfg.TTL,
		now:   time.Now,
	}
}

func (s *Store) lock(key string) *sync.Mutex {
	return &s.locks[xxhash.Sum64String(key)%stripes]
}

// Observe gets or creates the session for key, increments its interaction
// count, records st and returns the updated snapshot.
func (s *Store) Observe(key string, st state.State) Session {
	if key == "" {
		key = AnonymousKey
	}
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	var sess *Session
	if item := s.cache.Get(key); item != nil && !item.Expired() {
		sess = item.Value()
	} else {
		sess = &Session{Key: key}
	}
	sess.InteractionCount++
	sess.LastState = st
	sess.LastSeen = s.now()
	s.cache.Set(key, sess, s.ttl)
	return *sess
}

// Get returns the live session for key without counting an interaction.
func (s *Store) Get(key string) (Session, bool) {
	if key == "" {
		key = AnonymousKey
	}
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()
	item := s.cache.Get(key)
	if item == nil || item.Expired() {
		return Session{}, false
	}
	return *item.Value(), true
}

// Len reports the number of cached sessions, including expired entries that
// have not been pruned yet.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Close stops the cache's background worker.
func (s *Store) Close() {
	s.cache.Stop()
}
