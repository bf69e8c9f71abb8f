// Package session keeps the activation-code wizard state of every chat.
package session

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Step is the wizard position of a chat.
type Step string

const (
	StepIdle                      Step = "idle"
	StepAwaitFirstName            Step = "await_first_name"
	StepAwaitLastName             Step = "await_last_name"
	StepAwaitFallbackConfirmation Step = "await_fallback_confirmation"
)

// Session is the wizard state of one chat.
type Session struct {
	Step          Step
	FirstName     string
	LastName      string
	PrimaryCodes  [2]string
	FallbackCodes [2]string
}

// Idle reports whether no wizard is running.
func (s Session) Idle() bool {
	return s.Step == "" || s.Step == StepIdle
}

// Consistent reports whether the populated fields match the step.
func (s Session) Consistent() bool {
	switch s.Step {
	case "", StepIdle, StepAwaitFirstName:
		return true
	case StepAwaitLastName:
		return s.FirstName != ""
	case StepAwaitFallbackConfirmation:
		return s.FirstName != "" && s.LastName != "" &&
			filled(s.PrimaryCodes) && filled(s.FallbackCodes)
	default:
		return false
	}
}

func filled(codes [2]string) bool {
	return codes[0] != "" && codes[1] != ""
}

// Store maps chat ids to sessions. Implementations must be safe for
// concurrent use across chats.
type Store interface {
	Get(chatID int64) Session
	Put(chatID int64, s Session)
	Reset(chatID int64)
}

// TTLStore is an in-memory Store whose sessions expire after a period of
// inactivity. An expired session reads as idle.
type TTLStore struct {
	cache *ttlcache.Cache[int64, Session]
}

// NewTTLStore builds a TTLStore. Call Start to evict expired entries in the
// background and Stop to release it.
func NewTTLStore(ttl time.Duration) *TTLStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[int64, Session](ttl),
	)
	return &TTLStore{cache: cache}
}

// Start runs the eviction loop until Stop is called.
func (s *TTLStore) Start() {
	go s.cache.Start()
}

// Stop ends the eviction loop.
func (s *TTLStore) Stop() {
	s.cache.Stop()
}

// Get returns the chat's session, idle when none is stored. Reading extends
// the session's lifetime.
func (s *TTLStore) Get(chatID int64) Session {
	item := s.cache.Get(chatID)
	if item == nil {
		return Session{Step: StepIdle}
	}
	return item.Value()
}

// Put stores the session. Idle sessions are removed instead.
func (s *TTLStore) Put(chatID int64, sess Session) {
	if sess.Idle() {
		s.cache.Delete(chatID)
		return
	}
	s.cache.Set(chatID, sess, ttlcache.DefaultTTL)
}

// Reset drops the chat's session.
func (s *TTLStore) Reset(chatID int64) {
	s.cache.Delete(chatID)
}

// Len reports the number of live sessions.
func (s *TTLStore) Len() int {
	return s.cache.Len()
}
