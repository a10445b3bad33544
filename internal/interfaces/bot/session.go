package bot

import (
	"sync"
	"time"
)

// pending identifies what the next free-text message from a user means.
type pending int

const (
	pendingNone pending = iota
	pendingLookup
	pendingAddCredits
	pendingRemoveCredits
	pendingUserHistory
	pendingBroadcast
	pendingAddSpecial
	pendingRemoveSpecial
	pendingBlockID
	pendingBlockReason
	pendingUnblock
)

// UserSession tracks the per-user conversation state: which input the bot
// is waiting for and a debounce timestamp against double taps.
type UserSession struct {
	ChatID    int64
	State     pending
	Provider  string // lookup button label, set while State == pendingLookup
	BlockUID  int64  // carried between the block id and block reason steps
	LastClick time.Time
	mu        sync.Mutex
}

type SessionManager struct {
	sessions map[int64]*UserSession
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[int64]*UserSession)}
}

func (sm *SessionManager) GetOrCreate(chatID int64) *UserSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, ok := sm.sessions[chatID]
	if !ok {
		s = &UserSession{ChatID: chatID}
		sm.sessions[chatID] = s
	}
	return s
}

// Expect arms the session: the user's next message is consumed as input
// for the given state instead of being routed as a menu press.
func (s *UserSession) Expect(state pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = state
}

func (s *UserSession) ExpectLookup(button string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = pendingLookup
	s.Provider = button
}

// ExpectBlockReason arms the second step of the block flow, carrying the
// already-validated target id.
func (s *UserSession) ExpectBlockReason(uid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = pendingBlockReason
	s.BlockUID = uid
}

// Take returns the armed state and clears it. Menu presses always reset
// the state so a stale prompt never swallows a button.
func (s *UserSession) Take() (pending, string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, provider, uid := s.State, s.Provider, s.BlockUID
	s.State = pendingNone
	s.Provider = ""
	return state, provider, uid
}

func (s *UserSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = pendingNone
	s.Provider = ""
	s.BlockUID = 0
}

// AllowClick debounces rapid duplicate presses.
func (s *UserSession) AllowClick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.LastClick) < 500*time.Millisecond {
		return false
	}
	s.LastClick = time.Now()
	return true
}
