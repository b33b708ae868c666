// Package workspace holds the per-user view state the browser renders: the
// signed-in user, the session sidebar, the active thread and the composer.
package workspace

import (
	"sync"

	"oracle-assistant-be/internal/entity"

	"github.com/google/uuid"
)

// Banner is the user visible error strip shown above the thread.
type Banner struct {
	Message   string
	Retryable bool
}

// State is mutated only after a remote call has completed. Every method takes
// the state's own lock, so callers never hold it across I/O.
type State struct {
	mu sync.Mutex

	user     *entity.AuthUser
	sessions []*entity.ChatSession
	activeID uuid.UUID
	messages []*entity.Message
	busy     bool
	draft    string
	banner   *Banner
}

// Snapshot is an immutable copy of State taken under the lock.
type Snapshot struct {
	User            *entity.AuthUser
	Sessions        []*entity.ChatSession
	ActiveSessionID uuid.UUID
	Messages        []*entity.Message
	Busy            bool
	Draft           string
	Banner          *Banner
}

func (s Snapshot) HasActiveSession() bool {
	return s.ActiveSessionID != uuid.Nil
}

func NewState(user *entity.AuthUser) *State {
	return &State{user: user}
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ActiveSessionID: s.activeID,
		Sessions:        append([]*entity.ChatSession(nil), s.sessions...),
		Messages:        append([]*entity.Message(nil), s.messages...),
		Busy:            s.busy,
		Draft:           s.draft,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.banner != nil {
		b := *s.banner
		snap.Banner = &b
	}
	return snap
}

func (s *State) SetUser(user *entity.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

func (s *State) User() *entity.AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *State) ActiveSessionID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ReplaceSessions swaps the sidebar for a freshly fetched, newest first list.
// An active id that no longer exists in the list is dropped along with its thread.
func (s *State) ReplaceSessions(sessions []*entity.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append([]*entity.ChatSession(nil), sessions...)
	if s.activeID == uuid.Nil {
		return
	}
	for _, session := range s.sessions {
		if session.Id == s.activeID {
			return
		}
	}
	s.activeID = uuid.Nil
	s.messages = nil
}

// SelectFirstIfNone activates the most recent session when nothing is selected.
// It returns the id that was selected, if any.
func (s *State) SelectFirstIfNone() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != uuid.Nil || len(s.sessions) == 0 {
		return uuid.Nil, false
	}
	s.activeID = s.sessions[0].Id
	s.messages = nil
	return s.activeID, true
}

// PrependSession puts a newly created session at the top and makes it active with an empty thread.
func (s *State) PrependSession(session *entity.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append([]*entity.ChatSession{session}, s.sessions...)
	s.activeID = session.Id
	s.messages = []*entity.Message{}
}

// Activate switches the active session. The thread is emptied until it is reloaded.
func (s *State) Activate(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == id {
		return
	}
	s.activeID = id
	s.messages = nil
}

// ReplaceMessages installs a loaded thread, unless the user has since moved to another session.
func (s *State) ReplaceMessages(sessionID uuid.UUID, messages []*entity.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != sessionID {
		return false
	}
	s.messages = append([]*entity.Message{}, messages...)
	return true
}

// AppendMessage adds a stored row to the thread when it belongs to the active session.
func (s *State) AppendMessage(message *entity.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != message.SessionId {
		return false
	}
	s.messages = append(s.messages, message)
	return true
}

// TryBeginSend raises the busy flag. It fails if a send is already outstanding.
func (s *State) TryBeginSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *State) EndSend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

func (s *State) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *State) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

func (s *State) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *State) ClearDraft() {
	s.SetDraft("")
}

func (s *State) SetBanner(message string, retryable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = &Banner{Message: message, Retryable: retryable}
}

func (s *State) ClearBanner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = nil
}

// Reset drops everything that belongs to the signed-in user.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.sessions = nil
	s.activeID = uuid.Nil
	s.messages = nil
	s.busy = false
	s.draft = ""
	s.banner = nil
}
