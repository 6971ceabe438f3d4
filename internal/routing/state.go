// Package routing holds the active-channel cell that decides where the bot relays
// conversation. The cell lives for the lifetime of the process and is never persisted:
// a restart always comes back unset.
package routing

import "sync"

// State stores at most one active channel ID. The zero value is unset and ready to use.
// Safe for concurrent use; the last write wins.
type State struct {
	mu        sync.RWMutex
	channelID string
}

// New creates an unset routing state.
func New() *State { return &State{} }

// Set designates channelID as the active channel, replacing any previous one.
// Setting an empty ID is equivalent to Reset.
func (s *State) Set(channelID string) {
	s.mu.Lock()
	s.channelID = channelID
	s.mu.Unlock()
}

// Reset clears the active channel.
func (s *State) Reset() {
	s.mu.Lock()
	s.channelID = ""
	s.mu.Unlock()
}

// Active returns the active channel ID and whether one is set.
func (s *State) Active() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channelID, s.channelID != ""
}

// IsActive reports whether channelID is the currently active channel.
func (s *State) IsActive(channelID string) bool {
	if channelID == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channelID == channelID
}
