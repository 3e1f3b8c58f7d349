// Package starred keeps the words the user has starred. The collection
// lives in memory, matching the service's historical behavior: a
// restart clears it.
package starred

import "sync"

// Store is an insertion-ordered set of starred words. All methods are
// safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	words []string
	index map[string]bool
}

func New() *Store {
	return &Store{index: make(map[string]bool)}
}

// List returns the starred words in insertion order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Star adds word unless already present and returns the list after the
// change.
func (s *Store) Star(word string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.index[word] {
		s.index[word] = true
		s.words = append(s.words, word)
	}
	return s.listLocked()
}

// Unstar removes word if present and returns the list after the
// change. Unstarring an absent word is not an error.
func (s *Store) Unstar(word string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index[word] {
		delete(s.index, word)
		for i, w := range s.words {
			if w == word {
				s.words = append(s.words[:i], s.words[i+1:]...)
				break
			}
		}
	}
	return s.listLocked()
}

// Len returns the number of starred words.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// listLocked copies the slice so callers never alias internal state.
func (s *Store) listLocked() []string {
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}
