package characters

import (
	"context"
	"sync"
)

// MemorySource implements Source using in-memory storage
type MemorySource struct {
	mu      sync.RWMutex
	records map[string]*Character
}

// NewMemorySource creates a new MemorySource
func NewMemorySource() *MemorySource {
	return &MemorySource{
		records: make(map[string]*Character),
	}
}

// LoadCharacter implements Source
func (m *MemorySource) LoadCharacter(ctx context.Context, id string) (*Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	char, exists := m.records[id]
	if !exists {
		return nil, ErrCharacterNotFound
	}
	return char, nil
}

// AddCharacter adds or updates a character in memory
func (m *MemorySource) AddCharacter(char *Character) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[char.ID] = char
}

// RemoveCharacter removes a character from memory
func (m *MemorySource) RemoveCharacter(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
}
