package pagemeta

import "sync"

// MemorySource implements Source using in-memory declarations
type MemorySource struct {
	mu    sync.RWMutex
	pages map[string]Requirement
}

// NewMemorySource creates a new MemorySource
func NewMemorySource() *MemorySource {
	return &MemorySource{
		pages: make(map[string]Requirement),
	}
}

// SetRequirement declares a requirement for a page path
func (m *MemorySource) SetRequirement(pagePath string, req Requirement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[pagePath] = req
}

// RequiredClearance implements Source. Unknown pages are unrestricted.
func (m *MemorySource) RequiredClearance(pagePath string) (Requirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pages[pagePath], nil
}
