package characters

import (
	"context"
	"sync"
	"time"
)

// cachedCharacter holds character data and cache metadata
type cachedCharacter struct {
	char     *Character
	loadedAt time.Time
}

// Repository provides access to character records with caching
type Repository struct {
	source        Source
	cacheDuration time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedCharacter
}

// NewRepository creates a new Repository instance
func NewRepository(source Source, cacheDuration time.Duration) *Repository {
	return &Repository{
		source:        source,
		cacheDuration: cacheDuration,
		cache:         make(map[string]*cachedCharacter),
	}
}

// LoadCharacter implements Source, using cache if available
func (r *Repository) LoadCharacter(ctx context.Context, id string) (*Character, error) {
	r.mu.RLock()
	cached, exists := r.cache[id]
	r.mu.RUnlock()

	// Return cached entry if it's still valid
	if exists && time.Since(cached.loadedAt) < r.cacheDuration {
		return cached.char, nil
	}

	// Load fresh data
	char, err := r.source.LoadCharacter(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache
	r.mu.Lock()
	r.cache[id] = &cachedCharacter{
		char:     char,
		loadedAt: time.Now(),
	}
	r.mu.Unlock()

	return char, nil
}

// RefreshCharacter forces a refresh of the character's cached data
func (r *Repository) RefreshCharacter(id string) {
	r.mu.Lock()
	delete(r.cache, id)
	r.mu.Unlock()
}

// CharacterExists checks if a character exists
func (r *Repository) CharacterExists(ctx context.Context, id string) (bool, error) {
	_, err := r.LoadCharacter(ctx, id)
	if err == ErrCharacterNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
