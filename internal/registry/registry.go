// Package registry provides a global registry of level-set factories.
// Built-in sets register themselves in init() functions; sets loaded from
// user files are added at runtime. The platform discovers and opens sets
// without hardcoded dependencies on where they come from.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/bottle-sort/internal/engine"
)

// Set is a named collection of levels sharing one board layout.
type Set interface {
	// ID returns a unique identifier (e.g., "classic").
	// Used for CLI commands and result storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Board returns the layout every level in the set is validated against.
	Board() engine.Board

	// Levels returns the level data in play order.
	Levels() []engine.LevelData
}

// SetInfo contains metadata about a registered set.
type SetInfo struct {
	ID    string
	Title string
}

// Factory opens a level set.
type Factory func() (Set, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a level-set factory to the registry.
// Typically called from an init() function.
// Panics if a set with the same ID is already registered.
func Register(id, title string, f Factory) {
	if err := Add(id, title, f); err != nil {
		panic(err.Error())
	}
}

// Add is like Register but returns an error for duplicate IDs.
// Used for sets discovered at runtime.
func Add(id, title string, f Factory) error {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		return fmt.Errorf("registry: level set %q already registered", id)
	}

	factories[id] = f
	titles[id] = title
	return nil
}

// List returns information about all registered sets, sorted by ID.
func List() []SetInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SetInfo, 0, len(factories))
	for id := range factories {
		result = append(result, SetInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Open instantiates a set by its ID.
// Returns an error if the ID is not registered or the set fails to load.
func Open(id string) (Set, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown level set %q", id)
	}

	set, err := f()
	if err != nil {
		return nil, fmt.Errorf("registry: open %q: %w", id, err)
	}
	return set, nil
}

// Exists checks if a set with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Find returns the level with the given number from a set.
func Find(s Set, number int) (engine.LevelData, bool) {
	for _, lvl := range s.Levels() {
		if lvl.Level == number {
			return lvl, true
		}
	}
	return engine.LevelData{}, false
}

// Next returns the level that follows number in play order.
func Next(s Set, number int) (engine.LevelData, bool) {
	levels := s.Levels()
	for i, lvl := range levels {
		if lvl.Level == number && i+1 < len(levels) {
			return levels[i+1], true
		}
	}
	return engine.LevelData{}, false
}
