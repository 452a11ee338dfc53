// Package registry provides a global registry for game factories.
// Games register themselves in init() functions, allowing the platform
// to discover and instantiate games without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/gridstage/internal/stage"
)

// Action represents a semantic game action, abstracted from physical key
// presses. The platform maps keys to actions and passes one action per
// step; game entities interpret them.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionStay // wait in place for one turn
	ActionQuit // abandon the episode
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionStay:
		return "Stay"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Info contains metadata about a registered game.
type Info struct {
	// ID is the unique identifier, used for CLI commands and score storage.
	ID string

	// Title is the human-readable name for display.
	Title string

	// TickMillis is the auto-advance interval for real-time games. Zero
	// means the game is purely turn-based and steps only on input.
	TickMillis int
}

// Factory creates a fresh engine for one episode. The seed drives any
// procedural generation; purely authored games may ignore it.
type Factory func(seed int64) (*stage.Engine, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
	infos     = make(map[string]Info)
)

// Register adds a game factory to the registry.
// Typically called from a game's init() function.
// Panics if a game with the same ID is already registered.
func Register(info Info, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[info.ID]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", info.ID))
	}
	factories[info.ID] = f
	infos[info.ID] = info
}

// List returns information about all registered games, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create builds a fresh episode engine for the game with the given ID.
func Create(id string, seed int64) (*stage.Engine, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(seed)
}

// Lookup returns the metadata for a registered game.
func Lookup(id string) (Info, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infos[id]
	return info, ok
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	_, ok := Lookup(id)
	return ok
}
