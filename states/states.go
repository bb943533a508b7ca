package states

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hearthwatch/sdk/entity"
)

// ErrNotFound is returned when an entity has no live state.
var ErrNotFound = errors.New("states: entity not found")

// State is the live state of a single entity.
type State struct {
	// EntityID identifies the entity
	EntityID entity.ID `json:"entity_id"`

	// State is the current state value (e.g., "on", "23.5", "home")
	State string `json:"state"`

	// Attributes carries extra state metadata reported by the integration
	Attributes map[string]string `json:"attributes,omitempty"`

	// UpdatedAt is the Unix timestamp in milliseconds of the last change
	UpdatedAt int64 `json:"updated_at"`
}

// NewState creates a state for the given entity, stamped with the current time.
func NewState(id entity.ID, state string) State {
	return State{
		EntityID:  id,
		State:     state,
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// IsValid checks if the state has all required fields populated correctly.
func (s *State) IsValid() error {
	if s.EntityID == "" {
		return fmt.Errorf("entity_id is required")
	}
	if !s.EntityID.Valid() {
		return fmt.Errorf("malformed entity_id: %s", s.EntityID)
	}
	if s.UpdatedAt <= 0 {
		return fmt.Errorf("updated_at must be positive, got %d", s.UpdatedAt)
	}
	return nil
}

// Age returns the duration since this state last changed.
func (s *State) Age() time.Duration {
	if s.UpdatedAt <= 0 {
		return 0
	}
	now := time.Now().UnixMilli()
	return time.Duration(now-s.UpdatedAt) * time.Millisecond
}

// Client defines the interface for reading and writing live entity states.
type Client interface {
	// EntityIDs returns the ID of every entity with a live state, sorted.
	EntityIDs(ctx context.Context) ([]entity.ID, error)

	// Get returns the live state for an entity.
	// Returns ErrNotFound when the entity has no state.
	Get(ctx context.Context, id entity.ID) (*State, error)

	// Set records the live state for an entity.
	Set(ctx context.Context, state State) error

	// Delete removes the live state for an entity. Returns true if a
	// state existed.
	Delete(ctx context.Context, id entity.ID) (bool, error)

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
