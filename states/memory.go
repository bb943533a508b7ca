package states

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hearthwatch/sdk/entity"
)

// MemoryClient is an in-process Client implementation for tests and
// single-binary setups.
type MemoryClient struct {
	mu     sync.RWMutex
	states map[entity.ID]State
}

// NewMemoryClient creates an empty in-memory state client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		states: make(map[entity.ID]State),
	}
}

// EntityIDs returns the ID of every entity with a live state, sorted.
func (c *MemoryClient) EntityIDs(ctx context.Context) ([]entity.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]entity.ID, 0, len(c.states))
	for id := range c.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Get returns the live state for an entity.
func (c *MemoryClient) Get(ctx context.Context, id entity.ID) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	state, ok := c.states[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := state
	return &copied, nil
}

// Set records the live state for an entity.
func (c *MemoryClient) Set(ctx context.Context, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := state.IsValid(); err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.states[state.EntityID] = state
	return nil
}

// Delete removes the live state for an entity.
func (c *MemoryClient) Delete(ctx context.Context, id entity.ID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.states[id]
	if ok {
		delete(c.states, id)
	}
	return ok, nil
}

// Ping always succeeds for the in-memory client.
func (c *MemoryClient) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory client.
func (c *MemoryClient) Close() error {
	return nil
}
