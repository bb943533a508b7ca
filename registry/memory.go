package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hearthwatch/sdk/entity"
)

// MemoryRegistry is an in-process Registry implementation for tests and
// single-binary setups. Worker presence entries are stored but lease
// expiry is not simulated; they remain until explicitly deregistered.
type MemoryRegistry struct {
	mu       sync.RWMutex
	entries  map[entity.ID]Entry
	workers  map[string]WorkerInfo
	watchers map[chan []entity.ID]struct{}
	closed   bool
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries:  make(map[entity.ID]Entry),
		workers:  make(map[string]WorkerInfo),
		watchers: make(map[chan []entity.ID]struct{}),
	}
}

// Register adds or updates an entity entry in the catalog.
func (r *MemoryRegistry) Register(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.IsValid(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("registry is closed")
	}

	r.entries[entry.EntityID] = entry
	r.notifyLocked()
	return nil
}

// Unregister removes an entity entry from the catalog.
func (r *MemoryRegistry) Unregister(ctx context.Context, id entity.ID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false, fmt.Errorf("registry is closed")
	}

	_, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
		r.notifyLocked()
	}
	return ok, nil
}

// Get returns the catalog entry for an entity.
func (r *MemoryRegistry) Get(ctx context.Context, id entity.ID) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("registry is closed")
	}

	entry, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := entry
	return &copied, nil
}

// List returns every catalog entry, ordered by entity ID.
func (r *MemoryRegistry) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("registry is closed")
	}

	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EntityID < entries[j].EntityID })
	return entries, nil
}

// EntityIDs returns the ID of every registered entity, sorted.
func (r *MemoryRegistry) EntityIDs(ctx context.Context) ([]entity.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("registry is closed")
	}

	return r.entityIDsLocked(), nil
}

// Watch returns a channel that receives the full sorted ID list whenever
// the catalog changes. The initial state is sent immediately.
func (r *MemoryRegistry) Watch(ctx context.Context) (<-chan []entity.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, fmt.Errorf("registry is closed")
	}

	inner := make(chan []entity.ID, 1)
	inner <- r.entityIDsLocked()
	r.watchers[inner] = struct{}{}
	r.mu.Unlock()

	out := make(chan []entity.ID)

	go func() {
		defer close(out)
		defer func() {
			r.mu.Lock()
			delete(r.watchers, inner)
			r.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ids := <-inner:
				select {
				case out <- ids:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// RegisterWorker announces an inspection worker.
func (r *MemoryRegistry) RegisterWorker(ctx context.Context, info WorkerInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if info.ID == "" {
		return fmt.Errorf("worker id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("registry is closed")
	}

	r.workers[info.ID] = info
	return nil
}

// DeregisterWorker removes a worker's presence entry.
func (r *MemoryRegistry) DeregisterWorker(ctx context.Context, workerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("registry is closed")
	}

	delete(r.workers, workerID)
	return nil
}

// Workers returns every registered worker.
func (r *MemoryRegistry) Workers(ctx context.Context) ([]WorkerInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("registry is closed")
	}

	workers := make([]WorkerInfo, 0, len(r.workers))
	for _, info := range r.workers {
		workers = append(workers, info)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	return workers, nil
}

// Close shuts the registry down. Active watches end when their contexts
// are cancelled.
func (r *MemoryRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	return nil
}

// entityIDsLocked returns the sorted entity IDs. Callers must hold r.mu.
func (r *MemoryRegistry) entityIDsLocked() []entity.ID {
	ids := make([]entity.ID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// notifyLocked pushes a fresh snapshot to every watcher. Callers must
// hold r.mu for writing. A watcher that has not consumed the previous
// snapshot sees only the latest one.
func (r *MemoryRegistry) notifyLocked() {
	ids := r.entityIDsLocked()
	for ch := range r.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- ids
	}
}
