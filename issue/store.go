package issue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested issue does not exist in the store.
var ErrNotFound = errors.New("issue: not found")

// Store persists issues raised by repairs.
type Store interface {
	// Create upserts an issue. The (repair, issue id) pair identifies the
	// record; re-creating an existing issue updates severity, fixable flag
	// and placeholders while preserving the record ID and creation time.
	Create(ctx context.Context, iss *Issue) error

	// Get returns the issue with the given identity, or ErrNotFound.
	Get(ctx context.Context, repair, issueID string) (*Issue, error)

	// List returns issues sorted by repair then issue id. An empty repair
	// name lists all issues.
	List(ctx context.Context, repair string) ([]*Issue, error)

	// Delete removes an issue, reporting whether it existed. Deleting a
	// missing issue is not an error so repairs can clear unconditionally.
	Delete(ctx context.Context, repair, issueID string) (bool, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store implementation, safe for concurrent use.
// It backs standalone framework setups and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	issues map[string]Issue
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		issues: make(map[string]Issue),
	}
}

func storeKey(repair, issueID string) string {
	return repair + "/" + issueID
}

// copyIssue returns a copy detached from the store's backing maps.
func copyIssue(stored Issue) *Issue {
	out := stored
	if stored.Placeholders != nil {
		out.Placeholders = make(map[string]string, len(stored.Placeholders))
		for k, v := range stored.Placeholders {
			out.Placeholders[k] = v
		}
	}
	return &out
}

// Create upserts an issue, preserving identity and creation time on update.
func (s *MemoryStore) Create(ctx context.Context, iss *Issue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := iss.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(iss.Repair, iss.IssueID)
	stored := *iss
	if existing, ok := s.issues[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = time.Now()
	}
	if stored.Placeholders != nil {
		placeholders := make(map[string]string, len(stored.Placeholders))
		for k, v := range stored.Placeholders {
			placeholders[k] = v
		}
		stored.Placeholders = placeholders
	}
	s.issues[key] = stored
	return nil
}

// Get returns a copy of the stored issue, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, repair, issueID string) (*Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.issues[storeKey(repair, issueID)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyIssue(stored), nil
}

// List returns copies of stored issues sorted by repair then issue id.
func (s *MemoryStore) List(ctx context.Context, repair string) ([]*Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var issues []*Issue
	for _, stored := range s.issues {
		if repair != "" && stored.Repair != repair {
			continue
		}
		issues = append(issues, copyIssue(stored))
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Repair != issues[j].Repair {
			return issues[i].Repair < issues[j].Repair
		}
		return issues[i].IssueID < issues[j].IssueID
	})
	return issues, nil
}

// Delete removes an issue, reporting whether it existed.
func (s *MemoryStore) Delete(ctx context.Context, repair, issueID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(repair, issueID)
	_, ok := s.issues[key]
	delete(s.issues, key)
	return ok, nil
}

// Close releases store resources. The memory store has none.
func (s *MemoryStore) Close() error {
	return nil
}
