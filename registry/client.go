package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/hearthwatch/sdk/entity"
)

// Client implements Registry against an etcd cluster.
//
// Entity entries are plain persistent keys. Worker presence entries are
// bound to leases that the client renews every TTL/3 in the background,
// so a crashed worker's entry disappears on its own.
//
// Example usage:
//
//	cfg := registry.Config{
//	    Endpoints: []string{"localhost:2379"},
//	    Namespace: "hearthwatch",
//	}
//	client, err := registry.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// Thread-safety: All methods are safe for concurrent use.
type Client struct {
	client    *clientv3.Client
	namespace string
	workerTTL int

	// Lease tracking for worker presence keepalive
	mu         sync.RWMutex
	leases     map[string]clientv3.LeaseID // key: worker ID, value: lease ID
	cancelFns  map[string]context.CancelFunc
	wg         sync.WaitGroup // tracks background goroutines
	closed     bool
	closedChan chan struct{}
}

// NewClient creates a registry client from the provided configuration.
//
// This establishes a connection to the etcd cluster and verifies
// connectivity with a health check. If the connection fails, an error is
// returned. The client must be closed using Close() when no longer needed
// to release resources and stop background keepalive goroutines.
//
// Parameters:
//   - cfg: Configuration containing endpoints, namespace, and TLS settings
//
// Returns:
//   - *Client: A connected registry client
//   - error: Connection error if etcd is unreachable or authentication fails
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("registry endpoints cannot be empty")
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "hearthwatch"
	}

	workerTTL := cfg.WorkerTTL
	if workerTTL <= 0 {
		workerTTL = 30
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	// Build etcd client config
	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	}

	// Configure TLS if enabled
	if cfg.TLS != nil && cfg.TLS.Enabled {
		tlsConfig, err := clientTLS(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		clientCfg.TLS = tlsConfig
	}

	// Create etcd client
	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	// Verify connectivity with a quick health check
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err = cli.Get(ctx, "health-check")
	if err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &Client{
		client:     cli,
		namespace:  namespace,
		workerTTL:  workerTTL,
		leases:     make(map[string]clientv3.LeaseID),
		cancelFns:  make(map[string]context.CancelFunc),
		closedChan: make(chan struct{}),
	}, nil
}

// NewClientFromEnv creates a registry client using the
// HEARTHWATCH_ETCD_ENDPOINTS environment variable.
//
// The environment variable should contain a comma-separated list of etcd
// endpoints:
//
//	HEARTHWATCH_ETCD_ENDPOINTS=localhost:2379,localhost:2380
//
// If the environment variable is not set, this function returns (nil, nil)
// so callers can fall back to an in-memory registry. This is NOT considered
// an error.
func NewClientFromEnv() (*Client, error) {
	endpoints := os.Getenv("HEARTHWATCH_ETCD_ENDPOINTS")
	if endpoints == "" {
		// Not an error - caller falls back to an in-memory registry
		return nil, nil
	}

	endpointList := strings.Split(endpoints, ",")
	for i, ep := range endpointList {
		endpointList[i] = strings.TrimSpace(ep)
	}

	return NewClient(Config{Endpoints: endpointList})
}

// Register adds or updates an entity entry in the catalog.
//
// Entries are persistent keys without a lease; they remain until
// Unregister is called, surviving both registry client restarts and
// etcd cluster restarts.
func (c *Client) Register(ctx context.Context, entry Entry) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	if err := entry.IsValid(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	key := c.entityKey(entry.EntityID)
	if _, err := c.client.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to register entity: %w", err)
	}

	return nil
}

// Unregister removes an entity entry from the catalog.
func (c *Client) Unregister(ctx context.Context, id entity.ID) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false, fmt.Errorf("registry client is closed")
	}

	resp, err := c.client.Delete(ctx, c.entityKey(id))
	if err != nil {
		return false, fmt.Errorf("failed to unregister entity: %w", err)
	}

	return resp.Deleted > 0, nil
}

// Get returns the catalog entry for an entity.
func (c *Client) Get(ctx context.Context, id entity.ID) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}

	resp, err := c.client.Get(ctx, c.entityKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	if len(resp.Kvs) == 0 {
		return nil, ErrNotFound
	}

	var entry Entry
	if err := json.Unmarshal(resp.Kvs[0].Value, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// List returns every catalog entry, ordered by entity ID.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}

	resp, err := c.client.Get(ctx, c.entityPrefix(), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	// etcd returns keys in ascending order, so entries come back
	// sorted by entity ID
	entries := make([]Entry, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var entry Entry
		if err := json.Unmarshal(kv.Value, &entry); err != nil {
			// Skip invalid entries
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// EntityIDs returns the ID of every registered entity, sorted.
func (c *Client) EntityIDs(ctx context.Context) ([]entity.ID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}

	prefix := c.entityPrefix()
	resp, err := c.client.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list entity IDs: %w", err)
	}

	ids := make([]entity.ID, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		ids = append(ids, entity.ID(strings.TrimPrefix(string(kv.Key), prefix)))
	}

	return ids, nil
}

// Watch returns a channel that receives the full sorted ID list whenever
// the catalog changes.
//
// The channel emits a fresh snapshot after every register or unregister.
// The initial state is sent immediately. The channel is closed when the
// context is cancelled or Close() is called.
//
// Parameters:
//   - ctx: Context that controls the watch lifetime
//
// Returns:
//   - <-chan []entity.ID: Channel that receives catalog snapshots
//   - error: Watch error if etcd is unavailable
func (c *Client) Watch(ctx context.Context) (<-chan []entity.ID, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, fmt.Errorf("registry client is closed")
	}
	c.mu.RUnlock()

	// Send initial state
	ids, err := c.EntityIDs(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan []entity.ID, 1)
	ch <- ids

	watchChan := c.client.Watch(ctx, c.entityPrefix(), clientv3.WithPrefix())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.closedChan:
				return
			case watchResp, ok := <-watchChan:
				if !ok {
					return
				}
				if watchResp.Err() != nil {
					return
				}

				// Fetch current state after any change
				ids, err := c.EntityIDs(context.Background())
				if err != nil {
					// Skip this update if we can't query
					continue
				}

				select {
				case ch <- ids:
				case <-ctx.Done():
					return
				case <-c.closedChan:
					return
				}
			}
		}
	}()

	return ch, nil
}

// RegisterWorker announces an inspection worker.
//
// The worker entry is bound to a lease with the configured TTL. A
// background goroutine renews the lease every TTL/3 seconds to maintain
// presence. If the worker is already registered (same ID), this updates
// the existing entry and restarts the keepalive goroutine.
func (c *Client) RegisterWorker(ctx context.Context, info WorkerInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	if info.ID == "" {
		return fmt.Errorf("worker id is required")
	}

	// Cancel existing keepalive if re-registering
	if cancelFn, exists := c.cancelFns[info.ID]; exists {
		cancelFn()
		delete(c.cancelFns, info.ID)
	}

	// Create lease with TTL
	leaseResp, err := c.client.Grant(ctx, int64(c.workerTTL))
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal worker info: %w", err)
	}

	key := c.workerKey(info.ID)
	_, err = c.client.Put(ctx, key, string(data), clientv3.WithLease(leaseResp.ID))
	if err != nil {
		return fmt.Errorf("failed to register worker: %w", err)
	}

	// Store lease ID
	c.leases[info.ID] = leaseResp.ID

	// Start keepalive goroutine
	keepaliveCtx, cancel := context.WithCancel(context.Background())
	c.cancelFns[info.ID] = cancel

	c.wg.Add(1)
	go c.keepalive(keepaliveCtx, leaseResp.ID, info.ID)

	return nil
}

// DeregisterWorker removes a worker's presence entry.
//
// This revokes the etcd lease, which immediately deletes the entry, and
// stops the background keepalive goroutine. Unknown worker IDs are a
// no-op.
func (c *Client) DeregisterWorker(ctx context.Context, workerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	// Stop keepalive goroutine
	if cancelFn, exists := c.cancelFns[workerID]; exists {
		cancelFn()
		delete(c.cancelFns, workerID)
	}

	// Revoke lease (deletes the worker entry)
	leaseID, exists := c.leases[workerID]
	if !exists {
		// Not registered, this is a no-op
		return nil
	}

	if _, err := c.client.Revoke(ctx, leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}

	delete(c.leases, workerID)

	return nil
}

// Workers returns every worker with a live presence entry.
func (c *Client) Workers(ctx context.Context) ([]WorkerInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}

	resp, err := c.client.Get(ctx, c.workerPrefix(), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	workers := make([]WorkerInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info WorkerInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			// Skip invalid entries
			continue
		}
		workers = append(workers, info)
	}

	return workers, nil
}

// Close releases all resources and stops background goroutines.
//
// After Close() is called, all other methods will return errors. All
// active watches are terminated and their channels closed. All keepalive
// goroutines are stopped.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	// Cancel all keepalive goroutines
	for _, cancel := range c.cancelFns {
		cancel()
	}
	c.cancelFns = make(map[string]context.CancelFunc)

	close(c.closedChan)
	c.mu.Unlock()

	// Wait for all goroutines to finish
	c.wg.Wait()

	// Close etcd client
	return c.client.Close()
}

// keepalive renews the lease every TTL/3 seconds to maintain worker presence.
//
// This runs in a background goroutine started by RegisterWorker(). It
// stops when:
//   - The context is canceled (via DeregisterWorker or Close)
//   - The lease becomes invalid
func (c *Client) keepalive(ctx context.Context, leaseID clientv3.LeaseID, workerID string) {
	defer c.wg.Done()

	// Renew every TTL/3 seconds
	interval := time.Duration(c.workerTTL) * time.Second / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closedChan:
			return
		case <-ticker.C:
			_, err := c.client.KeepAliveOnce(context.Background(), leaseID)
			if err != nil {
				// Lease is invalid, stop keepalive
				c.mu.Lock()
				delete(c.leases, workerID)
				delete(c.cancelFns, workerID)
				c.mu.Unlock()
				return
			}
		}
	}
}

// entityKey constructs the etcd key for an entity entry.
//
// Format: /namespace/registry/entities/entity-id
func (c *Client) entityKey(id entity.ID) string {
	return c.entityPrefix() + string(id)
}

// entityPrefix is the key prefix under which all entity entries live.
func (c *Client) entityPrefix() string {
	return fmt.Sprintf("/%s/registry/entities/", c.namespace)
}

// workerKey constructs the etcd key for a worker presence entry.
//
// Format: /namespace/registry/workers/worker-id
func (c *Client) workerKey(workerID string) string {
	return c.workerPrefix() + workerID
}

// workerPrefix is the key prefix under which all worker entries live.
func (c *Client) workerPrefix() string {
	return fmt.Sprintf("/%s/registry/workers/", c.namespace)
}
