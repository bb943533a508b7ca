// Package registry provides the persistent entity catalog backing diagnostics.
//
// The catalog records every entity integrations have registered, whether or
// not it currently has a live state. Dashboards reference entities by ID;
// diagnostics compare those references against this catalog (plus the live
// state table) to decide what actually exists. Hearthwatch supports two
// registry modes:
//
//   - External: etcd cluster, the production deployment
//   - Memory: in-process map for tests and single-binary setups
//
// Entity entries are persistent keys with no lease; they survive restarts
// the way a registry file would. Inspection workers additionally announce
// their presence under a separate prefix using etcd leases with TTL, so
// stale workers disappear automatically when they crash or disconnect.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/hearthwatch/sdk/entity"
)

// ErrNotFound is returned when an entity has no catalog entry.
var ErrNotFound = errors.New("registry: entry not found")

// Entry describes one entity in the catalog.
//
// Each integration registers an Entry per entity it provides. Entries are
// persistent: they remain until explicitly unregistered, even while the
// entity has no live state.
type Entry struct {
	// EntityID identifies the entity (e.g., "light.kitchen")
	EntityID entity.ID `json:"entity_id"`

	// Platform is the integration that provides the entity (e.g., "hue", "mqtt")
	Platform string `json:"platform"`

	// Name is the display name, if one was assigned
	Name string `json:"name,omitempty"`

	// Disabled marks entities that are registered but not loaded.
	// Disabled entities still count as known for diagnostics.
	Disabled bool `json:"disabled,omitempty"`

	// Metadata contains integration-specific attributes
	Metadata map[string]string `json:"metadata,omitempty"`

	// RegisteredAt is the timestamp when the entry was first created
	RegisteredAt time.Time `json:"registered_at"`
}

// IsValid checks if the entry has all required fields populated correctly.
func (e *Entry) IsValid() error {
	if e.EntityID == "" {
		return errors.New("entity_id is required")
	}
	if !e.EntityID.Valid() {
		return errors.New("malformed entity_id: " + string(e.EntityID))
	}
	if e.Platform == "" {
		return errors.New("platform is required")
	}
	return nil
}

// WorkerInfo describes a running inspection worker.
//
// Workers register themselves on startup and maintain presence via lease
// keepalives. Entries disappear automatically when a worker stops renewing.
type WorkerInfo struct {
	// ID is a unique identifier for this worker instance (typically UUID)
	ID string `json:"id"`

	// Hostname is the machine the worker runs on
	Hostname string `json:"hostname"`

	// Repairs lists the repair names this worker runs
	Repairs []string `json:"repairs,omitempty"`

	// StartedAt is the timestamp when this worker started
	StartedAt time.Time `json:"started_at"`
}

// Registry defines the entity catalog and worker presence interface.
//
// Implementations must provide thread-safe access. Entity entries are
// persistent; worker presence entries are lease-bound and expire when a
// worker stops renewing.
//
// Example usage:
//
//	reg, _ := registry.NewClient(registry.Config{
//	    Endpoints: []string{"localhost:2379"},
//	})
//	defer reg.Close()
//
//	reg.Register(ctx, registry.Entry{
//	    EntityID:     "light.kitchen",
//	    Platform:     "hue",
//	    RegisteredAt: time.Now(),
//	})
type Registry interface {
	// Register adds or updates an entity entry in the catalog.
	Register(ctx context.Context, entry Entry) error

	// Unregister removes an entity entry from the catalog. Returns true
	// if an entry existed.
	Unregister(ctx context.Context, id entity.ID) (bool, error)

	// Get returns the catalog entry for an entity.
	// Returns ErrNotFound when the entity has no entry.
	Get(ctx context.Context, id entity.ID) (*Entry, error)

	// List returns every catalog entry, ordered by entity ID.
	List(ctx context.Context) ([]Entry, error)

	// EntityIDs returns the ID of every registered entity, sorted.
	// Disabled entities are included.
	EntityIDs(ctx context.Context) ([]entity.ID, error)

	// Watch returns a channel that receives the full sorted ID list
	// whenever the catalog changes. The initial state is sent immediately.
	// The channel is closed when the context is cancelled or Close is called.
	Watch(ctx context.Context) (<-chan []entity.ID, error)

	// RegisterWorker announces an inspection worker. The entry is bound to
	// a lease that the registry renews in the background until
	// DeregisterWorker or Close is called.
	RegisterWorker(ctx context.Context, info WorkerInfo) error

	// DeregisterWorker removes a worker's presence entry and stops its
	// lease renewal. Unknown worker IDs are a no-op.
	DeregisterWorker(ctx context.Context, workerID string) error

	// Workers returns every worker with a live presence entry.
	Workers(ctx context.Context) ([]WorkerInfo, error)

	// Close releases resources and stops all background goroutines.
	// After Close, all other methods return errors.
	Close() error
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints
	// Format: ["host1:2379", "host2:2379", "host3:2379"]
	Endpoints []string `json:"endpoints"`

	// Namespace is the etcd key prefix for all Hearthwatch entries.
	// Entities are stored under /{namespace}/registry/entities/{entity-id}
	// and workers under /{namespace}/registry/workers/{worker-id}.
	// Default: "hearthwatch"
	Namespace string `json:"namespace"`

	// WorkerTTL is the worker presence lease time-to-live in seconds.
	// Workers must renew within this interval or their entry is removed.
	// Default: 30 seconds
	WorkerTTL int `json:"worker_ttl"`

	// DialTimeout bounds the initial connection attempt
	// Default: 5 seconds
	DialTimeout time.Duration `json:"dial_timeout"`

	// TLS holds TLS configuration for secure etcd communication.
	// If nil, TLS is disabled.
	TLS *TLSConfig `json:"tls"`
}

// TLSConfig holds TLS certificate configuration for secure registry
// communication. When enabled, all traffic to etcd is encrypted and
// authenticated using mutual TLS.
type TLSConfig struct {
	// Enabled determines whether TLS is active.
	// If false, all other fields are ignored.
	Enabled bool `json:"enabled"`

	// CertFile is the path to the client certificate file (PEM format)
	CertFile string `json:"cert_file"`

	// KeyFile is the path to the client private key file (PEM format)
	KeyFile string `json:"key_file"`

	// CAFile is the path to the certificate authority file (PEM format),
	// used to verify the etcd server's certificate
	CAFile string `json:"ca_file"`
}
