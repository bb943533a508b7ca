package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies a kind of change notification flowing through the bus.
type Type string

const (
	// TypeComponentLoaded fires when an integration finishes loading.
	TypeComponentLoaded Type = "component_loaded"

	// TypeEntityRegistryUpdated fires when an entity is created, renamed,
	// or removed from the registry.
	TypeEntityRegistryUpdated Type = "entity_registry_updated"

	// TypeDashboardUpdated fires when a dashboard configuration is saved.
	TypeDashboardUpdated Type = "dashboard_updated"

	// TypeConfigEntryChanged fires when a config entry is added, updated,
	// or removed.
	TypeConfigEntryChanged Type = "config_entry_changed"
)

// reloadDomains lists the integrations that announce configuration
// reloads with a dedicated event_<domain>_reloaded event. Reloading one
// of these can add or remove entities without touching the registry.
var reloadDomains = []string{
	"counter",
	"derivative",
	"group",
	"input_boolean",
	"input_button",
	"input_datetime",
	"input_number",
	"input_select",
	"input_text",
	"integration",
	"min_max",
	"mqtt",
	"scene",
	"schedule",
	"template",
	"threshold",
	"tod",
	"utility_meter",
}

// ReloadEvent returns the event type fired when the given integration
// domain reloads its configuration.
func ReloadEvent(domain string) Type {
	return Type(fmt.Sprintf("event_%s_reloaded", domain))
}

// ReloadEvents returns the reload event types for every integration that
// announces configuration reloads.
func ReloadEvents() []Type {
	types := make([]Type, 0, len(reloadDomains))
	for _, domain := range reloadDomains {
		types = append(types, ReloadEvent(domain))
	}
	return types
}

// AllTypes returns every event type in the catalog, core types first.
func AllTypes() []Type {
	types := []Type{
		TypeComponentLoaded,
		TypeEntityRegistryUpdated,
		TypeDashboardUpdated,
		TypeConfigEntryChanged,
	}
	return append(types, ReloadEvents()...)
}

// IsValid checks if the type is part of the event catalog.
func (t Type) IsValid() bool {
	switch t {
	case TypeComponentLoaded, TypeEntityRegistryUpdated, TypeDashboardUpdated, TypeConfigEntryChanged:
		return true
	}
	for _, domain := range reloadDomains {
		if t == ReloadEvent(domain) {
			return true
		}
	}
	return false
}

// String returns the string representation of the event type.
func (t Type) String() string {
	return string(t)
}

// Event is a single change notification published on the bus.
type Event struct {
	// Type identifies what kind of change happened
	Type Type `json:"type"`

	// EntityID names the entity the event concerns, when the event is
	// entity-scoped. Empty for broad events such as component_loaded.
	EntityID string `json:"entity_id,omitempty"`

	// Data carries event-specific attributes
	Data map[string]string `json:"data,omitempty"`

	// FiredAt is the Unix timestamp in milliseconds when the event fired
	FiredAt int64 `json:"fired_at"`
}

// NewEvent creates an event of the given type, stamped with the current time.
// entityID may be empty for events that are not entity-scoped.
func NewEvent(t Type, entityID string) Event {
	return Event{
		Type:     t,
		EntityID: entityID,
		FiredAt:  time.Now().UnixMilli(),
	}
}

// IsValid checks if the event has all required fields populated correctly.
// Returns an error describing any validation failures.
func (e *Event) IsValid() error {
	if e.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if !e.Type.IsValid() {
		return fmt.Errorf("unknown event type: %s", e.Type)
	}
	if e.FiredAt <= 0 {
		return fmt.Errorf("fired_at must be positive, got %d", e.FiredAt)
	}
	return nil
}

// Age returns the duration since this event fired.
func (e *Event) Age() time.Duration {
	if e.FiredAt <= 0 {
		return 0
	}
	now := time.Now().UnixMilli()
	return time.Duration(now-e.FiredAt) * time.Millisecond
}

// InspectJob is a request for inspection work, queued for a worker to pick up.
type InspectJob struct {
	// ID is a UUID that correlates this job across logs and traces
	ID string `json:"id"`

	// Repair is the name of the repair to run. Empty runs every
	// registered repair.
	Repair string `json:"repair,omitempty"`

	// Reason is the event type that triggered the job, if any
	Reason Type `json:"reason,omitempty"`

	// EnqueuedAt is the Unix timestamp in milliseconds when the job was queued
	EnqueuedAt int64 `json:"enqueued_at"`
}

// NewInspectJob creates an inspection job for the named repair. An empty
// repair name requests a run of every registered repair.
func NewInspectJob(repair string, reason Type) InspectJob {
	return InspectJob{
		ID:         uuid.New().String(),
		Repair:     repair,
		Reason:     reason,
		EnqueuedAt: time.Now().UnixMilli(),
	}
}

// IsValid checks if the job has all required fields populated correctly.
func (j *InspectJob) IsValid() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if j.Reason != "" && !j.Reason.IsValid() {
		return fmt.Errorf("unknown reason event type: %s", j.Reason)
	}
	if j.EnqueuedAt <= 0 {
		return fmt.Errorf("enqueued_at must be positive, got %d", j.EnqueuedAt)
	}
	return nil
}

// Age returns the duration since this job was queued.
// Useful for detecting stale jobs and computing queue wait time.
func (j *InspectJob) Age() time.Duration {
	if j.EnqueuedAt <= 0 {
		return 0
	}
	now := time.Now().UnixMilli()
	return time.Duration(now-j.EnqueuedAt) * time.Millisecond
}
