package repair

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hearthwatch/sdk/entity"
	"github.com/hearthwatch/sdk/events"
)

// Status describes the inspection history of a registered repair.
type Status struct {
	// Repair is the repair's name.
	Repair string `json:"repair"`

	// Runs counts completed inspections, successful or not.
	Runs int `json:"runs"`

	// LastRun is when the most recent inspection finished.
	LastRun time.Time `json:"last_run"`

	// LastError holds the most recent inspection error, empty when the
	// last inspection succeeded.
	LastError string `json:"last_error,omitempty"`
}

// ManagerConfig holds configuration for building a repair manager.
// Nil fields fall back to in-memory defaults.
type ManagerConfig struct {
	// Bus delivers the change events that schedule inspections.
	Bus events.Bus

	// Env is the environment handed to every inspection.
	Env *Environment

	// Debounce is the trailing-edge delay between an event and the
	// inspection it schedules. Zero uses DefaultDebounce.
	Debounce time.Duration

	// Logger records manager activity. Defaults to the environment's
	// logger.
	Logger *slog.Logger
}

// managed pairs a repair with its scheduling state.
type managed struct {
	repair    Repair
	debouncer *Debouncer

	// runMu serializes inspections of this repair
	runMu sync.Mutex

	mu     sync.Mutex
	status Status
}

// Manager owns a set of repairs and schedules their inspections. While
// active it subscribes to the event bus, debounces event bursts per
// repair, and bridges registry watch updates onto the bus. Inspections
// of a single repair never overlap; distinct repairs run independently.
type Manager struct {
	bus      events.Bus
	env      *Environment
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	repairs map[string]*managed
	active  bool
	runCtx  context.Context
	cancel  context.CancelFunc

	wg sync.WaitGroup
}

// NewManager creates a manager, filling absent collaborators with
// in-memory defaults.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		bus:      cfg.Bus,
		env:      cfg.Env,
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		repairs:  make(map[string]*managed),
	}

	if m.env == nil {
		m.env = NewEnvironment(EnvironmentConfig{})
	}
	if m.bus == nil {
		m.bus = events.NewMemoryBus()
	}
	if m.debounce <= 0 {
		m.debounce = DefaultDebounce
	}
	if m.logger == nil {
		m.logger = m.env.Logger()
	}

	return m
}

// Environment returns the environment handed to inspections.
func (m *Manager) Environment() *Environment {
	return m.env
}

// Register adds a repair to the manager and initializes it when it
// implements Initializer. Registration is rejected while the manager is
// active.
func (m *Manager) Register(ctx context.Context, r Repair) error {
	if r == nil {
		return fmt.Errorf("repair is required")
	}
	name := r.Name()
	if name == "" {
		return fmt.Errorf("repair name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return fmt.Errorf("cannot register repairs while the manager is active")
	}
	if _, exists := m.repairs[name]; exists {
		return fmt.Errorf("repair already registered: %s", name)
	}

	if init, ok := r.(Initializer); ok {
		if err := init.Initialize(ctx, nil); err != nil {
			return fmt.Errorf("failed to initialize repair %s: %w", name, err)
		}
	}

	entry := &managed{
		repair: r,
		status: Status{Repair: name},
	}
	entry.debouncer = NewDebouncer(m.debounce, m.inspectLater(name))
	m.repairs[name] = entry

	return nil
}

// Unregister removes a repair and shuts it down when it implements
// Shutdowner. Removal is rejected while the manager is active.
func (m *Manager) Unregister(ctx context.Context, name string) error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return fmt.Errorf("cannot unregister repairs while the manager is active")
	}
	entry, ok := m.repairs[name]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown repair: %s", name)
	}
	delete(m.repairs, name)
	m.mu.Unlock()

	entry.debouncer.Stop()

	if sd, ok := entry.repair.(Shutdowner); ok {
		if err := sd.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down repair %s: %w", name, err)
		}
	}
	return nil
}

// Repairs returns the names of all registered repairs, sorted.
func (m *Manager) Repairs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.repairs))
	for name := range m.repairs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inspect runs a single repair's inspection immediately, bypassing the
// debouncer. Inspections of the same repair are serialized.
func (m *Manager) Inspect(ctx context.Context, name string) error {
	m.mu.Lock()
	entry, ok := m.repairs[name]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown repair: %s", name)
	}
	return m.run(ctx, entry)
}

// InspectAll runs every registered repair's inspection in name order.
// A failed inspection does not stop the rest; the first error is
// reported along with the failure count.
func (m *Manager) InspectAll(ctx context.Context) error {
	entries := m.snapshot()

	var failures int
	var firstErr error
	for _, entry := range entries {
		if err := m.run(ctx, entry); err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
			m.logger.Warn("inspection failed", "repair", entry.repair.Name(), "error", err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d inspections failed: %w", failures, len(entries), firstErr)
	}
	return nil
}

// Status returns the inspection history of a repair.
func (m *Manager) Status(name string) (Status, bool) {
	m.mu.Lock()
	entry, ok := m.repairs[name]
	m.mu.Unlock()

	if !ok {
		return Status{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.status, true
}

// Statuses returns the inspection history of every repair, sorted by
// name.
func (m *Manager) Statuses() []Status {
	entries := m.snapshot()

	statuses := make([]Status, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		statuses = append(statuses, entry.status)
		entry.mu.Unlock()
	}
	return statuses
}

// Activate subscribes to the event bus and starts scheduling
// inspections. A baseline pass over every repair runs first so issues
// reflect the current state; events arriving during that pass are
// queued, not lost. Activate fails if the manager is already active.
func (m *Manager) Activate(ctx context.Context) error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return fmt.Errorf("manager is already active")
	}

	// Background-derived so subscriptions outlive the Activate call.
	runCtx, cancel := context.WithCancel(context.Background())
	m.runCtx = runCtx
	m.cancel = cancel
	m.active = true

	types := subscriptionTypes(m.repairs)
	repairCount := len(m.repairs)
	m.mu.Unlock()

	ch, err := m.bus.Subscribe(runCtx, types...)
	if err != nil {
		m.mu.Lock()
		m.active = false
		m.runCtx = nil
		m.cancel = nil
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	// Registry snapshot the watch bridge compares against, taken before
	// the baseline pass so changes racing activation are never lost.
	baseline, err := m.env.Registry().EntityIDs(ctx)
	if err != nil {
		m.logger.Warn("failed to snapshot registry", "error", err)
		baseline = nil
	}

	if err := m.InspectAll(ctx); err != nil {
		m.logger.Warn("baseline inspection failed", "error", err)
	}

	m.wg.Add(1)
	go m.eventLoop(ch)

	m.wg.Add(1)
	go m.watchRegistry(runCtx, baseline)

	m.logger.Info("repair manager active", "repairs", repairCount, "events", len(types))
	return nil
}

// Flush runs every pending debounced inspection immediately. Intended
// for tests and shutdown paths that cannot wait out the debounce delay.
func (m *Manager) Flush() {
	for _, entry := range m.snapshot() {
		entry.debouncer.Flush()
	}
}

// Deactivate cancels the subscriptions, stops the debouncers, and waits
// for in-flight inspections to finish. The context bounds the wait.
// Deactivating an inactive manager is a no-op.
func (m *Manager) Deactivate(ctx context.Context) error {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return nil
	}
	m.active = false
	cancel := m.cancel
	m.runCtx = nil
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	for _, entry := range m.snapshot() {
		entry.debouncer.Stop()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("repair manager stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Close deactivates the manager and shuts down every repair that
// implements Shutdowner.
func (m *Manager) Close() error {
	if err := m.Deactivate(context.Background()); err != nil {
		return err
	}

	var failures int
	for _, entry := range m.snapshot() {
		sd, ok := entry.repair.(Shutdowner)
		if !ok {
			continue
		}
		if err := sd.Shutdown(context.Background()); err != nil {
			failures++
			m.logger.Warn("repair shutdown failed", "repair", entry.repair.Name(), "error", err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d repair(s) failed to shut down", failures)
	}
	return nil
}

// run executes one inspection under the repair's run lock and records
// the outcome.
func (m *Manager) run(ctx context.Context, entry *managed) error {
	entry.runMu.Lock()
	defer entry.runMu.Unlock()

	err := entry.repair.Inspect(ctx, m.env)

	entry.mu.Lock()
	entry.status.Runs++
	entry.status.LastRun = time.Now()
	if err != nil {
		entry.status.LastError = err.Error()
	} else {
		entry.status.LastError = ""
	}
	entry.mu.Unlock()

	return err
}

// snapshot returns the managed entries sorted by repair name.
func (m *Manager) snapshot() []*managed {
	m.mu.Lock()
	entries := make([]*managed, 0, len(m.repairs))
	for _, entry := range m.repairs {
		entries = append(entries, entry)
	}
	m.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].repair.Name() < entries[j].repair.Name()
	})
	return entries
}

// inspectLater builds the debounce callback for a repair. The callback
// checks activity and reserves a waitgroup slot under the manager lock,
// so Deactivate never races a late-firing timer.
func (m *Manager) inspectLater(name string) func() {
	return func() {
		m.mu.Lock()
		if !m.active {
			m.mu.Unlock()
			return
		}
		entry, ok := m.repairs[name]
		if !ok {
			m.mu.Unlock()
			return
		}
		ctx := m.runCtx
		m.wg.Add(1)
		m.mu.Unlock()

		defer m.wg.Done()

		if err := m.run(ctx, entry); err != nil {
			m.logger.Warn("inspection failed", "repair", name, "error", err)
		}
	}
}

// eventLoop triggers the debouncers of repairs subscribed to each
// arriving event. It exits when the subscription channel closes.
func (m *Manager) eventLoop(ch <-chan events.Event) {
	defer m.wg.Done()

	for ev := range ch {
		m.mu.Lock()
		for _, entry := range m.repairs {
			if wants(entry.repair, ev.Type) {
				entry.debouncer.Trigger()
			}
		}
		m.mu.Unlock()
	}
}

// watchRegistry bridges registry watch updates onto the event bus as
// entity_registry_updated events. Snapshots are compared against the
// last seen ID list, so the watch's immediate initial delivery only
// publishes when the catalog actually moved past the baseline.
func (m *Manager) watchRegistry(ctx context.Context, last []entity.ID) {
	defer m.wg.Done()

	ch, err := m.env.Registry().Watch(ctx)
	if err != nil {
		m.logger.Warn("registry watch unavailable", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ids, ok := <-ch:
			if !ok {
				return
			}
			if sameIDs(ids, last) {
				continue
			}
			last = ids

			ev := events.NewEvent(events.TypeEntityRegistryUpdated, "")
			if err := m.bus.Publish(ctx, ev); err != nil {
				m.logger.Warn("failed to publish registry update", "error", err)
			}
		}
	}
}

// sameIDs reports whether two sorted ID lists are identical.
func sameIDs(a, b []entity.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// subscriptionTypes returns the union of the registered repairs' event
// subscriptions. Any repair subscribed to everything widens the union
// to the full catalog, as does an empty repair set.
func subscriptionTypes(repairs map[string]*managed) []events.Type {
	seen := make(map[events.Type]struct{})
	var types []events.Type

	for _, entry := range repairs {
		evs := entry.repair.Events()
		if len(evs) == 0 {
			return events.AllTypes()
		}
		for _, t := range evs {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			types = append(types, t)
		}
	}

	if len(types) == 0 {
		return events.AllTypes()
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// wants reports whether a repair subscribes to an event type. An empty
// subscription list means every type.
func wants(r Repair, t events.Type) bool {
	evs := r.Events()
	if len(evs) == 0 {
		return true
	}
	for _, e := range evs {
		if e == t {
			return true
		}
	}
	return false
}
