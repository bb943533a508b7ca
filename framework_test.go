package sdk

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"

	"github.com/hearthwatch/sdk/dashboard"
	"github.com/hearthwatch/sdk/events"
	"github.com/hearthwatch/sdk/issue"
	"github.com/hearthwatch/sdk/repair"
)

// newTestLogger creates a logger for testing
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only log errors in tests
	}))
}

// newCountingRepair builds a repair whose inspect function increments count.
func newCountingRepair(t *testing.T, name string, count *atomic.Int32) repair.Repair {
	t.Helper()

	r, err := NewRepair(
		WithRepairName(name),
		WithRepairDescription("Counting test repair"),
		WithInspectFunc(func(ctx context.Context, env *repair.Environment) error {
			count.Add(1)
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("failed to create repair: %v", err)
	}
	return r
}

func TestFramework_Defaults(t *testing.T) {
	fw, err := New(WithLogger(newTestLogger()))
	if err != nil {
		t.Fatalf("failed to create framework: %v", err)
	}
	defer fw.Close()

	if fw.Repairs() == nil {
		t.Fatal("expected repair registry to be set")
	}

	env := fw.Environment()
	if env == nil {
		t.Fatal("expected environment to be set")
	}
	if env.Registry() == nil {
		t.Error("expected entity registry to be wired")
	}
	if env.States() == nil {
		t.Error("expected state client to be wired")
	}
	if env.Dashboards() == nil {
		t.Error("expected dashboard source to be wired")
	}
	if env.Issues() == nil {
		t.Error("expected issue store to be wired")
	}
	if env.Filters() != nil {
		t.Error("expected no filters without ignore rules")
	}
}

func TestFramework_Lifecycle(t *testing.T) {
	t.Run("activate and deactivate", func(t *testing.T) {
		fw, err := New(WithLogger(newTestLogger()))
		if err != nil {
			t.Fatalf("failed to create framework: %v", err)
		}

		ctx := context.Background()

		// Activate framework
		err = fw.Activate(ctx)
		if err != nil {
			t.Fatalf("failed to activate framework: %v", err)
		}

		// Activating again should fail
		err = fw.Activate(ctx)
		if err == nil {
			t.Error("expected error when activating already active framework")
		}

		// Deactivate framework
		err = fw.Deactivate(ctx)
		if err != nil {
			t.Fatalf("failed to deactivate framework: %v", err)
		}

		// Deactivating again should not error
		err = fw.Deactivate(ctx)
		if err != nil {
			t.Errorf("unexpected error on second deactivate: %v", err)
		}

		// Close framework
		err = fw.Close()
		if err != nil {
			t.Fatalf("failed to close framework: %v", err)
		}

		// Closing again should not error
		err = fw.Close()
		if err != nil {
			t.Errorf("unexpected error on second close: %v", err)
		}

		// Activating a closed framework should fail
		err = fw.Activate(ctx)
		if err == nil {
			t.Error("expected error when activating closed framework")
		}
	})

	t.Run("close without activate", func(t *testing.T) {
		fw, err := New(WithLogger(newTestLogger()))
		if err != nil {
			t.Fatalf("failed to create framework: %v", err)
		}

		if err := fw.Close(); err != nil {
			t.Errorf("unexpected error closing inactive framework: %v", err)
		}
	})
}

func TestFramework_RepairRegistry(t *testing.T) {
	fw, err := New(WithLogger(newTestLogger()))
	if err != nil {
		t.Fatalf("failed to create framework: %v", err)
	}
	defer fw.Close()

	ctx := context.Background()
	reg := fw.Repairs()

	t.Run("register repair", func(t *testing.T) {
		var count atomic.Int32
		r := newCountingRepair(t, "dashboard_check", &count)

		if err := reg.Register(ctx, r); err != nil {
			t.Fatalf("failed to register repair: %v", err)
		}

		names := reg.Repairs()
		if len(names) != 1 || names[0] != "dashboard_check" {
			t.Errorf("Repairs() = %v, want [dashboard_check]", names)
		}
	})

	t.Run("register duplicate repair", func(t *testing.T) {
		var count atomic.Int32
		r := newCountingRepair(t, "dashboard_check", &count)

		if err := reg.Register(ctx, r); err == nil {
			t.Error("expected error when registering duplicate repair")
		}
	})

	t.Run("inspect repair", func(t *testing.T) {
		var count atomic.Int32
		r := newCountingRepair(t, "inspect_check", &count)

		if err := reg.Register(ctx, r); err != nil {
			t.Fatalf("failed to register repair: %v", err)
		}

		if err := reg.Inspect(ctx, "inspect_check"); err != nil {
			t.Fatalf("failed to inspect: %v", err)
		}
		if got := count.Load(); got != 1 {
			t.Errorf("inspect count = %d, want 1", got)
		}

		status, ok := reg.Status("inspect_check")
		if !ok {
			t.Fatal("expected status for inspect_check")
		}
		if status.Runs != 1 {
			t.Errorf("status.Runs = %d, want 1", status.Runs)
		}
		if status.LastError != "" {
			t.Errorf("status.LastError = %q, want empty", status.LastError)
		}
	})

	t.Run("inspect non-existent repair", func(t *testing.T) {
		if err := reg.Inspect(ctx, "missing_check"); err == nil {
			t.Error("expected error for non-existent repair")
		}
	})

	t.Run("inspect all", func(t *testing.T) {
		if err := reg.InspectAll(ctx); err != nil {
			t.Fatalf("failed to inspect all: %v", err)
		}

		statuses := reg.Statuses()
		if len(statuses) != 2 {
			t.Fatalf("expected 2 statuses, got %d", len(statuses))
		}
	})

	t.Run("unregister repair", func(t *testing.T) {
		if err := reg.Unregister(ctx, "inspect_check"); err != nil {
			t.Fatalf("failed to unregister repair: %v", err)
		}

		if _, ok := reg.Status("inspect_check"); ok {
			t.Error("expected no status after unregistering repair")
		}
	})
}

func TestFramework_Health(t *testing.T) {
	ctx := context.Background()

	t.Run("degraded with no dashboards", func(t *testing.T) {
		fw, err := New(WithLogger(newTestLogger()))
		if err != nil {
			t.Fatalf("failed to create framework: %v", err)
		}
		defer fw.Close()

		status := fw.Health(ctx)
		if !status.IsDegraded() {
			t.Errorf("Health() = %s, want degraded for empty source", status.Status)
		}
	})

	t.Run("healthy with dashboards", func(t *testing.T) {
		src := dashboard.NewMemorySource()
		src.Add(dashboard.Dashboard{URLPath: "energy", Title: "Energy"}, map[string]any{
			"views": []any{},
		})

		fw, err := New(WithLogger(newTestLogger()), WithSource(src))
		if err != nil {
			t.Fatalf("failed to create framework: %v", err)
		}
		defer fw.Close()

		status := fw.Health(ctx)
		if !status.IsHealthy() {
			t.Errorf("Health() = %s (%s), want healthy", status.Status, status.Message)
		}
	})

	t.Run("unhealthy after close", func(t *testing.T) {
		fw, err := New(WithLogger(newTestLogger()))
		if err != nil {
			t.Fatalf("failed to create framework: %v", err)
		}

		if err := fw.Close(); err != nil {
			t.Fatalf("failed to close framework: %v", err)
		}

		// The owned in-memory bus is closed with the framework
		status := fw.Health(ctx)
		if !status.IsUnhealthy() {
			t.Errorf("Health() = %s, want unhealthy after close", status.Status)
		}
	})
}

func TestFramework_InjectedCollaborators(t *testing.T) {
	ctx := context.Background()

	t.Run("injected bus survives close", func(t *testing.T) {
		bus := events.NewMemoryBus()
		defer bus.Close()

		fw, err := New(WithLogger(newTestLogger()), WithBus(bus))
		if err != nil {
			t.Fatalf("failed to create framework: %v", err)
		}

		if err := fw.Close(); err != nil {
			t.Fatalf("failed to close framework: %v", err)
		}

		// Injected collaborators are the caller's to close
		if err := bus.Ping(ctx); err != nil {
			t.Errorf("injected bus was closed by framework: %v", err)
		}
	})

	t.Run("injected store is wired into environment", func(t *testing.T) {
		store := issue.NewMemoryStore()

		fw, err := New(WithLogger(newTestLogger()), WithIssueStore(store))
		if err != nil {
			t.Fatalf("failed to create framework: %v", err)
		}
		defer fw.Close()

		if fw.Environment().Issues() != store {
			t.Error("expected injected issue store in environment")
		}
	})
}
