package repair

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/hearthwatch/sdk/dashboard"
	"github.com/hearthwatch/sdk/entity"
	"github.com/hearthwatch/sdk/filter"
	"github.com/hearthwatch/sdk/issue"
	"github.com/hearthwatch/sdk/registry"
	"github.com/hearthwatch/sdk/states"
)

// cardDoc builds a single-view document whose cards reference the given
// entities.
func cardDoc(ids ...string) map[string]any {
	cards := make([]any, 0, len(ids))
	for _, id := range ids {
		cards = append(cards, map[string]any{"entity": id})
	}
	return map[string]any{
		"views": []any{
			map[string]any{"cards": cards},
		},
	}
}

func mustNewUnknown(t *testing.T, opts ...UnknownOption) *UnknownEntityReferences {
	t.Helper()
	r, err := NewUnknownEntityReferences(opts...)
	if err != nil {
		t.Fatalf("NewUnknownEntityReferences() error = %v", err)
	}
	return r
}

func TestUnknownEntityReferences_Properties(t *testing.T) {
	r := mustNewUnknown(t)

	if r.Name() != "unknown_entity_references" {
		t.Errorf("Name() = %s, want unknown_entity_references", r.Name())
	}
	if r.Description() == "" {
		t.Error("Description() should not be empty")
	}
	if r.Events() != nil {
		t.Errorf("Events() = %v, want nil", r.Events())
	}
}

func TestNewUnknownEntityReferences_Options(t *testing.T) {
	custom := dashboard.NewExtractor(dashboard.WithMaxDepth(2))
	r := mustNewUnknown(t, WithExtractor(custom))
	if r.extractor != custom {
		t.Error("WithExtractor() was not applied")
	}

	r = mustNewUnknown(t, WithMeter(noop.NewMeterProvider().Meter("test")))
	if r.metrics == nil {
		t.Error("WithMeter() should build metric instruments")
	}

	r = mustNewUnknown(t)
	if r.extractor == nil {
		t.Error("default extractor should be set")
	}
	if r.metrics != nil {
		t.Error("metrics should be nil without a meter")
	}
}

func TestInspect_RaisesIssue(t *testing.T) {
	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "holiday", Title: "Holiday Home"}, cardDoc("light.ghost"))
	env := NewEnvironment(EnvironmentConfig{Dashboards: src})

	r := mustNewUnknown(t)
	if err := r.Inspect(context.Background(), env); err != nil {
		t.Fatalf("Inspect() error = %v, want nil", err)
	}

	iss, err := env.Issues().Get(context.Background(), r.Name(), "holiday")
	if err != nil {
		t.Fatalf("Get() error = %v, want issue", err)
	}

	if iss.Repair != "unknown_entity_references" {
		t.Errorf("issue.Repair = %s, want unknown_entity_references", iss.Repair)
	}
	if iss.IssueID != "holiday" {
		t.Errorf("issue.IssueID = %s, want holiday", iss.IssueID)
	}
	if iss.Severity != issue.SeverityWarning {
		t.Errorf("issue.Severity = %s, want %s", iss.Severity, issue.SeverityWarning)
	}
	if !iss.Fixable {
		t.Error("issue.Fixable = false, want true")
	}
	if got := iss.Placeholders[issue.PlaceholderEntities]; got != "- `light.ghost`" {
		t.Errorf("entities placeholder = %q, want %q", got, "- `light.ghost`")
	}
	if got := iss.Placeholders[issue.PlaceholderDashboard]; got != "Holiday Home" {
		t.Errorf("dashboard placeholder = %q, want %q", got, "Holiday Home")
	}
	if got := iss.Placeholders[issue.PlaceholderEdit]; got != "/holiday/0?edit=1" {
		t.Errorf("edit placeholder = %q, want %q", got, "/holiday/0?edit=1")
	}
}

func TestInspect_KnownEntitiesNotFlagged(t *testing.T) {
	ctx := context.Background()

	reg := registry.NewMemoryRegistry()
	if err := reg.Register(ctx, registry.Entry{EntityID: "light.kitchen", Platform: "hue"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	st := states.NewMemoryClient()
	if err := st.Set(ctx, states.NewState("sensor.outdoor", "21.5")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "home"}, cardDoc("light.kitchen", "sensor.outdoor", "all", "none"))

	env := NewEnvironment(EnvironmentConfig{Registry: reg, States: st, Dashboards: src})

	r := mustNewUnknown(t)
	if err := r.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if _, err := env.Issues().Get(ctx, r.Name(), "home"); !errors.Is(err, issue.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestInspect_ClearsResolvedIssue(t *testing.T) {
	ctx := context.Background()

	reg := registry.NewMemoryRegistry()
	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "home"}, cardDoc("light.ghost"))
	env := NewEnvironment(EnvironmentConfig{Registry: reg, Dashboards: src})

	r := mustNewUnknown(t)
	if err := r.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if _, err := env.Issues().Get(ctx, r.Name(), "home"); err != nil {
		t.Fatalf("issue should exist after first inspection, got %v", err)
	}

	// The entity shows up in the registry, so the next inspection clears
	// the issue
	if err := reg.Register(ctx, registry.Entry{EntityID: "light.ghost", Platform: "hue"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if _, err := env.Issues().Get(ctx, r.Name(), "home"); !errors.Is(err, issue.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound after resolution", err)
	}
}

func TestInspect_UpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()

	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "home"}, cardDoc("light.ghost"))
	env := NewEnvironment(EnvironmentConfig{Dashboards: src})

	r := mustNewUnknown(t)
	if err := r.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	first, err := env.Issues().Get(ctx, r.Name(), "home")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// A second ghost appears; re-inspection updates the issue in place
	src.SetDocument("home", cardDoc("light.ghost", "switch.phantom"))
	if err := r.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	second, err := env.Issues().Get(ctx, r.Name(), "home")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("issue.ID changed from %s to %s, want stable", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("issue.CreatedAt changed from %v to %v, want stable", first.CreatedAt, second.CreatedAt)
	}
	want := "- `light.ghost`\n- `switch.phantom`"
	if got := second.Placeholders[issue.PlaceholderEntities]; got != want {
		t.Errorf("entities placeholder = %q, want %q", got, want)
	}
}

func TestInspect_ExemptDomainsNotFlagged(t *testing.T) {
	ctx := context.Background()

	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "home"}, cardDoc(
		"device_tracker.phone",
		"group.downstairs",
		"persistent_notification.update",
		"scene.movie_night",
	))
	env := NewEnvironment(EnvironmentConfig{Dashboards: src})

	r := mustNewUnknown(t)
	if err := r.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if _, err := env.Issues().Get(ctx, r.Name(), "home"); !errors.Is(err, issue.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound for exempt domains", err)
	}
}

func TestInspect_IgnoreRules(t *testing.T) {
	ctx := context.Background()

	ignore, err := filter.Compile([]string{`id.startsWith("sensor.debug_")`})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "home"}, cardDoc("sensor.debug_latency", "sensor.vanished"))
	env := NewEnvironment(EnvironmentConfig{Dashboards: src, Filters: ignore})

	r := mustNewUnknown(t)
	if err := r.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	iss, err := env.Issues().Get(ctx, r.Name(), "home")
	if err != nil {
		t.Fatalf("Get() error = %v, want issue", err)
	}
	if got := iss.Placeholders[issue.PlaceholderEntities]; got != "- `sensor.vanished`" {
		t.Errorf("entities placeholder = %q, want only the non-ignored id", got)
	}
}

func TestInspect_MissingConfigSkipped(t *testing.T) {
	ctx := context.Background()

	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "strategy", Mode: dashboard.ModeStorage}, nil)
	env := NewEnvironment(EnvironmentConfig{Dashboards: src})

	r := mustNewUnknown(t)
	if err := r.Inspect(ctx, env); err != nil {
		t.Errorf("Inspect() error = %v, want nil for missing config", err)
	}

	if _, err := env.Issues().Get(ctx, r.Name(), "strategy"); !errors.Is(err, issue.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestInspect_MaxDepth(t *testing.T) {
	ctx := context.Background()

	// The reference sits three card levels deep
	doc := map[string]any{
		"views": []any{
			map[string]any{
				"cards": []any{
					map[string]any{
						"cards": []any{
							map[string]any{
								"cards": []any{
									map[string]any{"entity": "light.deep"},
								},
							},
						},
					},
				},
			},
		},
	}

	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "home"}, doc)
	env := NewEnvironment(EnvironmentConfig{Dashboards: src})

	// Depth 1 never reaches the reference
	shallow := mustNewUnknown(t, WithMaxDepth(1))
	if err := shallow.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if _, err := env.Issues().Get(ctx, shallow.Name(), "home"); !errors.Is(err, issue.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound with shallow extraction", err)
	}

	// The default budget does
	deep := mustNewUnknown(t)
	if err := deep.Inspect(ctx, env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	iss, err := env.Issues().Get(ctx, deep.Name(), "home")
	if err != nil {
		t.Fatalf("Get() error = %v, want issue", err)
	}
	if got := iss.Placeholders[issue.PlaceholderEntities]; got != "- `light.deep`" {
		t.Errorf("entities placeholder = %q, want %q", got, "- `light.deep`")
	}
}

func TestInspect_NilEnvironment(t *testing.T) {
	r := mustNewUnknown(t)
	if err := r.Inspect(context.Background(), nil); err == nil {
		t.Error("Inspect(nil env) error = nil, want error")
	}
}

func TestInspect_RegistryError(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	reg.Close()
	env := NewEnvironment(EnvironmentConfig{Registry: reg})

	r := mustNewUnknown(t)
	err := r.Inspect(context.Background(), env)
	if err == nil {
		t.Fatal("Inspect() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to list registry entities") {
		t.Errorf("Inspect() error = %v, want registry listing failure", err)
	}
}

// failingStates wraps a live client and fails the listing call.
type failingStates struct {
	states.Client
}

func (f failingStates) EntityIDs(ctx context.Context) ([]entity.ID, error) {
	return nil, errors.New("connection refused")
}

func TestInspect_StatesError(t *testing.T) {
	env := NewEnvironment(EnvironmentConfig{
		States: failingStates{states.NewMemoryClient()},
	})

	r := mustNewUnknown(t)
	err := r.Inspect(context.Background(), env)
	if err == nil {
		t.Fatal("Inspect() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to list state entities") {
		t.Errorf("Inspect() error = %v, want state listing failure", err)
	}
}

// flakySource serves one dashboard normally and fails to load the other.
type flakySource struct {
	good dashboard.Dashboard
	bad  dashboard.Dashboard
	doc  map[string]any
}

func (s flakySource) List(ctx context.Context) ([]dashboard.Dashboard, error) {
	return []dashboard.Dashboard{s.bad, s.good}, nil
}

func (s flakySource) Load(ctx context.Context, urlPath string) (map[string]any, error) {
	if urlPath == s.bad.URLPath {
		return nil, errors.New("storage timeout")
	}
	return s.doc, nil
}

func TestInspect_LoadFailureKeepsIssue(t *testing.T) {
	ctx := context.Background()

	src := flakySource{
		good: dashboard.Dashboard{URLPath: "good"},
		bad:  dashboard.Dashboard{URLPath: "bad"},
		doc:  cardDoc("light.ghost"),
	}
	env := NewEnvironment(EnvironmentConfig{Dashboards: src})

	r := mustNewUnknown(t)

	// Seed an existing issue for the dashboard that will fail to load
	stale := issue.New(r.Name(), "bad", issue.SeverityWarning)
	if err := env.Issues().Create(ctx, stale); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := r.Inspect(ctx, env)
	if err == nil {
		t.Fatal("Inspect() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "1 of 2 dashboards failed inspection") {
		t.Errorf("Inspect() error = %v, want failure count", err)
	}

	// The healthy dashboard was still inspected
	if _, err := env.Issues().Get(ctx, r.Name(), "good"); err != nil {
		t.Errorf("Get(good) error = %v, want issue", err)
	}

	// The unloadable dashboard keeps its existing issue
	if _, err := env.Issues().Get(ctx, r.Name(), "bad"); err != nil {
		t.Errorf("Get(bad) error = %v, want existing issue kept", err)
	}
}

func TestInspect_EmptySource(t *testing.T) {
	env := NewEnvironment(EnvironmentConfig{})

	r := mustNewUnknown(t)
	if err := r.Inspect(context.Background(), env); err != nil {
		t.Errorf("Inspect() error = %v, want nil for empty source", err)
	}
}

func TestInspect_WithMetrics(t *testing.T) {
	src := dashboard.NewMemorySource()
	src.Add(dashboard.Dashboard{URLPath: "home"}, cardDoc("light.ghost"))
	env := NewEnvironment(EnvironmentConfig{Dashboards: src})

	// Recording against noop instruments must not panic
	r := mustNewUnknown(t, WithMeter(noop.NewMeterProvider().Meter("test")))
	if err := r.Inspect(context.Background(), env); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
}

func TestDashboardTitle(t *testing.T) {
	tests := []struct {
		name string
		d    dashboard.Dashboard
		doc  map[string]any
		want string
	}{
		{
			name: "document title wins",
			d:    dashboard.Dashboard{URLPath: "home", Title: "Stored"},
			doc:  map[string]any{"title": "Living Room"},
			want: "Living Room",
		},
		{
			name: "stored title",
			d:    dashboard.Dashboard{URLPath: "home", Title: "Stored"},
			doc:  map[string]any{},
			want: "Stored",
		},
		{
			name: "default dashboard stock title",
			d:    dashboard.Dashboard{URLPath: ""},
			doc:  map[string]any{},
			want: dashboard.DefaultTitle,
		},
		{
			name: "url path fallback",
			d:    dashboard.Dashboard{URLPath: "garage"},
			doc:  map[string]any{},
			want: "garage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dashboardTitle(tt.d, tt.doc); got != tt.want {
				t.Errorf("dashboardTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
