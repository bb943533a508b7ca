package repair

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/hearthwatch/sdk/dashboard"
	"github.com/hearthwatch/sdk/document"
	"github.com/hearthwatch/sdk/entity"
	"github.com/hearthwatch/sdk/events"
	"github.com/hearthwatch/sdk/issue"
)

// UnknownEntityReferencesName scopes the issues the repair raises.
const UnknownEntityReferencesName = "unknown_entity_references"

// UnknownEntityReferences inspects every dashboard for references to
// entities that exist neither in the registry nor in the live state
// table, and reconciles one issue per offending dashboard.
type UnknownEntityReferences struct {
	extractor *dashboard.Extractor
	maxDepth  int
	meter     metric.Meter
	metrics   *inspectionMetrics
}

// UnknownOption configures the repair during construction.
type UnknownOption func(*UnknownEntityReferences)

// WithMaxDepth limits how deep the extractor descends into nested
// dashboard configuration.
func WithMaxDepth(depth int) UnknownOption {
	return func(r *UnknownEntityReferences) {
		r.maxDepth = depth
	}
}

// WithExtractor replaces the default extractor. It takes precedence over
// WithMaxDepth.
func WithExtractor(e *dashboard.Extractor) UnknownOption {
	return func(r *UnknownEntityReferences) {
		r.extractor = e
	}
}

// WithMeter enables OpenTelemetry metrics for inspections.
func WithMeter(m metric.Meter) UnknownOption {
	return func(r *UnknownEntityReferences) {
		r.meter = m
	}
}

// NewUnknownEntityReferences creates the repair.
// Returns an error if the metric instruments cannot be created.
func NewUnknownEntityReferences(opts ...UnknownOption) (*UnknownEntityReferences, error) {
	r := &UnknownEntityReferences{}
	for _, opt := range opts {
		opt(r)
	}

	if r.extractor == nil {
		if r.maxDepth > 0 {
			r.extractor = dashboard.NewExtractor(dashboard.WithMaxDepth(r.maxDepth))
		} else {
			r.extractor = dashboard.NewExtractor()
		}
	}

	metrics, err := newInspectionMetrics(r.meter)
	if err != nil {
		return nil, fmt.Errorf("invalid repair metrics: %w", err)
	}
	r.metrics = metrics

	return r, nil
}

// Name returns the repair's unique identifier.
func (r *UnknownEntityReferences) Name() string {
	return UnknownEntityReferencesName
}

// Description returns a description of what the repair inspects.
func (r *UnknownEntityReferences) Description() string {
	return "Detects dashboard references to entities that no longer exist"
}

// Events returns nil so the repair runs on every catalog event. Any
// reload, registry change, or dashboard update can invalidate a
// reference.
func (r *UnknownEntityReferences) Events() []events.Type {
	return nil
}

// Inspect walks every dashboard, extracts its entity references, and
// reconciles issues: dashboards with unknown references get an issue
// keyed by their URL path, dashboards without get any existing issue
// cleared.
//
// Dashboards that fail to load keep their existing issue untouched; the
// inspection continues with the rest and reports the failures at the
// end.
func (r *UnknownEntityReferences) Inspect(ctx context.Context, env *Environment) error {
	if env == nil {
		return fmt.Errorf("environment is required")
	}

	start := time.Now()
	log := env.Logger().With("repair", r.Name())

	ctx, span := env.Tracer().Start(ctx, "repair.inspect")
	defer span.End()
	span.SetAttributes(attribute.String("repair", r.Name()))

	known := entity.NewSet(entity.MatchAll, entity.MatchNone)

	registered, err := env.Registry().EntityIDs(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to list registry entities: %w", err)
	}
	for _, id := range registered {
		known.Add(id)
	}

	live, err := env.States().EntityIDs(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to list state entities: %w", err)
	}
	for _, id := range live {
		known.Add(id)
	}

	dashboards, err := env.Dashboards().List(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to list dashboards: %w", err)
	}

	var created, deleted, unknownTotal, failures int

	for _, d := range dashboards {
		urlPath := dashboard.NormalizeURLPath(d.URLPath)

		doc, err := env.Dashboards().Load(ctx, d.URLPath)
		if errors.Is(err, dashboard.ErrConfigNotFound) {
			log.Debug("dashboard has no configuration, skipping", "dashboard", urlPath)
			continue
		}
		if err != nil {
			log.Warn("failed to load dashboard configuration", "dashboard", urlPath, "error", err)
			failures++
			continue
		}

		refs := r.extractor.Extract(doc)
		unknown := entity.NewSet()
		for _, id := range refs.Sorted() {
			if known.Has(id) || env.Ignored(id) {
				continue
			}
			unknown.Add(id)
		}

		r.metrics.recordUnknown(ctx, r.Name(), urlPath, unknown.Len())
		unknownTotal += unknown.Len()

		if unknown.Len() == 0 {
			removed, err := env.Issues().Delete(ctx, r.Name(), urlPath)
			if err != nil {
				log.Warn("failed to clear dashboard issue", "dashboard", urlPath, "error", err)
				failures++
				continue
			}
			if removed {
				deleted++
				log.Debug("cleared dashboard issue", "dashboard", urlPath)
			}
			continue
		}

		iss := issue.New(r.Name(), urlPath, issue.SeverityWarning)
		iss.Fixable = true
		iss.SetPlaceholder(issue.PlaceholderEntities, issue.EntityListMarkdown(unknown))
		iss.SetPlaceholder(issue.PlaceholderDashboard, dashboardTitle(d, doc))
		iss.SetPlaceholder(issue.PlaceholderEdit, d.EditURL())

		if err := env.Issues().Create(ctx, iss); err != nil {
			log.Warn("failed to raise dashboard issue", "dashboard", urlPath, "error", err)
			failures++
			continue
		}
		created++
		log.Debug("raised dashboard issue", "dashboard", urlPath, "unknown", unknown.Len())
	}

	r.metrics.recordInspection(ctx, r.Name(), time.Since(start), created, deleted)

	span.SetAttributes(
		attribute.Int("dashboards", len(dashboards)),
		attribute.Int("unknown", unknownTotal),
		attribute.Int("issues.created", created),
		attribute.Int("issues.deleted", deleted),
	)

	if failures > 0 {
		err := fmt.Errorf("%d of %d dashboards failed inspection", failures, len(dashboards))
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("inspected %d dashboards", len(dashboards)))
	return nil
}

// dashboardTitle picks the display title for issue placeholders. The
// document's own title wins, then the stored title, then the default
// dashboard's stock title, then the URL path.
func dashboardTitle(d dashboard.Dashboard, doc map[string]any) string {
	if title := document.GetString(doc, "title", ""); title != "" {
		return title
	}
	if d.Title != "" {
		return d.Title
	}
	urlPath := dashboard.NormalizeURLPath(d.URLPath)
	if urlPath == dashboard.DefaultURLPath {
		return dashboard.DefaultTitle
	}
	return urlPath
}
