package dashboard

import (
	"github.com/hearthwatch/sdk/document"
	"github.com/hearthwatch/sdk/entity"
)

// DefaultMaxDepth is the recursion budget for nested cards, elements and
// chips. Valid documents nest a handful of levels; the cap only exists so a
// pathological or cyclic document terminates instead of recursing forever.
const DefaultMaxDepth = 64

// actionKeys are the slots that may carry an action descriptor on cards,
// elements, headers and footers.
var actionKeys = []string{"tap_action", "hold_action", "double_tap_action", "subtitle_tap_action"}

// commonKeys are the fields checked by the shared common-field extraction.
var commonKeys = []string{"camera_image", "entity", "entities", "entity_id"}

// Extractor discovers entity references in dashboard documents. It carries
// only immutable configuration, so a single Extractor is safe for concurrent
// use across inspections.
type Extractor struct {
	maxDepth int
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMaxDepth overrides the recursion budget for nested cards, elements and
// chips. Subtrees beyond the budget are ignored, never an error. Values less
// than one are ignored.
func WithMaxDepth(depth int) ExtractorOption {
	return func(e *Extractor) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// NewExtractor returns an Extractor. The zero-option default matches the
// platform's dashboard schema including known third-party widget dialects.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract returns the set of entity identifiers referenced anywhere in the
// document, using the default Extractor.
func Extract(doc map[string]any) entity.Set {
	return defaultExtractor.Extract(doc)
}

// Extract returns the set of entity identifiers referenced anywhere in the
// document. The document is expected to hold a "views" list; views carry
// badges and cards, and cards fan out into the full widget matrix. Missing
// or malformed pieces contribute nothing.
func (e *Extractor) Extract(doc map[string]any) entity.Set {
	entities := entity.NewSet()
	for _, item := range document.GetList(doc, "views") {
		view, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, badge := range document.GetList(view, "badges") {
			entities.Merge(e.badge(badge))
		}
		for _, item := range document.GetList(view, "cards") {
			if card, ok := item.(map[string]any); ok {
				entities.Merge(e.card(card, 0))
			}
		}
	}
	return entities
}

// common handles the fields shared by every node kind that can carry direct
// entity references. Each recognized key may hold a single id, a list of ids,
// a list of objects with an "entity" field, or an object with an "entity"
// field; all shapes land in the same set.
func (e *Extractor) common(node any) entity.Set {
	entities := entity.NewSet()

	config, ok := node.(map[string]any)
	if !ok {
		return entities
	}

	for _, key := range commonKeys {
		switch value := config[key].(type) {
		case string:
			if value != "" {
				entities.Add(entity.ID(value))
			}
		case []any:
			for _, item := range value {
				switch item := item.(type) {
				case string:
					entities.Add(entity.ID(item))
				case map[string]any:
					if id, ok := item["entity"].(string); ok {
						entities.Add(entity.ID(id))
					}
				}
			}
		case map[string]any:
			if id, ok := value["entity"].(string); ok {
				entities.Add(entity.ID(id))
			}
		}
	}
	return entities
}

// badge handles a view badge. Badges support a shorthand form where the whole
// badge is a bare entity id string. An "entity" key wins over "entities";
// "entities" elements are taken as plain strings with no object fallback,
// which is how the platform treats badges even though cards are more lenient.
func (e *Extractor) badge(node any) entity.Set {
	if id, ok := node.(string); ok {
		return entity.NewSet(entity.ID(id))
	}

	config, ok := node.(map[string]any)
	if !ok {
		return entity.NewSet()
	}

	if value, ok := config["entity"]; ok {
		entities := entity.NewSet()
		if id, ok := value.(string); ok {
			entities.Add(entity.ID(id))
		}
		return entities
	}

	if value, ok := config["entities"]; ok {
		entities := entity.NewSet()
		for _, id := range document.Strings(value) {
			entities.Add(entity.ID(id))
		}
		return entities
	}

	return entity.NewSet()
}

// card handles a view card and recurses into every nested structure a card
// can carry: a wrapped single card, a cards list, headers and footers,
// picture elements and chip lists.
func (e *Extractor) card(config map[string]any, depth int) entity.Set {
	entities := entity.NewSet()
	if depth > e.maxDepth {
		return entities
	}

	entities.Merge(e.common(config))
	entities.Merge(e.actions(config))

	if condition := document.GetMap(config, "condition"); condition != nil {
		entities.Merge(e.condition(condition))
	}

	if card := document.GetMap(config, "card"); card != nil {
		entities.Merge(e.card(card, depth+1))
	}

	for _, item := range document.GetList(config, "cards") {
		if card, ok := item.(map[string]any); ok {
			entities.Merge(e.card(card, depth+1))
		}
	}

	for _, key := range []string{"header", "footer"} {
		if section := document.GetMap(config, key); section != nil {
			entities.Merge(e.headerFooter(section))
		}
	}

	for _, item := range document.GetList(config, "elements") {
		entities.Merge(e.element(item, depth+1))
	}

	// Mushroom chips.
	for _, item := range document.GetList(config, "chips") {
		entities.Merge(e.mushroomChip(item, depth+1))
	}

	return entities
}

// actions checks the four action slots and extracts each one present.
func (e *Extractor) actions(config map[string]any) entity.Set {
	entities := entity.NewSet()
	for _, key := range actionKeys {
		if action := document.GetMap(config, key); action != nil {
			entities.Merge(e.action(action))
		}
	}
	return entities
}

// action reads service-call target addressing from an action descriptor:
// "service_data" and "target" each may carry an "entity_id" that is either a
// single id or a collection of ids.
func (e *Extractor) action(config map[string]any) entity.Set {
	entities := entity.NewSet()
	for _, key := range []string{"service_data", "target"} {
		data := document.GetMap(config, key)
		if data == nil {
			continue
		}
		switch value := data["entity_id"].(type) {
		case string:
			if value != "" {
				entities.Add(entity.ID(value))
			}
		default:
			for _, id := range document.Strings(value) {
				entities.Add(entity.ID(id))
			}
		}
	}
	return entities
}

// condition handles a visibility condition. Conditions reference exactly zero
// or one entity, never a list.
func (e *Extractor) condition(config map[string]any) entity.Set {
	entities := entity.NewSet()
	if id, ok := config["entity"].(string); ok {
		entities.Add(entity.ID(id))
	}
	return entities
}

// element handles a picture element. Elements can themselves be click
// targets, distinct from their action sub-fields, so the element is also run
// through action extraction directly. Element groups nest via "elements".
func (e *Extractor) element(node any, depth int) entity.Set {
	entities := entity.NewSet()
	if depth > e.maxDepth {
		return entities
	}

	config, ok := node.(map[string]any)
	if !ok {
		return entities
	}

	entities.Merge(e.common(config))
	entities.Merge(e.actions(config))
	entities.Merge(e.action(config))

	for _, item := range document.GetList(config, "conditions") {
		if condition, ok := item.(map[string]any); ok {
			entities.Merge(e.condition(condition))
		}
	}

	for _, item := range document.GetList(config, "elements") {
		entities.Merge(e.element(item, depth+1))
	}

	return entities
}

// headerFooter handles card headers and footers: common fields plus actions,
// no recursion.
func (e *Extractor) headerFooter(config map[string]any) entity.Set {
	entities := e.common(config)
	entities.Merge(e.actions(config))
	return entities
}

// mushroomChip handles the Mushroom chip dialect. Chips carry common fields,
// may wrap another chip under "chip", and may reference entities through
// display conditions. Chips have no action slots in this model.
func (e *Extractor) mushroomChip(node any, depth int) entity.Set {
	entities := entity.NewSet()
	if depth > e.maxDepth {
		return entities
	}

	config, ok := node.(map[string]any)
	if !ok {
		return entities
	}

	entities.Merge(e.common(config))

	if chip, ok := config["chip"]; ok {
		entities.Merge(e.mushroomChip(chip, depth+1))
	}

	for _, item := range document.GetList(config, "conditions") {
		if condition, ok := item.(map[string]any); ok {
			entities.Merge(e.condition(condition))
		}
	}

	return entities
}
