package dashboard

import "fmt"

// DefaultURLPath identifies the platform's default dashboard, which has no
// URL path of its own.
const DefaultURLPath = "lovelace"

// DefaultTitle is the display title of the default dashboard when neither
// the descriptor nor the document carries one.
const DefaultTitle = "Overview"

// Mode describes how a dashboard's document is managed.
type Mode string

const (
	// ModeStorage marks a dashboard edited through the UI and persisted by
	// the platform.
	ModeStorage Mode = "storage"

	// ModeYAML marks a dashboard backed by a user-maintained YAML file.
	ModeYAML Mode = "yaml"
)

// Dashboard describes one dashboard known to a Source. The document itself
// is loaded separately via Source.Load.
type Dashboard struct {
	// URLPath is the dashboard's path segment and its stable identity.
	// Empty means the default dashboard; use NormalizeURLPath.
	URLPath string `json:"url_path" yaml:"url_path"`

	// Title is the display title, when the source knows it. The document's
	// own top-level "title" takes precedence during inspection.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Mode records how the document is managed.
	Mode Mode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// EditURL returns the frontend URL for editing the first view of the
// dashboard, used in issue placeholders.
func (d Dashboard) EditURL() string {
	return fmt.Sprintf("/%s/0?edit=1", NormalizeURLPath(d.URLPath))
}

// NormalizeURLPath maps an empty URL path to DefaultURLPath.
func NormalizeURLPath(urlPath string) string {
	if urlPath == "" {
		return DefaultURLPath
	}
	return urlPath
}
