package issue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hearthwatch/sdk/entity"
)

// Placeholder keys used by dashboard inspection issues. The frontend
// substitutes them into the issue's translated description.
const (
	// PlaceholderEntities holds a markdown list of the offending entity ids.
	PlaceholderEntities = "entities"

	// PlaceholderDashboard holds the dashboard's display title.
	PlaceholderDashboard = "dashboard"

	// PlaceholderEdit holds the frontend URL for editing the dashboard.
	PlaceholderEdit = "edit"
)

// Issue represents a repairable diagnostic issue raised by a repair.
type Issue struct {
	// ID is a unique identifier for this record.
	ID string `json:"id"`

	// Repair names the repair that raised the issue.
	Repair string `json:"repair"`

	// IssueID is the stable identity of the issue within its repair.
	// Dashboard inspections use the dashboard's URL path, so re-raising
	// updates the existing record instead of stacking duplicates.
	IssueID string `json:"issue_id"`

	// Severity indicates how urgent the issue is.
	Severity Severity `json:"severity"`

	// Fixable indicates a guided repair flow exists for this issue.
	Fixable bool `json:"fixable"`

	// Placeholders are substituted into the issue's translated description.
	Placeholders map[string]string `json:"placeholders,omitempty"`

	// CreatedAt is the timestamp when the issue was first raised.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the issue was last re-raised.
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an Issue with required fields and auto-generated values.
func New(repair, issueID string, severity Severity) *Issue {
	now := time.Now()
	return &Issue{
		ID:        uuid.New().String(),
		Repair:    repair,
		IssueID:   issueID,
		Severity:  severity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetPlaceholder records a translation placeholder and updates the timestamp.
func (i *Issue) SetPlaceholder(key, value string) {
	if i.Placeholders == nil {
		i.Placeholders = make(map[string]string)
	}
	i.Placeholders[key] = value
	i.UpdatedAt = time.Now()
}

// Validate checks if the issue has all required fields and valid values.
func (i *Issue) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("issue record ID is required")
	}
	if i.Repair == "" {
		return fmt.Errorf("repair name is required")
	}
	if i.IssueID == "" {
		return fmt.Errorf("issue ID is required")
	}
	if !i.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", i.Severity)
	}
	if i.CreatedAt.IsZero() {
		return fmt.Errorf("created_at timestamp is required")
	}
	if i.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at timestamp is required")
	}
	return nil
}

// EntityListMarkdown renders entity identifiers as a markdown bullet list,
// one backtick-quoted id per line, sorted so the issue text is stable across
// re-inspections.
func EntityListMarkdown(ids entity.Set) string {
	var b strings.Builder
	for i, id := range ids.Sorted() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- `")
		b.WriteString(string(id))
		b.WriteString("`")
	}
	return b.String()
}
