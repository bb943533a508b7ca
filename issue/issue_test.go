package issue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthwatch/sdk/entity"
)

func TestNew(t *testing.T) {
	iss := New("dashboard_unknown_entity_references", "energy", SeverityWarning)

	assert.NotEmpty(t, iss.ID)
	assert.Equal(t, "dashboard_unknown_entity_references", iss.Repair)
	assert.Equal(t, "energy", iss.IssueID)
	assert.Equal(t, SeverityWarning, iss.Severity)
	assert.False(t, iss.Fixable)
	assert.False(t, iss.CreatedAt.IsZero())
	assert.Equal(t, iss.CreatedAt, iss.UpdatedAt)
	assert.NoError(t, iss.Validate())
}

func TestSetPlaceholder(t *testing.T) {
	iss := New("repair", "subject", SeverityWarning)

	iss.SetPlaceholder(PlaceholderDashboard, "Energy")
	iss.SetPlaceholder(PlaceholderEdit, "/energy/0?edit=1")

	assert.Equal(t, "Energy", iss.Placeholders[PlaceholderDashboard])
	assert.Equal(t, "/energy/0?edit=1", iss.Placeholders[PlaceholderEdit])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Issue)
		wantErr string
	}{
		{
			name:    "valid issue",
			mutate:  func(*Issue) {},
			wantErr: "",
		},
		{
			name:    "missing record id",
			mutate:  func(i *Issue) { i.ID = "" },
			wantErr: "record ID is required",
		},
		{
			name:    "missing repair",
			mutate:  func(i *Issue) { i.Repair = "" },
			wantErr: "repair name is required",
		},
		{
			name:    "missing issue id",
			mutate:  func(i *Issue) { i.IssueID = "" },
			wantErr: "issue ID is required",
		},
		{
			name:    "invalid severity",
			mutate:  func(i *Issue) { i.Severity = "panic" },
			wantErr: "invalid severity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iss := New("repair", "subject", SeverityWarning)
			tt.mutate(iss)

			err := iss.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEntityListMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		ids      entity.Set
		expected string
	}{
		{
			name:     "empty set",
			ids:      entity.NewSet(),
			expected: "",
		},
		{
			name:     "single id",
			ids:      entity.NewSet("light.kitchen"),
			expected: "- `light.kitchen`",
		},
		{
			name:     "sorted multiline list",
			ids:      entity.NewSet("sensor.b", "camera.a", "switch.c"),
			expected: "- `camera.a`\n- `sensor.b`\n- `switch.c`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EntityListMarkdown(tt.ids))
		})
	}
}
