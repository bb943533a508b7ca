package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("yaml document", func(t *testing.T) {
		doc, err := Parse([]byte("title: Home\nviews:\n  - cards:\n      - entity: light.kitchen\n"))
		require.NoError(t, err)

		assert.Equal(t, "Home", doc["title"])
		views, ok := doc["views"].([]any)
		require.True(t, ok)
		require.Len(t, views, 1)
	})

	t.Run("json document", func(t *testing.T) {
		doc, err := Parse([]byte(`{"title": "Home", "views": []}`))
		require.NoError(t, err)
		assert.Equal(t, "Home", doc["title"])
	})

	t.Run("empty input yields empty document", func(t *testing.T) {
		doc, err := Parse(nil)
		require.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Empty(t, doc)
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		_, err := Parse([]byte("views:\n\t- broken"))
		assert.Error(t, err)
	})

	t.Run("non mapping root returns error", func(t *testing.T) {
		_, err := Parse([]byte("- just\n- a\n- list\n"))
		assert.Error(t, err)
	})
}

func TestParseFile(t *testing.T) {
	t.Run("reads document from disk", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "overview.yaml")
		require.NoError(t, os.WriteFile(path, []byte("views:\n  - badges:\n      - sensor.temp\n"), 0o644))

		doc, err := ParseFile(path)
		require.NoError(t, err)
		assert.Contains(t, doc, "views")
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}

	t.Run("valid object", func(t *testing.T) {
		got, err := ParseJSON[payload]([]byte(`{"type":"dashboard_updated","data":"overview"}`))
		require.NoError(t, err)
		assert.Equal(t, "dashboard_updated", got.Type)
		assert.Equal(t, "overview", got.Data)
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		_, err := ParseJSON[payload]([]byte("{"))
		assert.Error(t, err)
	})
}
