package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthwatch/sdk/entity"
)

func TestExempt(t *testing.T) {
	tests := []struct {
		name string
		id   entity.ID
		want bool
	}{
		{name: "device tracker", id: "device_tracker.phone_anna", want: true},
		{name: "group", id: "group.all_lights", want: true},
		{name: "persistent notification", id: "persistent_notification.update", want: true},
		{name: "scene", id: "scene.movie_night", want: true},
		{name: "regular light", id: "light.kitchen", want: false},
		{name: "bare domain without object", id: "group", want: false},
		{name: "domain prefix of exempt domain", id: "scenery.hill", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Exempt(tt.id))
		})
	}
}

func TestCompile(t *testing.T) {
	t.Run("empty rule set", func(t *testing.T) {
		ignore, err := Compile(nil)
		require.NoError(t, err)
		assert.False(t, ignore.Ignored("light.kitchen"))
		assert.Empty(t, ignore.Exprs())
	})

	t.Run("blank expressions are skipped", func(t *testing.T) {
		ignore, err := Compile([]string{"", "  ", `domain == "automation"`})
		require.NoError(t, err)
		assert.Equal(t, []string{`domain == "automation"`}, ignore.Exprs())
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Compile([]string{`entity_id startsWith "x"`})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to compile filter")
	})

	t.Run("unknown variable", func(t *testing.T) {
		_, err := Compile([]string{`platform == "hue"`})
		require.Error(t, err)
	})

	t.Run("non boolean result", func(t *testing.T) {
		_, err := Compile([]string{`entity_id + "!"`})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must evaluate to a boolean")
	})
}

func TestIgnored(t *testing.T) {
	t.Run("prefix rule", func(t *testing.T) {
		ignore, err := Compile([]string{`entity_id.startsWith("sensor.test_")`})
		require.NoError(t, err)

		assert.True(t, ignore.Ignored("sensor.test_power"))
		assert.False(t, ignore.Ignored("sensor.power"))
	})

	t.Run("domain rule", func(t *testing.T) {
		ignore, err := Compile([]string{`domain == "automation"`})
		require.NoError(t, err)

		assert.True(t, ignore.Ignored("automation.morning"))
		assert.False(t, ignore.Ignored("light.morning"))
	})

	t.Run("membership rule", func(t *testing.T) {
		ignore, err := Compile([]string{`entity_id in ["light.old_lamp", "switch.legacy"]`})
		require.NoError(t, err)

		assert.True(t, ignore.Ignored("light.old_lamp"))
		assert.True(t, ignore.Ignored("switch.legacy"))
		assert.False(t, ignore.Ignored("light.new_lamp"))
	})

	t.Run("rules combine as any match", func(t *testing.T) {
		ignore, err := Compile([]string{
			`domain == "automation"`,
			`entity_id.endsWith("_test")`,
		})
		require.NoError(t, err)

		assert.True(t, ignore.Ignored("automation.morning"))
		assert.True(t, ignore.Ignored("sensor.battery_test"))
		assert.False(t, ignore.Ignored("sensor.battery"))
	})

	t.Run("exempt domains always ignored", func(t *testing.T) {
		ignore, err := Compile([]string{`domain == "automation"`})
		require.NoError(t, err)

		assert.True(t, ignore.Ignored("scene.movie_night"))
		assert.True(t, ignore.Ignored("device_tracker.phone"))
	})

	t.Run("evaluation error never ignores", func(t *testing.T) {
		// int() on a non-numeric string fails at evaluation time
		ignore, err := Compile([]string{`int(entity_id) > 0`})
		require.NoError(t, err)

		assert.False(t, ignore.Ignored("light.kitchen"))
	})

	t.Run("nil ignore applies only exemptions", func(t *testing.T) {
		var ignore *Ignore

		assert.True(t, ignore.Ignored("group.all_lights"))
		assert.False(t, ignore.Ignored("light.kitchen"))
		assert.Nil(t, ignore.Exprs())
	})
}
