package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAddAndHas(t *testing.T) {
	s := NewSet()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("light.kitchen"))

	s.Add("light.kitchen")
	s.Add("light.kitchen")
	s.Add("sensor.temp")

	assert.Equal(t, 2, s.Len(), "duplicates collapse")
	assert.True(t, s.Has("light.kitchen"))
	assert.True(t, s.Has("sensor.temp"))
	assert.False(t, s.Has("sensor.humidity"))
}

func TestSetMerge(t *testing.T) {
	a := NewSet("a.one", "a.two")
	b := NewSet("a.two", "b.three")

	a.Merge(b)

	assert.Equal(t, 3, a.Len())
	assert.True(t, a.Has("b.three"))
	assert.Equal(t, 2, b.Len(), "merge does not mutate the argument")
}

func TestSetSorted(t *testing.T) {
	s := NewSet("light.b", "camera.a", "switch.c")

	assert.Equal(t, []ID{"camera.a", "light.b", "switch.c"}, s.Sorted())
	assert.Equal(t, []string{"camera.a", "light.b", "switch.c"}, s.Strings())
}

func TestNewSetSeedsMembers(t *testing.T) {
	s := NewSet("a.b", "c.d", "a.b")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a.b"))
	assert.True(t, s.Has("c.d"))
}
