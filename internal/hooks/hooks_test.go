package hooks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainApplyOrder(t *testing.T) {
	c := NewChain[string, string]("greeting")
	c.Add("late", 20, func(v, _ string) string { return v + "-late" })
	c.Add("early", 5, func(v, _ string) string { return v + "-early" })
	c.Add("default-a", DefaultPriority, func(v, _ string) string { return v + "-a" })
	c.Add("default-b", DefaultPriority, func(v, _ string) string { return v + "-b" })

	assert.Equal(t, "greeting", c.Name())
	assert.Equal(t, []string{"early", "default-a", "default-b", "late"}, c.Names())
	assert.Equal(t, "x-early-a-b-late", c.Apply("x", ""))
}

func TestChainArgs(t *testing.T) {
	c := NewChain[bool, []string]("contains")
	c.Add("lookup", DefaultPriority, func(_ bool, args []string) bool {
		return strings.Contains(strings.Join(args, ","), "github")
	})
	assert.True(t, c.Apply(false, []string{"gitlab", "github"}))
	assert.False(t, c.Apply(true, []string{"gitea"}))
}

func TestChainReplaceAndRemove(t *testing.T) {
	c := NewChain[int, struct{}]("n")
	c.Add("double", DefaultPriority, func(v int, _ struct{}) int { return v * 2 })
	c.Add("double", DefaultPriority, func(v int, _ struct{}) int { return v * 3 })
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 6, c.Apply(2, struct{}{}))

	assert.True(t, c.Remove("double"))
	assert.False(t, c.Remove("double"))
	assert.Equal(t, 2, c.Apply(2, struct{}{}))
}

func TestNilChain(t *testing.T) {
	var c *Chain[int, struct{}]
	assert.Equal(t, 7, c.Apply(7, struct{}{}))
	assert.Zero(t, c.Len())
	assert.Nil(t, c.Names())
	assert.Empty(t, c.Name())
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	a := Lookup[bool, string](r, "remote_is_newer")
	a.Add("always", DefaultPriority, func(bool, string) bool { return true })

	b := Lookup[bool, string](r, "remote_is_newer")
	assert.Same(t, a, b)
	assert.True(t, b.Apply(false, ""))

	Lookup[[]string, struct{}](r, "running_git_servers")
	assert.Equal(t, []string{"remote_is_newer", "running_git_servers"}, r.Names())

	assert.Panics(t, func() { Lookup[int, int](r, "remote_is_newer") })
}
