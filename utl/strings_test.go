package utl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinString(t *testing.T) {
	assert.Equal(t, "", JoinString())
	assert.Equal(t, "abc", JoinString("a", "b", "c"))
	assert.Equal(t, "ProductInput", JoinString("Product", "Input"))
}

func TestStartWithAny(t *testing.T) {
	prefix, ok := StartWithAny("reverse:name", "reverse:", "asc:")
	assert.True(t, ok)
	assert.Equal(t, "reverse:", prefix)

	_, ok = StartWithAny("name", "reverse:")
	assert.False(t, ok)
}

func TestEndWithAny(t *testing.T) {
	suffix, ok := EndWithAny("PriceRangeInput", "input")
	assert.True(t, ok)
	assert.Equal(t, "input", suffix)

	_, ok = EndWithAny("Product", "input")
	assert.False(t, ok)
}

func TestMapKeys(t *testing.T) {
	keys := MapKeys(map[string]int{"a": 1, "b": 2})
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestCloneMap(t *testing.T) {
	assert.Nil(t, CloneMap[int](nil))
	src := map[string]int{"a": 1}
	dst := CloneMap(src)
	dst["a"] = 2
	assert.Equal(t, 1, src["a"])
}
