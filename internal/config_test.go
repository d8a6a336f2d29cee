package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeModelConfigDoesNotMutateDefaults(t *testing.T) {
	defaults := &ModelConfig{
		Paranoid:        true,
		DeletedAtColumn: "deleted_at",
		ExcludeQueries:  []OperationKind{COUNT},
	}

	merged := MergeModelConfig(defaults, &ModelConfig{
		Readonly:        true,
		DeletedAtColumn: "removed_at",
		ExcludeQueries:  []OperationKind{FETCH},
	})

	assert.True(t, merged.Paranoid)
	assert.True(t, merged.Readonly)
	assert.Equal(t, "removed_at", merged.DeletedAtColumn)
	assert.Equal(t, []OperationKind{FETCH}, merged.ExcludeQueries)

	// 默认值对象不被合并过程改写
	assert.False(t, defaults.Readonly)
	assert.Equal(t, "deleted_at", defaults.DeletedAtColumn)
	assert.Equal(t, []OperationKind{COUNT}, defaults.ExcludeQueries)
}

func TestMergeModelConfigNilOwn(t *testing.T) {
	defaults := &ModelConfig{Paranoid: true}
	merged := MergeModelConfig(defaults, nil)
	require.NotNil(t, merged)
	assert.True(t, merged.Paranoid)
	require.NotSame(t, defaults, merged)
}

func TestExclusionHelpers(t *testing.T) {
	cfg := &ModelConfig{
		ExcludeQueries:   []OperationKind{COUNT},
		ExcludeMutations: []OperationKind{DESTROY},
	}
	assert.True(t, cfg.QueryExcluded(COUNT))
	assert.False(t, cfg.QueryExcluded(FETCH))
	assert.True(t, cfg.MutationExcluded(DESTROY))
	assert.False(t, cfg.MutationExcluded(CREATE))

	readonly := &ModelConfig{Readonly: true}
	assert.True(t, readonly.MutationExcluded(CREATE))
}

func TestAttributeVisible(t *testing.T) {
	cfg := &ModelConfig{Attributes: &AttributeFilter{Exclude: []string{"secret"}}}
	assert.False(t, cfg.AttributeVisible("secret"))
	assert.True(t, cfg.AttributeVisible("name"))

	open := &ModelConfig{}
	assert.True(t, open.AttributeVisible("anything"))
}

func TestHookRegistryPresence(t *testing.T) {
	var nilReg *HookRegistry
	_, ok := nilReg.BeforeOf(CREATE)
	assert.False(t, ok)

	reg := &HookRegistry{
		Before: map[OperationKind]BeforeHook{CREATE: nil},
	}
	_, ok = reg.BeforeOf(CREATE)
	assert.True(t, ok)
	_, ok = reg.ExtendOf(CREATE)
	assert.False(t, ok)
}

func TestLimitOf(t *testing.T) {
	cfg := DefaultConfig()
	limit := cfg.LimitOf(FETCH)
	assert.Equal(t, 50, limit.Default)
	assert.Equal(t, 500, limit.Max)

	missing := cfg.LimitOf(COUNT)
	require.NotNil(t, missing)
	assert.Zero(t, missing.Default)
}
