package gormql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateName(t *testing.T) {
	subs := map[string]string{"name": "product", "type": "Create", "bulk": "bulk"}

	tests := []struct {
		name     string
		template string
		opts     NameOptions
		want     string
	}{
		{"默认小驼峰", "{name}{type}{bulk}", NameOptions{}, "productCreateBulk"},
		{"帕斯卡", "{bulk}{name}{type}", NameOptions{PascalCase: true}, "BulkProductCreate"},
		{"纯拼接", "{bulk}{name}{type}", NameOptions{NoCase: true}, "bulkproductCreate"},
		{"缺失代换为空", "{name}{missing}{type}", NameOptions{}, "productCreate"},
		{"字面量参与分段", "get_{name}", NameOptions{}, "get_Product"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateName(tt.template, subs, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateNameEmptyTemplate(t *testing.T) {
	_, err := GenerateName("", nil, NameOptions{})
	require.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestGenerateNameDependsOnlyOnTokenOrder(t *testing.T) {
	subs := map[string]string{"name": "order", "type": "Get"}
	a, err := GenerateName("{name}{type}", subs, NameOptions{})
	require.NoError(t, err)
	b, err := GenerateName("{type}{name}", subs, NameOptions{})
	require.NoError(t, err)
	assert.Equal(t, "orderGet", a)
	assert.Equal(t, "getOrder", b)
}
