package gormql

import (
	"testing"

	"github.com/ichaly/gormql/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecordListNormalizesPreloadedValues(t *testing.T) {
	g := New(newFakeStore(), testModels())
	require.NoError(t, g.prepareModels())
	m := g.index["Attribute"]

	// store.Record是map[string]any的别名,两种写法走同一分支
	rows := []store.Record{{"id": 1}, {"id": 2}}
	assert.Equal(t, rows, g.toRecordList(m, rows))
	assert.Equal(t, rows, g.toRecordList(m, []map[string]any{{"id": 1}, {"id": 2}}))

	mixed := g.toRecordList(m, []any{map[string]any{"id": 3}, "junk"})
	require.Len(t, mixed, 1)

	// 非列表原样返回
	assert.Equal(t, 7, g.toRecordList(m, 7))
}

func TestPayloadListCopiesRecords(t *testing.T) {
	src := map[string]any{"name": "a", OP_TAG: OP_CREATE}
	list, ok := payloadList(src)
	require.True(t, ok)
	require.Len(t, list, 1)

	// 分发改写副本,原始入参保持不变
	delete(list[0], OP_TAG)
	assert.Contains(t, src, OP_TAG)
}
