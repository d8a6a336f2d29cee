package gormql

import (
	"github.com/ichaly/gormql/internal"
	"github.com/ichaly/gormql/store"
	"github.com/ichaly/gormql/utl"
)

// 属性名与列名可能不同,记录在出入存储层时做双向映射
// 非属性键(如预载的关联数据)原样保留

// columnOf 取属性对应的列名,找不到属性时原样返回
func (my *Generator) columnOf(m *internal.Model, name string) string {
	if attr := m.FindAttribute(name); attr != nil {
		return attr.ColumnName()
	}
	return name
}

// attributeOf 取列名对应的属性名,找不到时原样返回
func (my *Generator) attributeOf(m *internal.Model, column string) string {
	for _, attr := range m.Attributes {
		if attr.ColumnName() == column {
			return attr.Name
		}
	}
	return column
}

// toRow 将图层载荷转成以列名为键的存储行,仅保留模型属性
func (my *Generator) toRow(m *internal.Model, payload map[string]any) store.Record {
	row := make(store.Record, len(payload))
	for key, val := range payload {
		if attr := m.FindAttribute(key); attr != nil {
			row[attr.ColumnName()] = val
		}
	}
	return row
}

// toRecord 将存储行转成以属性名为键的记录
// 预载的关联子行按目标模型递归映射
func (my *Generator) toRecord(m *internal.Model, row store.Record) store.Record {
	if row == nil {
		return nil
	}
	out := make(store.Record, len(row))
	for key, val := range row {
		if assoc, ok := m.Associations[key]; ok {
			if target := my.index[assoc.Target]; target != nil {
				if children, ok := val.([]store.Record); ok {
					out[key] = my.toRecords(target, children)
					continue
				}
				if child, ok := val.(store.Record); ok {
					out[key] = my.toRecord(target, child)
					continue
				}
			}
		}
		out[my.attributeOf(m, key)] = val
	}
	return out
}

func (my *Generator) toRecords(m *internal.Model, rows []store.Record) []store.Record {
	out := make([]store.Record, len(rows))
	for i, row := range rows {
		out[i] = my.toRecord(m, row)
	}
	return out
}

// toRecordList 归一化预载的关联数据为记录列表
func (my *Generator) toRecordList(m *internal.Model, val any) any {
	switch v := val.(type) {
	case []store.Record:
		return v
	case []any:
		out := make([]store.Record, 0, len(v))
		for _, item := range v {
			if rec, ok := item.(map[string]any); ok {
				out = append(out, rec)
			}
		}
		return out
	default:
		return val
	}
}

// whereColumns 将过滤条件的属性键改写为列名
func (my *Generator) whereColumns(m *internal.Model, where map[string]any) map[string]any {
	if where == nil {
		return nil
	}
	out := make(map[string]any, len(where))
	for key, val := range where {
		out[my.columnOf(m, key)] = val
	}
	return out
}

// payloadList 归一化变更载荷为字典列表,单条对象视作长度一的列表
// 各元素浅拷贝,嵌套分发对记录的改写不触及原始入参
func payloadList(val any) ([]map[string]any, bool) {
	switch v := val.(type) {
	case map[string]any:
		return []map[string]any{utl.CloneMap(v)}, true
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, item := range v {
			out[i] = utl.CloneMap(item)
		}
		return out, true
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, utl.CloneMap(rec))
		}
		return out, true
	default:
		return nil, false
	}
}
