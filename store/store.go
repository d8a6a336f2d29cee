package store

import (
	"context"
)

// Record 表示一行数据
type Record = map[string]any

// Entity 表示数据存储层的实体描述
type Entity struct {
	Name       string // 实体名
	Table      string // 表名
	PrimaryKey string // 主键列名
	Paranoid   bool   // 是否软删除
	DeletedAt  string // 软删除标记列名
}

// Order 表示排序条件
type Order struct {
	Column string
	Desc   bool
}

// ScopeArg 表示命名作用域及其参数
type ScopeArg struct {
	Name  string
	Value any
}

// Include 表示预加载关联的定义
// 子记录按外键分组后挂载到父记录的Field键下
type Include struct {
	Field      string     // 挂载到父记录的字段名
	Entity     *Entity    // 子实体
	ForeignKey string     // 子表外键列
	TargetKey  string     // 父表关联键列
	Required   bool       // 内连接语义,无子记录的父记录被过滤
	Nested     []*Include // 嵌套预加载
}

// Query 表示一次查找/变更的目标条件
type Query struct {
	Where       map[string]any   // 等值条件,切片值按IN处理
	OrWhere     []map[string]any // OR条件组,每组内为AND
	Order       []*Order
	Limit       int
	Offset      int
	Include     []*Include
	WithDeleted bool // true时包含软删除行
	Scopes      []*ScopeArg
}

// DataStore 数据存储边界
// 事务内的调用通过Transaction回调中的句柄显式传递
type DataStore interface {
	Find(ctx context.Context, e *Entity, q *Query) ([]Record, error)
	FindOne(ctx context.Context, e *Entity, q *Query) (Record, error)
	Count(ctx context.Context, e *Entity, q *Query) (int64, error)
	Create(ctx context.Context, e *Entity, payload Record) (Record, error)
	CreateBulk(ctx context.Context, e *Entity, payloads []Record) (int64, error)
	Update(ctx context.Context, e *Entity, payload Record, q *Query) (int64, error)
	Destroy(ctx context.Context, e *Entity, q *Query) (int64, error)
	Restore(ctx context.Context, e *Entity, q *Query) (int64, error)
	Transaction(ctx context.Context, fn func(tx DataStore) error) error
}
