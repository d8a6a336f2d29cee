package internal

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/ichaly/gormql/store"
)

// OperationKind 表示操作类型
type OperationKind string

// 操作类型常量
const (
	FETCH   OperationKind = "fetch"   // 列表查询
	COUNT   OperationKind = "count"   // 计数查询
	CREATE  OperationKind = "create"  // 创建
	UPDATE  OperationKind = "update"  // 更新
	DESTROY OperationKind = "destroy" // 删除
	RESTORE OperationKind = "restore" // 恢复软删除
	CUSTOM  OperationKind = "custom"  // 自定义操作
)

// AuthorizeFunc 授权函数,返回错误中止本次调用
type AuthorizeFunc func(ctx context.Context, p graphql.ResolveParams) error

// BeforeHook 操作前钩子,更新/删除时携带目标条件
type BeforeHook func(ctx context.Context, tx store.DataStore, p graphql.ResolveParams, where map[string]any) error

// ExtendHook 操作后钩子,非nil返回值替换最终结果
// 删除操作时data为删除前的记录快照
type ExtendHook func(ctx context.Context, tx store.DataStore, p graphql.ResolveParams, data any) (any, error)

// OverwriteFunc 整体覆盖函数,跳过标准流程直接返回结果
type OverwriteFunc func(ctx context.Context, p graphql.ResolveParams) (any, error)

// LogFunc 操作日志函数,失败不回滚事务
type LogFunc func(ctx context.Context, model string, kind OperationKind, data any)

// HookRegistry 按操作类型注册的钩子集合
// 通过存在性检查分发,缺省不执行
type HookRegistry struct {
	Before    map[OperationKind]BeforeHook
	Extend    map[OperationKind]ExtendHook
	Overwrite map[OperationKind]OverwriteFunc
}

// BeforeOf 查找指定操作的前置钩子
func (my *HookRegistry) BeforeOf(kind OperationKind) (BeforeHook, bool) {
	if my == nil || my.Before == nil {
		return nil, false
	}
	h, ok := my.Before[kind]
	return h, ok
}

// ExtendOf 查找指定操作的后置钩子
func (my *HookRegistry) ExtendOf(kind OperationKind) (ExtendHook, bool) {
	if my == nil || my.Extend == nil {
		return nil, false
	}
	h, ok := my.Extend[kind]
	return h, ok
}

// OverwriteOf 查找指定操作的覆盖函数
func (my *HookRegistry) OverwriteOf(kind OperationKind) (OverwriteFunc, bool) {
	if my == nil || my.Overwrite == nil {
		return nil, false
	}
	h, ok := my.Overwrite[kind]
	return h, ok
}
