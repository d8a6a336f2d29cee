package gormql

import (
	"context"
	"fmt"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/ichaly/gormql/internal"
	"github.com/ichaly/gormql/store"
	"github.com/ichaly/gormql/utl"
)

// authorize 执行全局授权函数,关联子解析不再重复授权
func (my *Generator) authorize(p graphql.ResolveParams) error {
	if my.cfg.Authorizer == nil {
		return nil
	}
	if err := my.cfg.Authorizer(p.Context, p); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorizationDenied, err)
	}
	return nil
}

// checkExposure 白名单的严格模式,生成阶段保留字段,调用时拒绝
func (my *Generator) checkExposure(name string, allowed []string, throw bool) error {
	if len(allowed) == 0 || !throw {
		return nil
	}
	if slice.Contain(allowed, name) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrExposureDenied, name)
}

// exposed 白名单的省略模式,不在名单内的字段不生成
func exposed(name string, allowed []string, throw bool) bool {
	if len(allowed) == 0 || throw {
		return true
	}
	return slice.Contain(allowed, name)
}

// clampLimit 应用默认与上限,0为不限制
func (my *Generator) clampLimit(requested any, kind internal.OperationKind) int {
	limit := my.cfg.LimitOf(kind)
	n := limit.Default
	if v, ok := requested.(int); ok {
		n = v
	}
	if limit.Max > 0 && (n == 0 || n > limit.Max) {
		n = limit.Max
	}
	return n
}

// parseOrder 解析排序串,逗号分隔,reverse:前缀为倒序
func (my *Generator) parseOrder(m *internal.Model, raw string) []*store.Order {
	var orders []*store.Order
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		if prefix, ok := utl.StartWithAny(part, ORDER_REVERSE); ok {
			desc = true
			part = strings.TrimSpace(strings.TrimPrefix(part, prefix))
		}
		if part == "" {
			continue
		}
		orders = append(orders, &store.Order{Column: my.columnOf(m, part), Desc: desc})
	}
	return orders
}

// resolveScope 解析模型的参数化作用域
// 参数从请求参数按路径读取,缺失时使用配置默认值
func (my *Generator) resolveScope(m *internal.Model, args map[string]any) []*store.ScopeArg {
	scope := m.Config.Scope
	if scope == nil || scope.Name == "" {
		return nil
	}
	value := scope.Default
	if scope.Path != "" {
		if v, ok := lookupPath(args, scope.Path); ok {
			value = v
		}
	}
	return []*store.ScopeArg{{Name: scope.Name, Value: value}}
}

// lookupPath 按点号路径在嵌套字典中取值
func lookupPath(data map[string]any, path string) (any, bool) {
	keys := strings.Split(path, ".")
	var cur any = data
	for _, key := range keys {
		dict, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = dict[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// buildQuery 由解析参数构建存储层查询
// isRoot为true时额外解析查询AST中的预加载指令
func (my *Generator) buildQuery(m *internal.Model, p graphql.ResolveParams, isRoot bool) (*store.Query, error) {
	q := &store.Query{
		Limit:  my.clampLimit(p.Args[LIMIT], internal.FETCH),
		Scopes: my.resolveScope(m, p.Args),
	}
	if v, ok := p.Args[OFFSET].(int); ok {
		q.Offset = v
	}
	if v, ok := p.Args[ORDER].(string); ok {
		q.Order = my.parseOrder(m, v)
	}
	if v, ok := p.Args[WHERE].(map[string]any); ok {
		q.Where = my.whereColumns(m, v)
	}
	if pk := m.PrimaryKey(); pk != nil {
		if v, ok := p.Args[pk.Name]; ok && v != nil {
			if q.Where == nil {
				q.Where = map[string]any{}
			}
			q.Where[pk.ColumnName()] = v
		}
	}

	// 软删除可见性,模型配置可整体放开,paranoid参数逐次切换
	q.WithDeleted = m.Config.FetchDeleted
	if v, ok := p.Args[PARANOID].(bool); ok {
		q.WithDeleted = !v
	}

	if isRoot {
		q.Include = my.buildIncludes(m, selectionOf(p))
	}
	return q, nil
}

// selectionOf 取当前字段的选择集
func selectionOf(p graphql.ResolveParams) *ast.SelectionSet {
	if len(p.Info.FieldASTs) == 0 {
		return nil
	}
	return p.Info.FieldASTs[0].SelectionSet
}

// buildIncludes 由查询AST中的join指令递归构建预加载树
// 未标注join指令的关联仍走逐字段懒解析
func (my *Generator) buildIncludes(m *internal.Model, set *ast.SelectionSet) []*store.Include {
	if set == nil {
		return nil
	}
	var includes []*store.Include
	for _, sel := range set.Selections {
		field, ok := sel.(*ast.Field)
		if !ok || field.Name == nil {
			continue
		}
		assoc, ok := m.Associations[field.Name.Value]
		if !ok {
			continue
		}
		join, required := joinDirective(field)
		if !join {
			continue
		}
		target := my.index[assoc.Target]
		if target == nil {
			continue
		}
		inc := &store.Include{
			Field:    assoc.Name,
			Entity:   target.Entity(),
			Required: required,
			Nested:   my.buildIncludes(target, field.SelectionSet),
		}
		switch assoc.Kind {
		case internal.HAS_MANY:
			inc.ForeignKey = my.columnOf(target, assoc.ForeignKey)
			inc.TargetKey = m.Entity().PrimaryKey
			if assoc.TargetKey != "" {
				inc.TargetKey = my.columnOf(m, assoc.TargetKey)
			}
		case internal.BELONGS_TO:
			inc.ForeignKey = target.Entity().PrimaryKey
			if assoc.TargetKey != "" {
				inc.ForeignKey = my.columnOf(target, assoc.TargetKey)
			}
			inc.TargetKey = my.columnOf(m, assoc.ForeignKey)
		default:
			// 多对多与远程关联不支持预加载,退回懒解析
			continue
		}
		includes = append(includes, inc)
	}
	return includes
}

// joinDirective 检查字段是否标注了join指令,返回required参数值
func joinDirective(field *ast.Field) (bool, bool) {
	for _, d := range field.Directives {
		if d.Name == nil || d.Name.Value != DIRECTIVE_JOIN {
			continue
		}
		for _, arg := range d.Arguments {
			if arg.Name != nil && arg.Name.Value == ARG_REQUIRED {
				if v, ok := arg.Value.GetValue().(bool); ok {
					return true, v
				}
			}
		}
		return true, false
	}
	return false, false
}

// extendFetch 执行查询后置钩子,模型级优先于全局
func (my *Generator) extendFetch(ctx context.Context, m *internal.Model, p graphql.ResolveParams, kind internal.OperationKind, data any) (any, error) {
	hook, ok := m.Config.Hooks.ExtendOf(kind)
	if !ok {
		hook, ok = my.cfg.Extend[kind]
	}
	if !ok || hook == nil {
		return data, nil
	}
	result, err := hook(ctx, my.store, p, data)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return data, nil
}

// logOperation 执行操作日志函数,失败仅记录不影响结果
func (my *Generator) logOperation(ctx context.Context, m *internal.Model, kind internal.OperationKind, data any) {
	if my.cfg.Logger == nil {
		return
	}
	my.cfg.Logger(ctx, m.Name, kind, data)
}

// fetchResolver 根级列表查询
func (my *Generator) fetchResolver(m *internal.Model, name string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if err := my.checkExposure(name, my.exposureQueries(), my.exposureThrow()); err != nil {
			return nil, err
		}
		if err := my.authorize(p); err != nil {
			return nil, err
		}
		q, err := my.buildQuery(m, p, true)
		if err != nil {
			return nil, err
		}
		rows, err := my.store.Find(p.Context, m.Entity(), q)
		if err != nil {
			return nil, annotateError(err, my.cfg.ErrorStatus)
		}
		data, err := my.extendFetch(p.Context, m, p, internal.FETCH, my.toRecords(m, rows))
		if err != nil {
			return nil, err
		}
		my.logOperation(p.Context, m, internal.FETCH, data)
		return data, nil
	}
}

// countResolver 计数查询,作用域与软删除可见性同列表查询
func (my *Generator) countResolver(m *internal.Model, name string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if err := my.checkExposure(name, my.exposureQueries(), my.exposureThrow()); err != nil {
			return nil, err
		}
		if err := my.authorize(p); err != nil {
			return nil, err
		}
		q := &store.Query{
			Scopes:      my.resolveScope(m, p.Args),
			WithDeleted: m.Config.FetchDeleted,
		}
		if v, ok := p.Args[WHERE].(map[string]any); ok {
			q.Where = my.whereColumns(m, v)
		}
		if v, ok := p.Args[PARANOID].(bool); ok {
			q.WithDeleted = !v
		}
		total, err := my.store.Count(p.Context, m.Entity(), q)
		if err != nil {
			return nil, annotateError(err, my.cfg.ErrorStatus)
		}
		my.logOperation(p.Context, m, internal.COUNT, total)
		return int(total), nil
	}
}

// customResolver 自定义查询/变更,授权先行,不做事务包装
func (my *Generator) customResolver(name string, op *internal.CustomOperation, allowed func() []string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if err := my.checkExposure(name, allowed(), my.exposureThrow()); err != nil {
			return nil, err
		}
		if err := my.authorize(p); err != nil {
			return nil, err
		}
		if op.Resolver == nil {
			return nil, nil
		}
		return op.Resolver(p)
	}
}

func (my *Generator) exposureQueries() []string {
	if my.cfg.Exposure == nil {
		return nil
	}
	return my.cfg.Exposure.Queries
}

func (my *Generator) exposureMutations() []string {
	if my.cfg.Exposure == nil {
		return nil
	}
	return my.cfg.Exposure.Mutations
}

func (my *Generator) exposureThrow() bool {
	return my.cfg.Exposure != nil && my.cfg.Exposure.Throw
}
