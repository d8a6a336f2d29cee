package gormql

import (
	"github.com/graphql-go/graphql"
	"github.com/ichaly/gormql/internal"
	"github.com/ichaly/gormql/log"
	"github.com/ichaly/gormql/store"
)

// generateAssociationFields 生成模型的关联字段
// 目标类型缺失时跳过该关联(输出/输入图分两趟构建,静默降级)
// 输入图中的关联字段不携带解析器与参数
func (my *Generator) generateAssociationFields(m *internal.Model, isInput bool) map[string]any {
	fields := make(map[string]any)
	for name, assoc := range m.Associations {
		if isInput {
			// 输入图仅承载嵌套变更载荷,多对一通过外键属性表达
			if assoc.Kind != internal.HAS_MANY && assoc.Kind != internal.BELONGS_TO_MANY {
				continue
			}
			target, ok := my.inputs[assoc.Target]
			if !ok {
				log.Debug().Str("model", m.Name).Str("association", name).Msg("目标输入类型缺失,跳过关联")
				continue
			}
			fields[name] = &graphql.InputObjectFieldConfig{
				Type: graphql.NewList(target),
			}
			continue
		}

		target, ok := my.outputs[assoc.Target]
		if !ok {
			log.Debug().Str("model", m.Name).Str("association", name).Msg("目标输出类型缺失,跳过关联")
			continue
		}

		switch assoc.Kind {
		case internal.BELONGS_TO:
			fields[name] = &graphql.Field{
				Type:    target,
				Resolve: my.belongsToResolver(m, assoc),
			}
		case internal.HAS_MANY:
			fields[name] = &graphql.Field{
				Type:    graphql.NewList(target),
				Args:    mergeArgs(my.listArgs(), my.globalArgs()),
				Resolve: my.hasManyResolver(m, assoc),
			}
		case internal.BELONGS_TO_MANY:
			fields[name] = &graphql.Field{
				Type:    graphql.NewList(target),
				Args:    mergeArgs(my.listArgs(), my.globalArgs()),
				Resolve: my.belongsToManyResolver(m, assoc),
			}
		case internal.REMOTE:
			fields[name] = &graphql.Field{
				Type:    graphql.NewList(target),
				Resolve: my.remoteResolver(assoc),
			}
		}
	}
	return fields
}

// belongsToResolver 多对一关联:按父记录外键取目标单条
func (my *Generator) belongsToResolver(m *internal.Model, assoc *internal.Association) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		parent, ok := p.Source.(store.Record)
		if !ok {
			return nil, nil
		}
		if cached, has := parent[assoc.Name]; has {
			return cached, nil
		}
		target := my.index[assoc.Target]
		// 父记录以属性名为键
		key := parent[my.attributeOf(m, assoc.ForeignKey)]
		if key == nil {
			return nil, nil
		}
		targetKey := target.Entity().PrimaryKey
		if assoc.TargetKey != "" {
			targetKey = my.columnOf(target, assoc.TargetKey)
		}
		row, err := my.store.FindOne(p.Context, target.Entity(), &store.Query{
			Where: map[string]any{targetKey: key},
		})
		if err != nil {
			return nil, err
		}
		return my.toRecord(target, row), nil
	}
}

// hasManyResolver 一对多关联:按外键取目标列表,应用列表参数
func (my *Generator) hasManyResolver(m *internal.Model, assoc *internal.Association) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		parent, ok := p.Source.(store.Record)
		if !ok {
			return nil, nil
		}
		if cached, has := parent[assoc.Name]; has {
			return my.toRecordList(my.index[assoc.Target], cached), nil
		}
		target := my.index[assoc.Target]
		keyName := ""
		if assoc.TargetKey != "" {
			keyName = my.attributeOf(m, assoc.TargetKey)
		} else if pk := m.PrimaryKey(); pk != nil {
			keyName = pk.Name
		}
		key := parent[keyName]
		if key == nil {
			return nil, nil
		}
		q, err := my.buildQuery(target, p, false)
		if err != nil {
			return nil, err
		}
		if q.Where == nil {
			q.Where = map[string]any{}
		}
		q.Where[my.columnOf(target, assoc.ForeignKey)] = key
		rows, err := my.store.Find(p.Context, target.Entity(), q)
		if err != nil {
			return nil, err
		}
		return my.toRecords(target, rows), nil
	}
}

// belongsToManyResolver 多对多关联:先查中间表再取目标
func (my *Generator) belongsToManyResolver(m *internal.Model, assoc *internal.Association) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		parent, ok := p.Source.(store.Record)
		if !ok {
			return nil, nil
		}
		if cached, has := parent[assoc.Name]; has {
			return my.toRecordList(my.index[assoc.Target], cached), nil
		}
		target := my.index[assoc.Target]
		through := my.index[assoc.Through.Model]
		if through == nil {
			log.Warn().Str("model", m.Name).Str("association", assoc.Name).Msg("中间模型缺失")
			return nil, nil
		}

		pk := m.PrimaryKey()
		if pk == nil {
			return nil, nil
		}
		key := parent[pk.Name]
		if key == nil {
			return nil, nil
		}
		edges, err := my.store.Find(p.Context, through.Entity(), &store.Query{
			Where: map[string]any{assoc.Through.SourceKey: key},
		})
		if err != nil {
			return nil, err
		}
		if len(edges) == 0 {
			return []store.Record{}, nil
		}

		keys := make([]any, 0, len(edges))
		for _, edge := range edges {
			if v := edge[assoc.Through.TargetKey]; v != nil {
				keys = append(keys, v)
			}
		}
		q, err := my.buildQuery(target, p, false)
		if err != nil {
			return nil, err
		}
		if q.Where == nil {
			q.Where = map[string]any{}
		}
		q.Where[target.Entity().PrimaryKey] = keys
		rows, err := my.store.Find(p.Context, target.Entity(), q)
		if err != nil {
			return nil, err
		}
		return my.toRecords(target, rows), nil
	}
}
