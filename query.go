package gormql

import (
	"github.com/graphql-go/graphql"
	"github.com/ichaly/gormql/internal"
)

// fieldName 按命名模板生成字段名,别名整体覆盖生成结果
func (my *Generator) fieldName(m *internal.Model, template string, kind internal.OperationKind, bulk bool) (string, error) {
	if !bulk {
		if alias, ok := m.Config.Alias[kind]; ok && alias != "" {
			return alias, nil
		}
	}
	subs := map[string]string{
		TOKEN_NAME: m.Name,
		TOKEN_TYPE: typeTokens[kind],
	}
	if bulk {
		subs[TOKEN_BULK] = BULK_TOKEN
	}
	return GenerateName(template, subs, NameOptions{})
}

// generateQueries 生成根查询类型
// 每个模型至少有一个占位字段,保证对象类型合法
func (my *Generator) generateQueries() (*graphql.Object, error) {
	fields := graphql.Fields{}
	template := my.cfg.Naming.QueryTemplate

	for _, m := range my.models {
		output := my.outputs[m.Name]

		// 占位查询,全部标准查询被排除时对象仍有字段
		marker, err := GenerateName(template, map[string]string{
			TOKEN_NAME: m.Name,
			TOKEN_TYPE: TYPE_DEFAULT,
		}, NameOptions{})
		if err != nil {
			return nil, err
		}
		model := m
		fields[marker] = &graphql.Field{
			Type:        graphql.String,
			Description: "占位查询",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return model.Name, nil
			},
		}

		if !m.Config.QueryExcluded(internal.COUNT) {
			name, err := my.fieldName(m, template, internal.COUNT, false)
			if err != nil {
				return nil, err
			}
			if exposed(name, my.exposureQueries(), my.exposureThrow()) {
				fields[name] = &graphql.Field{
					Type:    graphql.Int,
					Args:    mergeArgs(my.countArgs(m), my.globalArgs()),
					Resolve: my.countResolver(m, name),
				}
			}
		}

		if !m.Config.QueryExcluded(internal.FETCH) {
			name, err := my.fieldName(m, template, internal.FETCH, false)
			if err != nil {
				return nil, err
			}
			if exposed(name, my.exposureQueries(), my.exposureThrow()) {
				fields[name] = &graphql.Field{
					Type:    graphql.NewList(output),
					Args:    mergeArgs(my.filterArgs(m), my.listArgs(), my.paranoidArgs(m), my.globalArgs()),
					Resolve: my.fetchResolver(m, name),
				}
			}
		}

		for name, op := range m.Config.Queries {
			if !exposed(name, my.exposureQueries(), my.exposureThrow()) {
				continue
			}
			fields[name] = my.customField(name, op, my.exposureQueries)
		}
	}

	for name, op := range my.cfg.Queries {
		if !exposed(name, my.exposureQueries(), my.exposureThrow()) {
			continue
		}
		fields[name] = my.customField(name, op, my.exposureQueries)
	}

	return graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: fields}), nil
}

// countArgs 计数查询的参数集
func (my *Generator) countArgs(m *internal.Model) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		WHERE: &graphql.ArgumentConfig{Type: JSONScalar, Description: "过滤条件"},
	}
	for name, arg := range my.paranoidArgs(m) {
		args[name] = arg
	}
	return args
}

// paranoidArgs 软删除模型的可见性开关参数
func (my *Generator) paranoidArgs(m *internal.Model) graphql.FieldConfigArgument {
	if !m.Config.Paranoid {
		return nil
	}
	return graphql.FieldConfigArgument{
		PARANOID: &graphql.ArgumentConfig{Type: graphql.Boolean, Description: "false时包含软删除行"},
	}
}

// customField 自定义操作的字段定义
func (my *Generator) customField(name string, op *internal.CustomOperation, allowed func() []string) *graphql.Field {
	return &graphql.Field{
		Type:        my.outputTypeOf(op.Output),
		Description: op.Description,
		Args:        mergeArgs(my.customArgs(op.Input), my.globalArgs()),
		Resolve:     my.customResolver(name, op, allowed),
	}
}
