package gormql

import (
	"github.com/graphql-go/graphql"
	"github.com/ichaly/gormql/internal"
)

// generateMutations 生成根变更类型
// 只读模型与全部变更被排除且无自定义变更的模型不出现
// 无任何变更字段时返回nil,跳过根变更类型
func (my *Generator) generateMutations() (*graphql.Object, error) {
	fields := graphql.Fields{}
	template := my.cfg.Naming.MutationTemplate

	for _, m := range my.models {
		if m.Config.Readonly {
			continue
		}
		if err := my.generateModelMutations(fields, m, template); err != nil {
			return nil, err
		}
		for name, op := range m.Config.Mutations {
			if !exposed(name, my.exposureMutations(), my.exposureThrow()) {
				continue
			}
			fields[name] = my.customField(name, op, my.exposureMutations)
		}
	}

	for name, op := range my.cfg.Mutations {
		if !exposed(name, my.exposureMutations(), my.exposureThrow()) {
			continue
		}
		fields[name] = my.customField(name, op, my.exposureMutations)
	}

	if len(fields) == 0 {
		return nil, nil
	}
	return graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: fields}), nil
}

// generateModelMutations 生成模型的标准变更字段
// 更新/删除/恢复以主键定位目标,无主键的模型只生成创建
func (my *Generator) generateModelMutations(fields graphql.Fields, m *internal.Model, template string) error {
	output := my.outputs[m.Name]
	bulk := m.Config.Bulk
	hasKey := m.PrimaryKey() != nil

	add := func(kind internal.OperationKind, isBulk bool, field func(name string) *graphql.Field) error {
		name, err := my.fieldName(m, template, kind, isBulk)
		if err != nil {
			return err
		}
		if exposed(name, my.exposureMutations(), my.exposureThrow()) {
			fields[name] = field(name)
		}
		return nil
	}

	if !m.Config.MutationExcluded(internal.CREATE) {
		if err := add(internal.CREATE, false, func(name string) *graphql.Field {
			return &graphql.Field{
				Type:    output,
				Args:    mergeArgs(my.inputArgs(m, false), my.globalArgs()),
				Resolve: my.mutationResolver(m, internal.CREATE, name, false),
			}
		}); err != nil {
			return err
		}
		if bulk != nil && bulk.Create {
			if err := add(internal.CREATE, true, func(name string) *graphql.Field {
				// 批量创建的结果形状取决于returning配置
				resultType := graphql.Output(graphql.Int)
				if bulk.Returning && bulk.Column != "" {
					resultType = graphql.NewList(output)
				}
				return &graphql.Field{
					Type:    resultType,
					Args:    mergeArgs(my.inputArgs(m, true), my.globalArgs()),
					Resolve: my.mutationResolver(m, internal.CREATE, name, true),
				}
			}); err != nil {
				return err
			}
		}
	}

	if hasKey && !m.Config.MutationExcluded(internal.UPDATE) {
		if err := add(internal.UPDATE, false, func(name string) *graphql.Field {
			return &graphql.Field{
				Type:    output,
				Args:    mergeArgs(my.inputArgs(m, false), my.globalArgs()),
				Resolve: my.mutationResolver(m, internal.UPDATE, name, false),
			}
		}); err != nil {
			return err
		}
		if bulk != nil && bulk.Update {
			if err := add(internal.UPDATE, true, func(name string) *graphql.Field {
				return &graphql.Field{
					Type:    graphql.Int,
					Args:    mergeArgs(my.inputArgs(m, true), my.globalArgs()),
					Resolve: my.mutationResolver(m, internal.UPDATE, name, true),
				}
			}); err != nil {
				return err
			}
		}
	}

	if hasKey && !m.Config.MutationExcluded(internal.DESTROY) {
		if err := add(internal.DESTROY, false, func(name string) *graphql.Field {
			return &graphql.Field{
				Type:    graphql.Int,
				Args:    mergeArgs(my.filterArgs(m), my.globalArgs()),
				Resolve: my.mutationResolver(m, internal.DESTROY, name, false),
			}
		}); err != nil {
			return err
		}
		if bulk != nil && bulk.Destroy {
			if err := add(internal.DESTROY, true, func(name string) *graphql.Field {
				return &graphql.Field{
					Type:    graphql.Int,
					Args:    mergeArgs(my.bulkKeyArgs(m), my.globalArgs()),
					Resolve: my.mutationResolver(m, internal.DESTROY, name, true),
				}
			}); err != nil {
				return err
			}
		}
	}

	// 恢复仅对启用了软删除与恢复的模型生成
	if hasKey && m.Config.Paranoid && m.Config.RestoreDeleted && !m.Config.MutationExcluded(internal.RESTORE) {
		if err := add(internal.RESTORE, false, func(name string) *graphql.Field {
			return &graphql.Field{
				Type:    output,
				Args:    mergeArgs(my.filterArgs(m), my.globalArgs()),
				Resolve: my.mutationResolver(m, internal.RESTORE, name, false),
			}
		}); err != nil {
			return err
		}
	}

	return nil
}

// inputArgs 变更的输入参数,键为模型名,批量路径收列表
func (my *Generator) inputArgs(m *internal.Model, bulk bool) graphql.FieldConfigArgument {
	input := my.inputs[m.Name]
	t := graphql.Input(input)
	if bulk {
		t = graphql.NewList(input)
	}
	return graphql.FieldConfigArgument{
		m.Name: &graphql.ArgumentConfig{Type: t},
	}
}

// bulkKeyArgs 批量删除的主键列表参数
func (my *Generator) bulkKeyArgs(m *internal.Model) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	if pk := m.PrimaryKey(); pk != nil {
		args[pk.Name] = &graphql.ArgumentConfig{Type: graphql.NewList(my.scalarOf(pk.Type))}
	}
	return args
}
