package gormql

import (
	"github.com/graphql-go/graphql"
	"github.com/ichaly/gormql/internal"
	"github.com/ichaly/gormql/log"
)

// listArgs 列表查询的默认参数集
func (my *Generator) listArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		LIMIT:  &graphql.ArgumentConfig{Type: graphql.Int, Description: "返回行数上限"},
		OFFSET: &graphql.ArgumentConfig{Type: graphql.Int, Description: "跳过行数"},
		ORDER:  &graphql.ArgumentConfig{Type: graphql.String, Description: "排序串,逗号分隔,reverse:前缀倒序"},
		WHERE:  &graphql.ArgumentConfig{Type: JSONScalar, Description: "过滤条件"},
	}
}

// filterArgs 模型的默认过滤参数,当前为主键等值
func (my *Generator) filterArgs(m *internal.Model) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	if pk := m.PrimaryKey(); pk != nil {
		args[pk.Name] = &graphql.ArgumentConfig{Type: my.scalarOf(pk.Type)}
	}
	return args
}

// globalArgs 全局配置注入到每个生成字段的额外参数
func (my *Generator) globalArgs() graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for name, typeStr := range my.cfg.GlobalArgs {
		base, err := SanitizeField(typeStr)
		if err != nil {
			log.Warn().Str("arg", name).Err(err).Msg("跳过无效的全局参数")
			continue
		}
		t, ok := my.inputs[base]
		if !ok {
			log.Warn().Str("arg", name).Str("type", base).Msg("全局参数引用了未声明的类型")
			continue
		}
		args[name] = &graphql.ArgumentConfig{Type: wrapInput(t, typeStr)}
	}
	return args
}

// customArgs 自定义操作声明的参数
func (my *Generator) customArgs(input map[string]string) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for name, typeStr := range input {
		args[name] = &graphql.ArgumentConfig{Type: my.inputTypeOf(typeStr)}
	}
	return args
}

// mergeArgs 合并多个参数集,后者覆盖前者
func mergeArgs(sets ...graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	merged := graphql.FieldConfigArgument{}
	for _, set := range sets {
		for name, arg := range set {
			merged[name] = arg
		}
	}
	return merged
}
