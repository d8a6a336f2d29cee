package gormql

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/ichaly/gormql/internal"
	"github.com/ichaly/gormql/utl"
)

// JSONScalar 自由结构标量,用于where条件等无固定结构的数据
var JSONScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        SCALAR_JSON,
	Description: "任意JSON值",
	Serialize: func(value interface{}) interface{} {
		return value
	},
	ParseValue: func(value interface{}) interface{} {
		return value
	},
	ParseLiteral: astToValue,
})

// astToValue 将查询字面量递归转换为Go值
func astToValue(valueAST ast.Value) interface{} {
	switch v := valueAST.(type) {
	case *ast.ObjectValue:
		obj := make(map[string]interface{}, len(v.Fields))
		for _, f := range v.Fields {
			obj[f.Name.Value] = astToValue(f.Value)
		}
		return obj
	case *ast.ListValue:
		list := make([]interface{}, len(v.Values))
		for i, item := range v.Values {
			list[i] = astToValue(item)
		}
		return list
	case *ast.IntValue:
		// 字面量携带的是字符串形式
		if n, err := strconv.Atoi(v.Value); err == nil {
			return n
		}
		return v.Value
	case *ast.FloatValue:
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return v.Value
	case *ast.StringValue, *ast.BooleanValue, *ast.EnumValue:
		return valueAST.GetValue()
	default:
		return nil
	}
}

// mutationOpEnum 嵌套变更记录的操作标记枚举
var mutationOpEnum = graphql.NewEnum(graphql.EnumConfig{
	Name:        "MutationOp",
	Description: "嵌套变更记录的处理方式",
	Values: graphql.EnumValueConfigMap{
		OP_CREATE: &graphql.EnumValueConfig{Value: OP_CREATE},
		OP_UPDATE: &graphql.EnumValueConfig{Value: OP_UPDATE},
		OP_DELETE: &graphql.EnumValueConfig{Value: OP_DELETE},
		OP_KEEP:   &graphql.EnumValueConfig{Value: OP_KEEP},
	},
})

// 内置标量索引
var scalarTypes = map[string]*graphql.Scalar{
	SCALAR_ID:        graphql.ID,
	SCALAR_INT:       graphql.Int,
	SCALAR_FLOAT:     graphql.Float,
	SCALAR_STRING:    graphql.String,
	SCALAR_BOOLEAN:   graphql.Boolean,
	SCALAR_DATE_TIME: graphql.DateTime,
	SCALAR_JSON:      JSONScalar,
}

// buildTypes 构建全部输出/输入类型图
// 按模型声明顺序处理:先建模型声明的自定义类型,再建模型自身的输出与输入类型
func (my *Generator) buildTypes() error {
	my.outputs = make(map[string]graphql.Output)
	my.inputs = make(map[string]graphql.Input)
	for name, s := range scalarTypes {
		my.outputs[name] = s
		my.inputs[name] = s
	}

	// 先收集全部声明的类型名,引用校验在构建前完成
	declared := map[string]bool{}
	for name := range scalarTypes {
		declared[name] = true
	}
	for _, m := range my.models {
		declared[m.Name] = true
	}
	for name := range my.cfg.Types {
		declared[name] = true
	}
	for _, m := range my.models {
		for name := range m.Config.Types {
			declared[name] = true
		}
	}

	// 全局自定义类型
	if err := my.buildCustomTypes(my.cfg.Types, declared); err != nil {
		return err
	}

	for _, m := range my.models {
		if err := my.buildCustomTypes(m.Config.Types, declared); err != nil {
			return err
		}
		if err := my.checkAttributeRefs(m, declared); err != nil {
			return err
		}
		my.buildModelTypes(m)
	}
	return nil
}

// checkAttributeRefs 校验模型属性引用的自定义类型均已声明
func (my *Generator) checkAttributeRefs(m *internal.Model, declared map[string]bool) error {
	check := func(typeStr string) error {
		base, err := SanitizeField(typeStr)
		if err != nil {
			return err
		}
		if !declared[base] {
			return fmt.Errorf("%w: %s (model=%s)", ErrUnknownTypeReference, base, m.Name)
		}
		return nil
	}
	for _, attr := range m.Attributes {
		if attr.CustomType != "" {
			if err := check(attr.CustomType); err != nil {
				return err
			}
		}
	}
	if m.Config.Attributes != nil {
		for _, typeStr := range m.Config.Attributes.Include {
			if err := check(typeStr); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildCustomTypes 构建自定义类型声明
// 字段表声明生成对象/输入对象,列表声明生成枚举
// 同名类型跨模型共享同一实例,满足运行时单实例约束
func (my *Generator) buildCustomTypes(defs map[string]any, declared map[string]bool) error {
	names := utl.MapKeys(defs)
	sort.Strings(names)
	for _, name := range names {
		if _, ok := my.outputs[name]; ok {
			continue
		}
		if _, ok := my.inputs[name]; ok {
			continue
		}
		switch def := defs[name].(type) {
		case []any:
			enum, err := buildEnumType(name, def)
			if err != nil {
				return err
			}
			my.outputs[name] = enum
			my.inputs[name] = enum
		case map[string]string:
			if err := my.buildCompositeType(name, def, declared); err != nil {
				return err
			}
		case map[string]any:
			fields := make(map[string]string, len(def))
			for k, v := range def {
				s, ok := v.(string)
				if !ok {
					return fmt.Errorf("%w: %s.%s 不是类型串", ErrUnknownTypeReference, name, k)
				}
				fields[k] = s
			}
			if err := my.buildCompositeType(name, fields, declared); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s 的声明形式无法识别", ErrUnknownTypeReference, name)
		}
	}
	return nil
}

// buildEnumType 由取值列表生成枚举,元素为名称或[名称,值]对
func buildEnumType(name string, entries []any) (*graphql.Enum, error) {
	values := graphql.EnumValueConfigMap{}
	for _, entry := range entries {
		switch e := entry.(type) {
		case string:
			values[e] = &graphql.EnumValueConfig{Value: e}
		case []any:
			if len(e) != 2 {
				return nil, fmt.Errorf("%w: 枚举 %s 的取值对长度不是2", ErrUnknownTypeReference, name)
			}
			label, ok := e[0].(string)
			if !ok {
				return nil, fmt.Errorf("%w: 枚举 %s 的标签不是字符串", ErrUnknownTypeReference, name)
			}
			values[label] = &graphql.EnumValueConfig{Value: e[1]}
		default:
			return nil, fmt.Errorf("%w: 枚举 %s 的取值形式无法识别", ErrUnknownTypeReference, name)
		}
	}
	return graphql.NewEnum(graphql.EnumConfig{Name: name, Values: values}), nil
}

// buildCompositeType 由字段表生成对象或输入对象
// 名称以保留后缀input结尾(大小写不敏感)的声明为输入类型
func (my *Generator) buildCompositeType(name string, fields map[string]string, declared map[string]bool) error {
	for fieldName, typeStr := range fields {
		base, err := SanitizeField(typeStr)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", name, fieldName, err)
		}
		if !declared[base] {
			return fmt.Errorf("%w: %s (type=%s field=%s)", ErrUnknownTypeReference, base, name, fieldName)
		}
	}

	if _, ok := utl.EndWithAny(name, SUFFIX_INPUT); ok {
		obj := graphql.NewInputObject(graphql.InputObjectConfig{
			Name: name,
			Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
				out := graphql.InputObjectConfigFieldMap{}
				for fieldName, typeStr := range fields {
					out[fieldName] = &graphql.InputObjectFieldConfig{
						Type: my.inputTypeOf(typeStr),
					}
				}
				return out
			}),
		})
		my.inputs[name] = obj
		return nil
	}

	obj := graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			out := graphql.Fields{}
			for fieldName, typeStr := range fields {
				out[fieldName] = &graphql.Field{Type: my.outputTypeOf(typeStr)}
			}
			return out
		}),
	})
	my.outputs[name] = obj
	return nil
}

// buildModelTypes 构建模型的输出类型与输入类型
// 字段集通过延迟thunk求值,支持模型间的相互与自引用
func (my *Generator) buildModelTypes(m *internal.Model) {
	output := graphql.NewObject(graphql.ObjectConfig{
		Name: m.Name,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{}
			for _, attr := range m.Attributes {
				if !m.Config.AttributeVisible(attr.Name) {
					continue
				}
				fields[attr.Name] = &graphql.Field{Type: my.attributeOutputType(attr)}
			}
			if m.Config.Attributes != nil {
				for attrName, typeStr := range m.Config.Attributes.Include {
					fields[attrName] = &graphql.Field{Type: my.outputTypeOf(typeStr)}
				}
			}
			for name, field := range my.generateAssociationFields(m, false) {
				fields[name] = field.(*graphql.Field)
			}
			return fields
		}),
	})
	my.outputs[m.Name] = output

	input := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: utl.JoinString(m.Name, "Input"),
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields := graphql.InputObjectConfigFieldMap{}
			for _, attr := range m.Attributes {
				if !m.Config.AttributeVisible(attr.Name) {
					continue
				}
				fields[attr.Name] = &graphql.InputObjectFieldConfig{Type: my.attributeInputType(attr)}
			}
			// 嵌套变更的操作标记与中间表边属性
			fields[OP_TAG] = &graphql.InputObjectFieldConfig{Type: mutationOpEnum}
			fields[THROUGH_KEY] = &graphql.InputObjectFieldConfig{Type: JSONScalar}
			for name, field := range my.generateAssociationFields(m, true) {
				fields[name] = field.(*graphql.InputObjectFieldConfig)
			}
			return fields
		}),
	})
	my.inputs[m.Name] = input
}

// attributeOutputType 输出类型中的属性类型
// 主键与非空列强制非空
func (my *Generator) attributeOutputType(attr *internal.Attribute) graphql.Output {
	if attr.CustomType != "" {
		return my.outputTypeOf(attr.CustomType)
	}
	t := my.scalarOf(attr.Type)
	if attr.IsPrimary || !attr.Nullable {
		return graphql.NewNonNull(t)
	}
	return t
}

// attributeInputType 输入类型中的属性类型
// 为支持部分更新,除显式required外不强制非空
func (my *Generator) attributeInputType(attr *internal.Attribute) graphql.Input {
	var t graphql.Input
	if attr.CustomType != "" {
		t = my.inputTypeOf(attr.CustomType)
	} else {
		t = my.scalarOf(attr.Type)
	}
	if attr.Required {
		return graphql.NewNonNull(t)
	}
	return t
}

// scalarOf 按存储类型映射标量,未识别的类型回退为String
func (my *Generator) scalarOf(storageType string) *graphql.Scalar {
	if name, ok := dataTypes[strings.ToLower(storageType)]; ok {
		return scalarTypes[name]
	}
	return graphql.String
}

// outputTypeOf 解析类型串为输出类型,应用列表与非空组合
func (my *Generator) outputTypeOf(typeStr string) graphql.Output {
	base, err := SanitizeField(typeStr)
	if err != nil {
		return graphql.String
	}
	t, ok := my.outputs[base]
	if !ok {
		// 引用校验在构建前完成,此处仅防御残余
		return graphql.String
	}
	return wrapOutput(t, typeStr)
}

// inputTypeOf 解析类型串为输入类型
// 模型名在输入图中解析到对应的输入对象
func (my *Generator) inputTypeOf(typeStr string) graphql.Input {
	base, err := SanitizeField(typeStr)
	if err != nil {
		return graphql.String
	}
	t, ok := my.inputs[base]
	if !ok {
		return graphql.String
	}
	return wrapInput(t, typeStr)
}

// wrapOutput 按类型串的列表/非空标记包装输出类型
func wrapOutput(t graphql.Output, typeStr string) graphql.Output {
	switch IsFieldArray(typeStr) {
	case FIELD_LIST:
		return graphql.NewList(t)
	case FIELD_LIST_REQUIRED:
		return graphql.NewNonNull(graphql.NewList(t))
	case FIELD_LIST_ITEM_REQUIRE:
		wrapped := graphql.Output(graphql.NewList(graphql.NewNonNull(t)))
		if IsListRequired(typeStr) {
			wrapped = graphql.NewNonNull(wrapped)
		}
		return wrapped
	}
	if IsFieldRequired(typeStr) {
		return graphql.NewNonNull(t)
	}
	return t
}

// wrapInput 按类型串的列表/非空标记包装输入类型
func wrapInput(t graphql.Input, typeStr string) graphql.Input {
	switch IsFieldArray(typeStr) {
	case FIELD_LIST:
		return graphql.NewList(t)
	case FIELD_LIST_REQUIRED:
		return graphql.NewNonNull(graphql.NewList(t))
	case FIELD_LIST_ITEM_REQUIRE:
		wrapped := graphql.Input(graphql.NewList(graphql.NewNonNull(t)))
		if IsListRequired(typeStr) {
			wrapped = graphql.NewNonNull(wrapped)
		}
		return wrapped
	}
	if IsFieldRequired(typeStr) {
		return graphql.NewNonNull(t)
	}
	return t
}
