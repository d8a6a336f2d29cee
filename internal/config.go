package internal

import (
	"github.com/graphql-go/graphql"
	"github.com/huandu/go-clone"
	"github.com/samber/lo"
)

// Scope 表示模型的隐式过滤作用域
// Path非空时作用域参数从请求参数按路径读取,缺失时使用Default
type Scope struct {
	Name    string `mapstructure:"name"`
	Path    string `mapstructure:"path"`
	Default any    `mapstructure:"default"`
}

// BulkConfig 表示批量操作配置
type BulkConfig struct {
	Create    bool   `mapstructure:"create"`
	Update    bool   `mapstructure:"update"`
	Destroy   bool   `mapstructure:"destroy"`
	Column    string `mapstructure:"column"`    // 批次标识列,批量创建时写入UUID
	Returning bool   `mapstructure:"returning"` // 批量创建返回行而非计数
}

// AttributeFilter 表示属性可见性控制
type AttributeFilter struct {
	// Include 额外暴露的自定义类型属性(属性名 -> 类型串)
	Include map[string]string `mapstructure:"include"`
	// Exclude 排除的属性名
	Exclude []string `mapstructure:"exclude"`
}

// CustomOperation 表示用户自定义的查询/变更
type CustomOperation struct {
	Description string                   // 描述
	Input       map[string]string        // 参数名 -> 类型串
	Output      string                   // 返回类型串,如"[Product]"
	Resolver    graphql.FieldResolveFn   // 解析函数
}

// ModelConfig 表示单个模型的行为配置
type ModelConfig struct {
	Attributes       *AttributeFilter            // 属性可见性
	Scope            *Scope                      // 隐式作用域
	Bulk             *BulkConfig                 // 批量操作
	Alias            map[OperationKind]string    // 默认操作名的别名
	ExcludeQueries   []OperationKind             // 不生成的查询类型
	ExcludeMutations []OperationKind             // 不生成的变更类型
	Types            map[string]any              // 自定义类型声明
	Queries          map[string]*CustomOperation // 自定义查询
	Mutations        map[string]*CustomOperation // 自定义变更
	Hooks            *HookRegistry               // 钩子注册表
	Exclude          bool                        // 整体隐藏,根类型与关联均不引用
	Readonly         bool                        // 屏蔽全部变更
	Paranoid         bool                        // 软删除
	FetchDeleted     bool                        // 查询时默认包含软删除行
	RestoreDeleted   bool                        // 生成恢复变更
	DeletedAtColumn  string                      // 软删除标记列,缺省deleted_at
}

// Limit 表示单一操作类型的结果数限制,0为不限制
type Limit struct {
	Default int `mapstructure:"default"`
	Max     int `mapstructure:"max"`
}

// NamingConfig 表示生成字段名的模板配置
type NamingConfig struct {
	// 模板中可用代换: {name}模型名 {type}操作名 {bulk}批量标识
	QueryTemplate    string `mapstructure:"query-template"`
	MutationTemplate string `mapstructure:"mutation-template"`
}

// ExposureConfig 表示字段暴露白名单
type ExposureConfig struct {
	Queries   []string `mapstructure:"queries"`
	Mutations []string `mapstructure:"mutations"`
	// Throw 为true时白名单外的字段仍会生成,调用时报错
	Throw bool `mapstructure:"throw"`
}

// Config 全局生成配置,生成开始前构建一次,之后不可变
type Config struct {
	Naming          NamingConfig             `mapstructure:"naming"`
	Limits          map[OperationKind]*Limit `mapstructure:"limits"`
	NestedMutations bool                     `mapstructure:"nested-mutations"`
	Transactions    bool                     `mapstructure:"transactions"`
	Exposure        *ExposureConfig          `mapstructure:"exposure"`

	// GlobalArgs 注入到每个生成字段的额外参数(参数名 -> 类型串)
	GlobalArgs map[string]string `mapstructure:"global-args"`

	// 全局自定义类型/查询/变更
	Types     map[string]any
	Queries   map[string]*CustomOperation
	Mutations map[string]*CustomOperation

	// 全局钩子,模型级钩子优先
	Before map[OperationKind]BeforeHook
	Extend map[OperationKind]ExtendHook

	Authorizer AuthorizeFunc // 全局授权函数
	Logger     LogFunc       // 操作日志函数

	// ErrorStatus 错误消息子串 -> HTTP状态码
	ErrorStatus map[string]int `mapstructure:"error-status"`

	// ModelDefaults 模型配置默认值,逐模型克隆合并
	ModelDefaults *ModelConfig
}

// DefaultConfig 返回内置默认配置
func DefaultConfig() *Config {
	return &Config{
		Naming: NamingConfig{
			QueryTemplate:    "{name}{type}{bulk}",
			MutationTemplate: "{name}{type}{bulk}",
		},
		Limits: map[OperationKind]*Limit{
			FETCH: {Default: 50, Max: 500},
		},
		NestedMutations: true,
		Transactions:    true,
		ModelDefaults:   &ModelConfig{DeletedAtColumn: "deleted_at"},
	}
}

// MergeModelConfig 以全局默认为底合并模型配置
// 默认值先深拷贝,合并过程不会改写共享状态
func MergeModelConfig(defaults, own *ModelConfig) *ModelConfig {
	if defaults == nil {
		defaults = &ModelConfig{}
	}
	merged := clone.Clone(defaults).(*ModelConfig)
	if own == nil {
		return merged
	}

	if own.Attributes != nil {
		merged.Attributes = own.Attributes
	}
	if own.Scope != nil {
		merged.Scope = own.Scope
	}
	if own.Bulk != nil {
		merged.Bulk = own.Bulk
	}
	if own.Alias != nil {
		merged.Alias = own.Alias
	}
	if own.ExcludeQueries != nil {
		merged.ExcludeQueries = own.ExcludeQueries
	}
	if own.ExcludeMutations != nil {
		merged.ExcludeMutations = own.ExcludeMutations
	}
	if own.Types != nil {
		merged.Types = own.Types
	}
	if own.Queries != nil {
		merged.Queries = own.Queries
	}
	if own.Mutations != nil {
		merged.Mutations = own.Mutations
	}
	if own.Hooks != nil {
		merged.Hooks = own.Hooks
	}
	if own.DeletedAtColumn != "" {
		merged.DeletedAtColumn = own.DeletedAtColumn
	}
	merged.Exclude = merged.Exclude || own.Exclude
	merged.Readonly = merged.Readonly || own.Readonly
	merged.Paranoid = merged.Paranoid || own.Paranoid
	merged.FetchDeleted = merged.FetchDeleted || own.FetchDeleted
	merged.RestoreDeleted = merged.RestoreDeleted || own.RestoreDeleted
	return merged
}

// QueryExcluded 指定查询类型是否被排除
func (my *ModelConfig) QueryExcluded(kind OperationKind) bool {
	return lo.Contains(my.ExcludeQueries, kind)
}

// MutationExcluded 指定变更类型是否被排除
func (my *ModelConfig) MutationExcluded(kind OperationKind) bool {
	return my.Readonly || lo.Contains(my.ExcludeMutations, kind)
}

// AttributeVisible 属性是否对外可见
func (my *ModelConfig) AttributeVisible(name string) bool {
	if my.Attributes == nil {
		return true
	}
	return !lo.Contains(my.Attributes.Exclude, name)
}

// LimitOf 返回指定操作的结果数限制
func (my *Config) LimitOf(kind OperationKind) *Limit {
	if l, ok := my.Limits[kind]; ok && l != nil {
		return l
	}
	return &Limit{}
}
