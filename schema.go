package gormql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/iancoleman/strcase"
	"github.com/ichaly/gormql/internal"
	"github.com/ichaly/gormql/std"
	"github.com/ichaly/gormql/store"
	"github.com/jinzhu/inflection"
)

// 根包对外暴露的描述符与配置类型
type (
	Model           = internal.Model
	Attribute       = internal.Attribute
	Association     = internal.Association
	Through         = internal.Through
	Remote          = internal.Remote
	Config          = internal.Config
	ModelConfig     = internal.ModelConfig
	BulkConfig      = internal.BulkConfig
	AttributeFilter = internal.AttributeFilter
	ExposureConfig  = internal.ExposureConfig
	NamingConfig    = internal.NamingConfig
	Limit           = internal.Limit
	Scope           = internal.Scope
	CustomOperation = internal.CustomOperation
	HookRegistry    = internal.HookRegistry
	OperationKind   = internal.OperationKind
	AuthorizeFunc   = internal.AuthorizeFunc
	BeforeHook      = internal.BeforeHook
	ExtendHook      = internal.ExtendHook
	OverwriteFunc   = internal.OverwriteFunc
	LogFunc         = internal.LogFunc
)

// 操作类型再导出
const (
	FETCH   = internal.FETCH
	COUNT   = internal.COUNT
	CREATE  = internal.CREATE
	UPDATE  = internal.UPDATE
	DESTROY = internal.DESTROY
	RESTORE = internal.RESTORE
	CUSTOM  = internal.CUSTOM
)

// 关联类型再导出
const (
	BELONGS_TO      = internal.BELONGS_TO
	HAS_MANY        = internal.HAS_MANY
	BELONGS_TO_MANY = internal.BELONGS_TO_MANY
	REMOTE          = internal.REMOTE
)

// DefaultConfig 返回内置默认配置
func DefaultConfig() *Config {
	return internal.DefaultConfig()
}

// Generator 由模型描述符生成GraphQL类型图与解析器
type Generator struct {
	cfg     *internal.Config
	store   store.DataStore
	models  []*internal.Model
	index   map[string]*internal.Model
	outputs map[string]graphql.Output
	inputs  map[string]graphql.Input
}

// Option 生成器的可选配置
type Option func(*Generator)

// WithConfig 整体替换全局配置
func WithConfig(cfg *Config) Option {
	return func(g *Generator) {
		if cfg != nil {
			g.cfg = cfg
		}
	}
}

// WithKonfig 从配置文件载入全局配置,代码内注册的钩子不受影响
func WithKonfig(k *std.Konfig) Option {
	return func(g *Generator) {
		if k == nil {
			return
		}
		_ = k.UnmarshalKey("schema", g.cfg)
	}
}

// WithAuthorizer 设置全局授权函数
func WithAuthorizer(fn AuthorizeFunc) Option {
	return func(g *Generator) { g.cfg.Authorizer = fn }
}

// WithLogger 设置操作日志函数
func WithLogger(fn LogFunc) Option {
	return func(g *Generator) { g.cfg.Logger = fn }
}

// WithNaming 设置命名模板
func WithNaming(query, mutation string) Option {
	return func(g *Generator) {
		if query != "" {
			g.cfg.Naming.QueryTemplate = query
		}
		if mutation != "" {
			g.cfg.Naming.MutationTemplate = mutation
		}
	}
}

// New 创建生成器,配置在Generate前组装完成,之后不再变更
func New(ds store.DataStore, models []*Model, opts ...Option) *Generator {
	g := &Generator{
		cfg:    internal.DefaultConfig(),
		store:  ds,
		models: models,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// joinDirective 预加载连接指令定义
var joinDirectiveDef = graphql.NewDirective(graphql.DirectiveConfig{
	Name:        DIRECTIVE_JOIN,
	Description: "关联字段改为预加载连接,required为true时为内连接语义",
	Locations:   []string{graphql.DirectiveLocationField},
	Args: graphql.FieldConfigArgument{
		ARG_REQUIRED: &graphql.ArgumentConfig{Type: graphql.Boolean},
	},
})

// Generate 构建完整的GraphQL模式
// 依次完成模型整备、类型图构建、根类型生成
func (my *Generator) Generate() (*graphql.Schema, error) {
	if err := my.prepareModels(); err != nil {
		return nil, err
	}
	if err := my.buildTypes(); err != nil {
		return nil, err
	}

	query, err := my.generateQueries()
	if err != nil {
		return nil, err
	}
	mutation, err := my.generateMutations()
	if err != nil {
		return nil, err
	}

	config := graphql.SchemaConfig{
		Query: query,
		Directives: []*graphql.Directive{
			graphql.IncludeDirective,
			graphql.SkipDirective,
			graphql.DeprecatedDirective,
			joinDirectiveDef,
		},
	}
	if mutation != nil {
		config.Mutation = mutation
	}
	schema, err := graphql.NewSchema(config)
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

// prepareModels 模型整备
// 查重、剔除整体排除的模型、合并配置默认值、补全表名与列名
func (my *Generator) prepareModels() error {
	my.index = make(map[string]*internal.Model, len(my.models))
	kept := make([]*internal.Model, 0, len(my.models))
	seen := make(map[string]bool, len(my.models))

	for _, m := range my.models {
		if seen[m.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateModel, m.Name)
		}
		seen[m.Name] = true
		m.Config = internal.MergeModelConfig(my.cfg.ModelDefaults, m.Config)
		if m.Config.Exclude {
			continue
		}
		if m.Table == "" {
			m.Table = inflection.Plural(strcase.ToSnake(m.Name))
		}
		for _, attr := range m.Attributes {
			if attr.Column == "" {
				attr.Column = strcase.ToSnake(attr.Name)
			}
		}
		my.index[m.Name] = m
		kept = append(kept, m)
	}
	my.models = kept
	return nil
}
