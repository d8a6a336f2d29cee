package internal

import (
	"github.com/ichaly/gormql/store"
)

// AssociationKind 表示关联类型
type AssociationKind string

// 关联类型常量
const (
	BELONGS_TO      AssociationKind = "belongs_to"      // 多对一关联
	HAS_MANY        AssociationKind = "has_many"        // 一对多关联
	BELONGS_TO_MANY AssociationKind = "belongs_to_many" // 多对多关联
	REMOTE          AssociationKind = "remote"          // 跨服务关联
)

// Model 表示一个持久化实体类型的完整描述
type Model struct {
	Name         string                  // 模型名,全局唯一
	Table        string                  // 表名,缺省按模型名复数下划线推导
	Attributes   []*Attribute            // 属性列表,保持声明顺序
	Associations map[string]*Association // 关联映射表
	Config       *ModelConfig            // 行为配置,生成开始时合并默认值后不再变更
}

// Attribute 表示模型的一个属性/列
type Attribute struct {
	Name       string // 属性名
	Column     string // 列名,缺省与属性名一致
	Type       string // 存储类型,经类型映射表转为GraphQL标量
	CustomType string // 自定义GraphQL类型名,优先于Type
	Nullable   bool   // 是否可空
	IsPrimary  bool   // 是否主键
	HasDefault bool   // 是否有数据库默认值
	Required   bool   // 输入类型中是否强制必填
}

// Association 表示两个模型之间的有向关联
type Association struct {
	Name       string          // 关联名,同时是生成字段名
	Kind       AssociationKind // 关联类型
	Target     string          // 目标模型名
	ForeignKey string          // 外键列名
	TargetKey  string          // 关联键列名,缺省为目标主键
	Through    *Through        // 多对多中间表配置
	Remote     *Remote         // 跨服务关联配置
}

// Through 表示多对多关联的中间表
type Through struct {
	Model     string // 中间模型名
	SourceKey string // 中间表指向源表的外键
	TargetKey string // 中间表指向目标表的外键
}

// Remote 表示跨服务关联的请求契约
type Remote struct {
	Endpoint string            // 远端GraphQL服务地址
	Query    string            // 远端查询名
	Args     map[string]string // 远端参数名 -> 父记录字段名
}

// PrimaryKey 返回模型的主键属性,未声明时返回nil
func (my *Model) PrimaryKey() *Attribute {
	for _, attr := range my.Attributes {
		if attr.IsPrimary {
			return attr
		}
	}
	return nil
}

// FindAttribute 按属性名查找
func (my *Model) FindAttribute(name string) *Attribute {
	for _, attr := range my.Attributes {
		if attr.Name == name {
			return attr
		}
	}
	return nil
}

// Entity 转换为存储层实体描述
func (my *Model) Entity() *store.Entity {
	e := &store.Entity{
		Name:       my.Name,
		Table:      my.Table,
		PrimaryKey: "id",
		DeletedAt:  "deleted_at",
	}
	if pk := my.PrimaryKey(); pk != nil {
		e.PrimaryKey = pk.ColumnName()
	}
	if my.Config != nil {
		e.Paranoid = my.Config.Paranoid
		if my.Config.DeletedAtColumn != "" {
			e.DeletedAt = my.Config.DeletedAtColumn
		}
	}
	return e
}

// ColumnName 返回属性的列名
func (my *Attribute) ColumnName() string {
	if my.Column != "" {
		return my.Column
	}
	return my.Name
}
