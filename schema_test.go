package gormql

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testModels 测试模型:商品、商品属性、标签(多对多)
func testModels() []*Model {
	product := &Model{
		Name: "Product",
		Attributes: []*Attribute{
			{Name: "id", Type: "int", IsPrimary: true, HasDefault: true},
			{Name: "name", Type: "string"},
			{Name: "price", Type: "int", Nullable: true},
			{Name: "batch", Type: "string", Nullable: true},
		},
		Associations: map[string]*Association{
			"Attributes": {
				Name:       "Attributes",
				Kind:       HAS_MANY,
				Target:     "Attribute",
				ForeignKey: "product_id",
			},
			"Tags": {
				Name:   "Tags",
				Kind:   BELONGS_TO_MANY,
				Target: "Tag",
				Through: &Through{
					Model:     "ProductTag",
					SourceKey: "product_id",
					TargetKey: "tag_id",
				},
			},
		},
		Config: &ModelConfig{
			Paranoid:       true,
			RestoreDeleted: true,
			Bulk: &BulkConfig{
				Create:    true,
				Update:    true,
				Destroy:   true,
				Column:    "batch",
				Returning: true,
			},
		},
	}
	attribute := &Model{
		Name: "Attribute",
		Attributes: []*Attribute{
			{Name: "id", Type: "int", IsPrimary: true, HasDefault: true},
			{Name: "key", Type: "string"},
			{Name: "value", Type: "string", Nullable: true},
			{Name: "productId", Column: "product_id", Type: "int", Nullable: true},
		},
		Associations: map[string]*Association{
			"Product": {
				Name:       "Product",
				Kind:       BELONGS_TO,
				Target:     "Product",
				ForeignKey: "productId",
			},
		},
	}
	tag := &Model{
		Name: "Tag",
		Attributes: []*Attribute{
			{Name: "id", Type: "int", IsPrimary: true, HasDefault: true},
			{Name: "name", Type: "string"},
		},
	}
	edge := &Model{
		Name:  "ProductTag",
		Table: "product_tags",
		Attributes: []*Attribute{
			{Name: "id", Type: "int", IsPrimary: true, HasDefault: true},
			{Name: "productId", Column: "product_id", Type: "int"},
			{Name: "tagId", Column: "tag_id", Type: "int"},
			{Name: "weight", Type: "int", Nullable: true},
		},
		Config: &ModelConfig{Exclude: false},
	}
	return []*Model{product, attribute, tag, edge}
}

func buildSchema(t *testing.T, ds *fakeStore, opts ...Option) *graphql.Schema {
	t.Helper()
	g := New(ds, testModels(), opts...)
	schema, err := g.Generate()
	require.NoError(t, err)
	return schema
}

func TestGenerateQueryFields(t *testing.T) {
	schema := buildSchema(t, newFakeStore())
	fields := schema.QueryType().Fields()

	assert.Contains(t, fields, "productDefault")
	assert.Contains(t, fields, "productGet")
	assert.Contains(t, fields, "productCount")
	assert.Contains(t, fields, "attributeGet")
	assert.Contains(t, fields, "tagGet")
}

func TestGenerateMutationFields(t *testing.T) {
	schema := buildSchema(t, newFakeStore())
	fields := schema.MutationType().Fields()

	assert.Contains(t, fields, "productCreate")
	assert.Contains(t, fields, "productUpdate")
	assert.Contains(t, fields, "productDelete")
	assert.Contains(t, fields, "productRestore")
	assert.Contains(t, fields, "productCreateBulk")
	assert.Contains(t, fields, "productUpdateBulk")
	assert.Contains(t, fields, "productDeleteBulk")

	// 未启用软删除与批量的模型没有对应变更
	assert.NotContains(t, fields, "tagRestore")
	assert.NotContains(t, fields, "tagCreateBulk")
}

func TestParanoidArgOnlyForSoftDeleteModels(t *testing.T) {
	schema := buildSchema(t, newFakeStore())
	fields := schema.QueryType().Fields()

	productArgs := map[string]bool{}
	for _, arg := range fields["productGet"].Args {
		productArgs[arg.Name()] = true
	}
	assert.True(t, productArgs[PARANOID])

	tagArgs := map[string]bool{}
	for _, arg := range fields["tagGet"].Args {
		tagArgs[arg.Name()] = true
	}
	assert.False(t, tagArgs[PARANOID])
}

func TestReadonlyModelHasNoMutations(t *testing.T) {
	models := testModels()
	models[2].Config = &ModelConfig{Readonly: true}
	g := New(newFakeStore(), models)
	schema, err := g.Generate()
	require.NoError(t, err)

	for name := range schema.MutationType().Fields() {
		assert.NotContains(t, name, "tag")
	}
	assert.Contains(t, schema.QueryType().Fields(), "tagGet")
}

func TestExcludedModelInvisible(t *testing.T) {
	models := testModels()
	models[2].Config = &ModelConfig{Exclude: true}
	g := New(newFakeStore(), models)
	schema, err := g.Generate()
	require.NoError(t, err)

	for name := range schema.QueryType().Fields() {
		assert.NotContains(t, name, "tag")
	}
	for name := range schema.MutationType().Fields() {
		assert.NotContains(t, name, "tag")
	}
	// 关联目标被排除时关联字段静默消失
	product := schema.TypeMap()["Product"].(*graphql.Object)
	_, has := product.Fields()["Tags"]
	assert.False(t, has)
}

func TestDuplicateModelRejected(t *testing.T) {
	models := testModels()
	models = append(models, &Model{Name: "Product"})
	g := New(newFakeStore(), models)
	_, err := g.Generate()
	require.ErrorIs(t, err, ErrDuplicateModel)
}

func TestAliasOverridesFieldName(t *testing.T) {
	models := testModels()
	models[0].Config.Alias = map[OperationKind]string{FETCH: "products"}
	g := New(newFakeStore(), models)
	schema, err := g.Generate()
	require.NoError(t, err)

	fields := schema.QueryType().Fields()
	assert.Contains(t, fields, "products")
	assert.NotContains(t, fields, "productGet")
}

func TestExposureOmitMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exposure = &ExposureConfig{Queries: []string{"productGet"}}
	schema := buildSchema(t, newFakeStore(), WithConfig(cfg))

	fields := schema.QueryType().Fields()
	assert.Contains(t, fields, "productGet")
	assert.NotContains(t, fields, "productCount")
	// 占位字段不受白名单影响
	assert.Contains(t, fields, "productDefault")
}

func TestAttributeExclusion(t *testing.T) {
	models := testModels()
	models[0].Config.Attributes = &AttributeFilter{Exclude: []string{"price"}}
	g := New(newFakeStore(), models)
	schema, err := g.Generate()
	require.NoError(t, err)

	product := schema.TypeMap()["Product"].(*graphql.Object)
	_, has := product.Fields()["price"]
	assert.False(t, has)
	_, has = product.Fields()["name"]
	assert.True(t, has)
}

func TestCustomEnumAndCompositeTypes(t *testing.T) {
	models := testModels()
	models[0].Config.Types = map[string]any{
		"ProductStatus": []any{"ACTIVE", "ARCHIVED"},
		"PriceRangeInput": map[string]string{
			"min": "Int",
			"max": "Int",
		},
	}
	models[0].Config.Queries = map[string]*CustomOperation{
		"productByStatus": {
			Input:  map[string]string{"status": "ProductStatus"},
			Output: "[Product]",
			Resolver: func(p graphql.ResolveParams) (interface{}, error) {
				return []map[string]any{}, nil
			},
		},
	}
	g := New(newFakeStore(), models)
	schema, err := g.Generate()
	require.NoError(t, err)

	assert.NotNil(t, schema.TypeMap()["ProductStatus"])
	assert.Contains(t, schema.QueryType().Fields(), "productByStatus")
}

func TestUnknownTypeReferenceFailsBuild(t *testing.T) {
	models := testModels()
	models[0].Config.Types = map[string]any{
		"BrokenInput": map[string]string{"field": "NoSuchType"},
	}
	g := New(newFakeStore(), models)
	_, err := g.Generate()
	require.ErrorIs(t, err, ErrUnknownTypeReference)
}

func TestListNonNullCombinators(t *testing.T) {
	g := New(newFakeStore(), testModels())
	require.NoError(t, g.prepareModels())
	require.NoError(t, g.buildTypes())

	// [string]! 是非空的可空元素列表
	outer := g.outputTypeOf("[String]!")
	nonNull, ok := outer.(*graphql.NonNull)
	require.True(t, ok)
	_, ok = nonNull.OfType.(*graphql.List)
	assert.True(t, ok)

	// [string!] 是可空的非空元素列表
	inner := g.outputTypeOf("[String!]")
	list, ok := inner.(*graphql.List)
	require.True(t, ok)
	_, ok = list.OfType.(*graphql.NonNull)
	assert.True(t, ok)

	// [string!]! 两层非空都保留
	both := g.outputTypeOf("[String!]!")
	outerNonNull, ok := both.(*graphql.NonNull)
	require.True(t, ok)
	bothList, ok := outerNonNull.OfType.(*graphql.List)
	require.True(t, ok)
	_, ok = bothList.OfType.(*graphql.NonNull)
	assert.True(t, ok)
}
