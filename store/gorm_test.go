package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewGormStore(gdb), mock
}

func productEntity() *Entity {
	return &Entity{
		Name:       "Product",
		Table:      "products",
		PrimaryKey: "id",
		Paranoid:   true,
		DeletedAt:  "deleted_at",
	}
}

func TestFindAppliesSoftDeleteFilter(t *testing.T) {
	my, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"\."name" = \$1 AND deleted_at IS NULL`).
		WithArgs("Widget").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Widget"))

	rows, err := my.Find(context.Background(), productEntity(), &Query{
		Where: map[string]any{"name": "Widget"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Widget", rows[0]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindWithDeletedSkipsFilter(t *testing.T) {
	my, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	rows, err := my.Find(context.Background(), productEntity(), &Query{WithDeleted: true})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrderAndLimit(t *testing.T) {
	my, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE deleted_at IS NULL ORDER BY "price" DESC LIMIT \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(2))

	rows, err := my.Find(context.Background(), productEntity(), &Query{
		Order: []*Order{{Column: "price", Desc: true}},
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReturning(t *testing.T) {
	my, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO "products" .+ RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	row, err := my.Create(context.Background(), productEntity(), Record{"name": "Widget"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, row["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDestroyParanoidMarksRow(t *testing.T) {
	my, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "products" SET "deleted_at"=\$1 WHERE "products"\."id" = \$2 AND deleted_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := my.Destroy(context.Background(), productEntity(), &Query{
		Where: map[string]any{"id": 1},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDestroyHardDeletesWithoutParanoid(t *testing.T) {
	my, mock := newMockStore(t)
	e := &Entity{Name: "ProductTag", Table: "product_tags", PrimaryKey: "id"}

	mock.ExpectExec(`DELETE FROM "product_tags" WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := my.Destroy(context.Background(), e, &Query{
		OrWhere: []map[string]any{
			{"product_id": 1, "tag_id": 2},
			{"product_id": 1, "tag_id": 3},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreClearsMarker(t *testing.T) {
	my, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "products" SET "deleted_at"=\$1 WHERE "products"\."id" = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := my.Restore(context.Background(), productEntity(), &Query{
		Where: map[string]any{"id": 1},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreRejectsNonParanoid(t *testing.T) {
	my, _ := newMockStore(t)
	e := &Entity{Name: "Tag", Table: "tags", PrimaryKey: "id"}

	_, err := my.Restore(context.Background(), e, &Query{Where: map[string]any{"id": 1}})
	require.Error(t, err)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	my, mock := newMockStore(t)
	boom := errors.New("约束冲突")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	err := my.Transaction(context.Background(), func(tx DataStore) error {
		if _, err := tx.Create(context.Background(), productEntity(), Record{"name": "A"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScopesApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	my := NewGormStore(gdb, WithScope("byTenant", func(value any) func(*gorm.DB) *gorm.DB {
		return func(tx *gorm.DB) *gorm.DB {
			return tx.Where("tenant_id = ?", value)
		}
	}))

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE tenant_id = \$1`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	rows, err := my.Find(context.Background(), &Entity{Table: "products", PrimaryKey: "id"}, &Query{
		Scopes: []*ScopeArg{{Name: "byTenant", Value: 42}},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachIncludesGroupsChildren(t *testing.T) {
	my, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE deleted_at IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "A").AddRow(2, "B"))
	mock.ExpectQuery(`SELECT \* FROM "attributes" WHERE "attributes"\."product_id" IN \(\$1,\$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "key"}).
			AddRow(10, 1, "color").AddRow(11, 1, "size"))

	rows, err := my.Find(context.Background(), productEntity(), &Query{
		Include: []*Include{{
			Field:      "Attributes",
			Entity:     &Entity{Name: "Attribute", Table: "attributes", PrimaryKey: "id"},
			ForeignKey: "product_id",
			TargetKey:  "id",
			Required:   true,
		}},
	})
	require.NoError(t, err)
	// 内连接语义,没有子记录的父记录被过滤
	require.Len(t, rows, 1)
	children := rows[0]["Attributes"].([]Record)
	assert.Len(t, children, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
