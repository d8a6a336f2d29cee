package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScopeFunc 命名作用域函数,value为作用域参数
type ScopeFunc func(value any) func(*gorm.DB) *gorm.DB

// GormStore 基于GORM的数据存储实现
type GormStore struct {
	db     *gorm.DB
	scopes map[string]ScopeFunc
}

// GormOption 定义存储选项函数类型
type GormOption func(*GormStore)

// WithScope 注册命名作用域
func WithScope(name string, fn ScopeFunc) GormOption {
	return func(s *GormStore) {
		s.scopes[name] = fn
	}
}

// NewGormStore 创建GORM数据存储
func NewGormStore(db *gorm.DB, opts ...GormOption) *GormStore {
	my := &GormStore{db: db, scopes: make(map[string]ScopeFunc)}
	for _, opt := range opts {
		opt(my)
	}
	return my
}

// session 构建应用了条件、作用域和软删除过滤的查询会话
func (my *GormStore) session(ctx context.Context, e *Entity, q *Query) *gorm.DB {
	tx := my.db.WithContext(ctx).Table(e.Table)
	if q == nil {
		q = &Query{}
	}
	if len(q.Where) > 0 {
		tx = tx.Where(q.Where)
	}
	if len(q.OrWhere) > 0 {
		cond := my.db.Where(q.OrWhere[0])
		for _, group := range q.OrWhere[1:] {
			cond = cond.Or(group)
		}
		tx = tx.Where(cond)
	}
	for _, s := range q.Scopes {
		if fn, ok := my.scopes[s.Name]; ok {
			tx = tx.Scopes(fn(s.Value))
		}
	}
	if e.Paranoid && !q.WithDeleted {
		tx = tx.Where(fmt.Sprintf("%s IS NULL", e.DeletedAt))
	}
	return tx
}

// Find 查找多条记录
func (my *GormStore) Find(ctx context.Context, e *Entity, q *Query) ([]Record, error) {
	tx := my.session(ctx, e, q)
	if q != nil {
		for _, o := range q.Order {
			tx = tx.Order(clause.OrderByColumn{
				Column: clause.Column{Name: o.Column},
				Desc:   o.Desc,
			})
		}
		if q.Limit > 0 {
			tx = tx.Limit(q.Limit)
		}
		if q.Offset > 0 {
			tx = tx.Offset(q.Offset)
		}
	}

	var rows []map[string]interface{}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = row
	}

	if q != nil && len(q.Include) > 0 {
		return my.attachIncludes(ctx, records, q.Include)
	}
	return records, nil
}

// FindOne 查找单条记录,未找到返回nil
func (my *GormStore) FindOne(ctx context.Context, e *Entity, q *Query) (Record, error) {
	if q == nil {
		q = &Query{}
	}
	limited := *q
	limited.Limit = 1
	records, err := my.Find(ctx, e, &limited)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Count 统计记录数
func (my *GormStore) Count(ctx context.Context, e *Entity, q *Query) (int64, error) {
	var n int64
	err := my.session(ctx, e, q).Count(&n).Error
	return n, err
}

// Create 创建一条记录,支持RETURNING回填生成列
func (my *GormStore) Create(ctx context.Context, e *Entity, payload Record) (Record, error) {
	row := map[string]interface{}(payload)
	err := my.db.WithContext(ctx).Table(e.Table).
		Clauses(clause.Returning{}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// CreateBulk 批量创建记录,返回写入行数
func (my *GormStore) CreateBulk(ctx context.Context, e *Entity, payloads []Record) (int64, error) {
	if len(payloads) == 0 {
		return 0, nil
	}
	rows := make([]map[string]interface{}, len(payloads))
	for i, p := range payloads {
		rows[i] = p
	}
	result := my.db.WithContext(ctx).Table(e.Table).Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Update 按条件更新,返回受影响行数
func (my *GormStore) Update(ctx context.Context, e *Entity, payload Record, q *Query) (int64, error) {
	result := my.session(ctx, e, q).Updates(map[string]interface{}(payload))
	return result.RowsAffected, result.Error
}

// Destroy 按条件删除,软删除实体改写标记列
func (my *GormStore) Destroy(ctx context.Context, e *Entity, q *Query) (int64, error) {
	var result *gorm.DB
	if e.Paranoid {
		result = my.session(ctx, e, q).Updates(map[string]interface{}{e.DeletedAt: time.Now()})
	} else {
		result = my.session(ctx, e, q).Delete(nil)
	}
	return result.RowsAffected, result.Error
}

// Restore 恢复软删除的记录
func (my *GormStore) Restore(ctx context.Context, e *Entity, q *Query) (int64, error) {
	if !e.Paranoid {
		return 0, fmt.Errorf("实体 %s 未启用软删除", e.Name)
	}
	if q == nil {
		q = &Query{}
	}
	deleted := *q
	deleted.WithDeleted = true
	result := my.session(ctx, e, &deleted).Updates(map[string]interface{}{e.DeletedAt: nil})
	return result.RowsAffected, result.Error
}

// Transaction 在事务中执行回调,回调内的存储句柄绑定到该事务
func (my *GormStore) Transaction(ctx context.Context, fn func(tx DataStore) error) error {
	return my.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, scopes: my.scopes})
	})
}

// attachIncludes 应用层预加载:按外键分组挂载子记录
func (my *GormStore) attachIncludes(ctx context.Context, parents []Record, includes []*Include) ([]Record, error) {
	for _, inc := range includes {
		keys := make([]any, 0, len(parents))
		for _, p := range parents {
			if v, ok := p[inc.TargetKey]; ok && v != nil {
				keys = append(keys, v)
			}
		}
		if len(keys) == 0 {
			if inc.Required {
				return nil, nil
			}
			continue
		}

		children, err := my.Find(ctx, inc.Entity, &Query{
			Where:   map[string]any{inc.ForeignKey: keys},
			Include: inc.Nested,
		})
		if err != nil {
			return nil, err
		}

		grouped := make(map[any][]Record)
		for _, c := range children {
			grouped[fmt.Sprint(c[inc.ForeignKey])] = append(grouped[fmt.Sprint(c[inc.ForeignKey])], c)
		}

		kept := parents[:0]
		for _, p := range parents {
			group := grouped[fmt.Sprint(p[inc.TargetKey])]
			p[inc.Field] = group
			if inc.Required && len(group) == 0 {
				continue
			}
			kept = append(kept, p)
		}
		parents = kept
	}
	return parents, nil
}
