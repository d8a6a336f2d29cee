package gormql

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ichaly/gormql/store"
)

// fakeStore 测试用内存存储
// 事务通过表快照实现,失败时丢弃快照模拟回滚
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]store.Record
	seq    int64
	calls  map[string]int
	// failOn 在指定方法上返回错误,模拟约束冲突
	failOn map[string]error
	// failAfter 指定方法成功调用若干次后开始失败
	failAfter map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:    map[string][]store.Record{},
		calls:     map[string]int{},
		failOn:    map[string]error{},
		failAfter: map[string]int{},
	}
}

func (my *fakeStore) countCall(method string) error {
	my.calls[method]++
	if err, ok := my.failOn[method]; ok {
		return err
	}
	if limit, ok := my.failAfter[method]; ok && my.calls[method] > limit {
		return fmt.Errorf("数据校验失败: %s 超出调用限制", method)
	}
	return nil
}

func (my *fakeStore) totalCalls() int {
	my.mu.Lock()
	defer my.mu.Unlock()
	total := 0
	for _, n := range my.calls {
		total += n
	}
	return total
}

func (my *fakeStore) rowCount(table string) int {
	my.mu.Lock()
	defer my.mu.Unlock()
	return len(my.tables[table])
}

func (my *fakeStore) rows(table string) []store.Record {
	my.mu.Lock()
	defer my.mu.Unlock()
	out := make([]store.Record, len(my.tables[table]))
	for i, row := range my.tables[table] {
		out[i] = cloneRow(row)
	}
	return out
}

func cloneRow(row store.Record) store.Record {
	out := make(store.Record, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func matchGroup(row store.Record, where map[string]any) bool {
	for col, want := range where {
		got := row[col]
		switch list := want.(type) {
		case []any:
			hit := false
			for _, item := range list {
				if fmt.Sprint(item) == fmt.Sprint(got) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		default:
			if want == nil {
				if got != nil {
					return false
				}
				continue
			}
			if fmt.Sprint(want) != fmt.Sprint(got) {
				return false
			}
		}
	}
	return true
}

func (my *fakeStore) match(e *store.Entity, row store.Record, q *store.Query) bool {
	if q == nil {
		q = &store.Query{}
	}
	if e.Paranoid && !q.WithDeleted && row[e.DeletedAt] != nil {
		return false
	}
	if q.Where != nil && !matchGroup(row, q.Where) {
		return false
	}
	if len(q.OrWhere) > 0 {
		hit := false
		for _, group := range q.OrWhere {
			if matchGroup(row, group) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func (my *fakeStore) Find(ctx context.Context, e *store.Entity, q *store.Query) ([]store.Record, error) {
	my.mu.Lock()
	defer my.mu.Unlock()
	if err := my.countCall("Find"); err != nil {
		return nil, err
	}
	var out []store.Record
	for _, row := range my.tables[e.Table] {
		if my.match(e, row, q) {
			out = append(out, cloneRow(row))
		}
	}
	if q != nil && len(q.Order) > 0 {
		ord := q.Order[0]
		sort.SliceStable(out, func(i, j int) bool {
			less := fmt.Sprint(out[i][ord.Column]) < fmt.Sprint(out[j][ord.Column])
			if ord.Desc {
				return !less
			}
			return less
		})
	}
	if q != nil && q.Offset > 0 && q.Offset < len(out) {
		out = out[q.Offset:]
	} else if q != nil && q.Offset >= len(out) && q.Offset > 0 {
		out = nil
	}
	if q != nil && q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (my *fakeStore) FindOne(ctx context.Context, e *store.Entity, q *store.Query) (store.Record, error) {
	my.mu.Lock()
	defer my.mu.Unlock()
	if err := my.countCall("FindOne"); err != nil {
		return nil, err
	}
	for _, row := range my.tables[e.Table] {
		if my.match(e, row, q) {
			return cloneRow(row), nil
		}
	}
	return nil, nil
}

func (my *fakeStore) Count(ctx context.Context, e *store.Entity, q *store.Query) (int64, error) {
	my.mu.Lock()
	defer my.mu.Unlock()
	if err := my.countCall("Count"); err != nil {
		return 0, err
	}
	var total int64
	for _, row := range my.tables[e.Table] {
		if my.match(e, row, q) {
			total++
		}
	}
	return total, nil
}

func (my *fakeStore) Create(ctx context.Context, e *store.Entity, payload store.Record) (store.Record, error) {
	my.mu.Lock()
	defer my.mu.Unlock()
	if err := my.countCall("Create"); err != nil {
		return nil, err
	}
	row := cloneRow(payload)
	if row[e.PrimaryKey] == nil {
		my.seq++
		row[e.PrimaryKey] = int(my.seq)
	}
	my.tables[e.Table] = append(my.tables[e.Table], row)
	return cloneRow(row), nil
}

func (my *fakeStore) CreateBulk(ctx context.Context, e *store.Entity, payloads []store.Record) (int64, error) {
	my.mu.Lock()
	defer my.mu.Unlock()
	if err := my.countCall("CreateBulk"); err != nil {
		return 0, err
	}
	for _, payload := range payloads {
		row := cloneRow(payload)
		if row[e.PrimaryKey] == nil {
			my.seq++
			row[e.PrimaryKey] = int(my.seq)
		}
		my.tables[e.Table] = append(my.tables[e.Table], row)
	}
	return int64(len(payloads)), nil
}

func (my *fakeStore) Update(ctx context.Context, e *store.Entity, payload store.Record, q *store.Query) (int64, error) {
	my.mu.Lock()
	defer my.mu.Unlock()
	if err := my.countCall("Update"); err != nil {
		return 0, err
	}
	var affected int64
	for _, row := range my.tables[e.Table] {
		if my.match(e, row, q) {
			for k, v := range payload {
				row[k] = v
			}
			affected++
		}
	}
	return affected, nil
}

func (my *fakeStore) Destroy(ctx context.Context, e *store.Entity, q *store.Query) (int64, error) {
	my.mu.Lock()
	defer my.mu.Unlock()
	if err := my.countCall("Destroy"); err != nil {
		return 0, err
	}
	var affected int64
	if e.Paranoid {
		for _, row := range my.tables[e.Table] {
			if my.match(e, row, q) {
				row[e.DeletedAt] = "now"
				affected++
			}
		}
		return affected, nil
	}
	var kept []store.Record
	for _, row := range my.tables[e.Table] {
		if my.match(e, row, q) {
			affected++
			continue
		}
		kept = append(kept, row)
	}
	my.tables[e.Table] = kept
	return affected, nil
}

func (my *fakeStore) Restore(ctx context.Context, e *store.Entity, q *store.Query) (int64, error) {
	my.mu.Lock()
	defer my.mu.Unlock()
	if err := my.countCall("Restore"); err != nil {
		return 0, err
	}
	scoped := &store.Query{Where: q.Where, OrWhere: q.OrWhere, WithDeleted: true}
	var affected int64
	for _, row := range my.tables[e.Table] {
		if my.match(e, row, scoped) && row[e.DeletedAt] != nil {
			row[e.DeletedAt] = nil
			affected++
		}
	}
	return affected, nil
}

// Transaction 整库快照,回调失败时恢复快照
func (my *fakeStore) Transaction(ctx context.Context, fn func(tx store.DataStore) error) error {
	my.mu.Lock()
	my.calls["Transaction"]++
	backup := make(map[string][]store.Record, len(my.tables))
	for table, rows := range my.tables {
		copied := make([]store.Record, len(rows))
		for i, row := range rows {
			copied[i] = cloneRow(row)
		}
		backup[table] = copied
	}
	seq := my.seq
	my.mu.Unlock()

	if err := fn(my); err != nil {
		my.mu.Lock()
		my.tables = backup
		my.seq = seq
		my.mu.Unlock()
		return err
	}
	return nil
}
