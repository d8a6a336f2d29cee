package gormql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/ichaly/gormql/internal"
	"github.com/ichaly/gormql/store"
)

// mutationContext 单次变更调用的瞬时状态
type mutationContext struct {
	params   graphql.ResolveParams
	model    *internal.Model
	kind     internal.OperationKind
	where    map[string]any // 以列名为键的目标条件
	bulk     bool
	snapshot any // 删除前的记录快照,供后置钩子使用
}

// mutationResolver 标准变更的状态机入口
// AUTHORIZE -> OVERWRITE -> BEFORE -> (事务: OPERATE -> NESTED -> EXTEND) -> LOG
func (my *Generator) mutationResolver(m *internal.Model, kind internal.OperationKind, name string, bulk bool) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if err := my.checkExposure(name, my.exposureMutations(), my.exposureThrow()); err != nil {
			return nil, err
		}
		if err := my.authorize(p); err != nil {
			return nil, err
		}

		if overwrite, ok := m.Config.Hooks.OverwriteOf(kind); ok {
			return overwrite(p.Context, p)
		}

		mc := &mutationContext{params: p, model: m, kind: kind, bulk: bulk}
		if err := my.resolveWhere(mc); err != nil {
			return nil, err
		}
		if err := my.runBefore(p.Context, mc); err != nil {
			return nil, err
		}

		var result any
		execute := func(tx store.DataStore) error {
			data, err := my.operate(p.Context, tx, mc)
			if err != nil {
				return err
			}
			data, err = my.extendMutation(p.Context, tx, mc, data)
			if err != nil {
				return err
			}
			result = data
			return nil
		}

		if my.cfg.Transactions {
			if err := my.store.Transaction(p.Context, execute); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrOperationAborted, annotateError(err, my.cfg.ErrorStatus))
			}
		} else {
			if err := execute(my.store); err != nil {
				return nil, annotateError(err, my.cfg.ErrorStatus)
			}
		}

		my.logOperation(p.Context, m, kind, result)
		return result, nil
	}
}

// resolveWhere 计算更新/删除/恢复的目标条件
// 非批量路径收到主键列表时直接报错,不会静默展开
func (my *Generator) resolveWhere(mc *mutationContext) error {
	pk := mc.model.PrimaryKey()
	if pk == nil {
		switch mc.kind {
		case internal.UPDATE, internal.DESTROY, internal.RESTORE:
			// 无主键无法定位目标,空条件会波及全表
			return fmt.Errorf("%w: %s 未声明主键", ErrInvalidOperationInput, mc.model.Name)
		}
		return nil
	}
	switch mc.kind {
	case internal.UPDATE:
		if mc.bulk {
			return nil // 批量更新逐记录取键
		}
		payload, ok := mc.params.Args[mc.model.Name].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s 缺少输入对象", ErrInvalidOperationInput, mc.model.Name)
		}
		key, ok := payload[pk.Name]
		if !ok || key == nil {
			return fmt.Errorf("%w: 更新输入缺少主键 %s", ErrInvalidOperationInput, pk.Name)
		}
		mc.where = map[string]any{pk.ColumnName(): key}
	case internal.DESTROY, internal.RESTORE:
		key := mc.params.Args[pk.Name]
		if key == nil {
			return fmt.Errorf("%w: 缺少主键参数 %s", ErrInvalidOperationInput, pk.Name)
		}
		if _, many := key.([]any); many && !mc.bulk {
			return fmt.Errorf("%w: 非批量删除不接受主键列表", ErrInvalidOperationInput)
		}
		mc.where = map[string]any{pk.ColumnName(): key}
	}
	return nil
}

// runBefore 执行前置钩子,模型级优先于全局,在事务开启前完成
func (my *Generator) runBefore(ctx context.Context, mc *mutationContext) error {
	hook, ok := mc.model.Config.Hooks.BeforeOf(mc.kind)
	if !ok {
		hook, ok = my.cfg.Before[mc.kind]
	}
	if !ok || hook == nil {
		return nil
	}
	return hook(ctx, my.store, mc.params, mc.where)
}

// extendMutation 执行后置钩子,非nil返回值替换最终结果
// 删除路径钩子接收删除前的快照而非行数
func (my *Generator) extendMutation(ctx context.Context, tx store.DataStore, mc *mutationContext, data any) (any, error) {
	hook, ok := mc.model.Config.Hooks.ExtendOf(mc.kind)
	if !ok {
		hook, ok = my.cfg.Extend[mc.kind]
	}
	if !ok || hook == nil {
		return data, nil
	}
	input := data
	if mc.kind == internal.DESTROY {
		input = mc.snapshot
	}
	result, err := hook(ctx, tx, mc.params, input)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return data, nil
}

// operate 执行主体写入与嵌套关联写入
func (my *Generator) operate(ctx context.Context, tx store.DataStore, mc *mutationContext) (any, error) {
	m := mc.model
	switch mc.kind {
	case internal.CREATE:
		if mc.bulk {
			return my.operateBulkCreate(ctx, tx, mc)
		}
		payload, ok := mc.params.Args[m.Name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s 缺少输入对象", ErrInvalidOperationInput, m.Name)
		}
		return my.createRecord(ctx, tx, m, payload)

	case internal.UPDATE:
		if mc.bulk {
			return my.operateBulkUpdate(ctx, tx, mc)
		}
		payload := mc.params.Args[m.Name].(map[string]any)
		return my.updateRecord(ctx, tx, m, payload, mc.where)

	case internal.DESTROY:
		// 删除前抓取快照,供后置钩子使用
		if mc.bulk {
			rows, err := tx.Find(ctx, m.Entity(), &store.Query{Where: mc.where})
			if err != nil {
				return nil, err
			}
			mc.snapshot = my.toRecords(m, rows)
		} else {
			row, err := tx.FindOne(ctx, m.Entity(), &store.Query{Where: mc.where})
			if err != nil {
				return nil, err
			}
			mc.snapshot = my.toRecord(m, row)
		}
		affected, err := tx.Destroy(ctx, m.Entity(), &store.Query{Where: mc.where})
		if err != nil {
			return nil, err
		}
		return int(affected), nil

	case internal.RESTORE:
		if _, err := tx.Restore(ctx, m.Entity(), &store.Query{Where: mc.where}); err != nil {
			return nil, err
		}
		row, err := tx.FindOne(ctx, m.Entity(), &store.Query{Where: mc.where})
		if err != nil {
			return nil, err
		}
		return my.toRecord(m, row), nil
	}
	return nil, fmt.Errorf("%w: 未知操作 %s", ErrInvalidOperationInput, mc.kind)
}

// operateBulkCreate 批量创建
// 配置了批次列时写入本次调用的UUID,按需回读该批次
func (my *Generator) operateBulkCreate(ctx context.Context, tx store.DataStore, mc *mutationContext) (any, error) {
	m := mc.model
	payloads, ok := payloadList(mc.params.Args[m.Name])
	if !ok {
		return nil, fmt.Errorf("%w: %s 批量创建需要输入列表", ErrInvalidOperationInput, m.Name)
	}

	bulk := m.Config.Bulk
	batch := ""
	rows := make([]store.Record, len(payloads))
	for i, payload := range payloads {
		rows[i] = my.toRow(m, payload)
	}
	if bulk != nil && bulk.Column != "" {
		batch = uuid.NewString()
		column := my.columnOf(m, bulk.Column)
		for _, row := range rows {
			row[column] = batch
		}
	}

	affected, err := tx.CreateBulk(ctx, m.Entity(), rows)
	if err != nil {
		return nil, err
	}
	if bulk == nil || !bulk.Returning || batch == "" {
		// 仅计数时结果形状短路为整数
		return int(affected), nil
	}
	created, err := tx.Find(ctx, m.Entity(), &store.Query{
		Where: map[string]any{my.columnOf(m, bulk.Column): batch},
	})
	if err != nil {
		return nil, err
	}
	return my.toRecords(m, created), nil
}

// operateBulkUpdate 批量更新,逐记录按主键分发,返回影响行数总和
// 事务句柄是唯一互斥资源,记录间串行执行
func (my *Generator) operateBulkUpdate(ctx context.Context, tx store.DataStore, mc *mutationContext) (any, error) {
	m := mc.model
	pk := m.PrimaryKey()
	payloads, ok := payloadList(mc.params.Args[m.Name])
	if !ok {
		return nil, fmt.Errorf("%w: %s 批量更新需要输入列表", ErrInvalidOperationInput, m.Name)
	}
	var total int64
	for _, payload := range payloads {
		key, has := payload[pk.Name]
		if !has || key == nil {
			return nil, fmt.Errorf("%w: 批量更新的记录缺少主键 %s", ErrInvalidOperationInput, pk.Name)
		}
		affected, err := my.applyUpdate(ctx, tx, m, payload, map[string]any{pk.ColumnName(): key})
		if err != nil {
			return nil, err
		}
		total += affected
	}
	return int(total), nil
}

// createRecord 创建单条记录并递归处理嵌套关联
func (my *Generator) createRecord(ctx context.Context, tx store.DataStore, m *internal.Model, payload map[string]any) (store.Record, error) {
	created, err := tx.Create(ctx, m.Entity(), my.toRow(m, payload))
	if err != nil {
		return nil, err
	}
	record := my.toRecord(m, created)
	if my.cfg.NestedMutations {
		if err := my.nestedCreate(ctx, tx, m, payload, record); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// updateRecord 更新单条记录,处理嵌套关联后回读完整记录
func (my *Generator) updateRecord(ctx context.Context, tx store.DataStore, m *internal.Model, payload map[string]any, where map[string]any) (store.Record, error) {
	if _, err := my.applyUpdate(ctx, tx, m, payload, where); err != nil {
		return nil, err
	}
	if my.cfg.NestedMutations {
		pk := m.PrimaryKey()
		if err := my.nestedUpdate(ctx, tx, m, payload, payload[pk.Name]); err != nil {
			return nil, err
		}
	}
	// 更新只报告影响行数,类型化返回需要回读
	row, err := tx.FindOne(ctx, m.Entity(), &store.Query{Where: where})
	if err != nil {
		return nil, err
	}
	return my.toRecord(m, row), nil
}

// applyUpdate 执行一次更新写入,主键不参与赋值
func (my *Generator) applyUpdate(ctx context.Context, tx store.DataStore, m *internal.Model, payload map[string]any, where map[string]any) (int64, error) {
	row := my.toRow(m, payload)
	if pk := m.PrimaryKey(); pk != nil {
		delete(row, pk.ColumnName())
	}
	if len(row) == 0 {
		return 0, nil
	}
	return tx.Update(ctx, m.Entity(), row, &store.Query{Where: where})
}

// nestedCreate 创建路径的嵌套关联处理
// 载荷中与关联同名且为非空列表的键逐一分发
// 共享同一事务句柄,关联之间串行执行
func (my *Generator) nestedCreate(ctx context.Context, tx store.DataStore, m *internal.Model, payload map[string]any, parent store.Record) error {
	pk := m.PrimaryKey()
	if pk == nil {
		return nil
	}
	parentKey := parent[pk.Name]

	for name, assoc := range m.Associations {
		children, ok := payloadList(payload[name])
		if !ok || len(children) == 0 {
			continue
		}
		target := my.index[assoc.Target]
		if target == nil {
			continue
		}
		switch assoc.Kind {
		case internal.HAS_MANY:
			for _, child := range children {
				// 父主键写入子表外键后递归创建
				child[my.attributeOf(target, assoc.ForeignKey)] = parentKey
				if _, err := my.createRecord(ctx, tx, target, child); err != nil {
					return err
				}
			}
		case internal.BELONGS_TO_MANY:
			for _, child := range children {
				if err := my.linkThrough(ctx, tx, assoc, target, child, parentKey); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// linkThrough 多对多嵌套:先建或定位目标记录,再写中间表边记录
// 载荷中_through键携带边属性
func (my *Generator) linkThrough(ctx context.Context, tx store.DataStore, assoc *internal.Association, target *internal.Model, child map[string]any, parentKey any) error {
	through := my.index[assoc.Through.Model]
	if through == nil {
		return fmt.Errorf("%w: 中间模型 %s", ErrUnknownTypeReference, assoc.Through.Model)
	}
	targetPk := target.PrimaryKey()

	targetKey := child[targetPk.Name]
	if targetKey == nil {
		created, err := my.createRecord(ctx, tx, target, child)
		if err != nil {
			return err
		}
		targetKey = created[targetPk.Name]
	}

	edge := store.Record{
		assoc.Through.SourceKey: parentKey,
		assoc.Through.TargetKey: targetKey,
	}
	if extra, ok := child[THROUGH_KEY].(map[string]any); ok {
		for k, v := range my.toRow(through, extra) {
			edge[k] = v
		}
	}
	_, err := tx.Create(ctx, through.Entity(), edge)
	return err
}

// nestedUpdate 更新路径的嵌套关联处理
// 记录按_op标记分类,缺省按主键有无推断,分组后批量分发
func (my *Generator) nestedUpdate(ctx context.Context, tx store.DataStore, m *internal.Model, payload map[string]any, parentKey any) error {
	for name, assoc := range m.Associations {
		children, ok := payloadList(payload[name])
		if !ok || len(children) == 0 {
			continue
		}
		target := my.index[assoc.Target]
		if target == nil {
			continue
		}
		creates, updates, deletes := classifyNested(target, children)
		var err error
		switch assoc.Kind {
		case internal.HAS_MANY:
			err = my.dispatchHasMany(ctx, tx, assoc, target, creates, updates, deletes, parentKey)
		case internal.BELONGS_TO_MANY:
			err = my.dispatchThrough(ctx, tx, assoc, target, creates, updates, deletes, parentKey)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// classifyNested 按操作标记分类嵌套记录
// 无标记时按主键有无推断:无键创建,有键更新;KEEP记录跳过
func classifyNested(m *internal.Model, children []map[string]any) (creates, updates, deletes []map[string]any) {
	pk := m.PrimaryKey()
	for _, child := range children {
		op, _ := child[OP_TAG].(string)
		if op == "" {
			if pk != nil && child[pk.Name] != nil {
				op = OP_UPDATE
			} else {
				op = OP_CREATE
			}
		}
		delete(child, OP_TAG)
		switch op {
		case OP_CREATE:
			creates = append(creates, child)
		case OP_UPDATE:
			updates = append(updates, child)
		case OP_DELETE:
			deletes = append(deletes, child)
		}
	}
	return
}

// dispatchHasMany 一对多的分组分发
// 创建组逐条递归,更新组逐键批量,删除组合并为一次IN删除
func (my *Generator) dispatchHasMany(ctx context.Context, tx store.DataStore, assoc *internal.Association, target *internal.Model, creates, updates, deletes []map[string]any, parentKey any) error {
	pk := target.PrimaryKey()
	fk := my.attributeOf(target, assoc.ForeignKey)

	for _, child := range creates {
		child[fk] = parentKey
		if _, err := my.createRecord(ctx, tx, target, child); err != nil {
			return err
		}
	}
	for _, child := range updates {
		key := child[pk.Name]
		if key == nil {
			return fmt.Errorf("%w: 嵌套更新的记录缺少主键 %s", ErrInvalidOperationInput, pk.Name)
		}
		if _, err := my.applyUpdate(ctx, tx, target, child, map[string]any{pk.ColumnName(): key}); err != nil {
			return err
		}
	}
	if len(deletes) > 0 {
		keys := make([]any, 0, len(deletes))
		for _, child := range deletes {
			if key := child[pk.Name]; key != nil {
				keys = append(keys, key)
			}
		}
		if len(keys) > 0 {
			q := &store.Query{Where: map[string]any{pk.ColumnName(): keys}}
			if _, err := tx.Destroy(ctx, target.Entity(), q); err != nil {
				return err
			}
		}
	}
	return nil
}

// dispatchThrough 多对多的分组分发
// 创建组建边(必要时先建目标),更新组改目标记录,删除组只拆边不动目标
// 边的删除用每行键组的OR合并成一次调用
func (my *Generator) dispatchThrough(ctx context.Context, tx store.DataStore, assoc *internal.Association, target *internal.Model, creates, updates, deletes []map[string]any, parentKey any) error {
	through := my.index[assoc.Through.Model]
	if through == nil {
		return fmt.Errorf("%w: 中间模型 %s", ErrUnknownTypeReference, assoc.Through.Model)
	}
	pk := target.PrimaryKey()

	for _, child := range creates {
		if err := my.linkThrough(ctx, tx, assoc, target, child, parentKey); err != nil {
			return err
		}
	}
	for _, child := range updates {
		key := child[pk.Name]
		if key == nil {
			return fmt.Errorf("%w: 嵌套更新的记录缺少主键 %s", ErrInvalidOperationInput, pk.Name)
		}
		delete(child, THROUGH_KEY)
		if _, err := my.applyUpdate(ctx, tx, target, child, map[string]any{pk.ColumnName(): key}); err != nil {
			return err
		}
	}
	if len(deletes) > 0 {
		groups := make([]map[string]any, 0, len(deletes))
		for _, child := range deletes {
			if key := child[pk.Name]; key != nil {
				groups = append(groups, map[string]any{
					assoc.Through.SourceKey: parentKey,
					assoc.Through.TargetKey: key,
				})
			}
		}
		if len(groups) > 0 {
			if _, err := tx.Destroy(ctx, through.Entity(), &store.Query{OrWhere: groups}); err != nil {
				return err
			}
		}
	}
	return nil
}
