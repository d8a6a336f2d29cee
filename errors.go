package gormql

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类别
var (
	// ErrInvalidTemplate 命名模板为空或缺失
	ErrInvalidTemplate = errors.New("命名模板无效")
	// ErrInvalidFieldName 类型串剥离后为空
	ErrInvalidFieldName = errors.New("字段类型名无效")
	// ErrUnknownTypeReference 引用了未声明的类型名
	ErrUnknownTypeReference = errors.New("引用了未声明的类型")
	// ErrAuthorizationDenied 授权函数拒绝本次调用
	ErrAuthorizationDenied = errors.New("授权被拒绝")
	// ErrExposureDenied 调用了白名单之外的字段
	ErrExposureDenied = errors.New("字段未开放调用")
	// ErrValidationFailed 数据存储层的约束校验失败
	ErrValidationFailed = errors.New("数据校验失败")
	// ErrOperationAborted 事务内任一环节失败,全部写入已回滚
	ErrOperationAborted = errors.New("操作中止")
	// ErrInvalidOperationInput 非批量操作收到了多个主键
	ErrInvalidOperationInput = errors.New("操作入参无效")
	// ErrDuplicateModel 模型名重复
	ErrDuplicateModel = errors.New("模型名重复")
)

// StatusError 携带HTTP状态码的错误
type StatusError struct {
	Err    error
	Status int
}

func (my *StatusError) Error() string {
	return fmt.Sprintf("%v (status=%d)", my.Err, my.Status)
}

func (my *StatusError) Unwrap() error {
	return my.Err
}

// StatusOf 按消息子串匹配状态码表,未命中返回0
func StatusOf(err error, table map[string]int) int {
	if err == nil || len(table) == 0 {
		return 0
	}
	msg := err.Error()
	for key, status := range table {
		if strings.Contains(msg, key) {
			return status
		}
	}
	return 0
}

// annotateError 为存储层错误附加状态码,未配置映射时原样返回
func annotateError(err error, table map[string]int) error {
	if err == nil {
		return nil
	}
	if status := StatusOf(err, table); status != 0 {
		return &StatusError{Err: err, Status: status}
	}
	return err
}
