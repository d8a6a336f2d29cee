package gormql

import (
	"strings"
)

// 列表语义返回码
const (
	FIELD_SCALAR            = 0 // 非列表
	FIELD_LIST              = 1 // [T] 可空列表,元素可空
	FIELD_LIST_REQUIRED     = 2 // [T]! 非空列表
	FIELD_LIST_ITEM_REQUIRE = 3 // [T!] 元素非空的列表
)

// SanitizeField 剥离类型串中的[]和!,返回裸类型名
func SanitizeField(s string) (string, error) {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '!', ' ':
			return -1
		}
		return r
	}, s)
	if name == "" {
		return "", ErrInvalidFieldName
	}
	return name, nil
}

// IsFieldArray 判断类型串的列表语义
// 0非列表 1可空列表 2非空列表 3元素非空的列表
// 括号不配对的串按非列表处理
func IsFieldArray(s string) int {
	open := strings.IndexByte(s, '[')
	closed := strings.IndexByte(s, ']')
	if open < 0 || closed < 0 || closed < open {
		return FIELD_SCALAR
	}
	// 紧贴]之前的!表示元素非空
	if closed > 0 && s[closed-1] == '!' {
		return FIELD_LIST_ITEM_REQUIRE
	}
	// ]之后的!表示列表非空
	if strings.Contains(s[closed:], "!") {
		return FIELD_LIST_REQUIRED
	}
	return FIELD_LIST
}

// IsFieldRequired 类型串是否带非空标记
func IsFieldRequired(s string) bool {
	return strings.Contains(s, "!")
}

// IsListRequired 判断]之后是否另有非空标记
// [T!]!同时携带元素非空与列表非空两层标记
func IsListRequired(s string) bool {
	closed := strings.IndexByte(s, ']')
	if closed < 0 {
		return false
	}
	return strings.Contains(s[closed:], "!")
}
