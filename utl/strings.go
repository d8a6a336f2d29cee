package utl

import (
	"strings"
)

// JoinString 连接多个字符串
func JoinString(elem ...string) string {
	if len(elem) == 0 {
		return ""
	}

	// 预计算总长度以优化内存分配
	totalLen := 0
	for _, e := range elem {
		totalLen += len(e)
	}

	b := strings.Builder{}
	b.Grow(totalLen)
	for _, e := range elem {
		b.WriteString(e)
	}
	return b.String()
}

// StartWithAny 检查字符串是否以给定的任一前缀开始
func StartWithAny(s string, list ...string) (string, bool) {
	if len(list) == 0 || s == "" {
		return "", false
	}
	for _, p := range list {
		if p != "" && strings.HasPrefix(s, p) {
			return p, true
		}
	}
	return "", false
}

// EndWithAny 检查字符串是否以给定的任一后缀结束(忽略大小写)
func EndWithAny(s string, list ...string) (string, bool) {
	if len(list) == 0 || s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, p := range list {
		if p != "" && strings.HasSuffix(lower, strings.ToLower(p)) {
			return p, true
		}
	}
	return "", false
}
