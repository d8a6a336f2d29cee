package gormql

import (
	"strings"
)

// NameOptions 控制生成名称的大小写规整
type NameOptions struct {
	// PascalCase 首字母大写
	PascalCase bool
	// NoCase 关闭大小写规整,纯拼接
	NoCase bool
}

// GenerateName 按模板生成字段名
// 模板由字面量和{token}占位符组成,占位符按代换表替换,缺失的代换替换为空串
// 大小写规整按片段进行:除首片段外每个片段首字母大写,片段内部大小写保留
func GenerateName(template string, subs map[string]string, opts NameOptions) (string, error) {
	if template == "" {
		return "", ErrInvalidTemplate
	}

	segments := tokenize(template, subs)
	if opts.NoCase {
		return strings.Join(segments, ""), nil
	}

	sb := strings.Builder{}
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if sb.Len() == 0 && !opts.PascalCase {
			sb.WriteString(lowerFirst(seg))
		} else {
			sb.WriteString(upperFirst(seg))
		}
	}
	return sb.String(), nil
}

// tokenize 将模板拆分为字面量与代换后的片段序列
func tokenize(template string, subs map[string]string) []string {
	var segments []string
	for i := 0; i < len(template); {
		if template[i] == '{' {
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				// 未闭合的占位符按字面量处理
				segments = append(segments, template[i:])
				break
			}
			token := template[i+1 : i+end]
			segments = append(segments, subs[token])
			i += end + 1
			continue
		}
		next := strings.IndexByte(template[i:], '{')
		if next < 0 {
			segments = append(segments, template[i:])
			break
		}
		segments = append(segments, template[i:i+next])
		i += next
	}
	return segments
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
