package utl

// CloneMap 浅拷贝一个映射
func CloneMap[V any](src map[string]V) map[string]V {
	if src == nil {
		return nil
	}
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MapKeys 返回映射的所有键
func MapKeys[V any](src map[string]V) []string {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	return keys
}
