// Package conv 从 YAML/JSON 解析出的 map[string]any 中读取 Node 配置。
package conv

import "time"

// ToFloat64 把解析器可能给出的数值类型（int、int64、uint64、float32、float64 等）统一为 float64。
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// ConfigGet 按 key 取 T，缺失或类型不符时返回 def。
func ConfigGet[T any](m map[string]any, key string, def T) T {
	if v, ok := m[key].(T); ok {
		return v
	}
	return def
}

// ConfigGetFloat64 兼容 YAML 中写成整数的数值。
func ConfigGetFloat64(m map[string]any, key string, def float64) float64 {
	if f, ok := ToFloat64(m[key]); ok {
		return f
	}
	return def
}

// ConfigGetInt64 兼容 JSON 解析出的 float64，小数部分截断。
func ConfigGetInt64(m map[string]any, key string, def int64) int64 {
	if f, ok := ToFloat64(m[key]); ok {
		return int64(f)
	}
	return def
}

// ConfigGetDuration 字符串按 time.ParseDuration 解析（"720h"），数值按秒；解析失败返回 def。
func ConfigGetDuration(m map[string]any, key string, def time.Duration) time.Duration {
	switch v := m[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case nil:
	default:
		if f, ok := ToFloat64(v); ok {
			return time.Duration(f * float64(time.Second))
		}
	}
	return def
}

// ConfigGetInt64Slice 取 ID 列表，非数值元素被跳过。
func ConfigGetInt64Slice(m map[string]any, key string) []int64 {
	raw, _ := m[key].([]any)
	var out []int64
	for _, e := range raw {
		if f, ok := ToFloat64(e); ok {
			out = append(out, int64(f))
		}
	}
	return out
}

func ConfigGetMap(m map[string]any, key string) map[string]any {
	sub, _ := m[key].(map[string]any)
	return sub
}

// MapToFloat64 只保留可转为数值的项，nil 输入返回 nil。
func MapToFloat64(m map[string]any) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if f, ok := ToFloat64(v); ok {
			out[k] = f
		}
	}
	return out
}
