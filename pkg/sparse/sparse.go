// Package sparse 提供稀疏向量（map 形式）的相似度与归一化工具。
//
// 所有函数对空向量、零范数都短路返回 0，不会产生 NaN。
package sparse

import (
	"math"
	"sort"
)

// Vector 是以特征名（标签、地点、目标 ID 字符串等）为 key 的稀疏向量。
type Vector map[string]float64

// Norm 返回向量的 L2 范数。
func Norm[K comparable](v map[K]float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// Cosine 计算两个稀疏向量的余弦相似度：dot(共同 key) / (‖a‖·‖b‖)。
// 任一范数为 0 或没有共同 key 时返回 0；结果截断到 [0,1]（权重均为非负）。
func Cosine[K comparable](a, b map[K]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// 遍历较小的一侧
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	overlap := false
	for k, x := range small {
		if y, ok := large[k]; ok {
			dot += x * y
			overlap = true
		}
	}
	if !overlap {
		return 0
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Clamp01(dot / (na * nb))
}

// NormalizeSum 原地把向量缩放为各项之和为 1；和为 0 时原样返回。
func NormalizeSum[K comparable](v map[K]float64) map[K]float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	if total <= 0 {
		return v
	}
	for k, x := range v {
		v[k] = x / total
	}
	return v
}

// NormalizeMax 返回按最大值缩放后的新向量（最大项为 1）；最大值为 0 时原样返回。
func NormalizeMax[K comparable](v map[K]float64) map[K]float64 {
	if len(v) == 0 {
		return v
	}
	maxV := math.Inf(-1)
	for _, x := range v {
		if x > maxV {
			maxV = x
		}
	}
	if maxV == 0 {
		return v
	}
	out := make(map[K]float64, len(v))
	for k, x := range v {
		out[k] = x / maxV
	}
	return out
}

// Uniform 构造每个 key 权重相等（1/N）的向量，重复 key 只计一次。
func Uniform(keys []string) Vector {
	if len(keys) == 0 {
		return Vector{}
	}
	out := make(Vector, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	w := 1.0 / float64(len(keys))
	for k := range out {
		out[k] = w
	}
	return out
}

// Indicator 构造单个 key 权重为 1 的向量；key 为空时返回空向量。
func Indicator(key string) Vector {
	if key == "" {
		return Vector{}
	}
	return Vector{key: 1}
}

// Clamp01 把 x 截断到 [0,1]，NaN 视为 0。
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// TopKeys 返回分数最高的 n 个 key（分数降序，同分按 key 升序）；n<=0 表示全部。
func TopKeys(v Vector, n int) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if v[keys[i]] != v[keys[j]] {
			return v[keys[i]] > v[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
