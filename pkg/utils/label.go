// Package utils 提供推荐结果的标签（Label）及其合并规则。
package utils

import (
	"slices"
	"strings"
)

// 合并后的分隔符
const (
	ValueSep  = "|"
	SourceSep = ","
)

// Label 随 Item 在 Pipeline 中透传，用于解释推荐理由（来自哪个策略、被哪个过滤器命中）。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank ...
}

// Values 返回合并过的全部取值（按合并顺序）。
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, ValueSep)
}

// Primary 返回第一个取值，即最先写入的来源。
func (l Label) Primary() string {
	v, _, _ := strings.Cut(l.Value, ValueSep)
	return v
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积，已存在的取值不重复追加。
// 多个策略命中同一动态时，recall_source 会记录全部命中的策略。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	if !slices.Contains(existing.Values(), incoming.Value) {
		merged.Value = existing.Value + ValueSep + incoming.Value
	}
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "" || slices.Contains(strings.Split(existing.Source, SourceSep), incoming.Source):
	default:
		merged.Source = existing.Source + SourceSep + incoming.Source
	}
	return merged
}
