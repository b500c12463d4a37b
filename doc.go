// Package brewrec 是酒类社区的混合推荐引擎。
//
// 设计要点：
// - 动态推荐：内容 / 用户协同过滤 / 热度 三路打分，按权重融合，去重保留最高分
// - 酒吧推荐：Haversine 距离与评分质量按权重方案合成综合分
// - Pipeline-first: 推荐流程由 Node 串联（Recall → Filter → ReRank），可由 YAML 配置
// - Labels-first: 结果携带来源标签，用于解释与观测
package brewrec

import "github.com/rushteam/brewrec/pipeline"

// 轻量 facade：便于直接 import "brewrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)

// NodeFunc 见 pipeline.NodeFunc。
var NodeFunc = pipeline.NodeFunc
