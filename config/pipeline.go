package config

import (
	"github.com/rushteam/brewrec/pipeline"
)

// DefaultPipelineConfig 用推荐配置生成内置 Pipeline：
//
//	recall.blend -> filter(seen) -> rerank.topn
//
// 候选集查询已经排除了用户行为过的动态，这里的 seen 过滤负责布隆过滤器覆盖的更长周期。
// blend 保留全部合并结果，截断只发生在最后的 rerank.topn，过滤不会让结果少于 Size。
func (c *Config) DefaultPipelineConfig() *pipeline.Config {
	r := c.Recommend
	postWeights := make(map[string]any, len(r.PostWeights))
	for k, v := range r.PostWeights {
		postWeights[k] = v
	}

	var pc pipeline.Config
	pc.Pipeline.Name = "feed"
	pc.Pipeline.Nodes = []pipeline.NodeConfig{
		{
			Type: "recall.blend",
			Config: map[string]any{
				"weights": map[string]any{
					"content":       r.Blend.Content,
					"collaborative": r.Blend.Collaborative,
					"popularity":    r.Blend.Popularity,
				},
				"merge":           r.Merge,
				"tag_weight":      r.TagWeight,
				"location_weight": r.LocationWeight,
				"window":          r.BehaviorWindow.String(),
				"top_k":           r.TopK,
				"parallelism":     r.Parallelism,
				"timeout":         r.StrategyTimeout.String(),
				"post_weights":    postWeights,
				"keep_all":        true,
			},
		},
		{
			Type: "filter",
			Config: map[string]any{
				"filters": []any{
					map[string]any{"type": "seen", "bloom": r.SeenBloom},
				},
			},
		},
		{Type: "rerank.topn"},
	}
	return &pc
}
