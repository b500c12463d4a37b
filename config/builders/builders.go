// Package builders 在 init 中把内置 Node 注册到 config 注册表。
package builders

import (
	"fmt"

	"github.com/rushteam/brewrec/behavior"
	"github.com/rushteam/brewrec/config"
	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/filter"
	"github.com/rushteam/brewrec/pipeline"
	"github.com/rushteam/brewrec/pkg/conv"
	"github.com/rushteam/brewrec/recall"
	"github.com/rushteam/brewrec/rerank"
)

func init() {
	config.Register("recall.blend", BuildBlendNode)
	config.Register("recall.hot", BuildHotNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func needRepository(node string, deps pipeline.Deps) error {
	if deps.Repository == nil {
		return core.NewInvalidInput(core.ModuleConfig, node+" needs a repository")
	}
	return nil
}

// BuildBlendNode 构建 内容 / 协同过滤 / 热度 三路融合节点。
//
//	weights: {content: 0.4, collaborative: 0.4, popularity: 0.2}
//	merge: max | priority | union
//	tag_weight / location_weight: 内容策略的标签/地点权重
//	window: 行为回看窗口，例如 "720h"
//	top_k / parallelism: 协同过滤参数
//	timeout: 单个策略的超时
//	post_weights: {like: 2.0, ...} 行为打分权重覆盖
//	keep_all: 不截断合并结果，交给下游 rerank.topn
func BuildBlendNode(cfg map[string]any, deps pipeline.Deps) (pipeline.Node, error) {
	if err := needRepository("recall.blend", deps); err != nil {
		return nil, err
	}
	repo := deps.Repository

	def := recall.DefaultBlendWeights()
	wm := conv.ConfigGetMap(cfg, "weights")
	weights := recall.BlendWeights{
		Content:       conv.ConfigGetFloat64(wm, "content", def.Content),
		Collaborative: conv.ConfigGetFloat64(wm, "collaborative", def.Collaborative),
		Popularity:    conv.ConfigGetFloat64(wm, "popularity", def.Popularity),
	}

	table, err := behavior.DefaultPostWeights().Override(conv.MapToFloat64(conv.ConfigGetMap(cfg, "post_weights")))
	if err != nil {
		return nil, err
	}
	window := conv.ConfigGetDuration(cfg, "window", core.DefaultBehaviorWindow)

	content, err := recall.NewContentRecall(repo, repo,
		conv.ConfigGetFloat64(cfg, "tag_weight", 0),
		conv.ConfigGetFloat64(cfg, "location_weight", 0))
	if err != nil {
		return nil, err
	}
	content.Weights = table
	content.Window = window

	cf := &recall.UserBasedCF{
		Behaviors:   repo,
		Weights:     table,
		Window:      window,
		TopK:        int(conv.ConfigGetInt64(cfg, "top_k", core.DefaultTopKNeighbors)),
		Parallelism: int(conv.ConfigGetInt64(cfg, "parallelism", 0)),
	}

	merge, err := recall.MergeStrategyByName(conv.ConfigGet(cfg, "merge", ""))
	if err != nil {
		return nil, err
	}
	blend, err := recall.NewDefaultBlend(content, cf, &recall.Hot{}, weights, merge)
	if err != nil {
		return nil, err
	}
	blend.Timeout = conv.ConfigGetDuration(cfg, "timeout", 0)
	blend.KeepAll = conv.ConfigGet(cfg, "keep_all", false)
	return blend, nil
}

// BuildHotNode 构建热度节点；有候选集时实时计算，否则读取 key 对应的已发布热门榜。
func BuildHotNode(cfg map[string]any, deps pipeline.Deps) (pipeline.Node, error) {
	return &recall.Hot{Store: deps.KV, Key: conv.ConfigGet(cfg, "key", "")}, nil
}

// BuildFilterNode 构建过滤节点。
//
//	filters:
//	  - type: seen       # window: "720h"（可选），bloom: true 需要 KV
//	  - type: blacklist  # item_ids: [1, 2]，key: 存储中的黑名单（可选）
//	  - type: expr       # expr: "item.score < 0.01"
func BuildFilterNode(cfg map[string]any, deps pipeline.Deps) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, core.NewInvalidInput(core.ModuleConfig, "filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for i, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			return nil, core.NewInvalidInput(core.ModuleConfig, fmt.Sprintf("filter #%d is not a map", i))
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "seen":
			if err := needRepository("seen filter", deps); err != nil {
				return nil, err
			}
			var seen *filter.SeenBloom
			if conv.ConfigGet(filterMap, "bloom", false) && deps.KV != nil {
				seen = filter.NewSeenBloom(deps.KV)
				if prefix := conv.ConfigGet(filterMap, "key_prefix", ""); prefix != "" {
					seen.KeyPrefix = prefix
				}
			}
			filters = append(filters, filter.NewSeenFilter(deps.Repository, conv.ConfigGetDuration(filterMap, "window", 0), seen))

		case "blacklist":
			filters = append(filters, filter.NewBlacklistFilter(
				conv.ConfigGetInt64Slice(filterMap, "item_ids"), deps.KV, conv.ConfigGet(filterMap, "key", "")))

		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)

		default:
			return nil, core.NewInvalidInput(core.ModuleConfig, fmt.Sprintf("unknown filter type %q", filterType))
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildTopNNode(cfg map[string]any, _ pipeline.Deps) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildDiversityNode(cfg map[string]any, _ pipeline.Deps) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey:    conv.ConfigGet(cfg, "label_key", ""),
		MaxPerValue: int(conv.ConfigGetInt64(cfg, "max_per_value", 0)),
		Demote:      conv.ConfigGet(cfg, "demote", false),
	}, nil
}
