package recall

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pipeline"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/pkg/metrics"
	"github.com/rushteam/brewrec/pkg/utils"
)

// WeightedSource 是参与融合的策略及其权重。
type WeightedSource struct {
	Source Source
	Weight float64
}

// BlendWeights 是三路融合的默认权重配置。
type BlendWeights struct {
	Content       float64 `koanf:"content" validate:"gte=0,lte=1"`
	Collaborative float64 `koanf:"collaborative" validate:"gte=0,lte=1"`
	Popularity    float64 `koanf:"popularity" validate:"gte=0,lte=1"`
}

// DefaultBlendWeights 返回默认的 0.4 / 0.4 / 0.2。
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{Content: 0.4, Collaborative: 0.4, Popularity: 0.2}
}

// Validate 校验每个权重在 [0,1]，且和为 1（误差 WeightEpsilon）。
func (w BlendWeights) Validate() error {
	return validateSplit(core.ModuleRecall, "blend", w.Content, w.Collaborative, w.Popularity)
}

// Blend 是一个 Recall Node：并发执行多个打分策略，按权重缩放后合并。
//
//   - 每个策略被要求返回 2×Size 个结果，给去重留出余量
//   - 单个策略失败只记录日志并按空结果处理；请求被取消时返回错误
//   - 全部策略为空时返回空列表（不是错误），由调用方回落到热门
//   - 默认截断到 Size；KeepAll 时保留全部合并结果，由下游的过滤与 rerank.topn 截断，
//     避免过滤（例如布隆过滤器误判）之后结果不足 Size
type Blend struct {
	Sources []WeightedSource
	Merge   MergeStrategy
	Timeout time.Duration // 每个策略的超时时间，0 表示不限
	KeepAll bool
}

// NewBlend 创建融合节点并校验权重之和。merge 为 nil 时使用 MaxMerge。
func NewBlend(sources []WeightedSource, merge MergeStrategy) (*Blend, error) {
	if len(sources) == 0 {
		return nil, core.NewInvalidInput(core.ModuleRecall, "blend needs at least one source")
	}
	weights := make([]float64, len(sources))
	for i, s := range sources {
		if s.Source == nil {
			return nil, core.NewInvalidInput(core.ModuleRecall, fmt.Sprintf("blend source #%d is nil", i))
		}
		weights[i] = s.Weight
	}
	if err := validateSplit(core.ModuleRecall, "blend", weights...); err != nil {
		return nil, err
	}
	if merge == nil {
		merge = MaxMerge{}
	}
	return &Blend{Sources: sources, Merge: merge}, nil
}

// NewDefaultBlend 用内容 / 协同过滤 / 热度三路策略创建融合节点。
func NewDefaultBlend(content, collaborative, popularity Source, w BlendWeights, merge MergeStrategy) (*Blend, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return NewBlend([]WeightedSource{
		{Source: content, Weight: w.Content},
		{Source: collaborative, Weight: w.Collaborative},
		{Source: popularity, Weight: w.Popularity},
	}, merge)
}

func (b *Blend) Name() string        { return "recall.blend" }
func (b *Blend) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口：忽略输入，输出融合后的结果。
func (b *Blend) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return b.Recall(ctx, rctx)
}

// Recall 实现 Source 接口，Blend 自身也可以作为更大融合中的一路。
func (b *Blend) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || len(b.Sources) == 0 {
		return nil, nil
	}
	size := rctx.Limit()
	sub := rctx.WithSize(2 * size)
	log := logging.Ctx(ctx)

	lists := make([][]*core.Item, len(b.Sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, ws := range b.Sources {
		g.Go(func() error {
			runCtx := gctx
			if b.Timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(gctx, b.Timeout)
				defer cancel()
			}

			start := time.Now()
			name := ws.Source.Name()
			items, err := ws.Source.Recall(runCtx, sub)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// 策略失败降级为空结果，不影响其他策略
				metrics.StrategyErrors.WithLabelValues(name).Inc()
				log.Warn().Err(err).Str("strategy", name).Msg("strategy failed, treated as empty")
				return nil
			}
			metrics.ObserveStrategy(name, start, len(items))

			for _, it := range items {
				it.Score *= ws.Weight
				it.PutLabel("blend_weight", utils.Label{Value: fmt.Sprintf("%s=%.2f", name, ws.Weight), Source: "recall"})
			}
			lists[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merge := b.Merge
	if merge == nil {
		merge = MaxMerge{}
	}
	limit := size
	if b.KeepAll {
		limit = 0
	}
	out := merge.Merge(lists, limit)
	log.Debug().Int64("user_id", rctx.UserID).Int("results", len(out)).Str("merge", merge.Name()).Msg("blend done")
	return out, nil
}
