// Package pipeline 把推荐逻辑拆成可组合、可配置的 Node 链。
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/pkg/metrics"
)

// Pipeline 按顺序执行 Nodes，上一个 Node 的输出是下一个的输入。
type Pipeline struct {
	Name  string
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	log := logging.Ctx(ctx)
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		elapsed := time.Since(start)
		metrics.NodeDuration.WithLabelValues(node.Name(), string(node.Kind())).Observe(elapsed.Seconds())
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		log.Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("elapsed", elapsed).
			Msg("node done")
		cur = next
	}
	return cur, nil
}
