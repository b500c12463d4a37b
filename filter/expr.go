package filter

import (
	"context"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/dsl"
)

// ExprFilter 过滤掉使表达式为 true 的 Item，例如 `item.score < 0.01`。
type ExprFilter struct {
	Expr string
	prg  cel.Program
}

// NewExprFilter 编译表达式，语法错误在构建时返回。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.NewInvalidInput(core.ModuleFilter, err.Error())
	}
	return &ExprFilter{Expr: expr, prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if f.prg == nil {
		return dsl.NewEval(item, rctx).Evaluate(f.Expr)
	}
	return dsl.Run(f.prg, item, rctx)
}
