// Package dsl 提供基于 CEL (Common Expression Language) 的 Item 表达式求值。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/brewrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	// programs 缓存已编译的表达式
	programs sync.Map // map[string]cel.Program
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Compile 编译表达式并缓存，表达式必须返回布尔值。
//
// 可用变量：
//   - item.id / item.score / item.reason
//   - label.<key>：Item Label 的 Value，例如 label.recall_source == "recall.hot"
//   - rctx.user_id / rctx.scene / rctx.size / rctx.params
//
// 访问不存在的 label 会求值失败，先用 has(label.key) 判断存在性。
func Compile(expr string) (cel.Program, error) {
	if p, ok := programs.Load(expr); ok {
		return p.(cel.Program), nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q must return bool, got %s", expr, t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	programs.Store(expr, prg)
	return prg, nil
}

// Eval 是绑定了 Item 与请求上下文的表达式解释器。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 求值表达式，空表达式视为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	prg, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return Run(prg, e.item, e.rctx)
}

// Run 在给定 Item 上执行已编译的程序。
func Run(prg cel.Program, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}
	in := map[string]any{
		"item": map[string]any{
			"id":     item.ID,
			"score":  item.Score,
			"reason": item.Reason,
		},
		"label": labels,
		"rctx":  map[string]any{},
	}
	if rctx != nil {
		params := rctx.Params
		if params == nil {
			params = map[string]any{}
		}
		in["rctx"] = map[string]any{
			"user_id": rctx.UserID,
			"scene":   rctx.Scene,
			"size":    int64(rctx.Limit()),
			"params":  params,
		}
	}
	return in
}
