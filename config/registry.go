package config

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pipeline"
)

// 内置 Node（recall.blend、recall.hot、filter、rerank.*）由 config/builders 在 init 中注册，
// 配置驱动的入口需要 import _ "github.com/rushteam/brewrec/config/builders"。

// NodeBuilder 与 pipeline.NodeBuilder 一致。
type NodeBuilder = pipeline.NodeBuilder

// Registry 是 Node 类型到构建函数的并发安全注册表。
type Registry struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]NodeBuilder)}
}

// Register 注册（或覆盖）一种 Node；空类型或 nil builder 忽略。
func (r *Registry) Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	r.mu.Lock()
	r.builders[typeName] = builder
	r.mu.Unlock()
}

// Types 返回已注册类型（升序）。
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Factory 把当前注册表快照成 NodeFactory。之后的注册不影响已生成的 Factory。
func (r *Registry) Factory() *pipeline.NodeFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := pipeline.NewNodeFactory()
	for t, b := range r.builders {
		f.Register(t, b)
	}
	return f
}

// Validate 校验 Pipeline 至少有一个 Node，且每个 Node 的类型都已注册。
func (r *Registry) Validate(cfg *pipeline.Config) error {
	if cfg == nil || len(cfg.Pipeline.Nodes) == 0 {
		return core.NewInvalidInput(core.ModuleConfig, "pipeline has no nodes")
	}
	r.mu.RLock()
	var unknown []string
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			r.mu.RUnlock()
			return core.NewInvalidInput(core.ModuleConfig, fmt.Sprintf("node #%d has no type", i))
		}
		if _, ok := r.builders[nc.Type]; !ok {
			unknown = append(unknown, nc.Type)
		}
	}
	r.mu.RUnlock()
	if len(unknown) > 0 {
		return core.NewInvalidInput(core.ModuleConfig,
			fmt.Sprintf("unsupported node types %q (supported: %v)", unknown, r.Types()))
	}
	return nil
}

var defaultRegistry = NewRegistry()

// Register 向默认注册表注册 Node。
func Register(typeName string, builder NodeBuilder) { defaultRegistry.Register(typeName, builder) }

// SupportedTypes 返回默认注册表中的类型。
func SupportedTypes() []string { return defaultRegistry.Types() }

// DefaultFactory 基于默认注册表构建 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory { return defaultRegistry.Factory() }

// ValidatePipelineConfig 使用默认注册表校验 Pipeline 配置。
func ValidatePipelineConfig(cfg *pipeline.Config) error { return defaultRegistry.Validate(cfg) }
