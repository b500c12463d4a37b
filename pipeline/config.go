package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/brewrec/core"
)

// Config 描述一条 Pipeline，可由 YAML 或 JSON 给出：
//
//	pipeline:
//	  name: feed
//	  nodes:
//	    - type: recall.blend
//	      config: {top_k: 200}
//	    - type: rerank.topn
type Config struct {
	Pipeline struct {
		Name  string       `yaml:"name" json:"name"`
		Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
	} `yaml:"pipeline" json:"pipeline"`
}

type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config" json:"config"`
}

// Deps 是 Node 构建时注入的存储依赖，KV 可以为 nil。
type Deps struct {
	Repository core.Repository
	KV         core.KeyValueStore
}

// NodeBuilder 根据配置与依赖构建 Node。
type NodeBuilder func(cfg map[string]any, deps Deps) (Node, error)

// Load 读取 Pipeline 配置文件，按扩展名区分 .json，其余一律按 YAML 解析。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.NewInvalidInput(core.ModulePipeline, "parse yaml: "+err.Error())
	}
	return &cfg, nil
}

func ParseJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, core.NewInvalidInput(core.ModulePipeline, "parse json: "+err.Error())
	}
	return &cfg, nil
}

// BuildPipeline 按顺序构建全部 Node，任一失败即返回。
func (c *Config) BuildPipeline(factory *NodeFactory, deps Deps) (*Pipeline, error) {
	p := &Pipeline{Name: c.Pipeline.Name, Nodes: make([]Node, 0, len(c.Pipeline.Nodes))}
	for i, nc := range c.Pipeline.Nodes {
		node, err := factory.Build(nc.Type, nc.Config, deps)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s node #%d (%s): %w", p.Name, i, nc.Type, err)
		}
		p.Nodes = append(p.Nodes, node)
	}
	return p, nil
}

// NodeFactory 持有 类型 -> 构建函数 的映射，非并发安全；并发注册请使用 config.Registry。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]NodeBuilder)}
}

func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Types 返回已注册类型（升序）。
func (f *NodeFactory) Types() []string {
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

func (f *NodeFactory) Build(nodeType string, cfg map[string]any, deps Deps) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, core.NewInvalidInput(core.ModulePipeline,
			fmt.Sprintf("unknown node type %q (supported: %v)", nodeType, f.Types()))
	}
	return builder(cfg, deps)
}
