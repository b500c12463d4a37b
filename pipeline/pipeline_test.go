package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/brewrec/core"
)

type recordNode struct {
	name  string
	trace *[]string
	err   error
}

func (n *recordNode) Name() string { return n.name }
func (n *recordNode) Kind() Kind   { return KindReRank }

func (n *recordNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	*n.trace = append(*n.trace, n.name)
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(int64(len(items)+1))), nil
}

func TestPipeline_RunOrder(t *testing.T) {
	var trace []string
	p := &Pipeline{Name: "test", Nodes: []Node{
		&recordNode{name: "a", trace: &trace},
		&recordNode{name: "b", trace: &trace},
		&recordNode{name: "c", trace: &trace},
	}}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Errorf("len(out) = %d, want 3", len(out))
	}
	if got := len(trace); got != 3 || trace[0] != "a" || trace[2] != "c" {
		t.Errorf("trace = %v", trace)
	}
}

func TestPipeline_StopsOnError(t *testing.T) {
	var trace []string
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{
		&recordNode{name: "a", trace: &trace, err: boom},
		&recordNode{name: "b", trace: &trace},
	}}
	if _, err := p.Run(context.Background(), &core.RecommendContext{}, nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(trace) != 1 {
		t.Errorf("trace = %v, want only a", trace)
	}
}

func TestPipeline_Canceled(t *testing.T) {
	var trace []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{&recordNode{name: "a", trace: &trace}}}
	if _, err := p.Run(ctx, &core.RecommendContext{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestConfig_BuildPipeline(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
pipeline:
  name: feed
  nodes:
    - type: test.a
    - type: test.b
      config:
        n: 3
`))
	if err != nil {
		t.Fatal(err)
	}
	var trace []string
	var gotN any
	f := NewNodeFactory()
	f.Register("test.a", func(map[string]any, Deps) (Node, error) {
		return &recordNode{name: "a", trace: &trace}, nil
	})
	f.Register("test.b", func(cfg map[string]any, _ Deps) (Node, error) {
		gotN = cfg["n"]
		return &recordNode{name: "b", trace: &trace}, nil
	})
	p, err := cfg.BuildPipeline(f, Deps{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "feed" || len(p.Nodes) != 2 {
		t.Errorf("pipeline = %+v", p)
	}
	if gotN != 3 {
		t.Errorf("node config n = %v", gotN)
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "test.missing"})
	if _, err := cfg.BuildPipeline(f, Deps{}); !core.IsInvalidInput(err) {
		t.Errorf("unknown node err = %v", err)
	}
}

func TestNodeFunc(t *testing.T) {
	pin := NodeFunc("rerank.pin", KindReRank, func(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
		return append([]*core.Item{core.NewItem(99)}, items...), nil
	})
	p := &Pipeline{Nodes: []Node{pin, NodeFunc("noop", KindFilter, nil)}}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, []*core.Item{core.NewItem(1)})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != 99 {
		t.Errorf("out = %v", out)
	}
	if pin.Name() != "rerank.pin" || pin.Kind() != KindReRank {
		t.Errorf("node = %s/%s", pin.Name(), pin.Kind())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"feed.yaml": "pipeline:\n  name: feed\n  nodes:\n    - type: rerank.topn\n",
		"feed.JSON": `{"pipeline":{"name":"feed","nodes":[{"type":"rerank.topn","config":{"n":2}}]}}`,
		"bad.json":  `{"pipeline":`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"feed.yaml", "feed.JSON"} {
		cfg, err := Load(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if cfg.Pipeline.Name != "feed" || len(cfg.Pipeline.Nodes) != 1 || cfg.Pipeline.Nodes[0].Type != "rerank.topn" {
			t.Errorf("Load(%s) = %+v", name, cfg.Pipeline)
		}
	}
	if _, err := Load(filepath.Join(dir, "bad.json")); !core.IsInvalidInput(err) {
		t.Errorf("bad json err = %v", err)
	}
	if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
