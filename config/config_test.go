package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pipeline"
)

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brewrec.yaml")
	data := []byte(`
log:
  level: debug
recommend:
  blend:
    content: 0.5
    collaborative: 0.3
    popularity: 0.2
  top_k: 5
  post_weights:
    like: 2.5
venue:
  profile: distance_first
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BREWREC_RECOMMEND__TOP_K", "7")
	t.Setenv("BREWREC_TRENDING__TTL", "30m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
	if cfg.Recommend.Blend.Content != 0.5 || cfg.Recommend.Blend.Popularity != 0.2 {
		t.Errorf("blend = %+v", cfg.Recommend.Blend)
	}
	if cfg.Recommend.TopK != 7 {
		t.Errorf("top_k = %d, want env override 7", cfg.Recommend.TopK)
	}
	if cfg.Trending.TTL != 30*time.Minute {
		t.Errorf("trending.ttl = %v", cfg.Trending.TTL)
	}
	if cfg.Recommend.CandidateLimit != core.DefaultCandidateLimit {
		t.Errorf("candidate_limit = %d, want default", cfg.Recommend.CandidateLimit)
	}
	table, err := cfg.Recommend.PostWeightTable()
	if err != nil {
		t.Fatal(err)
	}
	if table[core.BehaviorLike] != 2.5 || table[core.BehaviorFavorite] != 3.0 {
		t.Errorf("post weights = %v", table)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"blend sum", func(c *Config) { c.Recommend.Blend.Popularity = 0.5 }},
		{"content split", func(c *Config) { c.Recommend.TagWeight = 0.9 }},
		{"unknown profile", func(c *Config) { c.Venue.Profile = "cheapest" }},
		{"unknown merge", func(c *Config) { c.Recommend.Merge = "avg" }},
		{"negative weight", func(c *Config) { c.Recommend.PostWeights = map[string]float64{"like": -1} }},
		{"unknown behavior", func(c *Config) { c.Recommend.BeverageWeights = map[string]float64{"poke": 1} }},
		{"sqlite without dsn", func(c *Config) { c.Store.Driver = "sqlite" }},
		{"bad driver", func(c *Config) { c.Store.Driver = "mysql" }},
		{"zero top k", func(c *Config) { c.Recommend.TopK = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if !core.IsInvalidInput(err) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load(missing file) should fail")
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	Register("test.node", func(map[string]any, pipeline.Deps) (pipeline.Node, error) { return nil, nil })
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "test.node"}}
	if err := ValidatePipelineConfig(cfg); err != nil {
		t.Errorf("registered node rejected: %v", err)
	}
	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: "rank.lr"})
	if err := ValidatePipelineConfig(cfg); !core.IsInvalidInput(err) {
		t.Errorf("unknown node err = %v", err)
	}
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(map[string]any, pipeline.Deps) (pipeline.Node, error) { return nil, nil })
	r.Register("", func(map[string]any, pipeline.Deps) (pipeline.Node, error) { return nil, nil })
	r.Register("nil", nil)
	if got := r.Types(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("Types() = %v", got)
	}

	tests := []struct {
		name  string
		nodes []pipeline.NodeConfig
		ok    bool
	}{
		{"registered", []pipeline.NodeConfig{{Type: "a"}}, true},
		{"empty pipeline", nil, false},
		{"missing type", []pipeline.NodeConfig{{Type: "a"}, {}}, false},
		{"unknown type", []pipeline.NodeConfig{{Type: "b"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &pipeline.Config{}
			cfg.Pipeline.Nodes = tt.nodes
			err := r.Validate(cfg)
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if !tt.ok && !core.IsInvalidInput(err) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
	if err := r.Validate(nil); !core.IsInvalidInput(err) {
		t.Errorf("Validate(nil) = %v", err)
	}

	f := r.Factory()
	r.Register("late", func(map[string]any, pipeline.Deps) (pipeline.Node, error) { return nil, nil })
	if got := f.Types(); len(got) != 1 {
		t.Errorf("factory snapshot types = %v", got)
	}
}
