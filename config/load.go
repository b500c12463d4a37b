package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix 环境变量前缀，嵌套层级用 "__" 分隔：BREWREC_RECOMMEND__TOP_K=20
	EnvPrefix = "BREWREC_"

	// PathEnvVar 指定配置文件路径
	PathEnvVar = "BREWREC_CONFIG"

	// DefaultPath 未指定路径时尝试读取的配置文件
	DefaultPath = "brewrec.yaml"
)

// Load 按 默认值 → YAML 文件 → 环境变量 的顺序分层加载并校验配置。
//
// path 为空时依次尝试 $BREWREC_CONFIG 与 ./brewrec.yaml；显式指定的文件不存在时报错，
// 默认路径不存在时跳过。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if p := resolvePath(path); p != "" {
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", p, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func resolvePath(path string) string {
	if path != "" {
		return path
	}
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// envKey: BREWREC_RECOMMEND__TOP_K -> recommend.top_k
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}
