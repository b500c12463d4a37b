// Package config 负责应用配置（koanf 分层加载 + validator 校验）与 Pipeline Node 注册表。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rushteam/brewrec/behavior"
	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/ingest"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/rank"
	"github.com/rushteam/brewrec/recall"
)

// Config 是 brewrec 的完整配置。
type Config struct {
	Log       logging.Config  `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	Recommend RecommendConfig `koanf:"recommend"`
	Venue     VenueConfig     `koanf:"venue"`
	Trending  TrendingConfig  `koanf:"trending"`

	// Ingest 行为事件的 Kafka 消费配置，brokers 为空时不启用
	Ingest ingest.KafkaConfig `koanf:"ingest"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=memory sqlite"`
	DSN    string `koanf:"dsn" validate:"required_if=Driver sqlite"`

	// RedisAddr 为空时使用进程内存储
	RedisAddr string `koanf:"redis_addr" validate:"omitempty,hostname_port"`
	RedisDB   int    `koanf:"redis_db" validate:"gte=0"`

	// SeedFile 启动时导入的 YAML 演示数据（可选）
	SeedFile string `koanf:"seed_file"`
}

type RecommendConfig struct {
	Blend recall.BlendWeights `koanf:"blend"`
	// Merge: max / priority / union
	Merge string `koanf:"merge" validate:"omitempty,oneof=max priority union"`

	TagWeight      float64 `koanf:"tag_weight" validate:"gte=0,lte=1"`
	LocationWeight float64 `koanf:"location_weight" validate:"gte=0,lte=1"`

	BehaviorWindow  time.Duration `koanf:"behavior_window" validate:"gt=0"`
	CandidateWindow time.Duration `koanf:"candidate_window" validate:"gt=0"`
	CandidateLimit  int           `koanf:"candidate_limit" validate:"gte=1"`
	TopK            int           `koanf:"top_k" validate:"gte=1"`
	Parallelism     int           `koanf:"parallelism" validate:"gte=0"`
	DefaultSize     int           `koanf:"default_size" validate:"gte=1,lte=200"`
	StrategyTimeout time.Duration `koanf:"strategy_timeout" validate:"gte=0"`

	// 行为权重覆盖，key 为行为类型（大小写不敏感）
	PostWeights     map[string]float64 `koanf:"post_weights" validate:"dive,gte=0"`
	BeverageWeights map[string]float64 `koanf:"beverage_weights" validate:"dive,gte=0"`

	// SeenBloom 是否启用长周期已读布隆过滤器
	SeenBloom bool `koanf:"seen_bloom"`

	// Pipeline 可选的 Pipeline YAML，为空时使用内置 Pipeline
	Pipeline string `koanf:"pipeline"`
}

type VenueConfig struct {
	Profile      string  `koanf:"profile"`
	RadiusKm     float64 `koanf:"radius_km" validate:"gt=0"`
	DefaultLimit int     `koanf:"default_limit" validate:"gte=1"`
}

type TrendingConfig struct {
	Key  string        `koanf:"key" validate:"required"`
	TTL  time.Duration `koanf:"ttl" validate:"gte=0"`
	Size int           `koanf:"size" validate:"gte=1"`
}

// Default 返回全部默认值。
func Default() *Config {
	return &Config{
		Log: logging.Config{Level: "info", Format: "json"},
		Store: StoreConfig{
			Driver: "memory",
		},
		Recommend: RecommendConfig{
			Blend:           recall.DefaultBlendWeights(),
			Merge:           "max",
			TagWeight:       recall.DefaultTagWeight,
			LocationWeight:  recall.DefaultLocationWeight,
			BehaviorWindow:  core.DefaultBehaviorWindow,
			CandidateWindow: core.DefaultCandidateWindow,
			CandidateLimit:  core.DefaultCandidateLimit,
			TopK:            core.DefaultTopKNeighbors,
			DefaultSize:     core.DefaultFeedSize,
		},
		Venue: VenueConfig{
			Profile:      rank.ProfileComprehensive,
			RadiusKm:     core.DefaultVenueRadiusKm,
			DefaultLimit: core.DefaultVenueLimit,
		},
		Trending: TrendingConfig{
			Key:  "brewrec:trending:posts",
			TTL:  time.Hour,
			Size: 100,
		},
		Ingest: ingest.KafkaConfig{
			Topic: "brewrec.behaviors",
			Group: "brewrec-ingest",
		},
	}
}

var validate = validator.New()

// Validate 先做字段级校验，再做跨字段的权重校验。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return core.NewInvalidInput(core.ModuleConfig, strings.Join(msgs, "; "))
		}
		return core.NewInvalidInput(core.ModuleConfig, err.Error())
	}
	checks := []func() error{
		c.Recommend.Blend.Validate,
		func() error {
			_, err := recall.NewContentRecall(nil, nil, c.Recommend.TagWeight, c.Recommend.LocationWeight)
			return err
		},
		func() error { _, err := recall.MergeStrategyByName(c.Recommend.Merge); return err },
		func() error { _, err := c.Recommend.PostWeightTable(); return err },
		func() error { _, err := c.Recommend.BeverageWeightTable(); return err },
		func() error { _, err := rank.ProfileByName(c.Venue.Profile); return err },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// PostWeightTable 返回动态打分权重表（默认表 + 覆盖）。
func (r RecommendConfig) PostWeightTable() (behavior.WeightTable, error) {
	return behavior.DefaultPostWeights().Override(r.PostWeights)
}

// BeverageWeightTable 返回酒类/行为记录权重表（默认表 + 覆盖）。
func (r RecommendConfig) BeverageWeightTable() (behavior.WeightTable, error) {
	return behavior.DefaultBeverageWeights().Override(r.BeverageWeights)
}
