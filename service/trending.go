package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/recall"
	"github.com/rushteam/brewrec/store"
)

// TrendingMeta 与热门榜一起发布，记录榜单的生成时间。
type TrendingMeta struct {
	PublishedAt time.Time `json:"published_at"`
	Count       int       `json:"count"`
	WindowHours float64   `json:"window_hours"`
}

// TrendingPublisher 定期计算热门榜并写入有序集合，供未登录用户和回落路径读取。
type TrendingPublisher struct {
	Catalog core.CatalogReader
	KV      core.KeyValueStore
	Key     string
	TTL     time.Duration

	// Size 榜单长度，默认 100
	Size int
	// Window 统计窗口，默认一周
	Window time.Duration
	Clock  func() time.Time
}

// MetaKey 返回榜单元数据的 key。
func (p *TrendingPublisher) MetaKey() string { return p.Key + ":meta" }

// Publish 重新计算并原子替换热门榜，返回榜单长度。
func (p *TrendingPublisher) Publish(ctx context.Context) (int, error) {
	if p.KV == nil || p.Key == "" {
		return 0, core.NewInvalidInput(core.ModuleService, "trending publisher needs a store and a key")
	}
	now := time.Now()
	if p.Clock != nil {
		now = p.Clock()
	}
	window := p.Window
	if window <= 0 {
		window = TrendingWindow
	}
	size := p.Size
	if size <= 0 {
		size = 100
	}

	posts, err := p.Catalog.CandidatePosts(ctx, core.CandidateQuery{
		Since: now.Add(-window),
		Limit: core.DefaultCandidateLimit,
	})
	if err != nil {
		return 0, core.WrapUnavailable(core.ModuleService, "load trending posts", err)
	}
	items := recall.RankByHotScore(posts, now, size)
	members := make([]core.ScoredMember, len(items))
	for i, it := range items {
		members[i] = core.ScoredMember{Member: strconv.FormatInt(it.ID, 10), Score: it.Score}
	}
	if err := p.KV.ZReplace(ctx, p.Key, members, p.TTL); err != nil {
		return 0, core.WrapUnavailable(core.ModuleService, "publish trending", err)
	}
	meta := TrendingMeta{PublishedAt: now, Count: len(members), WindowHours: window.Hours()}
	if err := store.SetJSON(ctx, p.KV, p.MetaKey(), meta, p.TTL); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", p.MetaKey()).Msg("write trending meta failed")
	}
	logging.Ctx(ctx).Info().Str("key", p.Key).Int("count", len(members)).Msg("trending published")
	return len(members), nil
}

// Meta 读取最近一次发布的元数据。
func (p *TrendingPublisher) Meta(ctx context.Context) (*TrendingMeta, error) {
	var meta TrendingMeta
	if err := store.GetJSON(ctx, p.KV, p.MetaKey(), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Run 立即发布一次，之后每隔 every 发布一次，直到 ctx 结束。单次失败只记录日志。
func (p *TrendingPublisher) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		return core.NewInvalidInput(core.ModuleService, "publish interval must be positive")
	}
	log := logging.Component("trending")
	publish := func() {
		if _, err := p.Publish(ctx); err != nil {
			log.Error().Err(err).Msg("publish trending failed")
		}
	}
	publish()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			publish()
		}
	}
}
