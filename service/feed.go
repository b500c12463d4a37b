// Package service 组合存储、Pipeline 与排序器，对外提供动态推荐、酒吧推荐和行为记录。
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/filter"
	"github.com/rushteam/brewrec/pipeline"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/pkg/metrics"
	"github.com/rushteam/brewrec/recall"
)

// TrendingWindow 是热门榜的统计窗口（一周）。
const TrendingWindow = 7 * 24 * time.Hour

// 回落到热门榜的原因（metrics 标签）
const (
	FallbackAnonymous    = "anonymous"
	FallbackNoCandidates = "no_candidates"
	FallbackEmptyBlend   = "empty_blend"
)

// FeedService 是动态推荐入口。
//
//   - 未登录用户直接返回热门
//   - 已登录用户：取候选集（CandidateWindow 内、排除行为过的动态、最多 CandidateLimit 条）交给 Pipeline
//   - 候选集或 Pipeline 结果为空时回落到热门
type FeedService struct {
	Repo     core.Repository
	Pipeline *pipeline.Pipeline

	// Published 可选：读取预先发布的热门榜
	Published *recall.Hot

	CandidateWindow time.Duration
	CandidateLimit  int
	DefaultSize     int

	// Clock 默认 time.Now
	Clock func() time.Time
}

func (s *FeedService) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s *FeedService) size(size int) int {
	if size > 0 {
		return size
	}
	if s.DefaultSize > 0 {
		return s.DefaultSize
	}
	return core.DefaultFeedSize
}

func (s *FeedService) candidateLimit() int {
	if s.CandidateLimit > 0 {
		return s.CandidateLimit
	}
	return core.DefaultCandidateLimit
}

func (s *FeedService) candidateWindow() time.Duration {
	if s.CandidateWindow > 0 {
		return s.CandidateWindow
	}
	return core.DefaultCandidateWindow
}

// withRequestID 为没有 request_id 的请求生成一个。
func withRequestID(ctx context.Context) (context.Context, string) {
	if id := logging.RequestID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return logging.WithRequestID(ctx, id), id
}

// Recommend 返回 userID 的个性化动态推荐，最多 size 条（size<=0 使用默认值）。
func (s *FeedService) Recommend(ctx context.Context, userID int64, size int) ([]core.Result, error) {
	ctx, reqID := withRequestID(ctx)
	size = s.size(size)
	log := logging.Ctx(ctx)

	if userID <= 0 {
		return s.fallback(ctx, size, FallbackAnonymous)
	}

	now := s.now()
	seen, err := filter.SeenIDs(ctx, s.Repo, userID, core.TargetPost, time.Time{})
	if err != nil {
		return nil, core.WrapUnavailable(core.ModuleService, "load seen posts", err)
	}
	exclude := make([]int64, 0, len(seen))
	for id := range seen {
		exclude = append(exclude, id)
	}
	candidates, err := s.Repo.CandidatePosts(ctx, core.CandidateQuery{
		Since:      now.Add(-s.candidateWindow()),
		ExcludeIDs: exclude,
		Limit:      s.candidateLimit(),
	})
	if err != nil {
		return nil, core.WrapUnavailable(core.ModuleService, "load candidates", err)
	}
	if len(candidates) == 0 {
		return s.fallback(ctx, size, FallbackNoCandidates)
	}

	rctx := &core.RecommendContext{
		RequestID:  reqID,
		UserID:     userID,
		Scene:      "feed",
		Size:       size,
		Now:        now,
		Candidates: candidates,
	}
	if s.Pipeline == nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInternalError, "feed pipeline not configured")
	}
	items, err := s.Pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return s.fallback(ctx, size, FallbackEmptyBlend)
	}
	if len(items) > size {
		items = items[:size]
	}
	log.Info().
		Int64("user_id", userID).
		Int("candidates", len(candidates)).
		Int("results", len(items)).
		Msg("feed served")
	return recall.Results(items), nil
}

func (s *FeedService) fallback(ctx context.Context, size int, reason string) ([]core.Result, error) {
	metrics.FallbackTotal.WithLabelValues(reason).Inc()
	logging.Ctx(ctx).Debug().Str("reason", reason).Msg("serving trending fallback")
	return s.Trending(ctx, size)
}

// Trending 返回热门动态：优先读取已发布的热门榜，没有时按最近一周实时计算，
// 一周内没有动态时放宽到候选窗口。
func (s *FeedService) Trending(ctx context.Context, size int) ([]core.Result, error) {
	size = s.size(size)
	log := logging.Ctx(ctx)

	if s.Published != nil && s.Published.Store != nil {
		items, err := s.Published.Recall(ctx, &core.RecommendContext{Size: size})
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("read published trending failed, computing live")
		case len(items) > 0:
			return recall.Results(items), nil
		}
	}

	now := s.now()
	for _, window := range []time.Duration{TrendingWindow, s.candidateWindow()} {
		posts, err := s.Repo.CandidatePosts(ctx, core.CandidateQuery{
			Since: now.Add(-window),
			Limit: s.candidateLimit(),
		})
		if err != nil {
			return nil, core.WrapUnavailable(core.ModuleService, "load trending posts", err)
		}
		if len(posts) > 0 {
			return recall.Results(recall.RankByHotScore(posts, now, size)), nil
		}
	}
	return []core.Result{}, nil
}

// Similar 返回与 postID 有共同标签的动态；源动态没有标签或没有相似动态时回落到最新动态。
func (s *FeedService) Similar(ctx context.Context, postID int64, size int) ([]core.Result, error) {
	if postID <= 0 {
		return nil, core.NewInvalidInput(core.ModuleService, "post id must be positive")
	}
	size = s.size(size)

	sim := &recall.SimilarPosts{Catalog: s.Repo}
	items, err := sim.Similar(ctx, postID, size)
	if err != nil {
		return nil, core.WrapUnavailable(core.ModuleService, "similar posts", err)
	}
	if len(items) > 0 {
		return recall.Results(items), nil
	}

	latest, err := s.Repo.CandidatePosts(ctx, core.CandidateQuery{ExcludeIDs: []int64{postID}, Limit: size})
	if err != nil {
		return nil, core.WrapUnavailable(core.ModuleService, "latest posts", err)
	}
	out := make([]core.Result, len(latest))
	for i, p := range latest {
		out[i] = core.Result{ItemID: p.ID, Reason: core.ReasonLatest}
	}
	return out, nil
}
