// Package profile 提供酒类偏好画像与酒类热门度两个打分原语，供问答/检索类上游使用。
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rushteam/brewrec/behavior"
	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/pkg/sparse"
)

// DefaultPreferenceWindow 偏好画像的行为回看窗口
const DefaultPreferenceWindow = 90 * 24 * time.Hour

// 拼接检索文本时每个维度取的个数
const (
	queryTopTypes   = 5
	queryTopTastes  = 10
	queryTopOrigins = 5
)

// Preference 是用户的酒类偏好：类型 / 口味关键词 / 产地，各自按最大值归一化（最大项为 1）。
type Preference struct {
	UserID  int64         `json:"user_id"`
	Types   sparse.Vector `json:"types"`
	Tastes  sparse.Vector `json:"tastes"`
	Origins sparse.Vector `json:"origins"`
}

// QueryText 把偏好拼成检索文本：类型 Top5、口味 Top10、产地 Top5，空格分隔。
func (p *Preference) QueryText() string {
	if p == nil {
		return ""
	}
	var parts []string
	parts = append(parts, TopKeys(p.Types, queryTopTypes)...)
	parts = append(parts, TopKeys(p.Tastes, queryTopTastes)...)
	parts = append(parts, TopKeys(p.Origins, queryTopOrigins)...)
	return strings.Join(parts, " ")
}

// Extractor 从酒类行为中提取偏好画像。
type Extractor struct {
	Behaviors core.BehaviorReader
	Catalog   core.CatalogReader

	// Weights 默认 behavior.DefaultBeverageWeights
	Weights behavior.WeightTable
	// Window 默认 90 天
	Window time.Duration
	// Clock 默认 time.Now
	Clock func() time.Time
}

func NewExtractor(behaviors core.BehaviorReader, catalog core.CatalogReader) *Extractor {
	return &Extractor{Behaviors: behaviors, Catalog: catalog}
}

func (e *Extractor) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e *Extractor) weights() behavior.WeightTable {
	if e.Weights == nil {
		return behavior.DefaultBeverageWeights()
	}
	return e.Weights
}

// Extract 计算用户的酒类偏好。没有行为时返回 nil, nil。
func (e *Extractor) Extract(ctx context.Context, userID int64) (*Preference, error) {
	if userID == 0 {
		return nil, nil
	}
	now := e.now()
	window := e.Window
	if window <= 0 {
		window = DefaultPreferenceWindow
	}
	events, err := e.Behaviors.Behaviors(ctx, userID, core.TargetBeverage, now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("load beverage behaviors of user %d: %w", userID, err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(events))
	seen := make(map[int64]struct{}, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.TargetID]; !ok {
			seen[ev.TargetID] = struct{}{}
			ids = append(ids, ev.TargetID)
		}
	}
	beverages, err := e.Catalog.Beverages(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load beverages: %w", err)
	}
	byID := make(map[int64]core.Beverage, len(beverages))
	for _, b := range beverages {
		byID[b.ID] = b
	}

	field := func(get func(core.Beverage) []string) sparse.Vector {
		v := behavior.DecayedFeatureVector(events, e.weights(), func(id int64) []string {
			b, ok := byID[id]
			if !ok {
				return nil
			}
			return get(b)
		}, now)
		return sparse.NormalizeMax(v)
	}
	pref := &Preference{
		UserID:  userID,
		Types:   field(func(b core.Beverage) []string { return nonEmpty(b.Type) }),
		Tastes:  field(func(b core.Beverage) []string { return TasteKeywords(b.TasteNotes) }),
		Origins: field(func(b core.Beverage) []string { return nonEmpty(b.Origin) }),
	}
	logging.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Int("events", len(events)).
		Int("types", len(pref.Types)).
		Int("tastes", len(pref.Tastes)).
		Msg("beverage preference extracted")
	return pref, nil
}

func nonEmpty(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return []string{s}
}

// tasteSeparators 是口味描述中视为分隔符的中英文标点
const tasteSeparators = "，,。.、；;：:！!？?"

// TasteKeywords 按空白与常见中英文标点切分口味描述，只保留多于一个字符的词。
// 同一描述中重复出现的词会重复计分。
func TasteKeywords(notes string) []string {
	fields := strings.FieldsFunc(notes, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(tasteSeparators, r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

// TopKeys 返回分数最高的 n 个 key，分数降序、同分按 key 升序。
func TopKeys(m sparse.Vector, n int) []string {
	if len(m) == 0 {
		return nil
	}
	return sparse.TopKeys(m, n)
}
