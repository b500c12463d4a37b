package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/brewrec/core"
)

// Seed 是 YAML 格式的演示/测试数据。
type Seed struct {
	Posts     []SeedPost     `yaml:"posts"`
	Bars      []SeedBar      `yaml:"bars"`
	Beverages []SeedBeverage `yaml:"beverages"`
	Behaviors []SeedBehavior `yaml:"behaviors"`
}

type SeedPost struct {
	ID        int64    `yaml:"id"`
	AuthorID  int64    `yaml:"author_id"`
	Location  string   `yaml:"location"`
	Tags      []string `yaml:"tags"`
	Views     int64    `yaml:"views"`
	Likes     int64    `yaml:"likes"`
	Favorites int64    `yaml:"favorites"`
	Comments  int64    `yaml:"comments"`
	AgeHours  float64  `yaml:"age_hours"` // 相对导入时刻的发布时间
}

type SeedBar struct {
	ID          int64   `yaml:"id"`
	Name        string  `yaml:"name"`
	City        string  `yaml:"city"`
	Latitude    float64 `yaml:"lat"`
	Longitude   float64 `yaml:"lon"`
	Rating      float64 `yaml:"rating"`
	ReviewCount int     `yaml:"reviews"`
	Beverages   string  `yaml:"beverages"`
	Inactive    bool    `yaml:"inactive"`
}

type SeedBeverage struct {
	ID     int64   `yaml:"id"`
	Name   string  `yaml:"name"`
	Type   string  `yaml:"type"`
	Origin string  `yaml:"origin"`
	Taste  string  `yaml:"taste"`
	Rating float64 `yaml:"rating"`
	Views  int64   `yaml:"views"`
}

type SeedBehavior struct {
	UserID   int64   `yaml:"user"`
	Target   string  `yaml:"target"`
	TargetID int64   `yaml:"id"`
	Behavior string  `yaml:"behavior"`
	Weight   float64 `yaml:"weight"`
	AgeHours float64 `yaml:"age_hours"`
}

// LoadSeedFile 读取 YAML 种子文件。
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &s, nil
}

func ago(now time.Time, hours float64) time.Time {
	return now.Add(-time.Duration(hours * float64(time.Hour)))
}

// Apply 把种子数据写入 repo。
// 行为未指定 weight 时用 weightOf 按行为类型填充（weightOf 可为 nil）。
func (s *Seed) Apply(ctx context.Context, repo Repository, now time.Time, weightOf func(core.BehaviorType) float64) error {
	for _, p := range s.Posts {
		post := core.Post{
			ID: p.ID, AuthorID: p.AuthorID, Location: p.Location,
			ViewCount: p.Views, LikeCount: p.Likes, FavoriteCount: p.Favorites, CommentCount: p.Comments,
			CreatedAt: ago(now, p.AgeHours),
		}
		if err := repo.AddPost(ctx, post, p.Tags...); err != nil {
			return err
		}
	}
	for _, b := range s.Bars {
		bar := core.Bar{
			ID: b.ID, Name: b.Name, City: b.City, Latitude: b.Latitude, Longitude: b.Longitude,
			AvgRating: b.Rating, ReviewCount: b.ReviewCount, MainBeverages: b.Beverages, Active: !b.Inactive,
		}
		if err := repo.AddBar(ctx, bar); err != nil {
			return err
		}
	}
	for _, b := range s.Beverages {
		bev := core.Beverage{
			ID: b.ID, Name: b.Name, Type: b.Type, Origin: b.Origin, TasteNotes: b.Taste,
			Rating: b.Rating, ViewCount: b.Views,
		}
		if err := repo.AddBeverage(ctx, bev); err != nil {
			return err
		}
	}
	for i, b := range s.Behaviors {
		tt, err := core.ParseTargetType(b.Target)
		if err != nil {
			return fmt.Errorf("behavior #%d: %w", i, err)
		}
		bt, err := core.ParseBehaviorType(b.Behavior)
		if err != nil {
			return fmt.Errorf("behavior #%d: %w", i, err)
		}
		ev := core.BehaviorEvent{
			UserID: b.UserID, TargetType: tt, TargetID: b.TargetID, BehaviorType: bt,
			Weight: b.Weight, CreatedAt: ago(now, b.AgeHours),
		}
		if ev.Weight == 0 && weightOf != nil {
			ev.Weight = weightOf(bt)
		}
		if err := repo.RecordBehavior(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
