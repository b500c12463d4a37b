package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/rushteam/brewrec/core"
)

// SQLiteRepository 是基于 SQLite（modernc.org/sqlite，纯 Go）的 core.Repository。
// 时间以 Unix 纳秒存储。
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite 打开（必要时创建）数据库并执行建表。path 可以是 ":memory:"。
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// 每个连接都是独立的内存库
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	r := &SQLiteRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepository) Close() error { return r.db.Close() }

func (r *SQLiteRepository) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS user_behaviors (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  target_type TEXT NOT NULL,
	  target_id INTEGER NOT NULL,
	  behavior_type TEXT NOT NULL,
	  weight REAL NOT NULL,
	  created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ub_user ON user_behaviors(user_id, target_type, created_at);
	CREATE INDEX IF NOT EXISTS idx_ub_target ON user_behaviors(target_type, created_at);
	CREATE TABLE IF NOT EXISTS posts (
	  id INTEGER PRIMARY KEY,
	  author_id INTEGER NOT NULL DEFAULT 0,
	  location TEXT NOT NULL DEFAULT '',
	  view_count INTEGER NOT NULL DEFAULT 0,
	  like_count INTEGER NOT NULL DEFAULT 0,
	  favorite_count INTEGER NOT NULL DEFAULT 0,
	  comment_count INTEGER NOT NULL DEFAULT 0,
	  created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);
	CREATE TABLE IF NOT EXISTS post_tags (
	  post_id INTEGER NOT NULL,
	  tag TEXT NOT NULL,
	  PRIMARY KEY (post_id, tag)
	);
	CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);
	CREATE TABLE IF NOT EXISTS bars (
	  id INTEGER PRIMARY KEY,
	  name TEXT NOT NULL,
	  city TEXT NOT NULL DEFAULT '',
	  latitude REAL NOT NULL,
	  longitude REAL NOT NULL,
	  avg_rating REAL NOT NULL DEFAULT 0,
	  review_count INTEGER NOT NULL DEFAULT 0,
	  main_beverages TEXT NOT NULL DEFAULT '',
	  active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_bars_geo ON bars(latitude, longitude);
	CREATE TABLE IF NOT EXISTS beverages (
	  id INTEGER PRIMARY KEY,
	  name TEXT NOT NULL,
	  type TEXT NOT NULL DEFAULT '',
	  origin TEXT NOT NULL DEFAULT '',
	  taste_notes TEXT NOT NULL DEFAULT '',
	  rating REAL NOT NULL DEFAULT 0,
	  view_count INTEGER NOT NULL DEFAULT 0
	);
	`)
	return err
}

var (
	_ core.Repository = (*SQLiteRepository)(nil)
	_ CatalogWriter   = (*SQLiteRepository)(nil)
)

func toUnix(t time.Time) int64 { return t.UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }

// sinceUnix 把窗口起点转为查询参数，零值表示不限时间。
func sinceUnix(t time.Time) int64 {
	if t.IsZero() {
		return math.MinInt64
	}
	return toUnix(t)
}

// inList 把 ID / 标签列表编码为单个 JSON 参数，配合 "IN (" + sub + ")" 使用。
// 逐个绑定 "?" 会在列表超过 SQLite 的变量上限（32766）时失败，json_each 只占一个变量。
func inList[T ~int64 | ~string](vals []T) (string, []any) {
	b, err := json.Marshal(vals)
	if err != nil {
		// 整数与字符串切片的编码不会失败
		panic(err)
	}
	return "SELECT value FROM json_each(?)", []any{string(b)}
}

func (r *SQLiteRepository) RecordBehavior(ctx context.Context, ev core.BehaviorEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_behaviors(user_id, target_type, target_id, behavior_type, weight, created_at) VALUES(?,?,?,?,?,?)`,
		ev.UserID, string(ev.TargetType), ev.TargetID, string(ev.BehaviorType), ev.Weight, toUnix(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert behavior: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddPost(ctx context.Context, p core.Post, tags ...string) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO posts(id, author_id, location, view_count, like_count, favorite_count, comment_count, created_at) VALUES(?,?,?,?,?,?,?,?)`,
		p.ID, p.AuthorID, p.Location, p.ViewCount, p.LikeCount, p.FavoriteCount, p.CommentCount, toUnix(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert post %d: %w", p.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id=?`, p.ID); err != nil {
		return fmt.Errorf("clear tags of post %d: %w", p.ID, err)
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO post_tags(post_id, tag) VALUES(?,?)`, p.ID, tag); err != nil {
			return fmt.Errorf("insert tag of post %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) AddBar(ctx context.Context, b core.Bar) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO bars(id, name, city, latitude, longitude, avg_rating, review_count, main_beverages, active) VALUES(?,?,?,?,?,?,?,?,?)`,
		b.ID, b.Name, b.City, b.Latitude, b.Longitude, b.AvgRating, b.ReviewCount, b.MainBeverages, b.Active)
	if err != nil {
		return fmt.Errorf("insert bar %d: %w", b.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) AddBeverage(ctx context.Context, b core.Beverage) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO beverages(id, name, type, origin, taste_notes, rating, view_count) VALUES(?,?,?,?,?,?,?)`,
		b.ID, b.Name, b.Type, b.Origin, b.TasteNotes, b.Rating, b.ViewCount)
	if err != nil {
		return fmt.Errorf("insert beverage %d: %w", b.ID, err)
	}
	return nil
}

const behaviorColumns = `id, user_id, target_type, target_id, behavior_type, weight, created_at`

func scanBehaviors(rows *sql.Rows) ([]core.BehaviorEvent, error) {
	defer rows.Close()
	var out []core.BehaviorEvent
	for rows.Next() {
		var (
			ev         core.BehaviorEvent
			targetType string
			behavior   string
			createdAt  int64
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &targetType, &ev.TargetID, &behavior, &ev.Weight, &createdAt); err != nil {
			return nil, err
		}
		ev.TargetType = core.TargetType(targetType)
		ev.BehaviorType = core.BehaviorType(behavior)
		ev.CreatedAt = fromUnix(createdAt)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Behaviors(ctx context.Context, userID int64, targetType core.TargetType, since time.Time) ([]core.BehaviorEvent, error) {
	return r.BehaviorsOf(ctx, core.BehaviorQuery{UserIDs: []int64{userID}, TargetType: targetType, Since: since})
}

func (r *SQLiteRepository) BehaviorsOf(ctx context.Context, q core.BehaviorQuery) ([]core.BehaviorEvent, error) {
	var (
		where = []string{"target_type = ?"}
		args  = []any{string(q.TargetType)}
	)
	if len(q.UserIDs) > 0 {
		ph, a := inList(q.UserIDs)
		where = append(where, "user_id IN ("+ph+")")
		args = append(args, a...)
	}
	if len(q.BehaviorTypes) > 0 {
		names := make([]string, len(q.BehaviorTypes))
		for i, b := range q.BehaviorTypes {
			names[i] = string(b)
		}
		ph, a := inList(names)
		where = append(where, "behavior_type IN ("+ph+")")
		args = append(args, a...)
	}
	if q.TargetID != 0 {
		where = append(where, "target_id = ?")
		args = append(args, q.TargetID)
	}
	if !q.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, toUnix(q.Since))
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+behaviorColumns+` FROM user_behaviors WHERE `+strings.Join(where, " AND ")+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query behaviors: %w", err)
	}
	return scanBehaviors(rows)
}

func (r *SQLiteRepository) DistinctUserIDs(ctx context.Context, targetType core.TargetType, since time.Time) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM user_behaviors WHERE target_type = ? AND created_at >= ? ORDER BY user_id`,
		string(targetType), sinceUnix(since))
	if err != nil {
		return nil, fmt.Errorf("query distinct users: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Tags(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	ph, args := inList(postIDs)
	rows, err := r.db.QueryContext(ctx, `SELECT post_id, tag FROM post_tags WHERE post_id IN (`+ph+`) ORDER BY post_id, rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id  int64
			tag string
		)
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		out[id] = append(out[id], tag)
	}
	return out, rows.Err()
}

const postColumns = `id, author_id, location, view_count, like_count, favorite_count, comment_count, created_at`

func scanPosts(rows *sql.Rows) ([]core.Post, error) {
	defer rows.Close()
	var out []core.Post
	for rows.Next() {
		var (
			p         core.Post
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Location, &p.ViewCount, &p.LikeCount, &p.FavoriteCount, &p.CommentCount, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = fromUnix(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Posts 按 postIDs 的顺序返回，缺失的 ID 跳过。
func (r *SQLiteRepository) Posts(ctx context.Context, postIDs []int64) ([]core.Post, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	ph, args := inList(postIDs)
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id IN (`+ph+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	found, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]core.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]core.Post, 0, len(found))
	for _, id := range postIDs {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *SQLiteRepository) CandidatePosts(ctx context.Context, q core.CandidateQuery) ([]core.Post, error) {
	var (
		where = []string{"created_at >= ?"}
		args  = []any{sinceUnix(q.Since)}
	)
	if len(q.ExcludeIDs) > 0 {
		ph, a := inList(q.ExcludeIDs)
		where = append(where, "id NOT IN ("+ph+")")
		args = append(args, a...)
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidate posts: %w", err)
	}
	return scanPosts(rows)
}

func (r *SQLiteRepository) PostsByTags(ctx context.Context, tags []string, excludeID int64) (map[int64]int, error) {
	out := make(map[int64]int)
	if len(tags) == 0 {
		return out, nil
	}
	ph, args := inList(tags)
	args = append(args, excludeID)
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id, COUNT(DISTINCT tag) FROM post_tags WHERE tag IN (`+ph+`) AND post_id != ? GROUP BY post_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts by tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Bars(ctx context.Context, q core.BarQuery) ([]core.Bar, error) {
	var (
		where []string
		args  []any
	)
	if q.ActiveOnly {
		where = append(where, "active = 1")
	}
	if q.Box != nil {
		where = append(where, "latitude BETWEEN ? AND ?")
		if q.Box.CrossesAntimeridian() {
			where = append(where, "(longitude >= ? OR longitude <= ?)")
		} else {
			where = append(where, "longitude BETWEEN ? AND ?")
		}
		args = append(args, q.Box.MinLat, q.Box.MaxLat, q.Box.MinLon, q.Box.MaxLon)
	}
	query := `SELECT id, name, city, latitude, longitude, avg_rating, review_count, main_beverages, active FROM bars`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()
	var out []core.Bar
	for rows.Next() {
		var b core.Bar
		if err := rows.Scan(&b.ID, &b.Name, &b.City, &b.Latitude, &b.Longitude, &b.AvgRating, &b.ReviewCount, &b.MainBeverages, &b.Active); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Beverages(ctx context.Context, ids []int64) ([]core.Beverage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, args := inList(ids)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, origin, taste_notes, rating, view_count FROM beverages WHERE id IN (`+ph+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query beverages: %w", err)
	}
	defer rows.Close()
	byID := make(map[int64]core.Beverage)
	for rows.Next() {
		var b core.Beverage
		if err := rows.Scan(&b.ID, &b.Name, &b.Type, &b.Origin, &b.TasteNotes, &b.Rating, &b.ViewCount); err != nil {
			return nil, err
		}
		byID[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]core.Beverage, 0, len(byID))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
