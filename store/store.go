// Package store 提供 core 中存储接口的实现：
//   - MemoryStore / RedisStore：core.KeyValueStore（热门榜、已读布隆过滤器）
//   - BreakerStore：为远程 KeyValueStore 加熔断
//   - MemoryRepository / SQLiteRepository：core.Repository（行为日志与目录数据）
//
// 接口定义在 core 包，此包只包含实现。
//
//	var kv core.KeyValueStore = NewMemoryStore()
//	var repo core.Repository = NewMemoryRepository()
package store
