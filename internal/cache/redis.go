// Package cache keeps comment list responses in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrimeme/backend/internal/models"
	"github.com/agrimeme/backend/internal/repository"
)

const allVersionKey = "comments:all:version"

// CommentCache stores comment pages under a per-post version number and the
// full list under a global one. Invalidate bumps both, which orphans every
// cached entry the write affects; orphans expire with the TTL. Entries are
// written under the version read before the database load, so a list loaded
// concurrently with a write lands on an orphaned key.
type CommentCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCommentCache(rdb *redis.Client, ttl time.Duration) *CommentCache {
	return &CommentCache{rdb: rdb, ttl: ttl}
}

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func versionKey(postID int64) string {
	return fmt.Sprintf("comments:post:%d:version", postID)
}

func pageKey(postID, version int64, req repository.PageRequest) string {
	dir := "asc"
	if req.SortDesc {
		dir = "desc"
	}
	return fmt.Sprintf("comments:post:%d:v%d:p%d:s%d:%s:%s", postID, version, req.Page, req.Size, req.SortField, dir)
}

func allKey(version int64) string {
	return fmt.Sprintf("comments:all:v%d", version)
}

// version returns -1 when Redis cannot be read.
func (c *CommentCache) version(ctx context.Context, key string) int64 {
	v, err := c.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		logErr("read "+key, err)
		return -1
	}
	return v
}

func (c *CommentCache) PostPage(ctx context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], int64, bool) {
	var page repository.Page[models.Comment]
	v := c.version(ctx, versionKey(postID))
	if v < 0 {
		return page, v, false
	}
	return page, v, c.get(ctx, pageKey(postID, v, req), &page)
}

func (c *CommentCache) StorePostPage(ctx context.Context, postID, version int64, req repository.PageRequest, page repository.Page[models.Comment]) {
	if version < 0 {
		return
	}
	c.set(ctx, pageKey(postID, version, req), page)
}

func (c *CommentCache) All(ctx context.Context) ([]models.Comment, int64, bool) {
	var comments []models.Comment
	v := c.version(ctx, allVersionKey)
	if v < 0 {
		return nil, v, false
	}
	return comments, v, c.get(ctx, allKey(v), &comments)
}

func (c *CommentCache) StoreAll(ctx context.Context, version int64, comments []models.Comment) {
	if version < 0 {
		return
	}
	c.set(ctx, allKey(version), comments)
}

func (c *CommentCache) Invalidate(ctx context.Context, postID int64) {
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, versionKey(postID))
	pipe.Incr(ctx, allVersionKey)
	if _, err := pipe.Exec(ctx); err != nil {
		logErr("invalidate", err)
	}
}

func (c *CommentCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logErr("get "+key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logErr("decode "+key, err)
		return false
	}
	return true
}

func (c *CommentCache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		logErr("encode "+key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logErr("set "+key, err)
	}
}

func logErr(op string, err error) {
	log.Printf("comment cache %s: %v", op, err)
}
