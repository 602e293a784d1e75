package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"drivequest/internal/catalog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	documentKey   = "drivequest:catalog:document"
	fieldCourses  = "courses"
	fieldQuizzes  = "quizzes"
	fillFlightKey = "catalog"
)

// CatalogCache caches the catalog document in Redis (one hash, a JSON field per section)
// and falls back to a loader on cache miss.
//
//	HSET drivequest:catalog:document courses {json} quizzes {json}
type CatalogCache struct {
	client *redis.Client
	loader catalog.Loader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	logger *zap.Logger
}

func NewCatalogCache(client *redis.Client, loader catalog.Loader, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

func (c *CatalogCache) Load(ctx context.Context) (catalog.Document, error) {
	if doc, ok := c.cached(ctx); ok {
		return doc, nil
	}

	result, err, _ := c.sf.Do(fillFlightKey, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if doc, ok := c.cached(ctx); ok {
			return doc, nil
		}

		doc, err := c.loader.Load(ctx)
		if err != nil {
			return catalog.Document{}, err
		}
		if err := c.store(ctx, doc); err != nil {
			c.logger.Warn("catalog cache fill failed", zap.Error(err))
		}
		return doc, nil
	})
	if err != nil {
		return catalog.Document{}, err
	}
	return result.(catalog.Document), nil
}

// Invalidate drops the cached document so the next Load goes to the loader.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, documentKey).Err()
}

func (c *CatalogCache) cached(ctx context.Context) (catalog.Document, bool) {
	fields, err := c.client.HGetAll(ctx, documentKey).Result()
	if err != nil || len(fields) == 0 {
		return catalog.Document{}, false
	}
	doc, err := decodeDocument(fields)
	if err != nil {
		// A corrupt entry is treated as a miss and overwritten by the next fill.
		c.logger.Warn("discarding cached catalog", zap.Error(err))
		return catalog.Document{}, false
	}
	return doc, true
}

func (c *CatalogCache) store(ctx context.Context, doc catalog.Document) error {
	courses, err := json.Marshal(doc.Courses)
	if err != nil {
		return fmt.Errorf("encode courses: %w", err)
	}
	quizzes, err := json.Marshal(doc.Quizzes)
	if err != nil {
		return fmt.Errorf("encode quizzes: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, documentKey)
	pipe.HSet(ctx, documentKey, fieldCourses, courses, fieldQuizzes, quizzes)
	if ttl := c.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, documentKey, ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func decodeDocument(fields map[string]string) (catalog.Document, error) {
	var doc catalog.Document
	courses, ok := fields[fieldCourses]
	if !ok {
		return doc, fmt.Errorf("missing %q field", fieldCourses)
	}
	if err := json.Unmarshal([]byte(courses), &doc.Courses); err != nil {
		return doc, fmt.Errorf("decode courses: %w", err)
	}
	if quizzes, ok := fields[fieldQuizzes]; ok {
		if err := json.Unmarshal([]byte(quizzes), &doc.Quizzes); err != nil {
			return doc, fmt.Errorf("decode quizzes: %w", err)
		}
	}
	return doc, nil
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
