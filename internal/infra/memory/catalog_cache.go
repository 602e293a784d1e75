package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"drivequest/internal/catalog"
	"drivequest/internal/domain"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "catalog"

// CatalogCache keeps the last loaded catalog document in process for ttl.
type CatalogCache struct {
	loader catalog.Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	doc       catalog.Document
	expiresAt time.Time
	filled    bool
}

func NewCatalogCache(loader catalog.Loader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) Load(ctx context.Context) (catalog.Document, error) {
	if doc, ok := c.cached(c.clock()); ok {
		return doc, nil
	}

	result, err, _ := c.sf.Do(cacheKey, func() (interface{}, error) {
		now := c.clock()
		if doc, ok := c.cached(now); ok {
			return doc, nil
		}

		doc, err := c.loader.Load(ctx)
		if err != nil {
			return catalog.Document{}, err
		}

		c.mu.Lock()
		c.doc = doc
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.filled = true
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return catalog.Document{}, err
	}
	return result.(catalog.Document), nil
}

func (c *CatalogCache) cached(now time.Time) (catalog.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.filled && c.expiresAt.After(now) {
		return c.doc, true
	}
	return catalog.Document{}, false
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves a fixed document (useful for tests/demos).
type StaticCatalogLoader struct {
	doc *catalog.Document
}

func NewStaticCatalogLoader(doc catalog.Document) *StaticCatalogLoader {
	return &StaticCatalogLoader{doc: &doc}
}

func (l *StaticCatalogLoader) Load(_ context.Context) (catalog.Document, error) {
	if l.doc == nil {
		return catalog.Document{}, domain.ErrCatalogNotFound
	}
	return *l.doc, nil
}

// StaticSeedLoader serves a fixed student list.
type StaticSeedLoader struct {
	students []domain.Student
}

func NewStaticSeedLoader(students []domain.Student) *StaticSeedLoader {
	return &StaticSeedLoader{students: students}
}

func (l *StaticSeedLoader) LoadSeed(_ context.Context) ([]domain.Student, error) {
	out := make([]domain.Student, len(l.students))
	for i, s := range l.students {
		out[i] = s.Clone()
	}
	return out, nil
}
