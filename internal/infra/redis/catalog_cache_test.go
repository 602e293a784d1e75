package redis

import (
	"context"
	"testing"
	"time"

	"drivequest/internal/catalog"
	"drivequest/internal/domain"
	"drivequest/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCatalogCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{Loader: memory.NewStaticCatalogLoader(sampleDocument())}
	cache := NewCatalogCache(newClient(mr), loader, time.Minute, nil)

	doc, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(documentKey) {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL(documentKey); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	again, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("load catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if got, want := again.Quizzes[0].Questions[0].CorrectAnswer, doc.Quizzes[0].Questions[0].CorrectAnswer; got != want {
		t.Fatalf("cached correct answer %d, want %d", got, want)
	}
	if again.Courses[0].Modules[0].QuizID != "parking-quiz" {
		t.Fatalf("cached module lost its quiz reference: %+v", again.Courses[0].Modules[0])
	}
}

func TestCatalogCacheSharedAcrossInstances(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	first := &countingLoader{Loader: memory.NewStaticCatalogLoader(sampleDocument())}
	if _, err := NewCatalogCache(newClient(mr), first, time.Minute, nil).Load(context.Background()); err != nil {
		t.Fatalf("fill: %v", err)
	}

	second := &countingLoader{Loader: memory.NewStaticCatalogLoader(catalog.Document{})}
	doc, err := NewCatalogCache(newClient(mr), second, time.Minute, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("expected second instance to read redis, loader calls=%d", second.calls)
	}
	if len(doc.Courses) != 1 {
		t.Fatalf("expected cached course, got %d", len(doc.Courses))
	}
}

func TestCatalogCacheRefillsCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	mr.HSet(documentKey, fieldCourses, "{not json")

	loader := &countingLoader{Loader: memory.NewStaticCatalogLoader(sampleDocument())}
	cache := NewCatalogCache(newClient(mr), loader, time.Minute, nil)
	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader on corrupt entry, calls=%d", loader.calls)
	}
	if got := mr.HGet(documentKey, fieldCourses); got == "{not json" {
		t.Fatalf("expected corrupt entry to be overwritten")
	}
}

func TestCatalogCacheInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{Loader: memory.NewStaticCatalogLoader(sampleDocument())}
	cache := NewCatalogCache(newClient(mr), loader, time.Minute, nil)
	ctx := context.Background()
	if _, err := cache.Load(ctx); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(documentKey) {
		t.Fatalf("expected key removed")
	}
	if _, err := cache.Load(ctx); err != nil {
		t.Fatalf("reload catalog: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload from loader, calls=%d", loader.calls)
	}
}

type countingLoader struct {
	catalog.Loader
	calls int
}

func (l *countingLoader) Load(ctx context.Context) (catalog.Document, error) {
	l.calls++
	return l.Loader.Load(ctx)
}

func sampleDocument() catalog.Document {
	return catalog.Document{
		Courses: []domain.Course{
			{
				ID:       "parking-pro",
				Title:    "Parking Pro",
				Category: domain.CategoryAdvanced,
				Modules:  []domain.Module{{Title: "Parking Techniques", QuizID: "parking-quiz"}},
			},
		},
		Quizzes: []domain.Quiz{
			{
				ID: "parking-quiz",
				Questions: []domain.QuizQuestion{
					{Prompt: "Which side do you check first?", Answers: []string{"Curb", "Traffic"}, CorrectAnswer: 1},
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
