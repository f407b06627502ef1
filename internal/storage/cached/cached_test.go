package cached_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aanand-mishra/registration-api/internal/cache"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/storage/cached"
	"github.com/aanand-mishra/registration-api/internal/storage/sqlite"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/google/uuid"
)

// memoryCache is an in-process cache.Cache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
	failing bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failing {
		return nil, errors.New("redis down")
	}
	v, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	m.hits++
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("redis down")
	}
	m.entries[key] = value
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("redis down")
	}
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func setup(t *testing.T) (storage.Storage, *memoryCache) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	mc := newMemoryCache()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cached.Wrap(store, mc, time.Minute, log), mc
}

func TestStudents_ReadThroughAndInvalidate(t *testing.T) {
	store, mc := setup(t)
	ctx := context.Background()

	birth, _ := types.ParseDate("2000-01-01")
	st := types.NewStudent("Ana", "ana@x.com", birth, time.Now())
	if err := store.Students().Add(ctx, st); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := store.Students().GetByID(ctx, st.ID); err != nil {
		t.Fatalf("first get: %v", err)
	}
	got, err := store.Students().GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if mc.hits != 1 || got.Email != "ana@x.com" {
		t.Fatalf("expected second read to hit the cache, hits=%d got=%+v", mc.hits, got)
	}

	st.Update("Ana Maria", "ana@x.com", birth, time.Now())
	if err := store.Students().Update(ctx, st); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err = store.Students().GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Ana Maria" {
		t.Fatalf("expected fresh name after invalidation, got %q", got.Name)
	}
}

func TestStudents_NotFoundIsNotCached(t *testing.T) {
	store, mc := setup(t)

	_, err := store.Students().GetByID(context.Background(), uuid.New())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(mc.entries) != 0 {
		t.Fatalf("expected nothing cached, got %d entries", len(mc.entries))
	}
}

func TestCourses_CacheFailureFallsBackToDatabase(t *testing.T) {
	store, mc := setup(t)
	ctx := context.Background()

	c := types.NewCourse("Algebra", "Intro to algebra basics", time.Now())
	if err := store.Courses().Add(ctx, c); err != nil {
		t.Fatalf("add: %v", err)
	}

	mc.failing = true

	got, err := store.Courses().GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("expected database fallback, got %v", err)
	}
	if got.Name != "Algebra" {
		t.Fatalf("unexpected course %+v", got)
	}

	if err := store.Courses().Delete(ctx, c.ID); err != nil {
		t.Fatalf("expected delete to succeed despite cache failure, got %v", err)
	}
}

// hookedStudents runs afterLoad between the database read and the return
// to the cache layer, where a concurrent write would land.
type hookedStudents struct {
	storage.Students
	afterLoad func()
}

func (h *hookedStudents) GetByID(ctx context.Context, id uuid.UUID) (types.Student, error) {
	st, err := h.Students.GetByID(ctx, id)
	if fn := h.afterLoad; fn != nil {
		h.afterLoad = nil
		fn()
	}
	return st, err
}

type hookedStorage struct {
	storage.Storage
	students *hookedStudents
}

func (h hookedStorage) Students() storage.Students { return h.students }

func TestStudents_DeleteDuringLoadDoesNotLeaveStaleEntry(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	birth, _ := types.ParseDate("2000-01-01")
	st := types.NewStudent("Ana", "ana@x.com", birth, time.Now())
	if err := db.Students().Add(ctx, st); err != nil {
		t.Fatalf("add: %v", err)
	}

	hooked := &hookedStudents{Students: db.Students()}
	mc := newMemoryCache()
	store := cached.Wrap(hookedStorage{Storage: db, students: hooked}, mc, time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	hooked.afterLoad = func() {
		if err := store.Students().Delete(ctx, st.ID); err != nil {
			t.Errorf("delete: %v", err)
		}
	}

	if _, err := store.Students().GetByID(ctx, st.ID); err != nil {
		t.Fatalf("get racing the delete: %v", err)
	}
	if len(mc.entries) != 0 {
		t.Fatalf("expected the racing read not to stay cached, got %d entries", len(mc.entries))
	}

	if _, err := store.Students().GetByID(ctx, st.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
