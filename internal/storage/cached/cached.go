// Package cached decorates the storage repositories with a read-through
// cache for GetByID. Writes go straight to the database and then drop the
// cached copy, so the database always stays the source of truth.
//
// Cache failures are logged and otherwise ignored: a broken Redis slows
// the API down but never makes it return wrong data or errors.
package cached

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aanand-mishra/registration-api/internal/cache"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/google/uuid"
)

// Wrap returns a Storage whose Students and Courses repositories are cached.
// Enrollments are not: they are always read together with fresh names.
//
// A read that raced a write through this Storage drops the value it just
// cached (see readThrough). Writes made by another process are only seen
// once the entry expires, so ttl bounds how stale a lookup can be when
// several instances share one Redis.
func Wrap(next storage.Storage, c cache.Cache, ttl time.Duration, log *slog.Logger) storage.Storage {
	writes := new(atomic.Uint64)
	return &store{
		Storage:  next,
		students: &Students{Students: next.Students(), cache: c, ttl: ttl, log: log, writes: writes},
		courses:  &Courses{Courses: next.Courses(), cache: c, ttl: ttl, log: log, writes: writes},
	}
}

type store struct {
	storage.Storage
	students *Students
	courses  *Courses
}

func (s *store) Students() storage.Students { return s.students }
func (s *store) Courses() storage.Courses   { return s.courses }

// Students caches storage.Students.GetByID.
type Students struct {
	storage.Students
	cache  cache.Cache
	ttl    time.Duration
	log    *slog.Logger
	writes *atomic.Uint64
}

func studentKey(id uuid.UUID) string { return "student:" + id.String() }

func (s *Students) GetByID(ctx context.Context, id uuid.UUID) (types.Student, error) {
	return readThrough(ctx, s.cache, s.log, s.writes, studentKey(id), s.ttl, func() (types.Student, error) {
		return s.Students.GetByID(ctx, id)
	})
}

func (s *Students) Update(ctx context.Context, st types.Student) error {
	err := s.Students.Update(ctx, st)
	wrote(ctx, s.cache, s.log, s.writes, studentKey(st.ID))
	return err
}

func (s *Students) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.Students.Delete(ctx, id)
	wrote(ctx, s.cache, s.log, s.writes, studentKey(id))
	return err
}

// Courses caches storage.Courses.GetByID.
type Courses struct {
	storage.Courses
	cache  cache.Cache
	ttl    time.Duration
	log    *slog.Logger
	writes *atomic.Uint64
}

func courseKey(id uuid.UUID) string { return "course:" + id.String() }

func (c *Courses) GetByID(ctx context.Context, id uuid.UUID) (types.Course, error) {
	return readThrough(ctx, c.cache, c.log, c.writes, courseKey(id), c.ttl, func() (types.Course, error) {
		return c.Courses.GetByID(ctx, id)
	})
}

func (c *Courses) Update(ctx context.Context, course types.Course) error {
	err := c.Courses.Update(ctx, course)
	wrote(ctx, c.cache, c.log, c.writes, courseKey(course.ID))
	return err
}

func (c *Courses) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.Courses.Delete(ctx, id)
	wrote(ctx, c.cache, c.log, c.writes, courseKey(id))
	return err
}

// readThrough serves key from the cache, or loads it and stores it.
// Misses (storage.ErrNotFound) are not cached.
//
// If any write happened between the load and the Set, the loaded value may
// predate it, so the entry is dropped again right after being stored.
func readThrough[T any](
	ctx context.Context,
	c cache.Cache,
	log *slog.Logger,
	writes *atomic.Uint64,
	key string,
	ttl time.Duration,
	load func() (T, error),
) (T, error) {
	data, err := c.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(data, &v); jsonErr == nil {
			return v, nil
		}
		log.Warn("dropping undecodable cache entry", slog.String("key", key))
		invalidate(ctx, c, log, key)
	case !errors.Is(err, cache.ErrMiss):
		log.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	seen := writes.Load()

	v, err := load()
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.Set(ctx, key, data, ttl); err != nil {
			log.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		} else if writes.Load() != seen {
			invalidate(ctx, c, log, key)
		}
	}

	return v, nil
}

// wrote records a write, then drops the cached copy. The counter moves
// first so a reader that loaded before the write sees it after its Set.
func wrote(ctx context.Context, c cache.Cache, log *slog.Logger, writes *atomic.Uint64, key string) {
	writes.Add(1)
	invalidate(ctx, c, log, key)
}

func invalidate(ctx context.Context, c cache.Cache, log *slog.Logger, key string) {
	if err := c.Delete(ctx, key); err != nil {
		log.Warn("cache invalidation failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
