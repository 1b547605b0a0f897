package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/skilldeck/skilldeck-go/api"
	"github.com/skilldeck/skilldeck-go/platform/errors"
)

// Author is the course author reference as the catalog returns it. Some
// deployments populate name, others fullName.
type Author struct {
	Name     string `json:"name,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// DisplayName returns whichever author name field is populated.
func (a *Author) DisplayName() string {
	if a == nil {
		return ""
	}
	if a.Name != "" {
		return a.Name
	}
	return a.FullName
}

// Course is a read-only catalog entry. The client never mutates courses;
// author-side creation goes through the AuthorService data contract.
type Course struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Credits     float64 `json:"credits"`
	CourseImage string  `json:"courseImage,omitempty"`
	Author      *Author `json:"author,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Cache lazily holds the full course catalog. It refreshes only on first
// use or on explicit request, and tolerates staleness in between: course
// mutations made by other sessions are invisible until the next refresh.
type Cache struct {
	api    *api.Client
	logger zerolog.Logger

	mu      sync.RWMutex
	courses []Course
	byID    map[int64]Course
	loaded  bool
}

// NewCache creates an empty catalog cache over the given transport.
func NewCache(client *api.Client, logger zerolog.Logger) *Cache {
	return &Cache{api: client, logger: logger}
}

// ListAll returns the full catalog. The first call, and any call with
// forceRefresh, fetches from the remote service and replaces the cached set
// atomically; other calls return the cached set without a network call.
//
// On a fetch failure ListAll returns the previously cached set (empty when
// nothing was ever fetched) together with a CATALOG_FETCH_FAILED error, so
// callers choose between a degraded view and surfacing the failure.
func (c *Cache) ListAll(ctx context.Context, forceRefresh bool) ([]Course, error) {
	c.mu.RLock()
	if c.loaded && !forceRefresh {
		cached := copyCourses(c.courses)
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	var fetched []Course
	if err := c.api.Get(ctx, c.listPath(), &fetched); err != nil {
		c.mu.RLock()
		stale := copyCourses(c.courses)
		c.mu.RUnlock()
		c.logger.Warn().Err(err).Int("stale_courses", len(stale)).Msg("catalog fetch failed")
		return stale, errors.Wrap(errors.CodeFetchFailed, "fetch catalog", err)
	}

	byID := make(map[int64]Course, len(fetched))
	for _, course := range fetched {
		byID[course.ID] = course
	}

	c.mu.Lock()
	c.courses = fetched
	c.byID = byID
	c.loaded = true
	c.mu.Unlock()

	return copyCourses(fetched), nil
}

// listPath prefers the authenticated listing when a session is active; the
// public listing serves pre-login surfaces.
func (c *Cache) listPath() string {
	if c.api.Authenticated() {
		return "/api/course/getAllCourses"
	}
	return "/api/course/getAll"
}

// Filter returns the cached courses whose title, description, or author
// name contains query, case-insensitively. A blank query returns the full
// cached set in its original order. Filter never triggers a network call.
func (c *Cache) Filter(query string) []Course {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return copyCourses(c.courses)
	}
	needle := strings.ToLower(query)

	var matched []Course
	for _, course := range c.courses {
		if strings.Contains(strings.ToLower(course.Title), needle) ||
			strings.Contains(strings.ToLower(course.Description), needle) ||
			strings.Contains(strings.ToLower(course.Author.DisplayName()), needle) {
			matched = append(matched, course)
		}
	}
	return matched
}

// Get returns the cached course with the given id.
func (c *Cache) Get(id int64) (Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	course, ok := c.byID[id]
	return course, ok
}

// Loaded reports whether the cache holds a successfully fetched catalog.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func copyCourses(courses []Course) []Course {
	if courses == nil {
		return []Course{}
	}
	out := make([]Course, len(courses))
	copy(out, courses)
	return out
}
