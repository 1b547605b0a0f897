package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/skilldeck/skilldeck-go/api"
	"github.com/skilldeck/skilldeck-go/platform/errors"
)

// AuthorService is the data contract for author-side course management.
// Form handling and validation UI belong to the consuming surface; this
// type only moves course records.
type AuthorService struct {
	api    *api.Client
	logger zerolog.Logger
}

// NewAuthorService creates an author service over the author-side transport.
func NewAuthorService(client *api.Client, logger zerolog.Logger) *AuthorService {
	return &AuthorService{api: client, logger: logger}
}

// CourseDraft is the author-provided part of a new course.
type CourseDraft struct {
	Title       string  `json:"title"`
	Credits     float64 `json:"credits"`
	CourseImage string  `json:"courseImage,omitempty"`
	Description string  `json:"description,omitempty"`
}

// ListOwn fetches the courses owned by the authenticated author.
func (s *AuthorService) ListOwn(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := s.api.Get(ctx, "/api/course/getCoursesByAuthor", &courses); err != nil {
		return nil, errors.Wrap(errors.CodeFetchFailed, "fetch author courses", err)
	}
	return courses, nil
}

// Create registers a new course. The created record becomes visible to
// learners on their next catalog refresh, not before.
func (s *AuthorService) Create(ctx context.Context, draft CourseDraft) error {
	if draft.Title == "" {
		return errors.New(errors.CodeFetchFailed, "course title is required")
	}
	if draft.Credits < 0 {
		return errors.New(errors.CodeFetchFailed, "credits must not be negative")
	}
	if err := s.api.Post(ctx, "/api/course/add", draft, nil); err != nil {
		return errors.Wrap(errors.CodeFetchFailed, "create course", err)
	}
	s.logger.Info().Str("title", draft.Title).Msg("course created")
	return nil
}
