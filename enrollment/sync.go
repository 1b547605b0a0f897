package enrollment

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/skilldeck/skilldeck-go/api"
	"github.com/skilldeck/skilldeck-go/catalog"
	"github.com/skilldeck/skilldeck-go/platform/errors"
	"github.com/skilldeck/skilldeck-go/session"
)

// Record is one learner-course enrollment with its progress percentage.
type Record struct {
	CourseID int64
	Progress int
	Course   catalog.Course
}

// Completed reports whether the course has been fully worked through.
func (r Record) Completed() bool {
	return r.Progress == 100
}

// Synchronizer owns the learner's enrolled-course set and keeps it
// consistent with the remote service across fetches and enrollment
// mutations.
//
// Local mutations happen only after the server has acknowledged them, so no
// rollback path exists. The derived status index is recomputed from the
// record set on every replacement; it has no independent source of truth.
type Synchronizer struct {
	api      *api.Client
	sessions *session.Store
	catalog  *catalog.Cache
	logger   zerolog.Logger

	mu      sync.RWMutex
	records []Record
	index   map[int64]bool
	// issued and applied order load results by issuance time so a slow
	// response cannot overwrite the state installed by a later call.
	issued  uint64
	applied uint64
}

// NewSynchronizer creates an empty synchronizer. Enrollment always works
// against courses known to the given catalog cache.
func NewSynchronizer(client *api.Client, sessions *session.Store, cache *catalog.Cache, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		api:      client,
		sessions: sessions,
		catalog:  cache,
		logger:   logger,
		index:    map[int64]bool{},
	}
}

// enrolledCourse is the wire shape of GET /api/learner/courses: a course
// object carrying its progress.
type enrolledCourse struct {
	catalog.Course
	Progress int `json:"progress"`
}

// LoadEnrolled fetches the learner's enrollment set and installs it as the
// local state. When several loads overlap, results apply in issuance order:
// a response to an older call arriving after a newer one has landed is
// discarded and the newer state is returned instead.
func (s *Synchronizer) LoadEnrolled(ctx context.Context) ([]Record, error) {
	if _, ok := s.sessions.Token(); !ok {
		return nil, errors.New(errors.CodeUnauthenticated, "no active session")
	}

	s.mu.Lock()
	s.issued++
	gen := s.issued
	s.mu.Unlock()

	var fetched []enrolledCourse
	if err := s.api.Get(ctx, "/api/learner/courses", &fetched); err != nil {
		return nil, errors.Wrap(errors.CodeFetchFailed, "fetch enrollments", err)
	}

	records := make([]Record, 0, len(fetched))
	for _, ec := range fetched {
		records = append(records, Record{CourseID: ec.ID, Progress: ec.Progress, Course: ec.Course})
	}

	return s.install(gen, records), nil
}

// RefreshEnrolled re-fetches from the remote service, discarding any purely
// local state. Used to reconcile after out-of-band changes such as
// enrollment from another tab.
func (s *Synchronizer) RefreshEnrolled(ctx context.Context) error {
	_, err := s.LoadEnrolled(ctx)
	return err
}

// install atomically replaces the record set and its derived index, unless
// a newer load already landed.
func (s *Synchronizer) install(gen uint64, records []Record) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.applied {
		s.logger.Debug().Uint64("generation", gen).Uint64("applied", s.applied).Msg("discarding superseded enrollment fetch")
		return copyRecords(s.records)
	}
	index := make(map[int64]bool, len(records))
	for _, record := range records {
		index[record.CourseID] = true
	}
	s.records = records
	s.index = index
	s.applied = gen
	return copyRecords(records)
}

// Enroll enrolls the learner in a catalog course.
//
// The course must exist in the catalog cache's last-known set and must not
// already be enrolled locally; the already-enrolled check short-circuits
// without a network call, which makes repeated Enroll calls for a confirmed
// course idempotent. The local record is inserted only after the server
// acknowledges the enrollment.
func (s *Synchronizer) Enroll(ctx context.Context, courseID int64) (Record, error) {
	if _, ok := s.sessions.Token(); !ok {
		return Record{}, errors.New(errors.CodeUnauthenticated, "no active session")
	}

	course, ok := s.catalog.Get(courseID)
	if !ok {
		return Record{}, errors.WithMetadata(errors.CodeUnknownCourse, "course not in catalog",
			map[string]string{"course_id": fmt.Sprint(courseID)})
	}

	if s.IsEnrolled(courseID) {
		return Record{}, errors.WithMetadata(errors.CodeAlreadyEnrolled, "already enrolled",
			map[string]string{"course_id": fmt.Sprint(courseID)})
	}

	if err := s.api.Post(ctx, fmt.Sprintf("/api/learner/enroll/%d", courseID), nil, nil); err != nil {
		var statusErr *api.StatusError
		if stderrors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			// The server is the authoritative tie-breaker: a 400-class
			// response means the enrollment already exists even when the
			// local index said otherwise. Local state is reconciled by the
			// next refresh, not here.
			return Record{}, errors.Wrap(errors.CodeAlreadyEnrolled, "server reports existing enrollment", err)
		}
		return Record{}, errors.Wrap(errors.CodeEnrollmentFailed, "enroll request failed", err)
	}

	record := Record{CourseID: courseID, Progress: 0, Course: course}
	s.mu.Lock()
	s.records = append(s.records, record)
	s.index[courseID] = true
	s.mu.Unlock()

	s.logger.Info().Int64("course_id", courseID).Msg("enrolled")
	return record, nil
}

// Records returns the current enrollment set.
func (s *Synchronizer) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecords(s.records)
}

// IsEnrolled reports whether the learner holds an enrollment record for the
// course.
func (s *Synchronizer) IsEnrolled(courseID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index[courseID]
}

// StatusIndex returns the courseID -> enrolled mapping derived from the
// record set.
func (s *Synchronizer) StatusIndex() map[int64]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]bool, len(s.index))
	for id, enrolled := range s.index {
		out[id] = enrolled
	}
	return out
}

// OverallProgress returns the arithmetic mean of all record progress
// values, 0 when nothing is enrolled.
func (s *Synchronizer) OverallProgress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return 0
	}
	var sum int
	for _, record := range s.records {
		sum += record.Progress
	}
	return float64(sum) / float64(len(s.records))
}

// CompletedCount returns how many enrolled courses are fully completed.
func (s *Synchronizer) CompletedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for _, record := range s.records {
		if record.Completed() {
			count++
		}
	}
	return count
}

func copyRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
