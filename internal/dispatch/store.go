package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/campusforge/timetable-engine/internal/models"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

// JobStore keeps dispatched job records between Submit and Status.
type JobStore interface {
	Put(ctx context.Context, job *models.RunJob) error
	Get(ctx context.Context, id string) (*models.RunJob, error)
}

// MemoryStore is the default JobStore: a map guarded by a mutex. Records
// of settled jobs expire after the configured TTL.
type MemoryStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	jobs map[string]memoryRecord
	now  func() time.Time
}

type memoryRecord struct {
	job     models.RunJob
	expires time.Time
}

// NewMemoryStore builds a store. A non-positive ttl keeps settled jobs
// until the process exits.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		jobs: make(map[string]memoryRecord),
		now:  time.Now,
	}
}

// Put stores a copy of the record and sweeps expired neighbours.
func (s *MemoryStore) Put(_ context.Context, job *models.RunJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, record := range s.jobs {
		if !record.expires.IsZero() && now.After(record.expires) {
			delete(s.jobs, id)
		}
	}

	record := memoryRecord{job: *job}
	if s.ttl > 0 && settled(job.Status) {
		record.expires = now.Add(s.ttl)
	}
	s.jobs[job.ID] = record
	return nil
}

// Get returns a copy of the record, or NOT_FOUND once it has expired.
func (s *MemoryStore) Get(_ context.Context, id string) (*models.RunJob, error) {
	s.mu.RLock()
	record, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "run job not found")
	}
	if !record.expires.IsZero() && s.now().After(record.expires) {
		s.mu.Lock()
		if current, still := s.jobs[id]; still && !current.expires.IsZero() && s.now().After(current.expires) {
			delete(s.jobs, id)
		}
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "run job not found")
	}

	job := record.job
	return &job, nil
}

func settled(status models.RunJobStatus) bool {
	return status == models.RunJobStatusFinished || status == models.RunJobStatusFailed
}
