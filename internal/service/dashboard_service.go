package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"Mansoor88-6/timesheet-portal/internal/cache"
	"Mansoor88-6/timesheet-portal/internal/logger"
	"Mansoor88-6/timesheet-portal/internal/models"
	"Mansoor88-6/timesheet-portal/internal/session"

	"go.uber.org/zap"
)

// Backend is the part of the REST client the dashboard reads from.
type Backend interface {
	GetProjects(ctx context.Context, token string) ([]models.Project, error)
	GetTimeEntries(ctx context.Context, token string, limit int) ([]models.TimeEntry, error)
}

// DashboardService serves backend reads through the cache, partitioned by
// the session's subject.
type DashboardService struct {
	backend Backend
	cache   *cache.Cache
	wait    time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	watches map[cache.Key][]func()
}

// NewDashboardService creates the service. wait bounds how long a page
// render blocks on a cold fetch before showing the loading state.
func NewDashboardService(backend Backend, c *cache.Cache, wait time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		backend: backend,
		cache:   c,
		wait:    wait,
		logger:  logger,
		watches: make(map[cache.Key][]func()),
	}
}

func projectsKey(subject string) cache.Key {
	return cache.NewKey(subject, http.MethodGet, "/api/projects")
}

func timeEntriesKey(subject string) cache.Key {
	return cache.NewKey(subject, http.MethodGet, "/api/time-entries")
}

func summaryKey(subject string, now time.Time) cache.Key {
	return cache.NewKey(subject, "summary", WeekStart(now).Format("2006-01-02"))
}

func (s *DashboardService) fetchProjects(st session.State) cache.Fetcher[[]models.Project] {
	return func(ctx context.Context) ([]models.Project, error) {
		return s.backend.GetProjects(ctx, st.Token)
	}
}

func (s *DashboardService) fetchTimeEntries(st session.State) cache.Fetcher[[]models.TimeEntry] {
	return func(ctx context.Context) ([]models.TimeEntry, error) {
		return s.backend.GetTimeEntries(ctx, st.Token, 0)
	}
}

// Projects returns the user's projects.
func (s *DashboardService) Projects(ctx context.Context, st session.State) cache.Result[[]models.Project] {
	return cache.Load(ctx, s.cache, projectsKey(st.Subject()), s.fetchProjects(st), s.wait)
}

// TimeEntries returns the user's recent time entries in backend order.
func (s *DashboardService) TimeEntries(ctx context.Context, st session.State) cache.Result[[]models.TimeEntry] {
	return cache.Load(ctx, s.cache, timeEntriesKey(st.Subject()), s.fetchTimeEntries(st), s.wait)
}

// Summary returns the dashboard numbers for the week containing now. The
// summary is cached under its own key and dropped whenever projects or
// time entries change.
func (s *DashboardService) Summary(ctx context.Context, st session.State, now time.Time) cache.Result[Summary] {
	subject := st.Subject()
	key := summaryKey(subject, now)

	watched := []cache.Key{projectsKey(subject), timeEntriesKey(subject)}

	var compute cache.Fetcher[Summary] = func(ctx context.Context) (Summary, error) {
		// Warm the sources before watching them so this compute's own
		// refetches do not discard its result.
		s.unwatch(key)
		projects, entries, err := s.sources(ctx, st)
		if err != nil {
			return Summary{}, err
		}

		// Any source change from here on invalidates key, discarding this
		// result if it has not settled yet. Re-reading picks up changes
		// made while the sources were loading.
		s.watch(key, watched...)
		projects, entries, err = s.sources(ctx, st)
		if err != nil {
			return Summary{}, err
		}
		return Summarize(entries, projects, now), nil
	}

	return cache.Load(ctx, s.cache, key, compute, s.wait)
}

func (s *DashboardService) sources(ctx context.Context, st session.State) ([]models.Project, []models.TimeEntry, error) {
	subject := st.Subject()
	projects := cache.Fetch(ctx, s.cache, projectsKey(subject), s.fetchProjects(st))
	if projects.Err != nil {
		return nil, nil, fmt.Errorf("failed to load projects: %w", projects.Err)
	}
	entries := cache.Fetch(ctx, s.cache, timeEntriesKey(subject), s.fetchTimeEntries(st))
	if entries.Err != nil {
		return nil, nil, fmt.Errorf("failed to load time entries: %w", entries.Err)
	}
	return projects.Data, entries.Data, nil
}

// watch invalidates derived when any of sources changes. One watch per
// derived key; it is released the first time it fires.
func (s *DashboardService) watch(derived cache.Key, sources ...cache.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.watches[derived]; ok {
		return
	}

	onChange := func(cache.Key) {
		s.unwatch(derived)
		s.cache.Invalidate(derived)
	}
	unsubs := make([]func(), 0, len(sources))
	for _, src := range sources {
		unsubs = append(unsubs, s.cache.Subscribe(src, onChange))
	}
	s.watches[derived] = unsubs
}

func (s *DashboardService) unwatch(derived cache.Key) {
	s.mu.Lock()
	unsubs := s.watches[derived]
	delete(s.watches, derived)
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Invalidate drops everything cached for the session's subject, e.g. on
// logout or after a write through the backend.
func (s *DashboardService) Invalidate(ctx context.Context, st session.State) int {
	subject := st.Subject()
	if subject == "" {
		return 0
	}
	prefix := cache.SubjectPrefix(subject)

	s.mu.Lock()
	var derived []cache.Key
	for key := range s.watches {
		if strings.HasPrefix(string(key), prefix) {
			derived = append(derived, key)
		}
	}
	s.mu.Unlock()

	for _, key := range derived {
		s.unwatch(key)
	}

	n := s.cache.InvalidatePrefix(prefix)
	logger.FromContext(ctx, s.logger).Debug("Invalidated cached reads",
		zap.String("subject", subject),
		zap.Int("count", n),
	)
	return n
}
