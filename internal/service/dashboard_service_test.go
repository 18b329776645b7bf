package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Mansoor88-6/timesheet-portal/internal/cache"
	"Mansoor88-6/timesheet-portal/internal/models"
	"Mansoor88-6/timesheet-portal/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	mu       sync.Mutex
	projects []models.Project
	entries  []models.TimeEntry
	err      error
	block    chan struct{}
	tokens   []string
	// onEntries runs inside GetTimeEntries before it answers
	onEntries func()

	projectCalls atomic.Int32
	entryCalls   atomic.Int32
}

func (f *fakeBackend) GetProjects(ctx context.Context, token string) ([]models.Project, error) {
	f.projectCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.projects, f.err
}

func (f *fakeBackend) GetTimeEntries(ctx context.Context, token string, limit int) ([]models.TimeEntry, error) {
	f.entryCalls.Add(1)
	if f.onEntries != nil {
		f.onEntries()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.entries, f.err
}

func (f *fakeBackend) setProjects(projects []models.Project) {
	f.mu.Lock()
	f.projects = projects
	f.mu.Unlock()
}

func (f *fakeBackend) setEntries(entries []models.TimeEntry) {
	f.mu.Lock()
	f.entries = entries
	f.mu.Unlock()
}

func newTestService(t *testing.T, backend Backend, wait time.Duration) (*DashboardService, *cache.Cache) {
	t.Helper()
	c := cache.New(cache.Options{StaleTime: time.Minute, GCTime: 5 * time.Minute}, zap.NewNop())
	t.Cleanup(c.Stop)
	return NewDashboardService(backend, c, wait, zap.NewNop()), c
}

func stateFor(id, token string) session.State {
	return session.State{}.Login(models.User{ID: id}, token, time.Time{}, false)
}

func TestDashboardService_ProjectsCachedPerSubject(t *testing.T) {
	backend := &fakeBackend{projects: []models.Project{{ID: 1, Name: "Portal"}}}
	svc, _ := newTestService(t, backend, time.Second)
	ctx := context.Background()

	alice := stateFor("alice", "tok-a")
	bob := stateFor("bob", "tok-b")

	r := svc.Projects(ctx, alice)
	require.NoError(t, r.Err)
	assert.False(t, r.IsLoading)
	assert.Len(t, r.Data, 1)

	svc.Projects(ctx, alice)
	assert.Equal(t, int32(1), backend.projectCalls.Load())

	svc.Projects(ctx, bob)
	assert.Equal(t, int32(2), backend.projectCalls.Load())
	assert.Equal(t, []string{"tok-a", "tok-b"}, backend.tokens)
}

func TestDashboardService_ErrorsAreReturnedNotCached(t *testing.T) {
	backend := &fakeBackend{err: errors.New("boom")}
	svc, c := newTestService(t, backend, time.Second)
	st := stateFor("alice", "tok")

	r := svc.TimeEntries(context.Background(), st)
	assert.Error(t, r.Err)
	assert.Empty(t, r.Data)
	assert.Zero(t, c.Len())
}

func TestDashboardService_SlowFetchReportsLoading(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	svc, _ := newTestService(t, backend, 10*time.Millisecond)
	st := stateFor("alice", "tok")

	r := svc.Projects(context.Background(), st)
	assert.True(t, r.IsLoading)
	assert.NoError(t, r.Err)

	close(backend.block)
	assert.Eventually(t, func() bool {
		return !svc.Projects(context.Background(), st).IsLoading
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), backend.projectCalls.Load())
}

func TestDashboardService_SummaryRecomputedWhenSourcesChange(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	backend := &fakeBackend{
		projects: []models.Project{{ID: 1, Status: models.ProjectInProgress}},
		entries:  []models.TimeEntry{{ID: 1, Date: models.MustParseDate("2024-01-09"), Hours: 2, Status: models.StatusPending}},
	}
	svc, c := newTestService(t, backend, time.Second)
	ctx := context.Background()
	st := stateFor("alice", "tok")

	r := svc.Summary(ctx, st, now)
	require.NoError(t, r.Err)
	assert.Equal(t, 2.0, r.Data.HoursThisWeek)
	assert.Equal(t, 1, r.Data.ActiveProjects)

	// Served from cache
	svc.Summary(ctx, st, now)
	assert.Equal(t, int32(1), backend.entryCalls.Load())

	backend.setEntries([]models.TimeEntry{
		{ID: 1, Date: models.MustParseDate("2024-01-09"), Hours: 2, Status: models.StatusPending},
		{ID: 2, Date: models.MustParseDate("2024-01-10"), Hours: 5, Status: models.StatusApproved},
	})
	c.Invalidate(timeEntriesKey("alice"))

	r = svc.Summary(ctx, st, now)
	require.NoError(t, r.Err)
	assert.Equal(t, 7.0, r.Data.HoursThisWeek)
	assert.Equal(t, 5.0, r.Data.ApprovedHours)
	assert.Equal(t, int32(2), backend.entryCalls.Load())
}

func TestDashboardService_SummarySeesSourceChangedWhileComputing(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	backend := &fakeBackend{
		projects: []models.Project{{ID: 1, Status: models.ProjectInProgress}},
	}
	svc, c := newTestService(t, backend, time.Second)
	ctx := context.Background()
	st := stateFor("alice", "tok")

	// Projects change after the summary has read them but before it settles
	var once sync.Once
	backend.onEntries = func() {
		once.Do(func() {
			backend.setProjects([]models.Project{
				{ID: 1, Status: models.ProjectInProgress},
				{ID: 2, Status: models.ProjectInProgress},
			})
			c.Invalidate(projectsKey("alice"))
		})
	}

	r := svc.Summary(ctx, st, now)
	require.NoError(t, r.Err)
	assert.Equal(t, 2, r.Data.ActiveProjects)
	assert.Equal(t, int32(2), backend.projectCalls.Load())

	// The racing result is not kept; the next read computes and watches again
	assert.Zero(t, cache.Peek[Summary](c, summaryKey("alice", now)).Data)
	r = svc.Summary(ctx, st, now)
	require.NoError(t, r.Err)
	assert.Equal(t, 2, r.Data.ActiveProjects)
	assert.Equal(t, 2, cache.Peek[Summary](c, summaryKey("alice", now)).Data.ActiveProjects)

	backend.setProjects(nil)
	c.Invalidate(projectsKey("alice"))
	assert.Zero(t, cache.Peek[Summary](c, summaryKey("alice", now)).Data.ActiveProjects)
}

func TestDashboardService_SummaryError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("down")}
	svc, _ := newTestService(t, backend, time.Second)

	r := svc.Summary(context.Background(), stateFor("alice", "tok"), time.Now())
	assert.ErrorContains(t, r.Err, "down")
}

func TestDashboardService_InvalidateDropsSubjectOnly(t *testing.T) {
	backend := &fakeBackend{}
	svc, c := newTestService(t, backend, time.Second)
	ctx := context.Background()
	now := time.Now()

	alice := stateFor("alice", "tok-a")
	bob := stateFor("bob", "tok-b")
	svc.Summary(ctx, alice, now)
	svc.Summary(ctx, bob, now)
	require.Equal(t, 6, c.Len())

	assert.Equal(t, 3, svc.Invalidate(ctx, alice))
	assert.Equal(t, 3, c.Len())
	assert.Zero(t, svc.Invalidate(ctx, session.State{}))

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Len(t, svc.watches, 1)
}
