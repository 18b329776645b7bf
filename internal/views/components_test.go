package views

import (
	"bytes"
	"strings"
	"testing"

	"Mansoor88-6/timesheet-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(zap.NewNop())
	require.NoError(t, err)
	return r
}

func renderComponent(t *testing.T, name string, data any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, newTestRenderer(t).Component(&buf, name, data))
	return buf.String()
}

func sampleActivities(n int) []models.Activity {
	out := make([]models.Activity, n)
	for i := range out {
		out[i] = models.Activity{
			ID:       int64(i + 1),
			Date:     models.MustParseDate("2024-01-05"),
			Activity: "Task",
			Hours:    1,
			Status:   models.StatusPending,
		}
	}
	return out
}

func TestActivityTable_ExampleRow(t *testing.T) {
	activities := []models.Activity{
		{ID: 1, Date: models.MustParseDate("2024-01-05"), Activity: "Code review", Hours: 2, Status: models.StatusApproved},
	}

	v := ActivityTable(activities, ListOptions{}, DefaultLocale)

	require.Len(t, v.Rows, 1)
	row := v.Rows[0]
	assert.Equal(t, "5/1/2024", row.Date)
	assert.Equal(t, "Code review", row.Activity)
	assert.Equal(t, "2", row.Hours)
	assert.Equal(t, Badge{Color: "green", Label: "Approvato"}, row.Badge)

	html := renderComponent(t, "activity_table", v)
	assert.Contains(t, html, "Code review")
	assert.Contains(t, html, `<span class="badge badge-green">Approvato</span>`)
	assert.Contains(t, html, "<td>2</td>")
}

func TestActivityTable_LimitKeepsOrder(t *testing.T) {
	activities := sampleActivities(7)

	tests := []struct {
		limit int
		want  int
	}{
		{0, 7},
		{-1, 7},
		{3, 3},
		{7, 7},
		{10, 7},
	}

	for _, tt := range tests {
		v := ActivityTable(activities, ListOptions{Limit: tt.limit}, DefaultLocale)
		require.Len(t, v.Rows, tt.want, "limit %d", tt.limit)
		for i, row := range v.Rows {
			assert.Equal(t, int64(i+1), row.ID)
		}
	}
}

func TestListComponents_EmptyState(t *testing.T) {
	tests := []struct {
		name      string
		component string
		view      any
		text      string
	}{
		{"activities", "activity_table", ActivityTable(nil, ListOptions{}, DefaultLocale), EmptyActivities},
		{"projects", "project_status", ProjectStatus(nil, ListOptions{}, DefaultLocale), EmptyProjects},
		{"timesheet", "recent_timesheet", RecentTimesheet([]models.TimeEntry{}, ListOptions{}, DefaultLocale), EmptyTimesheet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := renderComponent(t, tt.component, tt.view)
			assert.Contains(t, html, tt.text)
			assert.NotContains(t, html, "<tr data-id")
			assert.NotContains(t, html, "<li data-id")
		})
	}
}

func TestProjectStatus_EmptyLiteral(t *testing.T) {
	html := renderComponent(t, "project_status", ProjectStatus(nil, ListOptions{}, DefaultLocale))
	assert.Contains(t, html, "Nessun progetto attivo.")
}

func TestListComponents_LoadingShowsSpinnerNotEmpty(t *testing.T) {
	v := ActivityTable(sampleActivities(2), ListOptions{Loading: true}, DefaultLocale)

	assert.False(t, v.Empty())
	assert.Empty(t, v.Rows)

	html := renderComponent(t, "activity_table", v)
	assert.Contains(t, html, `class="spinner"`)
	assert.NotContains(t, html, EmptyActivities)
}

func TestListComponents_TitleAndViewAll(t *testing.T) {
	v := ProjectStatus([]models.Project{{ID: 1, Name: "Portal", Status: models.ProjectInProgress, Progress: 40}},
		ListOptions{Title: "Progetti", ViewAllHref: "/reports"}, DefaultLocale)

	html := renderComponent(t, "project_status", v)
	assert.Contains(t, html, "<h2>Progetti</h2>")
	assert.Contains(t, html, `href="/reports"`)
	assert.Contains(t, html, "In Corso")
}

func TestProjectStatus_ClampsProgress(t *testing.T) {
	projects := []models.Project{
		{ID: 1, Progress: -5},
		{ID: 2, Progress: 140},
		{ID: 3, Progress: 33.6},
	}

	v := ProjectStatus(projects, ListOptions{}, DefaultLocale)

	assert.Equal(t, 0, v.Rows[0].Progress)
	assert.Equal(t, 100, v.Rows[1].Progress)
	assert.Equal(t, 34, v.Rows[2].Progress)
}

func TestRecentTimesheet_UnknownStatusIsPending(t *testing.T) {
	entries := []models.TimeEntry{
		{ID: 1, Date: models.MustParseDate("2024-03-01"), ProjectName: "Portal", Description: "Deploy", Hours: 3.25, Status: "weird"},
	}

	v := RecentTimesheet(entries, ListOptions{}, DefaultLocale)

	require.Len(t, v.Rows, 1)
	assert.Equal(t, "In Attesa", v.Rows[0].Badge.Label)
	assert.Equal(t, "3,25", v.Rows[0].Hours)
}

func TestStatAndSummaryCards(t *testing.T) {
	html := renderComponent(t, "stat_card", StatCard{Title: "Ore settimana", Value: "32", Description: "su 40"})
	assert.Contains(t, html, "Ore settimana")
	assert.Contains(t, html, "32")

	html = renderComponent(t, "summary_card", SummaryCard{
		Title: "Riepilogo",
		Items: []SummaryItem{{Label: "Approvate", Value: "10"}, {Label: "Rifiutate", Value: "1"}},
	})
	assert.Contains(t, html, "<dt>Approvate</dt><dd>10</dd>")
}

func TestQuickActions(t *testing.T) {
	html := renderComponent(t, "quick_actions", QuickActions("Azioni rapide", DefaultQuickActions()))

	assert.Equal(t, len(DefaultQuickActions()), strings.Count(html, `class="action"`))
	assert.Contains(t, html, `href="/timeoff"`)
}

func TestComponents_EscapeBackendText(t *testing.T) {
	activities := []models.Activity{{ID: 1, Activity: "<script>alert(1)</script>", Status: models.StatusApproved}}

	html := renderComponent(t, "activity_table", ActivityTable(activities, ListOptions{}, DefaultLocale))

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
