package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"Mansoor88-6/timesheet-portal/internal/cache"
	"Mansoor88-6/timesheet-portal/internal/models"
	"Mansoor88-6/timesheet-portal/internal/service"
	"Mansoor88-6/timesheet-portal/internal/session"
	"Mansoor88-6/timesheet-portal/internal/views"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// DashboardLimit is how many rows the dashboard lists show.
const DashboardLimit = 5

// FormExpired explains a rejected form post.
const FormExpired = "Il modulo è scaduto o non è valido. Ricarica la pagina e riprova."

// waiting is true while a list has nothing to show yet.
func waiting[T any](r cache.Result[[]T]) bool {
	return r.IsLoading && len(r.Data) == 0
}

func summaryWaiting(r cache.Result[service.Summary]) bool {
	return r.IsLoading && r.Data == (service.Summary{})
}

func statCards(r cache.Result[service.Summary], loc views.Locale, weekStart string) []views.StatCard {
	loading := summaryWaiting(r)
	s := r.Data
	return []views.StatCard{
		{Title: "Ore questa settimana", Value: loc.FormatHours(s.HoursThisWeek), Description: "dal " + weekStart, Loading: loading},
		{Title: "In attesa di approvazione", Value: strconv.Itoa(s.PendingEntries), Description: "registrazioni", Loading: loading},
		{Title: "Progetti attivi", Value: strconv.Itoa(s.ActiveProjects), Loading: loading},
		{Title: "Ore approvate", Value: loc.FormatHours(s.ApprovedHours), Loading: loading},
	}
}

func greeting(st session.State) string {
	if st.User == nil {
		return "Ciao"
	}
	return "Ciao, " + st.User.DisplayName()
}

// Dashboard renders the home page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, st := session.FromContext(ctx)
	now := h.now()
	loc := locale(r)

	entries := h.dashboard.TimeEntries(ctx, st)
	projects := h.dashboard.Projects(ctx, st)
	summary := h.dashboard.Summary(ctx, st, now)

	if rejected(entries.Err, projects.Err, summary.Err) {
		h.endSession(w, r)
		return
	}
	h.logFetchErrors(r, entries.Err, projects.Err, summary.Err)

	content := views.DashboardContent{
		Greeting: greeting(st),
		Stats:    statCards(summary, loc, loc.FormatDate(service.WeekStart(now))),
		Activities: views.ActivityTable(models.Activities(entries.Data), views.ListOptions{
			Title:       "Attività recenti",
			Limit:       DashboardLimit,
			ViewAllHref: "/timesheet",
			Loading:     waiting(entries),
		}, loc),
		Projects: views.ProjectStatus(projects.Data, views.ListOptions{
			Title:       "Stato progetti",
			Limit:       DashboardLimit,
			ViewAllHref: "/reports",
			Loading:     waiting(projects),
		}, loc),
		Actions: views.QuickActions("Azioni rapide", views.DefaultQuickActions()),
	}

	loading := entries.IsLoading || projects.IsLoading || summary.IsLoading
	h.render(w, r, http.StatusOK, views.PageDashboard, "Dashboard", content, loading)
}

// Timesheet renders every recent entry of the user.
func (h *Handler) Timesheet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, st := session.FromContext(ctx)
	now := h.now()
	loc := locale(r)

	entries := h.dashboard.TimeEntries(ctx, st)
	summary := h.dashboard.Summary(ctx, st, now)

	if rejected(entries.Err, summary.Err) {
		h.endSession(w, r)
		return
	}
	h.logFetchErrors(r, entries.Err, summary.Err)

	content := views.TimesheetContent{
		Summary: statCards(summary, loc, loc.FormatDate(service.WeekStart(now)))[0],
		Entries: views.RecentTimesheet(entries.Data, views.ListOptions{
			Title:   "Registrazioni recenti",
			Loading: waiting(entries),
		}, loc),
	}

	h.render(w, r, http.StatusOK, views.PageTimesheet, "Timesheet", content, entries.IsLoading || summary.IsLoading)
}

// Reports renders the summary cards and the full project list.
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, st := session.FromContext(ctx)
	loc := locale(r)

	projects := h.dashboard.Projects(ctx, st)
	summary := h.dashboard.Summary(ctx, st, h.now())

	if rejected(projects.Err, summary.Err) {
		h.endSession(w, r)
		return
	}
	h.logFetchErrors(r, projects.Err, summary.Err)

	loading := summaryWaiting(summary)
	s := summary.Data
	content := views.ReportsContent{
		Summaries: []views.SummaryCard{
			{
				Title:   "Ore",
				Loading: loading,
				Items: []views.SummaryItem{
					{Label: "Questa settimana", Value: loc.FormatHours(s.HoursThisWeek)},
					{Label: "Approvate", Value: loc.FormatHours(s.ApprovedHours)},
				},
			},
			{
				Title:   "Registrazioni",
				Loading: loading,
				Items: []views.SummaryItem{
					{Label: "Totali", Value: strconv.Itoa(s.TotalEntries)},
					{Label: "In attesa", Value: strconv.Itoa(s.PendingEntries)},
				},
			},
			{
				Title:   "Progetti",
				Loading: waiting(projects),
				Items: []views.SummaryItem{
					{Label: "Attivi", Value: strconv.Itoa(s.ActiveProjects)},
					{Label: "Totali", Value: strconv.Itoa(len(projects.Data))},
				},
			},
		},
		Projects: views.ProjectStatus(projects.Data, views.ListOptions{
			Title:   "Progetti",
			Loading: waiting(projects),
		}, loc),
	}

	h.render(w, r, http.StatusOK, views.PageReports, "Report", content, projects.IsLoading || summary.IsLoading)
}

// Section describes a page whose features live in the backend's own
// screens.
type Section struct {
	Title       string
	Description string
	Actions     []views.QuickAction
}

// Sections are the shell pages keyed by route name.
var Sections = map[string]Section{
	"expenses": {
		Title:       "Note spese",
		Description: "Carica e consulta le note spese.",
		Actions:     []views.QuickAction{{Label: "Nuova nota spese", Href: "/expenses"}},
	},
	"trips": {
		Title:       "Trasferte",
		Description: "Pianifica le trasferte e rendiconta i giorni fuori sede.",
	},
	"timeoff": {
		Title:       "Ferie e permessi",
		Description: "Richiedi ferie e permessi e segui le approvazioni.",
		Actions:     []views.QuickAction{{Label: "Richiedi ferie", Href: "/timeoff"}},
	},
	"sickleave": {
		Title:       "Malattia",
		Description: "Comunica un'assenza per malattia.",
		Actions:     []views.QuickAction{{Label: "Segnala malattia", Href: "/sickleave"}},
	},
	"settings": {
		Title:       "Impostazioni",
		Description: "Profilo e preferenze dell'account.",
	},
	"admin": {
		Title:       "Amministrazione",
		Description: "Utenti, inviti e progetti dell'organizzazione.",
	},
}

// Section returns the handler rendering the named shell page.
func (h *Handler) Section(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := Sections[name]
		if !ok {
			h.NotFound(w, r)
			return
		}
		content := views.SectionContent{
			Heading:     s.Title,
			Description: s.Description,
			Actions:     views.QuickActions("", s.Actions),
		}
		h.render(w, r, http.StatusOK, views.PageSection, s.Title, content, false)
	}
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, views.PageNotFound, "Pagina non trovata",
		views.NotFoundContent{Path: r.URL.Path}, false)
}

// Forbidden renders the 403 page.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, views.PageForbidden, "Accesso negato", nil, false)
}

// InvalidForm renders the 403 page for a post that failed the CSRF check,
// usually a form left open longer than its token lives.
func (h *Handler) InvalidForm(w http.ResponseWriter, r *http.Request) {
	h.log(r).Warn("Rejected form post",
		zap.String("path", r.URL.Path),
		zap.Error(csrf.FailureReason(r)),
	)
	h.render(w, r, http.StatusForbidden, views.PageForbidden, "Accesso negato", FormExpired, false)
}

// Health reports whether the portal and its backend are up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := h.auth.HealthCheck(r.Context()); err != nil {
		h.log(r).Warn("Backend health check failed", zap.Error(err))
		status, code = "degraded", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
