package views

import (
	"math"

	"Mansoor88-6/timesheet-portal/internal/models"
)

// Empty-state messages.
const (
	EmptyActivities = "Nessuna attività recente."
	EmptyProjects   = "Nessun progetto attivo."
	EmptyTimesheet  = "Nessuna registrazione recente."
)

// ListOptions configures a list component. Limit <= 0 shows every item.
// ViewAllHref, when set, renders a "view all" link.
type ListOptions struct {
	Title       string
	Limit       int
	ViewAllHref string
	Loading     bool
}

// limitRows keeps the first limit items in order.
func limitRows[T any](items []T, limit int) []T {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}

// ListHeader is shared by the list components.
type ListHeader struct {
	Title       string
	ViewAllHref string
	Loading     bool
	EmptyText   string
}

func newListHeader(opts ListOptions, emptyText string) ListHeader {
	return ListHeader{
		Title:       opts.Title,
		ViewAllHref: opts.ViewAllHref,
		Loading:     opts.Loading,
		EmptyText:   emptyText,
	}
}

type ActivityRow struct {
	ID       int64
	Date     string
	Activity string
	Hours    string
	Badge    Badge
}

type ActivityTableView struct {
	ListHeader
	Rows []ActivityRow
}

// Empty is true when loading has finished with nothing to show.
func (v ActivityTableView) Empty() bool { return !v.Loading && len(v.Rows) == 0 }

func ActivityTable(activities []models.Activity, opts ListOptions, loc Locale) ActivityTableView {
	v := ActivityTableView{ListHeader: newListHeader(opts, EmptyActivities)}
	if opts.Loading {
		return v
	}
	for _, a := range limitRows(activities, opts.Limit) {
		v.Rows = append(v.Rows, ActivityRow{
			ID:       a.ID,
			Date:     loc.FormatDate(a.Date.Time),
			Activity: a.Activity,
			Hours:    loc.FormatHours(a.Hours),
			Badge:    StatusBadge(a.Status),
		})
	}
	return v
}

type ProjectRow struct {
	ID       int64
	Name     string
	Client   string
	Badge    Badge
	Progress int
	Period   string
}

type ProjectStatusView struct {
	ListHeader
	Rows []ProjectRow
}

func (v ProjectStatusView) Empty() bool { return !v.Loading && len(v.Rows) == 0 }

func ProjectStatus(projects []models.Project, opts ListOptions, loc Locale) ProjectStatusView {
	v := ProjectStatusView{ListHeader: newListHeader(opts, EmptyProjects)}
	if opts.Loading {
		return v
	}
	for _, p := range limitRows(projects, opts.Limit) {
		row := ProjectRow{
			ID:       p.ID,
			Name:     p.Name,
			Client:   p.Client,
			Badge:    ProjectBadge(p.Status),
			Progress: clampPercent(p.Progress),
		}
		if !p.StartDate.IsZero() || !p.EndDate.IsZero() {
			row.Period = loc.FormatDate(p.StartDate.Time) + " – " + loc.FormatDate(p.EndDate.Time)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

type TimesheetRow struct {
	ID          int64
	Date        string
	Project     string
	Description string
	Hours       string
	Badge       Badge
}

type RecentTimesheetView struct {
	ListHeader
	Rows []TimesheetRow
}

func (v RecentTimesheetView) Empty() bool { return !v.Loading && len(v.Rows) == 0 }

func RecentTimesheet(entries []models.TimeEntry, opts ListOptions, loc Locale) RecentTimesheetView {
	v := RecentTimesheetView{ListHeader: newListHeader(opts, EmptyTimesheet)}
	if opts.Loading {
		return v
	}
	for _, e := range limitRows(entries, opts.Limit) {
		project := e.ProjectName
		if project == "" {
			project = "—"
		}
		v.Rows = append(v.Rows, TimesheetRow{
			ID:          e.ID,
			Date:        loc.FormatDate(e.Date.Time),
			Project:     project,
			Description: e.Description,
			Hours:       loc.FormatHours(e.Hours),
			Badge:       StatusBadge(e.Status),
		})
	}
	return v
}

// StatCard shows a single headline number.
type StatCard struct {
	Title       string
	Value       string
	Description string
	Trend       string
	Loading     bool
}

type SummaryItem struct {
	Label string
	Value string
}

// SummaryCard shows a titled list of label/value pairs.
type SummaryCard struct {
	Title   string
	Items   []SummaryItem
	Loading bool
}

type QuickAction struct {
	Label       string
	Href        string
	Description string
}

type QuickActionsView struct {
	Title   string
	Actions []QuickAction
}

func QuickActions(title string, actions []QuickAction) QuickActionsView {
	return QuickActionsView{Title: title, Actions: actions}
}

// DefaultQuickActions are the dashboard shortcuts.
func DefaultQuickActions() []QuickAction {
	return []QuickAction{
		{Label: "Registra ore", Href: "/timesheet", Description: "Aggiungi le ore lavorate"},
		{Label: "Nuova nota spese", Href: "/expenses", Description: "Carica una spesa"},
		{Label: "Richiedi ferie", Href: "/timeoff", Description: "Ferie e permessi"},
		{Label: "Segnala malattia", Href: "/sickleave", Description: "Comunica un'assenza"},
	}
}

func clampPercent(p float64) int {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return int(math.Round(p))
	}
}
