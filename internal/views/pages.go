package views

import "Mansoor88-6/timesheet-portal/internal/models"

// Page names, one per template under templates/pages.
const (
	PageDashboard  = "dashboard"
	PageTimesheet  = "timesheet"
	PageReports    = "reports"
	PageSection    = "section"
	PageLogin      = "login"
	PageInvitation = "invitation"
	PageNotFound   = "not_found"
	PageForbidden  = "forbidden"
)

type DashboardContent struct {
	Greeting   string
	Stats      []StatCard
	Activities ActivityTableView
	Projects   ProjectStatusView
	Actions    QuickActionsView
}

type TimesheetContent struct {
	Summary StatCard
	Entries RecentTimesheetView
}

type ReportsContent struct {
	Summaries []SummaryCard
	Projects  ProjectStatusView
}

// SectionContent is the shell of a section whose features live in the
// backend's own screens.
type SectionContent struct {
	Heading     string
	Description string
	Actions     QuickActionsView
}

type LoginContent struct {
	Email     string
	Next      string
	Error     string
	CSRFToken string
}

type InvitationContent struct {
	Token      string
	Invitation *models.Invitation
	FullName   string
	Error      string
	Expired    bool
	CSRFToken  string
}

type NotFoundContent struct {
	Path string
}
