package views

import "Mansoor88-6/timesheet-portal/internal/models"

// Badge is the color/label pair shown for an enumerated status.
type Badge struct {
	Color string
	Label string
}

// Class is the CSS class list of the badge.
func (b Badge) Class() string {
	return "badge badge-" + b.Color
}

var (
	badgePending  = Badge{Color: "yellow", Label: "In Attesa"}
	badgeApproved = Badge{Color: "green", Label: "Approvato"}
	badgeRejected = Badge{Color: "red", Label: "Rifiutato"}
)

// StatusBadge maps an approval status. Anything unrecognized, including
// the empty string, is shown as pending.
func StatusBadge(s models.ApprovalStatus) Badge {
	switch s {
	case models.StatusApproved:
		return badgeApproved
	case models.StatusRejected:
		return badgeRejected
	default:
		return badgePending
	}
}

var projectBadges = map[models.ProjectStatus]Badge{
	models.ProjectPlanning:   {Color: "blue", Label: "Pianificazione"},
	models.ProjectInProgress: {Color: "green", Label: "In Corso"},
	models.ProjectCompleted:  {Color: "gray", Label: "Completato"},
	models.ProjectOnHold:     {Color: "yellow", Label: "In Pausa"},
	models.ProjectCancelled:  {Color: "red", Label: "Annullato"},
}

// ProjectBadge maps a project status; unknown values get the planning
// presentation.
func ProjectBadge(s models.ProjectStatus) Badge {
	if b, ok := projectBadges[s]; ok {
		return b
	}
	return projectBadges[models.ProjectPlanning]
}
