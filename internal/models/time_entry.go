package models

// ApprovalStatus is the approval state of a time entry, expense or leave
// request. Values outside the known set are kept as-is.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

type TimeEntry struct {
	ID          int64          `json:"id"`
	Date        Date           `json:"date"`
	ProjectID   *int64         `json:"project_id,omitempty"`
	ProjectName string         `json:"project_name,omitempty"`
	Description string         `json:"description"`
	Hours       float64        `json:"hours"`
	Status      ApprovalStatus `json:"status"`
}

// Activity is the row shape of the dashboard activity table.
type Activity struct {
	ID       int64          `json:"id"`
	Date     Date           `json:"date"`
	Activity string         `json:"activity"`
	Hours    float64        `json:"hours"`
	Status   ApprovalStatus `json:"status"`
}

// AsActivity projects a time entry onto the activity table shape.
func (e TimeEntry) AsActivity() Activity {
	label := e.Description
	if label == "" {
		label = e.ProjectName
	}
	return Activity{
		ID:       e.ID,
		Date:     e.Date,
		Activity: label,
		Hours:    e.Hours,
		Status:   e.Status,
	}
}

func Activities(entries []TimeEntry) []Activity {
	out := make([]Activity, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.AsActivity())
	}
	return out
}
