package models

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type Project struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Client    string        `json:"client,omitempty"`
	Status    ProjectStatus `json:"status"`
	Progress  float64       `json:"progress"` // 0..100
	StartDate Date          `json:"start_date"`
	EndDate   Date          `json:"end_date"`
}
