package service

import (
	"time"

	"Mansoor88-6/timesheet-portal/internal/models"
)

// Summary is the headline numbers of the dashboard.
type Summary struct {
	HoursThisWeek  float64
	PendingEntries int
	ApprovedHours  float64
	ActiveProjects int
	TotalEntries   int
}

// WeekStart returns midnight of the Monday of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Summarize computes the dashboard numbers. Entries with an unrecognized
// status count as pending, like their badge.
func Summarize(entries []models.TimeEntry, projects []models.Project, now time.Time) Summary {
	start := WeekStart(now)
	end := start.AddDate(0, 0, 7)

	s := Summary{TotalEntries: len(entries)}
	for _, e := range entries {
		day := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, now.Location())
		if !e.Date.IsZero() && !day.Before(start) && day.Before(end) {
			s.HoursThisWeek += e.Hours
		}
		switch e.Status {
		case models.StatusApproved:
			s.ApprovedHours += e.Hours
		case models.StatusRejected:
		default:
			s.PendingEntries++
		}
	}
	for _, p := range projects {
		if p.Status == models.ProjectInProgress {
			s.ActiveProjects++
		}
	}
	return s
}
