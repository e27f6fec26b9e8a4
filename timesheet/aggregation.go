package timesheet

import (
	"fmt"
	"sort"

	"timetracker.com/timetracker/model"
)

type UtilizationResult struct {
	TotalHours         float64 `json:"totalHours"`
	UtilizationPercent float64 `json:"utilizationPercent"`
}

// Utilization totals the project's hours submitted within r against its allocation.
// A project without allocation is always 0%.
func Utilization(p model.Project, timesheets []model.Timesheet, r DateRange) UtilizationResult {
	var total float64
	for _, t := range timesheets {
		if t.ProjectID != p.ID || !r.Contains(t.SubmittedAt) {
			continue
		}
		total += DailyTotal(t)
	}
	res := UtilizationResult{TotalHours: total}
	if p.AllocatedHours > 0 {
		res.UtilizationPercent = total / p.AllocatedHours * 100
	}
	return res
}

// HoursRemaining is the unspent part of the allocation. Negative when over budget.
func HoursRemaining(p model.Project, timesheets []model.Timesheet) float64 {
	used := 0.0
	for _, t := range timesheets {
		if t.ProjectID == p.ID {
			used += DailyTotal(t)
		}
	}
	return p.AllocatedHours - used
}

type ProjectHours struct {
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Hours     float64 `json:"hours"`
}

type WeekBucket struct {
	Week     Week           `json:"week"`
	Label    string         `json:"label"`
	Start    string         `json:"start"`
	Total    float64        `json:"total"`
	Projects []ProjectHours `json:"projects,omitempty"`
}

// WeeklySeries buckets timesheets into Monday-start weeks overlapping the month.
// The first bucket starts on the Monday on or before the first of the month and
// buckets continue while their start is on or before the month end. With
// perProject set every bucket carries one entry per project, zero-filled, in
// input order; Total is always the bucket sum.
func WeeklySeries(timesheets []model.Timesheet, projects []model.Project, month DateRange, perProject bool) []WeekBucket {
	hours := make(map[Week]map[string]float64)
	for _, t := range timesheets {
		w := Week{Number: t.WeekNumber, Year: t.Year}
		if hours[w] == nil {
			hours[w] = make(map[string]float64)
		}
		hours[w][t.ProjectID] += DailyTotal(t)
	}

	var series []WeekBucket
	for start := MondayOf(month.Start); !start.After(month.End); start = start.AddDate(0, 0, 7) {
		w := ISOWeekOf(start)
		b := WeekBucket{
			Week:  w,
			Label: fmt.Sprintf("Week %d", w.Number),
			Start: start.Format("2006-01-02"),
		}
		for _, h := range hours[w] {
			b.Total += h
		}
		if perProject {
			b.Projects = make([]ProjectHours, 0, len(projects))
			for _, p := range projects {
				b.Projects = append(b.Projects, ProjectHours{ProjectID: p.ID, Name: p.Name, Hours: hours[w][p.ID]})
			}
		}
		series = append(series, b)
	}
	return series
}

type UserHours struct {
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	Hours  float64 `json:"hours"`
}

// ProjectBreakdown groups hours by user, highest first.
func ProjectBreakdown(timesheets []model.Timesheet, users []model.User) []UserHours {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}

	byUser := make(map[string]float64)
	var order []string
	for _, t := range timesheets {
		if _, ok := byUser[t.UserID]; !ok {
			order = append(order, t.UserID)
		}
		byUser[t.UserID] += DailyTotal(t)
	}

	out := make([]UserHours, 0, len(order))
	for _, id := range order {
		name := names[id]
		if name == "" {
			name = "Unknown"
		}
		out = append(out, UserHours{UserID: id, Name: name, Hours: byUser[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hours > out[j].Hours })
	return out
}

type Stats struct {
	TotalHours     float64 `json:"totalHours"`
	ActiveProjects int     `json:"activeProjects"`
	Pending        int     `json:"pending"`
	Approved       int     `json:"approved"`
}

func ComputeStats(projects []model.Project, timesheets []model.Timesheet) Stats {
	var s Stats
	for _, p := range projects {
		if p.IsActive && p.CompletedAt == nil {
			s.ActiveProjects++
		}
	}
	for _, t := range timesheets {
		s.TotalHours += DailyTotal(t)
		switch t.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusApproved:
			s.Approved++
		}
	}
	return s
}
