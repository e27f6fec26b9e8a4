package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TimesheetStatus string

const (
	StatusPending  TimesheetStatus = "pending"
	StatusApproved TimesheetStatus = "approved"
	StatusRejected TimesheetStatus = "rejected"
)

func (s TimesheetStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Timesheet struct {
	ID              string          `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	UserID          string          `gorm:"column:user_id;type:varchar(36);not null;index:idx_timesheets_user_week,priority:1" json:"userId"`
	ProjectID       string          `gorm:"column:project_id;type:varchar(36);not null;index" json:"projectId"`
	WeekNumber      int             `gorm:"column:week_number;not null;index:idx_timesheets_user_week,priority:3" json:"weekNumber"`
	Year            int             `gorm:"column:year;not null;index:idx_timesheets_user_week,priority:2" json:"year"`
	MondayHours     float64         `gorm:"column:monday_hours;type:decimal(5,2);not null;default:0" json:"mondayHours"`
	TuesdayHours    float64         `gorm:"column:tuesday_hours;type:decimal(5,2);not null;default:0" json:"tuesdayHours"`
	WednesdayHours  float64         `gorm:"column:wednesday_hours;type:decimal(5,2);not null;default:0" json:"wednesdayHours"`
	ThursdayHours   float64         `gorm:"column:thursday_hours;type:decimal(5,2);not null;default:0" json:"thursdayHours"`
	FridayHours     float64         `gorm:"column:friday_hours;type:decimal(5,2);not null;default:0" json:"fridayHours"`
	TotalHours      float64         `gorm:"column:total_hours;type:decimal(6,2);not null;default:0" json:"totalHours"`
	Status          TimesheetStatus `gorm:"column:status;type:varchar(20);not null;default:pending;index" json:"status"`
	SubmittedAt     time.Time       `gorm:"column:submitted_at;not null" json:"submittedAt"`
	ApprovedBy      *string         `gorm:"column:approved_by;type:varchar(36)" json:"approvedBy"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at" json:"approvedAt"`
	RejectionReason *string         `gorm:"column:rejection_reason;type:text" json:"rejectionReason"`

	User     *User    `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	Project  *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"project,omitempty"`
	Approver *User    `gorm:"foreignKey:ApprovedBy;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"approver,omitempty"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}

func (t *Timesheet) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave keeps the cached total in line with the day fields.
func (t *Timesheet) BeforeSave(tx *gorm.DB) error {
	t.TotalHours = t.MondayHours + t.TuesdayHours + t.WednesdayHours + t.ThursdayHours + t.FridayHours
	return nil
}

type EventAction string

const (
	EventSubmitted EventAction = "submitted"
	EventApproved  EventAction = "approved"
	EventRejected  EventAction = "rejected"
)

// TimesheetEvent is an append-only audit record of a workflow transition.
type TimesheetEvent struct {
	ID          string         `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TimesheetID string         `gorm:"column:timesheet_id;type:varchar(36);not null;index" json:"timesheetId"`
	ActorID     string         `gorm:"column:actor_id;type:varchar(36);not null" json:"actorId"`
	Action      EventAction    `gorm:"column:action;type:varchar(20);not null" json:"action"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (TimesheetEvent) TableName() string {
	return "timesheet_events"
}

func (e *TimesheetEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
