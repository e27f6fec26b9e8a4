package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectState string

const (
	ProjectActive    ProjectState = "active"
	ProjectArchived  ProjectState = "archived"
	ProjectCompleted ProjectState = "completed"
)

type Project struct {
	ID             string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Name           string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description    *string    `gorm:"column:description;type:text" json:"description"`
	ClientID       string     `gorm:"column:client_id;type:varchar(36);not null;index" json:"clientId"`
	AllocatedHours float64    `gorm:"column:allocated_hours;type:decimal(10,2);not null;default:0" json:"allocatedHours"`
	IsActive       bool       `gorm:"column:is_active;not null" json:"isActive"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completedAt"`
	CreatedBy      string     `gorm:"column:created_by;type:varchar(36);not null" json:"createdBy"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Client *Client `gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"client,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// State derives the lifecycle state from is_active and completed_at.
func (p *Project) State() ProjectState {
	switch {
	case p.IsActive:
		return ProjectActive
	case p.CompletedAt != nil:
		return ProjectCompleted
	default:
		return ProjectArchived
	}
}

// ProjectUser is the assignment of a user to a project.
type ProjectUser struct {
	ProjectID string    `gorm:"primaryKey;column:project_id;type:varchar(36)" json:"projectId"`
	UserID    string    `gorm:"primaryKey;column:user_id;type:varchar(36)" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User    *User    `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (ProjectUser) TableName() string {
	return "project_users"
}
