package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsApprover reports whether the role may act on other people's timesheets.
func (r Role) IsApprover() bool {
	return r == RoleManager || r == RoleAdmin
}

type User struct {
	ID           string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	FullName     *string   `gorm:"column:full_name;type:varchar(255)" json:"fullName"`
	Email        *string   `gorm:"column:email;type:varchar(255)" json:"email"`
	Role         Role      `gorm:"column:role;type:varchar(20);not null;default:user" json:"role"`
	ManagerID    *string   `gorm:"column:manager_id;type:varchar(36);index" json:"managerId"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Manager *User `gorm:"foreignKey:ManagerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName is the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}

// HasManager reports whether the user reports to someone.
func (u *User) HasManager() bool {
	return u.ManagerID != nil && *u.ManagerID != ""
}
