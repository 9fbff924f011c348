package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SpaceRoleAdmin  = "admin"
	SpaceRoleEditor = "editor"
	SpaceRoleViewer = "viewer"
)

// Space is a shared ownership context: a set of subscriptions that several
// users can see and, depending on their role, change.
type Space struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=1,max=150"`
	OwnerUserID uint           `gorm:"not null;index" json:"owner_user_id"`
	Members     []SpaceMember  `gorm:"foreignKey:SpaceID" json:"members,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// SpaceMember grants one user role-scoped access to a space.
type SpaceMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SpaceID   uint      `gorm:"not null;uniqueIndex:ux_space_members_space_user,priority:1" json:"space_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_space_members_space_user,priority:2" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;default:'viewer'" json:"role" validate:"oneof=admin editor viewer"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CanEdit reports whether the member may add, change or end subscriptions.
func (m *SpaceMember) CanEdit() bool {
	return m.Role == SpaceRoleAdmin || m.Role == SpaceRoleEditor
}

// CanManage reports whether the member may delete subscriptions and manage
// other members.
func (m *SpaceMember) CanManage() bool {
	return m.Role == SpaceRoleAdmin
}
