// Package domain contains core types for the membership service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Organization represents a tenant.
type Organization struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name       string            `gorm:"type:text;not null" json:"name"`
	Identifier string            `gorm:"type:text;not null;uniqueIndex:ux_organizations_identifier" json:"identifier"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// User represents a system user account. Users are never deleted by this
// service; removing a member only severs the organization link.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email        string            `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash *string           `gorm:"type:text" json:"-"`
	FirstName    string            `gorm:"type:text" json:"first_name"`
	LastName     string            `gorm:"type:text" json:"last_name"`
	Status       string            `gorm:"type:text;not null" json:"status"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// User lifecycle statuses.
const (
	UserStatusInvited  = "invited"
	UserStatusVerified = "verified"
)

// Member links a user to an organization. A user holds at most one
// membership per organization.
type Member struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_members_org_user,priority:1" json:"org_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_members_org_user,priority:2" json:"user_id"`
	IsAdmin   bool         `gorm:"not null;default:false" json:"is_admin"`
	Roles     []RoleLabel  `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"roles"`
	User      *User        `gorm:"foreignKey:UserID;references:ID" json:"-"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "members" }

// RoleLabel is a free-text role marker owned by one membership. Duplicate
// names per member are allowed.
type RoleLabel struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	MemberID snowflake.ID `gorm:"not null;index" json:"member_id"`
	Name     string       `gorm:"type:text;not null" json:"name"`
}

// TableName sets the database table name.
func (RoleLabel) TableName() string { return "role_labels" }
