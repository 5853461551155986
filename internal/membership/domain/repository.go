package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrganization(ctx context.Context, org *Organization) error
	FindOrganization(ctx context.Context, id snowflake.ID) (*Organization, error)
	DeleteOrganization(ctx context.Context, id snowflake.ID) error

	CreateUser(ctx context.Context, user *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id snowflake.ID) (*User, error)

	CreateMember(ctx context.Context, member *Member) error
	FindMember(ctx context.Context, orgID, userID snowflake.ID) (*Member, error)
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]Member, error)
	DeleteMember(ctx context.Context, id snowflake.ID) error
	CountAdmins(ctx context.Context, orgID snowflake.ID) (int64, error)

	AddRoleLabel(ctx context.Context, label *RoleLabel) error
	DeleteRoleLabels(ctx context.Context, memberID snowflake.ID, name string) (int64, error)
}
