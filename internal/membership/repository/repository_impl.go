package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) FindOrganization(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrganization removes the organization together with its members and
// their role labels. The cascade is issued explicitly so dialects without
// foreign-key enforcement behave the same as postgres.
func (r *repository) DeleteOrganization(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM role_labels WHERE member_id IN (SELECT id FROM members WHERE org_id = ?)`, id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("org_id = ?", id).Delete(&domain.Member{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Organization{}).Error
	})
}

func (r *repository) CreateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindUserByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateMember writes the member row and its role labels in one nested create.
func (r *repository) CreateMember(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) FindMember(ctx context.Context, orgID, userID snowflake.ID) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		Preload("Roles").
		First(&member, "org_id = ? AND user_id = ?", orgID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, orgID snowflake.ID) ([]domain.Member, error) {
	var members []domain.Member
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Preload("User").
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// DeleteMember removes the membership and its role labels.
func (r *repository) DeleteMember(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", id).Delete(&domain.RoleLabel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Member{}).Error
	})
}

func (r *repository) CountAdmins(ctx context.Context, orgID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("org_id = ? AND is_admin = ?", orgID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) AddRoleLabel(ctx context.Context, label *domain.RoleLabel) error {
	return r.db.WithContext(ctx).Create(label).Error
}

// DeleteRoleLabels removes every label with the given name under a member.
func (r *repository) DeleteRoleLabels(ctx context.Context, memberID snowflake.ID, name string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("member_id = ? AND name = ?", memberID, name).
		Delete(&domain.RoleLabel{})
	return result.RowsAffected, result.Error
}
