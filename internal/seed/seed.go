package seed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantry/internal/auth/password"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName       = "Main"
	defaultAdminEmail    = "admin@tenantry.local"
	defaultAdminPassword = "admin"
	defaultAdminName     = "Tenantry Admin"
)

// EnsureDefaultOrgAndAdmin seeds the default organization and admin membership
// for OSS mode. Safe to run on every startup.
func EnsureDefaultOrgAndAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureDefaultOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}

		var user domain.User
		err = tx.WithContext(ctx).
			Where("email = ?", defaultAdminEmail).
			First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hashed, err := password.Hash(defaultAdminPassword)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user = domain.User{
				ID:           node.Generate(),
				Email:        strings.ToLower(defaultAdminEmail),
				PasswordHash: &hashed,
				FirstName:    "Tenantry",
				LastName:     "Admin",
				Status:       domain.UserStatusVerified,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var member domain.Member
		err = tx.WithContext(ctx).
			Where("org_id = ? AND user_id = ?", org.ID, user.ID).
			First(&member).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			member = domain.Member{
				ID:        node.Generate(),
				OrgID:     org.ID,
				UserID:    user.ID,
				IsAdmin:   true,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.WithContext(ctx).Create(&member).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func ensureDefaultOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (domain.Organization, error) {
	var org domain.Organization
	err := tx.WithContext(ctx).Where("name = ?", defaultOrgName).First(&org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return org, err
	}
	now := time.Now().UTC()
	org = domain.Organization{
		ID:         node.Generate(),
		Name:       defaultOrgName,
		Identifier: defaultOrgName + "-" + randomSuffix(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return org, err
	}
	return org, nil
}

func randomSuffix() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "000000000000"
	}
	return hex.EncodeToString(buf)
}
