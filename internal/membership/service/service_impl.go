package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantry/internal/auth/password"
	"github.com/smallbiznis/tenantry/internal/config"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
	"github.com/smallbiznis/tenantry/internal/membership/event"
	obsmetrics "github.com/smallbiznis/tenantry/internal/observability/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db        *gorm.DB
	repo      domain.Repository
	invites   domain.InviteStore
	mailer    domain.InviteMailer
	genID     *snowflake.Node
	publisher event.Publisher
	metrics   *obsmetrics.Metrics
	inviteTTL time.Duration
}

func NewService(
	cfg config.Config,
	db *gorm.DB,
	repo domain.Repository,
	invites domain.InviteStore,
	mailer domain.InviteMailer,
	genID *snowflake.Node,
	publisher event.Publisher,
	metrics *obsmetrics.Metrics,
) domain.Service {
	return &service{
		db:        db,
		repo:      repo,
		invites:   invites,
		mailer:    mailer,
		genID:     genID,
		publisher: publisher,
		metrics:   metrics,
		inviteTTL: time.Duration(cfg.Invite.TTLSeconds) * time.Second,
	}
}

// AddUser creates a new user and their membership atomically. Inputs are not
// validated for format; a taken email surfaces the store's unique-violation
// error unmodified.
func (s *service) AddUser(ctx context.Context, req domain.AddUserRequest) (*domain.MemberView, error) {
	org, err := s.repo.FindOrganization(ctx, req.OrganizationID)
	if err != nil {
		return nil, orgNotFound(err)
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	first, last := splitName(req.Name)
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        req.Email,
		PasswordHash: &hashed,
		FirstName:    first,
		LastName:     last,
		Status:       domain.UserStatusVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	member := &domain.Member{
		ID:        s.genID.Generate(),
		OrgID:     org.ID,
		UserID:    user.ID,
		IsAdmin:   false,
		Roles:     s.roleLabels(req.Roles),
		CreatedAt: now,
	}
	s.bindLabels(member)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateUser(ctx, user); err != nil {
			return err
		}
		return repo.CreateMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordMemberJoined(ctx, org.ID.String())
	s.emit(ctx, org.ID, event.MemberJoinedTopic, map[string]string{
		"organization_id": org.ID.String(),
		"user_id":         user.ID.String(),
		"email":           user.Email,
	})

	view := memberView(member, user)
	return &view, nil
}

// InviteUser issues a one-time 6-digit code, emails the join link and stores
// the pending invitation under (organization, email) with the configured TTL.
// A re-invite for the same pair overwrites the previous code.
func (s *service) InviteUser(ctx context.Context, req domain.InviteUserRequest) error {
	org, err := s.repo.FindOrganization(ctx, req.OrganizationID)
	if err != nil {
		return orgNotFound(err)
	}

	user, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if user != nil {
		_, err := s.repo.FindMember(ctx, org.ID, user.ID)
		if err == nil {
			return domain.ErrAlreadyMember
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	newUser := user == nil

	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := s.mailer.SendInvitation(ctx, domain.InviteMail{
		To:               req.Email,
		Name:             req.Name,
		OrganizationID:   org.ID.String(),
		OrganizationName: org.Name,
		Code:             code,
		NewUser:          newUser,
	}); err != nil {
		return err
	}

	if err := s.invites.Put(ctx, org.ID, req.Email, domain.PendingInvitation{
		Code:    code,
		Name:    req.Name,
		NewUser: newUser,
		Roles:   req.Roles,
	}, s.inviteTTL); err != nil {
		return err
	}

	s.metrics.RecordInviteSent(ctx, org.ID.String(), newUser)
	s.emit(ctx, org.ID, event.InviteSentTopic, map[string]string{
		"organization_id": org.ID.String(),
		"email":           req.Email,
		"new_user":        fmt.Sprintf("%t", newUser),
	})
	return nil
}

// RevokeInvitation withdraws a pending invitation before it is accepted.
// Revoking an email with no pending invitation is a no-op.
func (s *service) RevokeInvitation(ctx context.Context, orgID snowflake.ID, email string) error {
	org, err := s.repo.FindOrganization(ctx, orgID)
	if err != nil {
		return orgNotFound(err)
	}

	if err := s.invites.Delete(ctx, org.ID, email); err != nil {
		return err
	}

	s.emit(ctx, org.ID, event.InviteRevokedTopic, map[string]string{
		"organization_id": org.ID.String(),
		"email":           email,
	})
	return nil
}

// AcceptInvitation redeems a pending invitation. The code check and the
// deletion happen in one atomic step, so a code can be redeemed at most once
// even under concurrent accepts.
func (s *service) AcceptInvitation(ctx context.Context, req domain.AcceptInvitationRequest) error {
	inv, err := s.invites.Consume(ctx, req.OrganizationID, req.Email, req.Code)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrCodeVerification
	}

	now := time.Now().UTC()
	var user *domain.User
	if inv.NewUser {
		if req.Password == "" {
			return domain.ErrPasswordRequired
		}
		hashed, err := password.Hash(req.Password)
		if err != nil {
			return err
		}
		first, last := splitName(inv.Name)
		user = &domain.User{
			ID:           s.genID.Generate(),
			Email:        req.Email,
			PasswordHash: &hashed,
			FirstName:    first,
			LastName:     last,
			Status:       domain.UserStatusVerified,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	} else {
		user, err = s.repo.FindUserByEmail(ctx, req.Email)
		if err != nil {
			return err
		}
	}

	member := &domain.Member{
		ID:        s.genID.Generate(),
		OrgID:     req.OrganizationID,
		UserID:    user.ID,
		IsAdmin:   false,
		Roles:     s.roleLabels(inv.Roles),
		CreatedAt: now,
	}
	s.bindLabels(member)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if inv.NewUser {
			if err := repo.CreateUser(ctx, user); err != nil {
				return err
			}
		}
		return repo.CreateMember(ctx, member)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordInviteAccepted(ctx, req.OrganizationID.String())
	s.metrics.RecordMemberJoined(ctx, req.OrganizationID.String())
	s.emit(ctx, req.OrganizationID, event.MemberJoinedTopic, map[string]string{
		"organization_id": req.OrganizationID.String(),
		"user_id":         user.ID.String(),
		"email":           user.Email,
	})
	return nil
}

// FetchOrganizationUsers lists every membership with the linked user's email
// and profile fields. Credential data is excluded from the projection.
func (s *service) FetchOrganizationUsers(ctx context.Context, orgID snowflake.ID) ([]domain.MemberView, error) {
	if _, err := s.repo.FindOrganization(ctx, orgID); err != nil {
		return nil, orgNotFound(err)
	}

	members, err := s.repo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.MemberView, 0, len(members))
	for i := range members {
		views = append(views, memberView(&members[i], members[i].User))
	}
	return views, nil
}

// CreateOrganization creates the organization and its first admin member.
// The identifier is the name plus a random hex suffix; uniqueness relies on
// the randomness, not on a re-check.
func (s *service) CreateOrganization(ctx context.Context, adminID snowflake.ID, name string) (*domain.OrganizationView, error) {
	admin, err := s.repo.FindUserByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	identifier, err := buildIdentifier(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:         s.genID.Generate(),
		Name:       name,
		Identifier: identifier,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}
		return repo.CreateMember(ctx, &domain.Member{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    admin.ID,
			IsAdmin:   true,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrganizationCreated(ctx)
	s.emit(ctx, org.ID, event.OrganizationCreatedTopic, map[string]string{
		"organization_id": org.ID.String(),
		"admin_user_id":   admin.ID.String(),
	})

	return &domain.OrganizationView{
		ID:         org.ID.String(),
		Name:       org.Name,
		Identifier: org.Identifier,
	}, nil
}

// AssignRole appends one role label to the membership. Duplicates are allowed.
func (s *service) AssignRole(ctx context.Context, userID, orgID snowflake.ID, roleName string) error {
	member, err := s.repo.FindMember(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotMember
		}
		return err
	}

	return s.repo.AddRoleLabel(ctx, &domain.RoleLabel{
		ID:       s.genID.Generate(),
		MemberID: member.ID,
		Name:     roleName,
	})
}

// DeleteRole removes every label matching the name under the membership.
func (s *service) DeleteRole(ctx context.Context, userID, orgID snowflake.ID, roleName string) error {
	member, err := s.repo.FindMember(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotMember
		}
		return err
	}

	_, err = s.repo.DeleteRoleLabels(ctx, member.ID, roleName)
	return err
}

// LeaveOrganization removes the membership unless it is the organization's
// only admin membership.
func (s *service) LeaveOrganization(ctx context.Context, userID, orgID snowflake.ID) error {
	member, err := s.repo.FindMember(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotPartOfOrganization
		}
		return err
	}

	if member.IsAdmin {
		admins, err := s.repo.CountAdmins(ctx, orgID)
		if err != nil {
			return err
		}
		if admins == 1 {
			return domain.ErrLastAdmin
		}
	}

	if err := s.repo.DeleteMember(ctx, member.ID); err != nil {
		return err
	}

	s.metrics.RecordMemberLeft(ctx, orgID.String())
	s.emit(ctx, orgID, event.MemberLeftTopic, map[string]string{
		"organization_id": orgID.String(),
		"user_id":         userID.String(),
	})
	return nil
}

// DeleteOrganization removes the organization; members and their role labels
// go with it.
func (s *service) DeleteOrganization(ctx context.Context, orgID snowflake.ID) error {
	if _, err := s.repo.FindOrganization(ctx, orgID); err != nil {
		return orgNotFound(err)
	}

	if err := s.repo.DeleteOrganization(ctx, orgID); err != nil {
		return err
	}

	s.emit(ctx, orgID, event.OrganizationDeletedTopic, map[string]string{
		"organization_id": orgID.String(),
	})
	return nil
}

func (s *service) roleLabels(names []string) []domain.RoleLabel {
	labels := make([]domain.RoleLabel, 0, len(names))
	for _, name := range names {
		labels = append(labels, domain.RoleLabel{Name: name})
	}
	return labels
}

// bindLabels assigns ids and the owning member to freshly built labels.
func (s *service) bindLabels(member *domain.Member) {
	for i := range member.Roles {
		member.Roles[i].ID = s.genID.Generate()
		member.Roles[i].MemberID = member.ID
	}
}

// emit writes a best-effort outbox event; failures are logged, never surfaced.
func (s *service) emit(ctx context.Context, orgID snowflake.ID, topic string, payload map[string]string) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Warn("failed to marshal membership event payload", zap.String("topic", topic), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, orgID, topic, data); err != nil {
		zap.L().Warn("failed to publish membership event", zap.String("topic", topic), zap.Error(err))
	}
}

func orgNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrOrganizationNotFound
	}
	return err
}

func memberView(member *domain.Member, user *domain.User) domain.MemberView {
	roles := make([]string, 0, len(member.Roles))
	for _, label := range member.Roles {
		roles = append(roles, label.Name)
	}

	view := domain.MemberView{
		ID:             member.ID.String(),
		OrganizationID: member.OrgID.String(),
		UserID:         member.UserID.String(),
		IsAdmin:        member.IsAdmin,
		Roles:          roles,
	}
	if user != nil {
		view.Email = user.Email
		view.FirstName = user.FirstName
		view.LastName = user.LastName
		view.Status = user.Status
	}
	return view
}

func splitName(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}

// generateCode returns a 6-digit numeric invitation code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

// buildIdentifier appends 6 random bytes, hex encoded, to the name.
func buildIdentifier(name string) (string, error) {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", name, hex.EncodeToString(suffix)), nil
}
