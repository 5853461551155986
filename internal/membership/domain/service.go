package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	AddUser(ctx context.Context, req AddUserRequest) (*MemberView, error)
	InviteUser(ctx context.Context, req InviteUserRequest) error
	RevokeInvitation(ctx context.Context, orgID snowflake.ID, email string) error
	AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) error
	FetchOrganizationUsers(ctx context.Context, orgID snowflake.ID) ([]MemberView, error)
	CreateOrganization(ctx context.Context, adminID snowflake.ID, name string) (*OrganizationView, error)
	AssignRole(ctx context.Context, userID, orgID snowflake.ID, roleName string) error
	DeleteRole(ctx context.Context, userID, orgID snowflake.ID, roleName string) error
	LeaveOrganization(ctx context.Context, userID, orgID snowflake.ID) error
	DeleteOrganization(ctx context.Context, orgID snowflake.ID) error
}

type AddUserRequest struct {
	Email          string
	Name           string
	Password       string
	OrganizationID snowflake.ID
	Roles          []string
}

type InviteUserRequest struct {
	Email          string
	Name           string
	OrganizationID snowflake.ID
	Roles          []string
}

type AcceptInvitationRequest struct {
	Email          string
	OrganizationID snowflake.ID
	Code           string
	// Password is required when the invitation was issued for a new email;
	// for existing users it is ignored.
	Password string
}

// MemberView projects a membership with the linked user's profile fields.
// Credential data is never included.
type MemberView struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organization_id"`
	UserID         string   `json:"user_id"`
	IsAdmin        bool     `json:"is_admin"`
	Roles          []string `json:"roles"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Status         string   `json:"status"`
}

type OrganizationView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

var (
	ErrOrganizationNotFound  = errors.New("no organization exists")
	ErrUserNotFound          = errors.New("no user exists")
	ErrAlreadyMember         = errors.New("already part of organization")
	ErrNotMember             = errors.New("user not present in organization")
	ErrNotPartOfOrganization = errors.New("you are not part of this organization")
	ErrLastAdmin             = errors.New("admin cannot leave organization")
	ErrCodeVerification      = errors.New("unable to verify code")
	ErrPasswordRequired      = errors.New("password is required")
)
