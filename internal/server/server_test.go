package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
)

type fakeMembershipService struct {
	createOrgCalls int
	lastOrgName    string
	inviteCalls    int
	acceptCalls    int
	revokeCalls    int

	lastRevokedEmail string

	err error
}

func (f *fakeMembershipService) AddUser(ctx context.Context, req domain.AddUserRequest) (*domain.MemberView, error) {
	_ = ctx
	if f.err != nil {
		return nil, f.err
	}
	return &domain.MemberView{
		ID:             snowflake.ID(300).String(),
		OrganizationID: req.OrganizationID.String(),
		Email:          req.Email,
		Roles:          req.Roles,
	}, nil
}

func (f *fakeMembershipService) InviteUser(ctx context.Context, req domain.InviteUserRequest) error {
	f.inviteCalls++
	_ = ctx
	_ = req
	return f.err
}

func (f *fakeMembershipService) RevokeInvitation(ctx context.Context, orgID snowflake.ID, email string) error {
	f.revokeCalls++
	f.lastRevokedEmail = email
	_ = ctx
	_ = orgID
	return f.err
}

func (f *fakeMembershipService) AcceptInvitation(ctx context.Context, req domain.AcceptInvitationRequest) error {
	f.acceptCalls++
	_ = ctx
	_ = req
	return f.err
}

func (f *fakeMembershipService) FetchOrganizationUsers(ctx context.Context, orgID snowflake.ID) ([]domain.MemberView, error) {
	_ = ctx
	_ = orgID
	if f.err != nil {
		return nil, f.err
	}
	return []domain.MemberView{}, nil
}

func (f *fakeMembershipService) CreateOrganization(ctx context.Context, adminID snowflake.ID, name string) (*domain.OrganizationView, error) {
	f.createOrgCalls++
	f.lastOrgName = name
	_ = ctx
	_ = adminID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.OrganizationView{
		ID:         snowflake.ID(100).String(),
		Name:       name,
		Identifier: name + "-abc123",
	}, nil
}

func (f *fakeMembershipService) AssignRole(ctx context.Context, userID, orgID snowflake.ID, roleName string) error {
	_, _, _, _ = ctx, userID, orgID, roleName
	return f.err
}

func (f *fakeMembershipService) DeleteRole(ctx context.Context, userID, orgID snowflake.ID, roleName string) error {
	_, _, _, _ = ctx, userID, orgID, roleName
	return f.err
}

func (f *fakeMembershipService) LeaveOrganization(ctx context.Context, userID, orgID snowflake.ID) error {
	_, _, _ = ctx, userID, orgID
	return f.err
}

func (f *fakeMembershipService) DeleteOrganization(ctx context.Context, orgID snowflake.ID) error {
	_, _ = ctx, orgID
	return f.err
}

func newTestServer(svc domain.Service) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:        router,
		membershipSvc: svc,
	}
	srv.registerAPIRoutes()
	return srv, router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateOrganizationHandler(t *testing.T) {
	svc := &fakeMembershipService{}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodPost, "/api/organizations", `{"name":"Acme","admin_user_id":"200"}`)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.createOrgCalls != 1 || svc.lastOrgName != "Acme" {
		t.Fatalf("expected one create call with name Acme, got %d %q", svc.createOrgCalls, svc.lastOrgName)
	}

	var view domain.OrganizationView
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.Name != "Acme" {
		t.Fatalf("expected organization in body, got %+v", view)
	}
}

func TestCreateOrganizationHandlerRejectsMissingName(t *testing.T) {
	svc := &fakeMembershipService{}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodPost, "/api/organizations", `{"admin_user_id":"200"}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if svc.createOrgCalls != 0 {
		t.Fatal("expected service not to be called")
	}
}

func TestUnknownOrganizationMapsTo404(t *testing.T) {
	svc := &fakeMembershipService{err: domain.ErrOrganizationNotFound}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodGet, "/api/organizations/100/members", "")

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error.Message != "no organization exists" {
		t.Fatalf("expected sentinel message, got %q", body.Error.Message)
	}
}

func TestInviteExistingMemberMapsTo409(t *testing.T) {
	svc := &fakeMembershipService{err: domain.ErrAlreadyMember}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodPost, "/api/organizations/100/invites", `{"email":"bob@example.com"}`)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
	if svc.inviteCalls != 1 {
		t.Fatalf("expected service call, got %d", svc.inviteCalls)
	}
}

func TestRevokeInvitationHandler(t *testing.T) {
	svc := &fakeMembershipService{}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodDelete, "/api/organizations/100/invites", `{"email":"bob@example.com"}`)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
	if svc.revokeCalls != 1 {
		t.Fatalf("expected service call, got %d", svc.revokeCalls)
	}
	if svc.lastRevokedEmail != "bob@example.com" {
		t.Fatalf("unexpected email %q", svc.lastRevokedEmail)
	}
}

func TestRevokeInvitationRequiresEmail(t *testing.T) {
	svc := &fakeMembershipService{}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodDelete, "/api/organizations/100/invites", `{}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if svc.revokeCalls != 0 {
		t.Fatalf("expected no service call, got %d", svc.revokeCalls)
	}
}

func TestAcceptWithWrongCodeMapsTo422(t *testing.T) {
	svc := &fakeMembershipService{err: domain.ErrCodeVerification}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodPost, "/api/invites/accept", `{"email":"bob@example.com","organization_id":"100","code":"123456"}`)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", resp.Code)
	}
}

func TestLastAdminLeaveMapsTo409(t *testing.T) {
	svc := &fakeMembershipService{err: domain.ErrLastAdmin}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodDelete, "/api/organizations/100/members/200", "")

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestInvalidOrganizationIDRejected(t *testing.T) {
	svc := &fakeMembershipService{}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodGet, "/api/organizations/not-an-id/members", "")

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestAssignRoleRequiresName(t *testing.T) {
	svc := &fakeMembershipService{}
	_, router := newTestServer(svc)

	resp := doJSON(router, http.MethodPost, "/api/organizations/100/members/200/roles", `{"name":""}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
