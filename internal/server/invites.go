package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
)

type inviteMemberRequest struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

type acceptInvitationRequest struct {
	Email          string `json:"email"`
	OrganizationID string `json:"organization_id"`
	Code           string `json:"code"`
	Password       string `json:"password"`
}

func (s *Server) InviteOrganizationMember(c *gin.Context) {
	orgID, ok := s.orgIDFromPath(c)
	if !ok {
		return
	}

	var req inviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		AbortWithError(c, newValidationError("email", "invalid_email", "email is required"))
		return
	}

	err := s.membershipSvc.InviteUser(c.Request.Context(), domain.InviteUserRequest{
		Email:          req.Email,
		Name:           req.Name,
		OrganizationID: orgID,
		Roles:          req.Roles,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type revokeInvitationRequest struct {
	Email string `json:"email"`
}

func (s *Server) RevokeInvitation(c *gin.Context) {
	orgID, ok := s.orgIDFromPath(c)
	if !ok {
		return
	}

	var req revokeInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		AbortWithError(c, newValidationError("email", "invalid_email", "email is required"))
		return
	}

	if err := s.membershipSvc.RevokeInvitation(c.Request.Context(), orgID, req.Email); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		AbortWithError(c, newValidationError("email", "invalid_email", "email is required"))
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		AbortWithError(c, newValidationError("code", "invalid_code", "code is required"))
		return
	}

	orgID, err := snowflake.ParseString(strings.TrimSpace(req.OrganizationID))
	if err != nil {
		AbortWithError(c, newValidationError("organization_id", "invalid_organization_id", "organization_id must be a valid id"))
		return
	}

	allowed, err := s.acceptLimiter.Allow(c.Request.Context(), req.OrganizationID, req.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !allowed {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	err = s.membershipSvc.AcceptInvitation(c.Request.Context(), domain.AcceptInvitationRequest{
		Email:          req.Email,
		OrganizationID: orgID,
		Code:           req.Code,
		Password:       req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
