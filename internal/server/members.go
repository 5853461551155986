package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
)

type addMemberRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type roleRequest struct {
	Name string `json:"name"`
}

func (s *Server) ListOrganizationMembers(c *gin.Context) {
	orgID, ok := s.orgIDFromPath(c)
	if !ok {
		return
	}

	members, err := s.membershipSvc.FetchOrganizationUsers(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *Server) AddOrganizationMember(c *gin.Context) {
	orgID, ok := s.orgIDFromPath(c)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		AbortWithError(c, newValidationError("email", "invalid_email", "email is required"))
		return
	}

	member, err := s.membershipSvc.AddUser(c.Request.Context(), domain.AddUserRequest{
		Email:          req.Email,
		Name:           req.Name,
		Password:       req.Password,
		OrganizationID: orgID,
		Roles:          req.Roles,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (s *Server) LeaveOrganization(c *gin.Context) {
	orgID, ok := s.orgIDFromPath(c)
	if !ok {
		return
	}
	userID, ok := s.userIDFromPath(c)
	if !ok {
		return
	}

	if err := s.membershipSvc.LeaveOrganization(c.Request.Context(), userID, orgID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) AssignMemberRole(c *gin.Context) {
	orgID, ok := s.orgIDFromPath(c)
	if !ok {
		return
	}
	userID, ok := s.userIDFromPath(c)
	if !ok {
		return
	}

	name, ok := s.roleNameFromBody(c)
	if !ok {
		return
	}

	if err := s.membershipSvc.AssignRole(c.Request.Context(), userID, orgID, name); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteMemberRole(c *gin.Context) {
	orgID, ok := s.orgIDFromPath(c)
	if !ok {
		return
	}
	userID, ok := s.userIDFromPath(c)
	if !ok {
		return
	}

	name, ok := s.roleNameFromBody(c)
	if !ok {
		return
	}

	if err := s.membershipSvc.DeleteRole(c.Request.Context(), userID, orgID, name); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) roleNameFromBody(c *gin.Context) (string, bool) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		AbortWithError(c, newValidationError("name", "invalid_role_name", "role name is required"))
		return "", false
	}
	return name, true
}
