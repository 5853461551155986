package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type createOrganizationRequest struct {
	Name        string `json:"name"`
	AdminUserID string `json:"admin_user_id"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "name is required"))
		return
	}

	adminID, err := snowflake.ParseString(strings.TrimSpace(req.AdminUserID))
	if err != nil {
		AbortWithError(c, newValidationError("admin_user_id", "invalid_admin_user_id", "admin_user_id must be a valid id"))
		return
	}

	org, err := s.membershipSvc.CreateOrganization(c.Request.Context(), adminID, req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

func (s *Server) DeleteOrganization(c *gin.Context) {
	orgID, ok := s.orgIDFromPath(c)
	if !ok {
		return
	}

	if err := s.membershipSvc.DeleteOrganization(c.Request.Context(), orgID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) orgIDFromPath(c *gin.Context) (snowflake.ID, bool) {
	orgID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_organization_id", "organization id must be a valid id"))
		return 0, false
	}
	return orgID, true
}

func (s *Server) userIDFromPath(c *gin.Context) (snowflake.ID, bool) {
	userID, err := snowflake.ParseString(strings.TrimSpace(c.Param("user_id")))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "user id must be a valid id"))
		return 0, false
	}
	return userID, true
}
