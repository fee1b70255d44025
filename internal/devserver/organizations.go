package devserver

import (
	"github.com/gin-gonic/gin"

	"github.com/arcentra/console/pkg/envelope"
	"github.com/arcentra/console/pkg/model"
)

func validPlan(p model.OrganizationPlan) bool {
	switch p {
	case model.PlanFree, model.PlanStartup, model.PlanEnterprise:
		return true
	default:
		return false
	}
}

// handleListOrganizations は組織一覧を返すハンドラを返す。
func (s *Server) handleListOrganizations() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgs, err := s.store.listOrganizations(c.Request.Context())
		if err != nil {
			s.failWithError(c, err, "組織一覧取得")
			return
		}
		respond(c, model.OrganizationListResponse{Organizations: orgs, Total: len(orgs)})
	}
}

// handleGetOrganization は組織をIDで返すハンドラを返す。
func (s *Server) handleGetOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		org, err := s.store.organization(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.failWithError(c, err, "組織取得")
			return
		}
		respond(c, org)
	}
}

// handleCreateOrganization は組織を作成するハンドラを返す。プランはFreeで開始する。
func (s *Server) handleCreateOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateOrganizationRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Name == "" {
			fail(c, envelope.CodeBadRequest, "name is required")
			return
		}
		org, err := s.store.createOrganization(c.Request.Context(), req)
		if err != nil {
			s.failWithError(c, err, "組織作成")
			return
		}
		respond(c, org)
	}
}

// handleUpdateOrganization は組織を更新するハンドラを返す。
func (s *Server) handleUpdateOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateOrganizationRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Plan != nil && !validPlan(*req.Plan) {
			fail(c, envelope.CodeBadRequest, "invalid plan: "+string(*req.Plan))
			return
		}
		org, err := s.store.updateOrganization(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			s.failWithError(c, err, "組織更新")
			return
		}
		respond(c, org)
	}
}

// handleDeleteOrganization は組織を削除するハンドラを返す。
func (s *Server) handleDeleteOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.deleteOrganization(c.Request.Context(), c.Param("id")); err != nil {
			s.failWithError(c, err, "組織削除")
			return
		}
		respond(c, nil)
	}
}
