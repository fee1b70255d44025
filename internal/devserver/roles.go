package devserver

import (
	"github.com/gin-gonic/gin"

	"github.com/arcentra/console/pkg/envelope"
	"github.com/arcentra/console/pkg/middleware"
	"github.com/arcentra/console/pkg/model"
)

// validScope はロールスコープが既知の値かどうかを返す。
func validScope(scope model.RoleScope) bool {
	switch scope {
	case model.RoleScopeProject, model.RoleScopeTeam, model.RoleScopeOrg:
		return true
	default:
		return false
	}
}

// handleListRoles はロール一覧を返すハンドラを返す。scopeクエリで絞り込める。
func (s *Server) handleListRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, ok := pagination(c)
		if !ok {
			return
		}
		roles, total, err := s.store.listRoles(c.Request.Context(), c.Query("scope"), pageSize, (page-1)*pageSize)
		if err != nil {
			s.failWithError(c, err, "ロール一覧取得")
			return
		}
		respond(c, model.RoleListResponse{
			Count:    len(roles),
			PageNum:  page,
			PageSize: pageSize,
			Roles:    roles,
			Total:    total,
		})
	}
}

// handleGetRole はロールIDまたは名前でロールを返すハンドラを返す。
func (s *Server) handleGetRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := s.store.role(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.failWithError(c, err, "ロール取得")
			return
		}
		respond(c, role)
	}
}

// handleCreateRole はロールを作成するハンドラを返す。
func (s *Server) handleCreateRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateRoleRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Name == "" {
			fail(c, envelope.CodeBadRequest, "name is required")
			return
		}
		if !validScope(req.Scope) {
			fail(c, envelope.CodeBadRequest, "invalid scope: "+string(req.Scope))
			return
		}
		role, err := s.store.createRole(c.Request.Context(), req, middleware.GetUsername(c), false)
		if err != nil {
			s.failWithError(c, err, "ロール作成")
			return
		}
		respond(c, role)
	}
}

// handleUpdateRole はロールを更新するハンドラを返す。
func (s *Server) handleUpdateRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateRoleRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Scope != nil && !validScope(*req.Scope) {
			fail(c, envelope.CodeBadRequest, "invalid scope: "+string(*req.Scope))
			return
		}
		role, err := s.store.updateRole(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			s.failWithError(c, err, "ロール更新")
			return
		}
		respond(c, role)
	}
}

// handleDeleteRole はロールを削除するハンドラを返す。組み込みロールは削除できない。
func (s *Server) handleDeleteRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		role, err := s.store.role(ctx, c.Param("id"))
		if err != nil {
			s.failWithError(c, err, "ロール取得")
			return
		}
		if role.IsBuiltin == 1 {
			fail(c, envelope.CodeBadRequest, "builtin role cannot be deleted: "+role.Name)
			return
		}
		if err := s.store.deleteRole(ctx, role.RoleID); err != nil {
			s.failWithError(c, err, "ロール削除")
			return
		}
		respond(c, nil)
	}
}

// handleToggleRole はロールの有効・無効を切り替えるハンドラを返す。
func (s *Server) handleToggleRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := s.store.toggleRole(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.failWithError(c, err, "ロール切り替え")
			return
		}
		respond(c, role)
	}
}

// handleGetRolePermissions はロールの権限一覧を返すハンドラを返す。
func (s *Server) handleGetRolePermissions() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := s.store.role(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.failWithError(c, err, "ロール取得")
			return
		}
		perms := role.Permissions
		if perms == nil {
			perms = []string{}
		}
		respond(c, perms)
	}
}

// handleUpdateRolePermissions はロールの権限一覧を置き換えるハンドラを返す。
func (s *Server) handleUpdateRolePermissions() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.RolePermissionsRequest
		if !bindJSON(c, &req) {
			return
		}
		perms := req.Permissions
		if perms == nil {
			perms = []string{}
		}
		role, err := s.store.updateRole(c.Request.Context(), c.Param("id"), model.UpdateRoleRequest{Permissions: perms})
		if err != nil {
			s.failWithError(c, err, "権限更新")
			return
		}
		respond(c, role)
	}
}
