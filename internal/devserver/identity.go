package devserver

import (
	"github.com/gin-gonic/gin"

	"github.com/arcentra/console/pkg/envelope"
	"github.com/arcentra/console/pkg/model"
)

// providerTypes は作成可能なプロバイダー種別。
var providerTypes = []model.ProviderType{
	model.ProviderOAuth,
	model.ProviderLDAP,
	model.ProviderOIDC,
	model.ProviderSAML,
}

func validProviderType(t model.ProviderType) bool {
	for _, pt := range providerTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// handleProviderTypes は対応しているプロバイダー種別を返すハンドラを返す。
func (s *Server) handleProviderTypes() gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, providerTypes)
	}
}

// handleListProviders はプロバイダー一覧を返すハンドラを返す。typeクエリで絞り込める。
func (s *Server) handleListProviders() gin.HandlerFunc {
	return func(c *gin.Context) {
		providers, err := s.store.listProviders(c.Request.Context(), c.Query("type"))
		if err != nil {
			s.failWithError(c, err, "プロバイダー一覧取得")
			return
		}
		respond(c, providers)
	}
}

// handleGetProvider はプロバイダーを名前で返すハンドラを返す。
func (s *Server) handleGetProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.store.provider(c.Request.Context(), c.Param("name"))
		if err != nil {
			s.failWithError(c, err, "プロバイダー取得")
			return
		}
		respond(c, p)
	}
}

// handleCreateProvider はプロバイダーを作成するハンドラを返す。
func (s *Server) handleCreateProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateIdentityProviderRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Name == "" {
			fail(c, envelope.CodeBadRequest, "name is required")
			return
		}
		if !validProviderType(req.ProviderType) {
			fail(c, envelope.CodeBadRequest, "invalid provider_type: "+string(req.ProviderType))
			return
		}
		p, err := s.store.createProvider(c.Request.Context(), req)
		if err != nil {
			s.failWithError(c, err, "プロバイダー作成")
			return
		}
		respond(c, p)
	}
}

// handleUpdateProvider はプロバイダーを更新するハンドラを返す。
func (s *Server) handleUpdateProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateIdentityProviderRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.ProviderType != nil && !validProviderType(*req.ProviderType) {
			fail(c, envelope.CodeBadRequest, "invalid provider_type: "+string(*req.ProviderType))
			return
		}
		p, err := s.store.updateProvider(c.Request.Context(), c.Param("name"), req)
		if err != nil {
			s.failWithError(c, err, "プロバイダー更新")
			return
		}
		respond(c, p)
	}
}

// handleToggleProvider はプロバイダーの有効状態を設定するハンドラを返す。
func (s *Server) handleToggleProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ToggleProviderRequest
		if !bindJSON(c, &req) {
			return
		}
		p, err := s.store.updateProvider(c.Request.Context(), c.Param("name"),
			model.UpdateIdentityProviderRequest{IsEnabled: &req.IsEnabled})
		if err != nil {
			s.failWithError(c, err, "プロバイダー切り替え")
			return
		}
		respond(c, p)
	}
}

// handleDeleteProvider はプロバイダーを削除するハンドラを返す。
func (s *Server) handleDeleteProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.deleteProvider(c.Request.Context(), c.Param("name")); err != nil {
			s.failWithError(c, err, "プロバイダー削除")
			return
		}
		respond(c, nil)
	}
}
