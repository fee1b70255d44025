package devserver

import (
	"encoding/json"
	"errors"
	"path"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/arcentra/console/pkg/envelope"
	"github.com/arcentra/console/pkg/middleware"
	"github.com/arcentra/console/pkg/model"
)

// handleMe は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := s.store.userByID(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			s.failWithError(c, err, "ユーザー取得")
			return
		}
		respond(c, u.info())
	}
}

// handleLogout は提示されたトークンを失効させるハンドラを返す。
// 以降そのトークンを使うリクエストはエンベロープコード4406になる。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.revokeToken(c.Request.Context(), middleware.GetTokenID(c)); err != nil {
			s.failWithError(c, err, "ログアウト")
			return
		}
		respond(c, model.MessageResponse{Msg: "logout success"})
	}
}

// handleRefresh は同じユーザーに新しいトークンを発行するハンドラを返す。
func (s *Server) handleRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _, err := middleware.GenerateJWT(s.jwtSecret,
			middleware.GetUserID(c), middleware.GetUsername(c), middleware.IsSuperAdmin(c), s.tokenTTL)
		if err != nil {
			s.failWithError(c, err, "トークン生成")
			return
		}
		respond(c, model.TokenResponse{Token: token})
	}
}

// handleUploadAvatar はアバター画像を受け取り、ユーザーのアバターURLを更新するハンドラを返す。
// 開発サーバーは画像本体を保存しない。
func (s *Server) handleUploadAvatar() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			fail(c, envelope.CodeBadRequest, "file is required")
			return
		}
		userID := middleware.GetUserID(c)
		avatarURL := "/avatars/" + userID + "/" + path.Base(file.Filename)

		if _, err := s.store.updateUserInfo(c.Request.Context(), userID,
			model.UpdateUserInfoRequest{Avatar: &avatarURL}); err != nil {
			s.failWithError(c, err, "アバター更新")
			return
		}
		respond(c, model.AvatarResponse{URL: avatarURL})
	}
}

// handleUpdateUser はユーザー情報を更新するハンドラを返す。
// 本人はプロフィールのみ、管理者はユーザー名・ロール・有効状態も変更できる。
func (s *Server) handleUpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		isAdmin := middleware.IsSuperAdmin(c)
		if !isAdmin && id != middleware.GetUserID(c) {
			fail(c, envelope.CodeForbidden, "permission denied")
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			fail(c, envelope.CodeBadRequest, "リクエストボディが不正です")
			return
		}
		var info model.UpdateUserInfoRequest
		if err := json.Unmarshal(body, &info); err != nil {
			fail(c, envelope.CodeBadRequest, "リクエストボディが不正です")
			return
		}

		ctx := c.Request.Context()
		u, err := s.store.updateUserInfo(ctx, id, info)
		if err != nil {
			s.failWithError(c, err, "ユーザー更新")
			return
		}
		if isAdmin {
			var req model.UpdateUserRequest
			if err := json.Unmarshal(body, &req); err != nil {
				fail(c, envelope.CodeBadRequest, "リクエストボディが不正です")
				return
			}
			if u, err = s.store.updateUser(ctx, id, req); err != nil {
				s.failWithError(c, err, "ユーザー更新")
				return
			}
		}
		respond(c, u.User)
	}
}

// passwordChange はパスワード変更リクエスト。値はBase64。
type passwordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// handleChangePassword はログインユーザー自身のパスワードを変更するハンドラを返す。
func (s *Server) handleChangePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req passwordChange
		if !bindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		u, err := s.store.userByID(ctx, middleware.GetUserID(c))
		if err != nil {
			s.failWithError(c, err, "ユーザー取得")
			return
		}

		oldPassword, ok := decodePassword(req.OldPassword)
		if !ok {
			fail(c, envelope.CodeBadRequest, "password must be base64 encoded")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
			fail(c, envelope.CodeBadRequest, "old password is incorrect")
			return
		}
		s.setPassword(c, u.UserID, req.NewPassword)
	}
}

// handleResetUserPassword は管理者が任意ユーザーのパスワードを再設定するハンドラを返す。
func (s *Server) handleResetUserPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Password string `json:"password"`
		}
		if !bindJSON(c, &req) {
			return
		}
		s.setPassword(c, c.Param("id"), req.Password)
	}
}

// setPassword はBase64のパスワードをハッシュ化して保存し、レスポンスを書き込む。
func (s *Server) setPassword(c *gin.Context, userID, encoded string) {
	password, ok := decodePassword(encoded)
	if !ok || password == "" {
		fail(c, envelope.CodeBadRequest, "password must be base64 encoded")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.failWithError(c, err, "パスワードのハッシュ化")
		return
	}
	if err := s.store.setPassword(c.Request.Context(), userID, string(hash)); err != nil {
		s.failWithError(c, err, "パスワード更新")
		return
	}
	respond(c, model.MessageResponse{Msg: "password updated"})
}

// handleListUsers はユーザー一覧をページ単位で返すハンドラを返す。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, ok := pagination(c)
		if !ok {
			return
		}
		users, total, err := s.store.listUsers(c.Request.Context(), pageSize, (page-1)*pageSize)
		if err != nil {
			s.failWithError(c, err, "ユーザー一覧取得")
			return
		}
		respond(c, model.UserListResponse{
			Count:    total,
			PageNum:  page,
			PageSize: pageSize,
			Users:    users,
		})
	}
}

// handleInviteUser はメールアドレスでユーザーを招待するハンドラを返す。
// 招待されたユーザーはパスワード未設定の状態で作成される。
func (s *Server) handleInviteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.InviteUserRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Email == "" {
			fail(c, envelope.CodeBadRequest, "email is required")
			return
		}

		u := userRecord{}
		u.Username = req.Email
		u.Email = req.Email
		u.Role = req.Role
		u.IsEnabled = 1
		u.InvitationStatus = model.InvitationPending
		if _, err := s.store.createUser(c.Request.Context(), u); err != nil {
			if errors.Is(err, errConflict) {
				fail(c, envelope.CodeConflict, "user already exists: "+req.Email)
				return
			}
			s.failWithError(c, err, "ユーザー招待")
			return
		}
		respond(c, nil)
	}
}
