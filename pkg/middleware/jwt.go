package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/arcentra/console/pkg/envelope"
)

// Issuer は発行するJWTのiss。
const Issuer = "arcentra-devserver"

// コンテキストキー。
const (
	keyUserID     = "user_id"
	keyUsername   = "username"
	keyTokenID    = "token_id"
	keyTokenExp   = "token_exp"
	keySuperAdmin = "super_admin"
)

// Claims はJWTトークンのクレーム（ペイロード）を表す。
type Claims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーの一意識別子。
	UserID string `json:"user_id"`
	// Username はログイン名。
	Username string `json:"username"`
	// SuperAdmin は管理者APIを呼び出せるかどうか。
	SuperAdmin bool `json:"super_admin,omitempty"`
}

// RevocationChecker はトークンIDが失効済みかどうかを判定する。
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// GenerateJWT はユーザー情報から有効期限ttlのJWTトークンを生成する。
// 戻り値のトークンIDはログアウト時の失効に使う。
func GenerateJWT(secret, userID, username string, superAdmin bool, ttl time.Duration) (token, tokenID string, err error) {
	now := time.Now()
	tokenID = uuid.New().String()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
		UserID:     userID,
		Username:   username,
		SuperAdmin: superAdmin,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, tokenID, nil
}

// ParseJWT はトークンを検証してクレームを返す。
func ParseJWT(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("トークンが無効です")
	}
	return claims, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
//
// Authorizationヘッダーがない、またはBearer形式でない場合はHTTP 401を返す。
// トークンが無効・期限切れの場合はエンベロープコード4401、
// 失効済みの場合は4406を返す。revokedがnilの場合は失効確認を行わない。
func JWTAuth(secret string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				envelope.Fail(http.StatusUnauthorized, "Authorizationヘッダーが必要です"))
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				envelope.Fail(http.StatusUnauthorized, "Bearer トークン形式が不正です"))
			return
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, envelope.Fail(envelope.CodeTokenExpired, "token expired"))
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusOK, envelope.Fail(envelope.CodeInternal, "トークンの確認に失敗しました"))
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusOK, envelope.Fail(envelope.CodeTokenRevoked, "token revoked"))
				return
			}
		}

		c.Set(keyUserID, claims.UserID)
		c.Set(keyUsername, claims.Username)
		c.Set(keyTokenID, claims.ID)
		c.Set(keySuperAdmin, claims.SuperAdmin)
		if claims.ExpiresAt != nil {
			c.Set(keyTokenExp, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RequireSuperAdmin は管理者以外をエンベロープコード4403で拒否する。
// JWTAuthの後に適用する。
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsSuperAdmin(c) {
			c.AbortWithStatusJSON(http.StatusOK, envelope.Fail(envelope.CodeForbidden, "permission denied"))
			return
		}
		c.Next()
	}
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
func GetUserID(c *gin.Context) string {
	return c.GetString(keyUserID)
}

// GetUsername はGinコンテキストからユーザー名を取得する。
func GetUsername(c *gin.Context) string {
	return c.GetString(keyUsername)
}

// GetTokenID はGinコンテキストからトークンIDを取得する。
func GetTokenID(c *gin.Context) string {
	return c.GetString(keyTokenID)
}

// GetTokenExpiry はGinコンテキストからトークンの有効期限を取得する。
func GetTokenExpiry(c *gin.Context) time.Time {
	return c.GetTime(keyTokenExp)
}

// IsSuperAdmin はGinコンテキストのユーザーが管理者かどうかを返す。
func IsSuperAdmin(c *gin.Context) bool {
	return c.GetBool(keySuperAdmin)
}
