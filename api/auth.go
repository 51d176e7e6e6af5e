package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// 上下文 key
const (
	CtxKeyUserID    = "user_id"
	CtxKeyUserEmail = "user_email"
)

// AuthUserInfo 鉴权后的用户信息
type AuthUserInfo struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AuthService 鉴权服务接口
type AuthService interface {
	// ValidateToken 验证 token 并返回用户信息
	ValidateToken(ctx context.Context, token string) (*AuthUserInfo, error)
}

// HTTPAuthService 调用外部鉴权服务验证 token
type HTTPAuthService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPAuthService 创建 HTTPAuthService
func NewHTTPAuthService(baseURL string) *HTTPAuthService {
	return &HTTPAuthService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ValidateToken 调用鉴权服务接口验证 token
func (s *HTTPAuthService) ValidateToken(ctx context.Context, token string) (*AuthUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/auth/validate", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.New("invalid token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var info AuthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.UserID == "" {
		return nil, errors.New("auth service returned empty user")
	}
	return &info, nil
}

// 默认的鉴权服务实例
var defaultAuthService AuthService

// SetAuthService 设置鉴权服务（用于依赖注入）
func SetAuthService(svc AuthService) {
	defaultAuthService = svc
}

// AuthMiddleware 用户鉴权中间件：校验 Authorization token 并把用户信息放进上下文
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			FailResponse(c, http.StatusUnauthorized, "unauthorized: missing token")
			c.Abort()
			return
		}
		if defaultAuthService == nil {
			FailResponse(c, http.StatusInternalServerError, "auth service not configured")
			c.Abort()
			return
		}

		userInfo, err := defaultAuthService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			FailResponse(c, http.StatusUnauthorized, "unauthorized: invalid token")
			c.Abort()
			return
		}

		c.Set(CtxKeyUserID, userInfo.UserID)
		c.Set(CtxKeyUserEmail, userInfo.Email)
		c.Next()
	}
}

// CronAuthMiddleware 内部定时触发端点的鉴权：
// Authorization 必须是 "Bearer <共享密钥>"，密钥比较用常数时间
func CronAuthMiddleware(secret func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := secret()
		if expected == "" {
			FailResponse(c, http.StatusInternalServerError, "cron secret not configured")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			FailResponse(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID 从上下文获取 user_id
func GetUserID(c *gin.Context) string {
	return c.GetString(CtxKeyUserID)
}

// GetUserEmail 从上下文获取 user_email
func GetUserEmail(c *gin.Context) string {
	return c.GetString(CtxKeyUserEmail)
}
