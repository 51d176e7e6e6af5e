package credential

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/svc"
)

// 默认的 Google OAuth 端点
const (
	DefaultTokenURL    = "https://oauth2.googleapis.com/token"
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// 过期判定提前量，避免临界 token 在下游调用途中失效
const expirySkew = 30 * time.Second

var (
	ErrExchangeFailed = errors.New("authorization code exchange failed")
	ErrRefreshFailed  = errors.New("credential refresh failed")
)

// Credentials 凭证。对管道而言是不透明块，只有过期时间会被检查以触发刷新。
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Expired 是否已过期（含提前量）
func (c *Credentials) Expired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry.Add(-expirySkew))
}

// EncodeBlob 把凭证编码成可入库的不透明块
func EncodeBlob(c *Credentials) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeBlob 解码入库的凭证块
func DecodeBlob(blob string) (*Credentials, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("invalid credential blob: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid credential blob: %w", err)
	}
	return &c, nil
}

// Profile 连接账号的基础资料，用于确定 provider_account_id
type Profile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Config 凭证服务配置
type Config struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	// TokenURL / UserInfoURL 留空时使用 Google 默认端点
	TokenURL    string `yaml:"token_url"`
	UserInfoURL string `yaml:"user_info_url"`
}

// Service 凭证服务：授权码换取与刷新。token 内部结构不外漏到管道。
type Service struct {
	svc.BaseService
	cfg        Config
	httpClient *http.Client
}

// New 创建凭证服务
func New(cfg Config) *Service {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Exchange 用授权码换取凭证
func (s *Service) Exchange(ctx context.Context, code string) (*Credentials, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
		"redirect_uri":  {s.cfg.RedirectURL},
		"grant_type":    {"authorization_code"},
	}
	creds, err := s.requestToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	return creds, nil
}

// Refresh 刷新过期凭证。Google 不回传 refresh_token 时沿用旧值。
func (s *Service) Refresh(ctx context.Context, creds *Credentials) (*Credentials, error) {
	if creds == nil || creds.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing refresh token", ErrRefreshFailed)
	}
	form := url.Values{
		"refresh_token": {creds.RefreshToken},
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
	}
	refreshed, err := s.requestToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = creds.RefreshToken
	}
	return refreshed, nil
}

// Profile 获取连接账号的资料
func (s *Service) Profile(ctx context.Context, creds *Credentials) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Service) requestToken(ctx context.Context, form url.Values) (*Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, errors.New("token endpoint returned empty access token")
	}

	creds := &Credentials{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		creds.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return creds, nil
}
