package config

import (
	"os"
	"time"

	scaffoldconfig "github.com/Plaud-AI/plaud-go-scaffold/pkg/config"

	"inbox-pilot/service/completion"
	"inbox-pilot/service/credential"
)

// ExternalServicesConfig 外部服务配置
type ExternalServicesConfig struct {
	AuthAPI *AuthAPIConfig `yaml:"auth_api"`
}

// AuthAPIConfig 鉴权服务配置
type AuthAPIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// SyncConfig 同步任务配置
type SyncConfig struct {
	// CronSecret 内部定时触发端点的共享密钥
	CronSecret string `yaml:"cron_secret"`
	// LockTTLSeconds 同步互斥锁过期秒数，0 取默认值
	LockTTLSeconds int `yaml:"lock_ttl_seconds"`
	// GmailBaseURL 留空时使用官方端点
	GmailBaseURL string `yaml:"gmail_base_url"`
}

// AppConfig 应用配置，扩展了 scaffold 的 AppConfig
type AppConfig struct {
	scaffoldconfig.AppConfig `yaml:",inline"`
	Google                   *credential.Config      `yaml:"google"`
	OpenAI                   *completion.Config      `yaml:"openai"`
	Sync                     *SyncConfig             `yaml:"sync"`
	Services                 *ExternalServicesConfig `yaml:"services"`
}

// Parse 解析配置
func (p *AppConfig) Parse() error {
	return p.AppConfig.Parse()
}

// GetConfig 获取配置
func (p *AppConfig) GetConfig() *AppConfig {
	return p
}

// GetGoogleConfig 获取 Google OAuth 配置，密钥未配置时从环境变量兜底
func (p *AppConfig) GetGoogleConfig() credential.Config {
	var cfg credential.Config
	if p.Google != nil {
		cfg = *p.Google
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	return cfg
}

// GetOpenAIConfig 获取补全客户端配置，api key 未配置时从环境变量兜底
func (p *AppConfig) GetOpenAIConfig() completion.Config {
	var cfg completion.Config
	if p.OpenAI != nil {
		cfg = *p.OpenAI
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg
}

// GetCronSecret 获取定时触发密钥
// 优先从配置文件读取，若未配置则从环境变量 CRON_SECRET 兜底
func (p *AppConfig) GetCronSecret() string {
	if p.Sync != nil && p.Sync.CronSecret != "" {
		return p.Sync.CronSecret
	}
	return os.Getenv("CRON_SECRET")
}

// GetSyncLockTTL 获取同步锁过期时间，未配置时返回 0 由调用方取默认值
func (p *AppConfig) GetSyncLockTTL() time.Duration {
	if p.Sync == nil {
		return 0
	}
	return time.Duration(p.Sync.LockTTLSeconds) * time.Second
}

// GetGmailBaseURL 获取 Gmail API 基地址，留空时由邮件源取官方端点
func (p *AppConfig) GetGmailBaseURL() string {
	if p.Sync == nil {
		return ""
	}
	return p.Sync.GmailBaseURL
}

// GetAuthAPIBaseURL 获取鉴权服务的 base URL
// 优先从配置文件读取，若未配置则从环境变量 AUTH_API_URL 兜底
func (p *AppConfig) GetAuthAPIBaseURL() string {
	if p.Services != nil && p.Services.AuthAPI != nil && p.Services.AuthAPI.BaseURL != "" {
		return p.Services.AuthAPI.BaseURL
	}
	return os.Getenv("AUTH_API_URL")
}
