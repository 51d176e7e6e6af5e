package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Provider 常量
const (
	ProviderGmail = "gmail"
)

// Connection 状态常量
const (
	ConnStatusActive   = "active"
	ConnStatusInactive = "inactive"
	ConnStatusFailed   = "failed"
)

// 同步状态常量
const (
	SyncStatusPending   = "pending"
	SyncStatusSyncing   = "syncing"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// 每次同步拉取邮件数限制
const (
	DefaultMaxEmailsPerSync = 10
	MinEmailsPerSync        = 1
	MaxEmailsPerSync        = 100
)

// ConnectionMetadata 连接扩展信息（账号资料，不含凭证）
type ConnectionMetadata struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Value 实现 driver.Valuer 接口
func (m ConnectionMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner 接口
func (m *ConnectionMetadata) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// Connection 用户邮箱连接表
// Table name: connections
type Connection struct {
	ID                int64               `gorm:"column:id;primaryKey" json:"id"`
	UserID            string              `gorm:"column:user_id;type:varchar(128);not null;uniqueIndex:uk_user_provider_account,priority:1;index:idx_user_id" json:"user_id"`
	Provider          string              `gorm:"column:provider;type:varchar(32);not null;uniqueIndex:uk_user_provider_account,priority:2" json:"provider"`
	ProviderAccountID string              `gorm:"column:provider_account_id;type:varchar(255);not null;uniqueIndex:uk_user_provider_account,priority:3" json:"provider_account_id"`
	ConnStatus        string              `gorm:"column:conn_status;type:varchar(16);not null;default:active" json:"conn_status"`
	SyncStatus        string              `gorm:"column:sync_status;type:varchar(16);not null;default:pending" json:"sync_status"`
	LastSync          *time.Time          `gorm:"column:last_sync" json:"last_sync"`
	// Credentials 为凭证服务持有的不透明凭证块，管道内不解析其内容
	Credentials       string              `gorm:"column:credentials;type:text" json:"-"`
	MaxEmailsPerSync  int                 `gorm:"column:max_emails_per_sync;not null;default:10" json:"max_emails_per_sync"`
	Metadata          *ConnectionMetadata `gorm:"column:metadata;type:json" json:"metadata"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Connection) TableName() string { return "connections" }

// IsActive 连接是否可用于同步/发信
func (c *Connection) IsActive() bool {
	return c.ConnStatus == ConnStatusActive
}

// EffectiveMaxEmails 返回夹在 [1,100] 内的单次拉取上限，未配置时取默认值
func (c *Connection) EffectiveMaxEmails() int {
	n := c.MaxEmailsPerSync
	if n <= 0 {
		return DefaultMaxEmailsPerSync
	}
	if n < MinEmailsPerSync {
		return MinEmailsPerSync
	}
	if n > MaxEmailsPerSync {
		return MaxEmailsPerSync
	}
	return n
}
