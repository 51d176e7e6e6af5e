package dto

import (
	"time"

	datamodel "inbox-pilot/data/model"
)

// Connection 邮箱连接信息。凭证不对外暴露。
type Connection struct {
	ID               int64                         `json:"id"`
	Provider         string                        `json:"provider"`
	ConnStatus       string                        `json:"conn_status"`
	SyncStatus       string                        `json:"sync_status"`
	LastSync         *time.Time                    `json:"last_sync,omitempty"`
	MaxEmailsPerSync int                           `json:"max_emails_per_sync"`
	Metadata         *datamodel.ConnectionMetadata `json:"metadata,omitempty"`
	CreatedAt        time.Time                     `json:"created_at"`
}

// NewConnectionFromModel 从数据库模型创建连接信息
func NewConnectionFromModel(conn *datamodel.Connection) *Connection {
	if conn == nil {
		return nil
	}
	return &Connection{
		ID:               conn.ID,
		Provider:         conn.Provider,
		ConnStatus:       conn.ConnStatus,
		SyncStatus:       conn.SyncStatus,
		LastSync:         conn.LastSync,
		MaxEmailsPerSync: conn.EffectiveMaxEmails(),
		Metadata:         conn.Metadata,
		CreatedAt:        conn.CreatedAt,
	}
}
