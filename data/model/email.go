package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList JSON 序列化的字符串列表字段
type StringList []string

// Value 实现 driver.Valuer 接口
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, l)
}

// EmailMetadata 邮件扩展信息
type EmailMetadata struct {
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"provider_id,omitempty"`
}

// Value 实现 driver.Valuer 接口
func (m EmailMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner 接口
func (m *EmailMetadata) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// Email 拉取后归一化的邮件表。message_id 为全局去重键：
// 同一 message_id 永远只存一行，重复写入按已存在处理。
// 记录创建后不再修改。
// Table name: emails
type Email struct {
	ID          int64          `gorm:"column:id;primaryKey" json:"id"`
	UserID      string         `gorm:"column:user_id;type:varchar(128);not null;index:idx_emails_user_id" json:"user_id"`
	MessageID   string         `gorm:"column:message_id;type:varchar(998);not null;uniqueIndex:uk_message_id" json:"message_id"`
	FromAddress string         `gorm:"column:from_address;type:varchar(512)" json:"from_address"`
	FromName    string         `gorm:"column:from_name;type:varchar(255)" json:"from_name"`
	ToAddresses StringList     `gorm:"column:to_addresses;type:json" json:"to_addresses"`
	CcAddresses StringList     `gorm:"column:cc_addresses;type:json" json:"cc_addresses"`
	Subject     string         `gorm:"column:subject;type:varchar(998)" json:"subject"`
	Body        string         `gorm:"column:body;type:text" json:"body"`
	HTMLBody    string         `gorm:"column:html_body;type:text" json:"html_body,omitempty"`
	ReceivedAt  time.Time      `gorm:"column:received_at" json:"received_at"`
	ThreadID    string         `gorm:"column:thread_id;type:varchar(255)" json:"thread_id"`
	Labels      StringList     `gorm:"column:labels;type:json" json:"labels"`
	Metadata    *EmailMetadata `gorm:"column:metadata;type:json" json:"metadata"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Email) TableName() string { return "emails" }
