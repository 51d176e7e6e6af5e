package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// InboxItem 来源常量
const (
	SourceEmail = "email"
)

// InboxItem 状态常量。pending 为初始态，approved/rejected 为终态，
// 终态之间及终态回 pending 均无转换。
const (
	ItemStatusPending  = "pending"
	ItemStatusApproved = "approved"
	ItemStatusRejected = "rejected"
)

// SourceData 条目自包含的展示与执行数据：邮件身份字段加完整的建议内容，
// 展示和审批时无需回查 emails 表。
type SourceData struct {
	EmailID    int64     `json:"email_id"`
	MessageID  string    `json:"message_id"`
	ThreadID   string    `json:"thread_id,omitempty"`
	From       string    `json:"from"`
	FromName   string    `json:"from_name,omitempty"`
	Subject    string    `json:"subject"`
	ReceivedAt time.Time `json:"received_at"`

	Suggestion
}

// Value 实现 driver.Valuer 接口
func (d SourceData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan 实现 sql.Scanner 接口
func (d *SourceData) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, d)
}

// InboxItem 待审批的工作条目，由一封可行动邮件派生。
// (source, source_id) 唯一，管道对每封可行动邮件至多建一条。
// Table name: inbox_items
type InboxItem struct {
	ID                    int64       `gorm:"column:id;primaryKey" json:"id"`
	UserID                string      `gorm:"column:user_id;type:varchar(128);not null;index:idx_user_status,priority:1" json:"user_id"`
	Source                string      `gorm:"column:source;type:varchar(32);not null;uniqueIndex:uk_source,priority:1" json:"source"`
	SourceID              int64       `gorm:"column:source_id;not null;uniqueIndex:uk_source,priority:2" json:"source_id"`
	SourceData            *SourceData `gorm:"column:source_data;type:json" json:"source_data"`
	AISuggestionType      string      `gorm:"column:ai_suggestion_type;type:varchar(32)" json:"ai_suggestion_type"`
	AISuggestionContent   string      `gorm:"column:ai_suggestion_content;type:text" json:"ai_suggestion_content"`
	AISuggestionReasoning string      `gorm:"column:ai_suggestion_reasoning;type:text" json:"ai_suggestion_reasoning"`
	ConfidenceScore       int         `gorm:"column:confidence_score;not null;default:0" json:"confidence_score"`
	Priority              int         `gorm:"column:priority;not null;default:0" json:"priority"`
	Status                string      `gorm:"column:status;type:varchar(16);not null;default:pending;index:idx_user_status,priority:2" json:"status"`
	NeedsReview           bool        `gorm:"column:needs_review;not null;default:1" json:"needs_review"`
	ReviewedAt            *time.Time  `gorm:"column:reviewed_at" json:"reviewed_at"`
	CreatedAt             time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (InboxItem) TableName() string { return "inbox_items" }

// IsPending 是否仍待审批
func (i *InboxItem) IsPending() bool {
	return i.Status == ItemStatusPending
}
