package dto

import (
	"time"

	datamodel "inbox-pilot/data/model"
)

// InboxItem 收件箱条目信息
type InboxItem struct {
	ID                    int64                 `json:"id"`
	Source                string                `json:"source"`
	SourceData            *datamodel.SourceData `json:"source_data,omitempty"`
	AISuggestionType      string                `json:"ai_suggestion_type"`
	AISuggestionContent   string                `json:"ai_suggestion_content"`
	AISuggestionReasoning string                `json:"ai_suggestion_reasoning"`
	ConfidenceScore       int                   `json:"confidence_score"`
	Priority              int                   `json:"priority"`
	Status                string                `json:"status"`
	NeedsReview           bool                  `json:"needs_review"`
	ReviewedAt            *time.Time            `json:"reviewed_at,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
}

// NewInboxItemFromModel 从数据库模型创建收件箱条目信息
func NewInboxItemFromModel(item *datamodel.InboxItem) *InboxItem {
	if item == nil {
		return nil
	}
	return &InboxItem{
		ID:                    item.ID,
		Source:                item.Source,
		SourceData:            item.SourceData,
		AISuggestionType:      item.AISuggestionType,
		AISuggestionContent:   item.AISuggestionContent,
		AISuggestionReasoning: item.AISuggestionReasoning,
		ConfidenceScore:       item.ConfidenceScore,
		Priority:              item.Priority,
		Status:                item.Status,
		NeedsReview:           item.NeedsReview,
		ReviewedAt:            item.ReviewedAt,
		CreatedAt:             item.CreatedAt,
	}
}

// ApproveResult 审批通过的执行结果
type ApproveResult struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	EmailSent bool   `json:"email_sent"`
}
