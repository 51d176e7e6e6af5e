package pipeline

import (
	datamodel "inbox-pilot/data/model"
)

// BuildInboxItem 由邮件与建议组装收件箱条目。纯函数，不落库。
// 顶层 ai_suggestion_type/content 取建议的分类与摘要，供列表筛选与展示；
// SourceData 自包含邮件身份字段与完整建议，展示与审批无需回查邮件表。
func BuildInboxItem(email *datamodel.Email, suggestion *datamodel.Suggestion) *datamodel.InboxItem {
	return &datamodel.InboxItem{
		UserID:   email.UserID,
		Source:   datamodel.SourceEmail,
		SourceID: email.ID,
		SourceData: &datamodel.SourceData{
			EmailID:    email.ID,
			MessageID:  email.MessageID,
			ThreadID:   email.ThreadID,
			From:       email.FromAddress,
			FromName:   email.FromName,
			Subject:    email.Subject,
			ReceivedAt: email.ReceivedAt,
			Suggestion: *suggestion,
		},
		AISuggestionType:      suggestion.Category,
		AISuggestionContent:   suggestion.Summary,
		AISuggestionReasoning: suggestion.Reasoning,
		ConfidenceScore:       suggestion.ConfidenceScore,
		Priority:              suggestion.Priority,
		Status:                datamodel.ItemStatusPending,
		NeedsReview:           true,
	}
}
