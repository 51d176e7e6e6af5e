package model

// 建议分类常量
const (
	CategoryActionRequired = "action_required"
	CategoryQuestion       = "question"
	CategoryDecision       = "decision"
	CategoryInformation    = "information"
	CategoryNewsletter     = "newsletter"
	CategoryPromotional    = "promotional"
	CategorySocial         = "social"
	CategoryOther          = "other"
)

// 紧急程度常量
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// ActionItem 准备好的待办项
type ActionItem struct {
	Description   string `json:"description"`
	Deadline      string `json:"deadline,omitempty"`
	EstimatedTime string `json:"estimatedTime,omitempty"`
	PreparedLink  string `json:"preparedLink,omitempty"`
}

// DraftReply 预先起草的回信
type DraftReply struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Tone    string `json:"tone,omitempty"`
}

// CalendarEvent 从邮件中提取的日程建议
type CalendarEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExtractedData 从邮件中抽取的结构化信息
type ExtractedData struct {
	People    []string `json:"people,omitempty"`
	Companies []string `json:"companies,omitempty"`
	Amounts   []string `json:"amounts,omitempty"`
	Dates     []string `json:"dates,omitempty"`
	Links     []string `json:"links,omitempty"`
}

// Suggestion 单封邮件的 AI 准备结果。无法从邮件判断的字段保持为空，
// 不允许编造；ConfidenceScore/Priority 由 Preparer 夹到 [0,100]。
type Suggestion struct {
	Category        string         `json:"category"`
	Summary         string         `json:"summary"`
	KeyPoints       []string       `json:"keyPoints,omitempty"`
	Urgency         string         `json:"urgency"`
	Deadline        string         `json:"deadline,omitempty"`
	ActionItems     []ActionItem   `json:"actionItems,omitempty"`
	DraftReply      *DraftReply    `json:"draftReply,omitempty"`
	CalendarEvent   *CalendarEvent `json:"calendarEvent,omitempty"`
	ExtractedData   *ExtractedData `json:"extractedData,omitempty"`
	FollowUpActions []string       `json:"followUpActions,omitempty"`
	Reasoning       string         `json:"reasoning"`
	ConfidenceScore int            `json:"confidenceScore"`
	Priority        int            `json:"priority"`
}

// ValidCategory 是否为已知分类
func ValidCategory(category string) bool {
	switch category {
	case CategoryActionRequired, CategoryQuestion, CategoryDecision, CategoryInformation,
		CategoryNewsletter, CategoryPromotional, CategorySocial, CategoryOther:
		return true
	}
	return false
}

// ValidUrgency 是否为已知紧急程度
func ValidUrgency(urgency string) bool {
	switch urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}
