package pipeline

import (
	"context"
	"fmt"

	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/completion"
)

// preparerBodyLimit 准备提示词里正文的截断长度
const preparerBodyLimit = 4000

const preparerSystemPrompt = `You are an executive email assistant. You analyze emails and prepare everything the user needs to act on them. Never invent facts that are not in the email: if a field cannot be determined from the email content, leave it empty. Respond with valid JSON only.`

// Preparer 工作准备器：对可行动邮件产出完整建议。
// 与分诊器相反，这里 fail-closed：准备失败不允许造一条空建议进收件箱。
type Preparer struct {
	completion completion.Service
}

// NewPreparer 创建准备器
func NewPreparer(cs completion.Service) *Preparer {
	return &Preparer{completion: cs}
}

// Prepare 分析邮件并产出建议。补全失败时原样返回错误，由调用方按邮件记录。
func (p *Preparer) Prepare(ctx context.Context, email *datamodel.Email) (*datamodel.Suggestion, error) {
	prompt := fmt.Sprintf(`Analyze this email and prepare the work needed to handle it.

From: %s (%s)
Subject: %s
Received: %s
Body:
%s

Respond with JSON matching this shape:
{
  "category": "action_required|question|decision|information|newsletter|promotional|social|other",
  "summary": "one-line summary",
  "keyPoints": ["key point"],
  "urgency": "low|medium|high|critical",
  "deadline": "deadline if mentioned, else empty",
  "actionItems": [{"description": "", "deadline": "", "estimatedTime": "", "preparedLink": ""}],
  "draftReply": {"subject": "", "body": "", "tone": ""},
  "calendarEvent": {"title": "", "date": "", "duration": "", "description": ""},
  "extractedData": {"people": [], "companies": [], "amounts": [], "dates": [], "links": []},
  "followUpActions": ["follow-up action"],
  "reasoning": "why this categorization and urgency",
  "confidenceScore": 0,
  "priority": 0
}
Include draftReply only when a reply is genuinely warranted. Include calendarEvent only when the email proposes a meeting or event. confidenceScore and priority are integers from 0 to 100.`,
		email.FromName, email.FromAddress, email.Subject,
		email.ReceivedAt.Format("2006-01-02 15:04"), truncate(email.Body, preparerBodyLimit))

	var suggestion datamodel.Suggestion
	if err := p.completion.Complete(ctx, preparerSystemPrompt, prompt, &suggestion); err != nil {
		return nil, fmt.Errorf("prepare message %s: %w", email.MessageID, err)
	}

	sanitize(&suggestion)
	return &suggestion, nil
}

// sanitize 收敛模型输出：分数夹到 [0,100]，未知枚举回退默认值
func sanitize(s *datamodel.Suggestion) {
	s.ConfidenceScore = clampScore(s.ConfidenceScore)
	s.Priority = clampScore(s.Priority)
	if !datamodel.ValidCategory(s.Category) {
		s.Category = datamodel.CategoryInformation
	}
	if !datamodel.ValidUrgency(s.Urgency) {
		s.Urgency = datamodel.UrgencyMedium
	}
	if s.Summary == "" {
		s.Summary = "Email received"
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
