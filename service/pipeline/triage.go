package pipeline

import (
	"context"
	"fmt"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"

	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/completion"
)

// triageBodyLimit 分诊提示词里正文的截断长度
const triageBodyLimit = 1000

const triageSystemPrompt = "You are an email triage assistant. Respond with valid JSON only."

// TriageResult 分诊结果
type TriageResult struct {
	IsActionable bool   `json:"isActionable"`
	Reasoning    string `json:"reasoning"`
}

// Triage 分诊器：快速判断一封邮件是否需要人处理。
// 模型不可用时 fail-open，宁可多审一封也不能漏掉重要邮件。
type Triage struct {
	completion completion.Service
}

// NewTriage 创建分诊器
func NewTriage(cs completion.Service) *Triage {
	return &Triage{completion: cs}
}

// Classify 判断邮件是否可行动。任何补全失败都按可行动处理并记录原因。
func (t *Triage) Classify(ctx context.Context, email *datamodel.Email) *TriageResult {
	prompt := fmt.Sprintf(`Determine if this email is actionable (requires the user to do something: reply, make a decision, complete a task, attend a meeting) or is purely informational (newsletter, notification, receipt, promotional).

From: %s
Subject: %s
Body: %s

Respond with JSON: {"isActionable": boolean, "reasoning": "one sentence"}`,
		email.FromAddress, email.Subject, truncate(email.Body, triageBodyLimit))

	var result TriageResult
	if err := t.completion.Complete(ctx, triageSystemPrompt, prompt, &result); err != nil {
		logger.WarnfCtx(ctx, "triage failed for message %s, defaulting to actionable: %v", email.MessageID, err)
		return &TriageResult{
			IsActionable: true,
			Reasoning:    "triage check failed, defaulting to actionable",
		}
	}
	return &result
}

// truncate 按字符截断，避免把多字节字符切坏
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
