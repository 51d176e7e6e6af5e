package mailsource

import (
	"context"

	"inbox-pilot/service/credential"
)

// MailSource 邮件源抽象。管道只依赖这两个操作，provider 细节不外漏。
type MailSource interface {
	// ListUnread 拉取未读邮件原始报文，数量不超过 max
	ListUnread(ctx context.Context, creds *credential.Credentials, max int) ([]*RawMessage, error)
	// Send 发送邮件，ThreadID 非空时挂到原会话
	Send(ctx context.Context, creds *credential.Credentials, msg *OutgoingMessage) (*Receipt, error)
}

// Header 报文头
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessagePartBody 报文体，Data 为 base64url 编码
type MessagePartBody struct {
	Size int    `json:"size"`
	Data string `json:"data,omitempty"`
}

// MessagePart 报文节点，multipart 邮件的 Parts 递归嵌套
type MessagePart struct {
	PartID   string           `json:"partId,omitempty"`
	MimeType string           `json:"mimeType"`
	Filename string           `json:"filename,omitempty"`
	Headers  []Header         `json:"headers,omitempty"`
	Body     *MessagePartBody `json:"body,omitempty"`
	Parts    []*MessagePart   `json:"parts,omitempty"`
}

// RawMessage provider 原始报文，保持 provider 的结构交给规整器处理
type RawMessage struct {
	ID           string       `json:"id"`
	ThreadID     string       `json:"threadId,omitempty"`
	LabelIDs     []string     `json:"labelIds,omitempty"`
	Snippet      string       `json:"snippet,omitempty"`
	Payload      *MessagePart `json:"payload,omitempty"`
	InternalDate int64        `json:"internalDate,string,omitempty"`
}

// OutgoingMessage 待发送邮件
type OutgoingMessage struct {
	To       string
	Subject  string
	Body     string
	ThreadID string
}

// Receipt 发送回执
type Receipt struct {
	MessageID string `json:"id"`
	ThreadID  string `json:"threadId"`
}
