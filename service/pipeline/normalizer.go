package pipeline

import (
	"encoding/base64"
	"strings"
	"time"

	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/mailsource"
)

// defaultSubject 缺失主题时的占位值
const defaultSubject = "(no subject)"

// Normalize 把 provider 原始报文规整成统一邮件记录。
// 头部匹配不区分大小写；正文取报文树里第一个 text/plain 节点，
// 没有纯文本时退化为 snippet；HTML 正文单独保留。
func Normalize(raw *mailsource.RawMessage, userID string) *datamodel.Email {
	headers := headerMap(raw.Payload)

	subject := headers["subject"]
	if subject == "" {
		subject = defaultSubject
	}

	messageID := headers["message-id"]
	if messageID == "" {
		messageID = raw.ID
	}

	fromAddr, fromName := parseAddress(headers["from"])

	body := firstPartBody(raw.Payload, "text/plain")
	if body == "" {
		body = raw.Snippet
	}
	htmlBody := firstPartBody(raw.Payload, "text/html")

	receivedAt := time.Now()
	if raw.InternalDate > 0 {
		receivedAt = time.UnixMilli(raw.InternalDate)
	}

	email := &datamodel.Email{
		UserID:      userID,
		MessageID:   messageID,
		FromAddress: fromAddr,
		FromName:    fromName,
		Subject:     subject,
		Body:        body,
		HTMLBody:    htmlBody,
		ReceivedAt:  receivedAt,
		ThreadID:    raw.ThreadID,
		Labels:      datamodel.StringList(raw.LabelIDs),
		Metadata: &datamodel.EmailMetadata{
			Provider:   datamodel.ProviderGmail,
			ProviderID: raw.ID,
		},
	}
	if to := headers["to"]; to != "" {
		email.ToAddresses = datamodel.StringList{to}
	}
	if cc := headers["cc"]; cc != "" {
		email.CcAddresses = datamodel.StringList{cc}
	}
	return email
}

// headerMap 汇总报文头，键统一为小写
func headerMap(part *mailsource.MessagePart) map[string]string {
	headers := make(map[string]string)
	if part == nil {
		return headers
	}
	for _, h := range part.Headers {
		key := strings.ToLower(h.Name)
		if _, ok := headers[key]; !ok {
			headers[key] = h.Value
		}
	}
	return headers
}

// parseAddress 解析 "Name <addr>" 形式的 From 头，引号包裹的名字去引号。
// 名字取第一个 "<" 之前的部分，地址取最后一对尖括号内的部分。
func parseAddress(from string) (addr, name string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}
	lt := strings.Index(from, "<")
	gt := strings.LastIndex(from, ">")
	if lt < 0 || gt < lt {
		return from, ""
	}
	addrStart := strings.LastIndex(from[:gt], "<")
	addr = strings.TrimSpace(from[addrStart+1 : gt])
	name = strings.TrimSpace(from[:lt])
	name = strings.Trim(name, `"`)
	return addr, name
}

// firstPartBody 深度优先找到第一个指定 mimeType 的节点并解码其正文
func firstPartBody(part *mailsource.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, child := range part.Parts {
		if body := firstPartBody(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// decodeBody 解码 base64url 正文，provider 有时带填充有时不带
func decodeBody(data string) string {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}
