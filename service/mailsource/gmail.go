package mailsource

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"inbox-pilot/service/credential"
)

// DefaultGmailBaseURL Gmail REST API 基地址
const DefaultGmailBaseURL = "https://gmail.googleapis.com"

// unreadQuery 未读邮件检索式，排除推广/社交/论坛分类与垃圾邮件
const unreadQuery = "is:unread -category:promotions -category:social -category:forums -is:spam"

// GmailSource Gmail 实现的邮件源
type GmailSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewGmailSource 创建 Gmail 邮件源，baseURL 留空时使用官方端点
func NewGmailSource(baseURL string) *GmailSource {
	if baseURL == "" {
		baseURL = DefaultGmailBaseURL
	}
	return &GmailSource{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type listResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
	ResultSizeEstimate int `json:"resultSizeEstimate"`
}

// ListUnread 先按检索式列出邮件 id，再逐封拉取完整报文
func (g *GmailSource) ListUnread(ctx context.Context, creds *credential.Credentials, max int) ([]*RawMessage, error) {
	params := url.Values{
		"q":          {unreadQuery},
		"maxResults": {strconv.Itoa(max)},
	}
	var list listResponse
	if err := g.doGet(ctx, creds, "/gmail/v1/users/me/messages?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]*RawMessage, 0, len(list.Messages))
	for _, ref := range list.Messages {
		var msg RawMessage
		if err := g.doGet(ctx, creds, "/gmail/v1/users/me/messages/"+ref.ID+"?format=full", &msg); err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.ID, err)
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

// Send 组装 RFC822 报文并 base64url 编码后提交。ThreadID 非空时挂回原会话。
func (g *GmailSource) Send(ctx context.Context, creds *credential.Credentials, msg *OutgoingMessage) (*Receipt, error) {
	raw := buildRFC822(msg)
	payload := map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString([]byte(raw)),
	}
	if msg.ThreadID != "" {
		payload["threadId"] = msg.ThreadID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/gmail/v1/users/me/messages/send", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("send message: status %d: %s", resp.StatusCode, data)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("send message: decode response: %w", err)
	}
	return &receipt, nil
}

func (g *GmailSource) doGet(ctx context.Context, creds *credential.Credentials, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, data)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func buildRFC822(msg *OutgoingMessage) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	return buf.String()
}
