package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// 默认端点与模型
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

var (
	// ErrUnreachable 模型服务不可达或返回非 2xx
	ErrUnreachable = errors.New("completion service unreachable")
	// ErrMalformedOutput 模型输出不是期望的 JSON 结构
	ErrMalformedOutput = errors.New("completion output malformed")
)

// Service 结构化补全抽象：system+prompt 进，JSON 解码到 out 出。
// 两类失败分别映射到 ErrUnreachable / ErrMalformedOutput，
// 上游据此决定 fail-open 还是 fail-closed。
type Service interface {
	Complete(ctx context.Context, system, prompt string, out any) error
}

// Config 补全客户端配置
type Config struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// Client OpenAI 兼容的 chat completions 客户端
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建补全客户端，BaseURL/Model 留空时使用默认值
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete 调一次补全并把返回的 JSON 解码到 out
func (c *Client) Complete(ctx context.Context, system, prompt string, out any) error {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: c.cfg.Temperature,
	}
	reqBody.ResponseFormat.Type = "json_object"

	data, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 双重包装，context 超时仍可被 errors.Is 识别
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrUnreachable, resp.StatusCode, body)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return fmt.Errorf("%w: empty completion", ErrMalformedOutput)
	}
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}
