package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"educareer/backend/config"
)

// ErrNotConfigured 未配置 Twilio 账号
var ErrNotConfigured = errors.New("twilio: account not configured")

// Client 短信 / WhatsApp 发送接口
type Client interface {
	SendSMS(ctx context.Context, to, body string) (*Message, error)
	SendWhatsApp(ctx context.Context, to, body string) (*Message, error)
}

// Message Twilio Messages API 响应（节选）
type Message struct {
	SID          string  `json:"sid,omitempty"`
	To           string  `json:"to,omitempty"`
	From         string  `json:"from,omitempty"`
	Status       string  `json:"status,omitempty"`
	ErrorCode    *int    `json:"error_code,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// HTTPError 非 2xx 响应
type HTTPError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("twilio http %d: %s (code=%d)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("twilio http %d: %s", e.StatusCode, e.Message)
}

type client struct {
	cfg        config.TwilioConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// New 创建 Twilio 客户端；账号未配置时发送返回 ErrNotConfigured
func New(cfg config.TwilioConfig, logger *zap.Logger) Client {
	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(zap.String("client", "twilio")),
	}
}

func (c *client) SendSMS(ctx context.Context, to, body string) (*Message, error) {
	return c.send(ctx, strings.TrimSpace(to), strings.TrimSpace(c.cfg.FromNumber), body)
}

// SendWhatsApp 号码自动补 whatsapp: 前缀
func (c *client) SendWhatsApp(ctx context.Context, to, body string) (*Message, error) {
	from := c.cfg.WhatsAppNumber
	if from == "" {
		from = c.cfg.FromNumber
	}
	return c.send(ctx, whatsappAddr(to), whatsappAddr(from), body)
}

func whatsappAddr(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

func (c *client) send(ctx context.Context, to, from, body string) (*Message, error) {
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" {
		return nil, ErrNotConfigured
	}
	if to == "" {
		return nil, fmt.Errorf("twilio: To required")
	}
	if from == "" {
		return nil, fmt.Errorf("twilio: From required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("twilio: Body required")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.cfg.BaseURL, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 Twilio 失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			httpErr.Code = apiErr.Code
			httpErr.Message = apiErr.Message
		}
		return nil, httpErr
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("解析 Twilio 响应失败: %w", err)
	}
	c.logger.Info("消息已提交", zap.String("sid", msg.SID), zap.String("status", msg.Status))
	return &msg, nil
}
