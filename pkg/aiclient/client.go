package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"educareer/backend/config"
)

// ErrServiceFailed AI 服务返回 success=false
var ErrServiceFailed = errors.New("AI service reported failure")

// ExtractedCourse OCR/NLP 从课表文件中识别出的一门课
type ExtractedCourse struct {
	Name       string   `json:"name"`
	Days       []string `json:"days"`
	Times      []string `json:"times"`
	Confidence float64  `json:"confidence"`
}

// RecommendationRequest 个性化推荐请求
type RecommendationRequest struct {
	UserID         string   `json:"user_id"`
	Courses        []string `json:"courses"`
	IncludeCourses bool     `json:"include_courses"`
	IncludeJobs    bool     `json:"include_jobs"`
	Limit          int      `json:"limit"`
}

// RecommendedItem 推荐条目（课程或职位），字段随 AI 服务演进，原样透传
type RecommendedItem map[string]any

// Recommendations 个性化推荐结果
type Recommendations struct {
	Courses              []RecommendedItem `json:"courses"`
	Jobs                 []RecommendedItem `json:"jobs"`
	UserKeywords         []string          `json:"user_keywords"`
	TotalRecommendations int               `json:"total_recommendations"`
}

// Client 外部 AI 服务客户端
type Client interface {
	// ExtractTimetable 上传 PDF / 图片，返回识别出的课程
	ExtractTimetable(ctx context.Context, filename string, content io.Reader, userID string) ([]ExtractedCourse, error)
	// PersonalizedRecommendations 根据课程名拉取推荐
	PersonalizedRecommendations(ctx context.Context, req RecommendationRequest) (*Recommendations, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New 创建 AI 服务客户端
func New(cfg *config.AIConfig, logger *zap.Logger) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(zap.String("client", "ai-backend")),
	}
}

// envelope AI 服务统一响应
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type extractData struct {
	TotalCourses int               `json:"total_courses"`
	Courses      []ExtractedCourse `json:"courses"`
}

// POST /api/v1/timetable/upload (multipart: file, user_id)
func (c *client) ExtractTimetable(ctx context.Context, filename string, content io.Reader, userID string) ([]ExtractedCourse, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("构建上传表单失败: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("写入上传文件失败: %w", err)
	}
	if userID != "" {
		if err := w.WriteField("user_id", userID); err != nil {
			return nil, fmt.Errorf("写入 user_id 失败: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("构建上传表单失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/timetable/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out envelope[extractData]
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("%w: %s", ErrServiceFailed, out.Message)
	}
	return out.Data.Courses, nil
}

// POST /api/v1/recommendations/personalized
func (c *client) PersonalizedRecommendations(ctx context.Context, in RecommendationRequest) (*Recommendations, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/recommendations/personalized", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out envelope[Recommendations]
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("%w: %s", ErrServiceFailed, out.Message)
	}
	return &out.Data, nil
}

// do 发送请求并解析 JSON；非 2xx 视为失败
func (c *client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求 AI 服务失败: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("AI 服务响应",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("读取 AI 服务响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 错误响应通常仍是 {success:false, message}
		var failed envelope[json.RawMessage]
		if json.Unmarshal(raw, &failed) == nil && failed.Message != "" {
			return fmt.Errorf("%w: HTTP %d: %s", ErrServiceFailed, resp.StatusCode, failed.Message)
		}
		return fmt.Errorf("%w: HTTP %d", ErrServiceFailed, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("解析 AI 服务响应失败: %w", err)
	}
	return nil
}
