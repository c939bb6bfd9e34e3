package aiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"educareer/backend/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(&config.AIConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, zap.NewNop())
}

func TestExtractTimetable_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/timetable/upload" {
			t.Errorf("期望路径 /api/v1/timetable/upload，实际 %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("缺少 file 字段: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "tt.pdf" || string(data) != "%PDF" {
			t.Errorf("上传内容不一致: %s %q", header.Filename, data)
		}
		if got := r.FormValue("user_id"); got != "u1" {
			t.Errorf("期望 user_id=u1，实际 %s", got)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"total_courses": 1,
				"courses": []map[string]any{
					{"name": "Data Structures", "days": []string{"Monday"}, "times": []string{"09:00"}, "confidence": 0.82},
				},
			},
		})
	})

	courses, err := c.ExtractTimetable(context.Background(), "tt.pdf", strings.NewReader("%PDF"), "u1")
	if err != nil {
		t.Fatalf("ExtractTimetable 失败: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("期望 1 门课，实际 %d", len(courses))
	}
	if courses[0].Name != "Data Structures" || courses[0].Confidence != 0.82 {
		t.Errorf("解析结果不一致: %+v", courses[0])
	}
}

func TestExtractTimetable_ServiceReportsFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"unreadable image"}`))
	})

	_, err := c.ExtractTimetable(context.Background(), "a.png", strings.NewReader("x"), "")
	if !errors.Is(err, ErrServiceFailed) {
		t.Fatalf("期望 ErrServiceFailed，实际 %v", err)
	}
	if !strings.Contains(err.Error(), "unreadable image") {
		t.Errorf("期望错误包含服务端消息，实际 %v", err)
	}
}

func TestExtractTimetable_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ExtractTimetable(context.Background(), "a.png", strings.NewReader("x"), "u1")
	if !errors.Is(err, ErrServiceFailed) {
		t.Fatalf("期望 ErrServiceFailed，实际 %v", err)
	}
}

func TestPersonalizedRecommendations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req RecommendationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("请求体解析失败: %v", err)
		}
		if req.UserID != "u1" || len(req.Courses) != 2 || !req.IncludeCourses || req.Limit != 5 {
			t.Errorf("请求体不一致: %+v", req)
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"courses":[{"title":"Advanced SQL"}],"jobs":[],"user_keywords":["sql"],"total_recommendations":1}}`))
	})

	recs, err := c.PersonalizedRecommendations(context.Background(), RecommendationRequest{
		UserID:         "u1",
		Courses:        []string{"Databases", "Algorithms"},
		IncludeCourses: true,
		IncludeJobs:    true,
		Limit:          5,
	})
	if err != nil {
		t.Fatalf("PersonalizedRecommendations 失败: %v", err)
	}
	if recs.TotalRecommendations != 1 || len(recs.Courses) != 1 {
		t.Errorf("结果不一致: %+v", recs)
	}
	if recs.Courses[0]["title"] != "Advanced SQL" {
		t.Errorf("期望 title=Advanced SQL，实际 %v", recs.Courses[0]["title"])
	}
}

func TestPersonalizedRecommendations_Unreachable(t *testing.T) {
	c := New(&config.AIConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())
	if _, err := c.PersonalizedRecommendations(context.Background(), RecommendationRequest{UserID: "u1"}); err == nil {
		t.Fatal("期望连接失败返回错误")
	}
}
