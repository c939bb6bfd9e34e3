package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"educareer/backend/pkg/events"
)

// ── 异步任务 ────────────────────────────────────────────────
//
// 主流程只负责发布事件；推荐拉取、站内通知、外部提醒各自订阅，
// 失败由总线记录日志，不影响已提交的主流程。
// ─────────────────────────────────────────────────────────────

// 任务主题
const (
	TopicUserRegistered = "user.registered"
	TopicUserLoggedIn   = "user.logged_in"
	TopicTimetableSaved = "timetable.saved"
)

// UserEvent 注册 / 登录事件
type UserEvent struct {
	UserID string `json:"user_id"`
}

// TimetableSavedEvent 课表保存事件
type TimetableSavedEvent struct {
	UserID  string   `json:"user_id"`
	Courses []string `json:"courses"`
}

type task struct {
	topic   string
	name    string
	handler events.Handler
}

// publish 投递失败只记日志，bus 为 nil 时直接跳过
func publish(ctx context.Context, bus events.Publisher, logger *zap.Logger, topic string, payload any) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, topic, payload); err != nil {
		logger.Error("发布异步任务失败", zap.String("topic", topic), zap.Error(err))
	}
}

func decodeEvent[T any](payload []byte) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("解析任务负载失败: %w", err)
	}
	return v, nil
}
