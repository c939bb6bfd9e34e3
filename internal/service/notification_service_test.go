package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
)

func setupNotificationService() (*notificationService, *mockRepos) {
	repo, repos := newMockRepos()
	svc := newNotificationService(repo, zap.NewNop())
	svc.now = func() time.Time { return testToday }
	return svc, repos
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{6 * 24 * time.Hour, "6 days ago"},
		{7 * 24 * time.Hour, "1 week ago"},
		{27 * 24 * time.Hour, "3 weeks ago"},
		{28 * 24 * time.Hour, "Mar 2, 2025"},
	}
	for _, c := range cases {
		if got := relativeTime(now.Add(-c.ago), now); got != c.want {
			t.Errorf("%v 前期望 %q，实际 %q", c.ago, c.want, got)
		}
	}
}

func TestNotificationService_CreateAndList(t *testing.T) {
	svc, _ := setupNotificationService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", &dto.CreateNotificationRequest{Title: "Hello", Description: "World"})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if created.Type != model.NotificationSystem {
		t.Errorf("默认类型应为 system，实际 %s", created.Type)
	}
	if created.Timestamp != "Just now" {
		t.Errorf("期望 Just now，实际 %s", created.Timestamp)
	}

	svc.now = func() time.Time { return testToday.Add(2 * time.Hour) }
	if _, err := svc.Create(ctx, "user-1", &dto.CreateNotificationRequest{Title: "Later", Description: "x", Type: model.NotificationReminder}); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	list, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(list.List) != 2 || list.UnreadCount != 2 {
		t.Fatalf("期望 2 条未读，实际 %d / %d", len(list.List), list.UnreadCount)
	}
	if list.List[0].Title != "Later" {
		t.Errorf("应按时间倒序，首条期望 Later，实际 %s", list.List[0].Title)
	}
	if list.List[1].Timestamp != "2 hours ago" {
		t.Errorf("期望 2 hours ago，实际 %s", list.List[1].Timestamp)
	}
}

func TestNotificationService_ListLimit(t *testing.T) {
	svc, repos := setupNotificationService()
	for i := 0; i < 60; i++ {
		n := &model.Notification{UserID: "user-1", Title: "n"}
		n.CreatedAt = testToday.Add(-time.Duration(i) * time.Minute)
		repos.notifications.notifications = append(repos.notifications.notifications, n)
	}

	list, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(list.List) != notificationListLimit {
		t.Errorf("期望最多 %d 条，实际 %d", notificationListLimit, len(list.List))
	}
	if list.UnreadCount != 60 {
		t.Errorf("未读数应统计全部，实际 %d", list.UnreadCount)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, _ := setupNotificationService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, "user-1", &dto.CreateNotificationRequest{Title: "a", Description: "a"})
	_, _ = svc.Create(ctx, "user-1", &dto.CreateNotificationRequest{Title: "b", Description: "b"})
	other, _ := svc.Create(ctx, "user-2", &dto.CreateNotificationRequest{Title: "c", Description: "c"})

	if err := svc.MarkRead(ctx, "user-1", a.ID); err != nil {
		t.Fatalf("MarkRead 失败: %v", err)
	}
	if err := svc.MarkRead(ctx, "user-1", other.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("他人通知期望 ErrNotificationNotFound，实际: %v", err)
	}

	n, err := svc.MarkAllRead(ctx, "user-1")
	if err != nil {
		t.Fatalf("MarkAllRead 失败: %v", err)
	}
	if n != 1 {
		t.Errorf("期望标记 1 条，实际 %d", n)
	}
}

func TestNotificationService_Preferences(t *testing.T) {
	svc, repos := setupNotificationService()
	ctx := context.Background()

	pref, err := svc.GetPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetPreferences 失败: %v", err)
	}
	if !pref.EmailEnabled || pref.SMSEnabled || pref.WhatsAppEnabled {
		t.Errorf("默认应只开启邮件，实际 %+v", pref)
	}

	yes, no := true, false
	updated, err := svc.UpdatePreferences(ctx, "user-1", &dto.UpdatePreferenceRequest{SMSEnabled: &yes, EmailEnabled: &no})
	if err != nil {
		t.Fatalf("UpdatePreferences 失败: %v", err)
	}
	if updated.EmailEnabled || !updated.SMSEnabled || updated.WhatsAppEnabled {
		t.Errorf("更新结果错误: %+v", updated)
	}
	if stored := repos.preferences.prefs["user-1"]; stored == nil || !stored.SMSEnabled {
		t.Error("偏好未持久化")
	}
}

func TestNotificationService_HandleUserRegistered(t *testing.T) {
	svc, repos := setupNotificationService()

	payload, _ := json.Marshal(UserEvent{UserID: "user-1"})
	if err := svc.handleUserRegistered(context.Background(), payload); err != nil {
		t.Fatalf("handleUserRegistered 失败: %v", err)
	}

	list := repos.notifications.byUser("user-1")
	if len(list) != 1 {
		t.Fatalf("期望 1 条欢迎通知，实际 %d", len(list))
	}
	if list[0].Type != model.NotificationWelcome || list[0].ActionURL != "/timetable" {
		t.Errorf("欢迎通知错误: %+v", list[0])
	}
}

func TestNotificationService_HandleUserRegistered_RepoError(t *testing.T) {
	svc, repos := setupNotificationService()
	repos.notifications.createErr = errors.New("db down")

	payload, _ := json.Marshal(UserEvent{UserID: "user-1"})
	if err := svc.handleUserRegistered(context.Background(), payload); err == nil {
		t.Error("写库失败应返回错误")
	}
}
