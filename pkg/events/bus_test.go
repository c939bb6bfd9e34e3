package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"educareer/backend/config"
)

type savedPayload struct {
	UserID  string   `json:"user_id"`
	Courses []string `json:"courses"`
}

func TestBus_PublishDeliversPayload(t *testing.T) {
	bus := NewBus(&config.EventsConfig{OutputBuffer: 4}, zap.NewNop())
	defer bus.Close()

	got := make(chan savedPayload, 1)
	err := bus.Subscribe("timetable.saved", "test", func(ctx context.Context, payload []byte) error {
		var p savedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		got <- p
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe 失败: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-1")
	if err := bus.Publish(ctx, "timetable.saved", savedPayload{UserID: "u1", Courses: []string{"CS101"}}); err != nil {
		t.Fatalf("Publish 失败: %v", err)
	}

	select {
	case p := <-got:
		if p.UserID != "u1" || len(p.Courses) != 1 || p.Courses[0] != "CS101" {
			t.Errorf("收到的 payload 不一致: %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("等待任务超时")
	}
}

func TestBus_HandlerFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bus := NewBus(&config.EventsConfig{}, zap.New(core))

	done := make(chan struct{})
	err := bus.Subscribe("alert.requested", "send-alert", func(ctx context.Context, payload []byte) error {
		defer close(done)
		return errors.New("smtp unreachable")
	})
	if err != nil {
		t.Fatalf("Subscribe 失败: %v", err)
	}

	if err := bus.Publish(context.Background(), "alert.requested", map[string]string{"user_id": "u1"}); err != nil {
		t.Fatalf("Publish 失败: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("等待任务超时")
	}
	// Close 等待处理 goroutine 退出，保证日志已写入
	bus.Close()

	entries := logs.FilterMessage("异步任务失败").All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条失败日志，实际 %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["task"] != "send-alert" {
		t.Errorf("期望 task=send-alert，实际 %v", fields["task"])
	}
	if fields["error"] != "smtp unreachable" {
		t.Errorf("期望记录错误信息，实际 %v", fields["error"])
	}
}

func TestBus_PanicIsRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewBus(&config.EventsConfig{}, zap.New(core))

	calls := make(chan struct{}, 2)
	_ = bus.Subscribe("boom", "panicky", func(ctx context.Context, payload []byte) error {
		calls <- struct{}{}
		panic("unexpected")
	})

	_ = bus.Publish(context.Background(), "boom", "first")
	_ = bus.Publish(context.Background(), "boom", "second")

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("第 %d 条消息未被处理", i+1)
		}
	}
	bus.Close()

	if n := logs.FilterMessage("异步任务 panic").Len(); n != 2 {
		t.Errorf("期望 2 条 panic 日志，实际 %d", n)
	}
}
