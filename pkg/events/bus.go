package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"educareer/backend/config"
)

// ── 进程内异步任务总线 ──────────────────────────────────────
//
// 保存课表后的推荐拉取、站内通知、外部提醒都是"尽力而为"的副作用：
//   - 发布方只负责投递，不等待结果
//   - 订阅方执行失败只记录日志（不重试、不回滚主流程）
//   - 底层使用 watermill GoChannel，消息不持久化
// ─────────────────────────────────────────────────────────────

// Handler 任务处理函数，payload 为发布时的 JSON
type Handler func(ctx context.Context, payload []byte) error

// Publisher 供 Service 层依赖的最小发布接口
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Bus 基于 watermill GoChannel 的任务总线
type Bus struct {
	pubsub      *gochannel.GoChannel
	logger      *zap.Logger
	taskTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBus 创建任务总线
func NewBus(cfg *config.EventsConfig, logger *zap.Logger) *Bus {
	buffer := cfg.OutputBuffer
	if buffer <= 0 {
		buffer = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: buffer},
			NewZapLoggerAdapter(logger.Named("watermill")),
		),
		logger:      logger,
		taskTimeout: 2 * time.Minute,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Publish 序列化 payload 并投递到 topic，不等待订阅方处理
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化任务失败: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		msg.Metadata.Set("request_id", rid)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("投递任务失败: %w", err)
	}
	return nil
}

// Subscribe 注册任务处理器，每条消息在独立 goroutine 中串行消费
func (b *Bus) Subscribe(topic, name string, handler Handler) error {
	messages, err := b.pubsub.Subscribe(b.ctx, topic)
	if err != nil {
		return fmt.Errorf("订阅 %s 失败: %w", topic, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			b.handle(topic, name, msg, handler)
		}
	}()

	b.logger.Info("异步任务已注册", zap.String("topic", topic), zap.String("task", name))
	return nil
}

// handle 执行单条任务：失败与 panic 只记录，不重试
func (b *Bus) handle(topic, name string, msg *message.Message, handler Handler) {
	defer msg.Ack()

	fields := []zap.Field{
		zap.String("topic", topic),
		zap.String("task", name),
		zap.String("message_id", msg.UUID),
		zap.String("request_id", msg.Metadata.Get("request_id")),
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("异步任务 panic", append(fields, zap.Any("panic", r))...)
		}
	}()

	ctx, cancel := context.WithTimeout(msg.Context(), b.taskTimeout)
	defer cancel()

	start := time.Now()
	if err := handler(ctx, msg.Payload); err != nil {
		b.logger.Error("异步任务失败", append(fields, zap.Error(err))...)
		return
	}
	b.logger.Debug("异步任务完成", append(fields, zap.Duration("latency", time.Since(start)))...)
}

// Close 停止接收新消息并等待进行中的任务结束
func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	b.cancel()
	return err
}

// ── 上下文键 ──

type contextKey string

// RequestIDKey 请求 ID 在 context 中的键，随任务写入消息元数据
const RequestIDKey contextKey = "request_id"

// WithRequestID 将请求 ID 写入 context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
