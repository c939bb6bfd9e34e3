package service

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"educareer/backend/pkg/aiclient"
	"educareer/backend/pkg/redis"
	"educareer/backend/pkg/twilio"
)

// ── Fake AI 客户端 ──

type fakeAI struct {
	extracted []aiclient.ExtractedCourse
	extractFn func() error
	rec       *aiclient.Recommendations
	recErr    error
	recCalls  int
	lastReq   aiclient.RecommendationRequest
}

func (f *fakeAI) ExtractTimetable(_ context.Context, _ string, content io.Reader, _ string) ([]aiclient.ExtractedCourse, error) {
	_, _ = io.Copy(io.Discard, content)
	if f.extractFn != nil {
		if err := f.extractFn(); err != nil {
			return nil, err
		}
	}
	return f.extracted, nil
}

func (f *fakeAI) PersonalizedRecommendations(_ context.Context, req aiclient.RecommendationRequest) (*aiclient.Recommendations, error) {
	f.recCalls++
	f.lastReq = req
	if f.recErr != nil {
		return nil, f.recErr
	}
	if f.rec == nil {
		return &aiclient.Recommendations{}, nil
	}
	return f.rec, nil
}

// ── Fake 缓存（行为对齐 pkg/redis.Client） ──

type fakeCache struct {
	mu          sync.Mutex
	values      map[string][]byte
	blacklisted map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte), blacklisted: make(map[string]time.Duration)}
}

func (c *fakeCache) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blacklisted[jti] = ttl
	return nil
}

func (c *fakeCache) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blacklisted[jti]
	return ok, nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = data
	return nil
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	data, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

// ── 记录型事件总线 ──

type publishedEvent struct {
	topic   string
	payload []byte
}

type recordingBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *recordingBus) Publish(_ context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{topic: topic, payload: data})
	return nil
}

func (b *recordingBus) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.topic)
	}
	return out
}

func (b *recordingBus) last(topic string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].topic == topic {
			return b.events[i].payload
		}
	}
	return nil
}

// ── Fake 邮件 / 短信 ──

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

type fakeSMS struct {
	sms      []string
	whatsapp []string
	err      error
}

func (f *fakeSMS) SendSMS(_ context.Context, to, _ string) (*twilio.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sms = append(f.sms, to)
	return &twilio.Message{SID: "SM" + to, To: to}, nil
}

func (f *fakeSMS) SendWhatsApp(_ context.Context, to, _ string) (*twilio.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.whatsapp = append(f.whatsapp, to)
	return &twilio.Message{SID: "WA" + to, To: to}, nil
}
