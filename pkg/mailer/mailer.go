package mailer

import (
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"educareer/backend/config"
)

// Mailer 邮件发送接口
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// sendFunc 与 smtp.SendMail 签名一致，测试中替换
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
	send   sendFunc
}

// New 创建 SMTP 邮件发送器
// 未配置账号密码时只记录日志，不实际发送（本地开发）
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{
		cfg:    cfg,
		logger: logger.With(zap.String("client", "smtp")),
		send:   smtp.SendMail,
	}
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("mailer: recipient required")
	}

	if m.cfg.Username == "" || m.cfg.Password == "" {
		m.logger.Warn("SMTP 未配置，邮件未发送",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	addr := m.cfg.SMTPHost + ":" + strconv.Itoa(m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	if err := m.send(addr, auth, m.from(), []string{to}, m.buildMessage(to, subject, htmlBody)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	m.logger.Info("邮件已发送", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (m *smtpMailer) from() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.Username
}

// buildMessage 组装 MIME 报文；头部顺序固定
func (m *smtpMailer) buildMessage(to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: EduCareer AI <" + m.from() + ">\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
