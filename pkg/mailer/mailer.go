package mailer

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/config"
)

// Mailer 邮件发送接口，便于在测试中替换
type Mailer interface {
	SendVerificationCode(to, code string) error
}

// smtpMailer 基于 SMTP 的实现
// 163 等国内邮箱服务要求 465 端口隐式 SSL，因此先建立 TLS 连接再走 SMTP 协议
type smtpMailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewSMTPMailer 创建 SMTP 邮件发送器
func NewSMTPMailer(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, logger: logger}
}

func (m *smtpMailer) SendVerificationCode(to, code string) error {
	subject := "新生入学可视化系统 - 邮箱验证"
	body := fmt.Sprintf(`您好！

您的验证码是：%s

该验证码将在5分钟后过期，请尽快完成验证。

如果这不是您的操作，请忽略此邮件。

此致
新生入学可视化系统团队
`, code)

	if err := m.send(to, subject, body); err != nil {
		m.logger.Error("发送验证码邮件失败", zap.String("to", to), zap.Error(err))
		return err
	}

	m.logger.Info("验证码邮件已发送", zap.String("to", to))
	return nil
}

func (m *smtpMailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.SMTPHost})
	if err != nil {
		return fmt.Errorf("建立 TLS 连接失败: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("创建 SMTP 客户端失败: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP 认证失败: %w", err)
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: =?UTF-8?B?" + encodeBase64(subject) + "?=",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// encodeBase64 对主题做 RFC 2047 Base64 编码，避免中文主题乱码
func encodeBase64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
