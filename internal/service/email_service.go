package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/i18n"
	"github.com/tinythreads/internal/models"
)

// EmailService 邮件服务（纯文本 SMTP）
type EmailService struct {
	cfg       *config.EmailConfig
	storeName string
	origin    string
	send      func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig, store config.StoreConfig) *EmailService {
	s := &EmailService{cfg: cfg, storeName: store.Name, origin: store.SiteOrigin}
	s.send = s.deliver
	return s
}

// Enabled 是否已开启并配置
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled && s.cfg.Host != "" && s.cfg.Port != 0 && s.cfg.From != ""
}

// SendInquiryStaffNotice 通知店员有新询价
func (s *EmailService) SendInquiryStaffNotice(toEmail string, record *models.Inquiry) error {
	subject, body := buildInquiryStaffContent(record, s.origin)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendInquiryAck 给客户发送询价回执
func (s *EmailService) SendInquiryAck(record *models.Inquiry) error {
	subject, body := buildInquiryAckContent(record, s.storeName)
	return s.sendTextEmail(record.Email, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return normalizeEmailSendError(s.send(addr, auth, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildInquiryStaffContent(record *models.Inquiry, origin string) (string, string) {
	locale := i18n.DefaultLocale
	subject := i18n.Sprintf(locale, "email.inquiry_staff.subject", record.Subject)

	var b strings.Builder
	b.WriteString(i18n.Sprintf(locale, "email.inquiry_staff.body", record.FullName(), record.Email, record.Subject, record.Message))
	if record.Phone != nil && *record.Phone != "" {
		b.WriteString("\n")
		b.WriteString(i18n.Sprintf(locale, "email.inquiry_staff.phone", *record.Phone))
	}
	if len(record.CartItems) > 0 {
		b.WriteString("\n\n")
		b.WriteString(i18n.T(locale, "email.inquiry_staff.cart"))
		origin = strings.TrimRight(origin, "/")
		for _, item := range record.CartItems {
			price := "-"
			if item.Price != nil {
				price = item.Price.String()
			}
			b.WriteString(fmt.Sprintf("\n- %s x%d (%s) %s/products/%s", item.Name, item.Quantity, price, origin, item.ID))
		}
	}
	return subject, b.String()
}

func buildInquiryAckContent(record *models.Inquiry, storeName string) (string, string) {
	locale := i18n.DefaultLocale
	if strings.TrimSpace(storeName) == "" {
		storeName = "Tiny Threads"
	}
	subject := i18n.Sprintf(locale, "email.inquiry_ack.subject", storeName)
	body := i18n.Sprintf(locale, "email.inquiry_ack.body", record.FirstName, record.Subject, storeName)
	return subject, body
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

// deliver 按配置选择 SSL / StartTLS / 明文连接
func (s *EmailService) deliver(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	host := s.cfg.Host
	var client *smtp.Client
	if s.cfg.UseSSL {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
		if err != nil {
			return err
		}
		client, err = smtp.NewClient(conn, host)
		if err != nil {
			conn.Close()
			return err
		}
	} else {
		var err error
		client, err = smtp.Dial(addr)
		if err != nil {
			return err
		}
		if s.cfg.UseTLS {
			if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
				client.Close()
				return err
			}
		}
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

var recipientRejectedKeywords = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"unknown mailbox",
	"mailbox unavailable",
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	for _, keyword := range recipientRejectedKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
