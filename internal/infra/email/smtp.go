package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/infra/config"
	"github.com/arklim/social-platform-auth/internal/infra/logger"
)

// Notifier delivers one-time codes over SMTP. Port 465 uses implicit TLS,
// everything else negotiates STARTTLS when the server offers it.
type Notifier struct {
	cfg config.SMTPSettings
	log *zap.Logger
}

func NewNotifier(cfg config.SMTPSettings, log *zap.Logger) *Notifier {
	return &Notifier{cfg: cfg, log: log}
}

// DeliverCode sends the verification code to the address. The message subject
// and body depend on the purpose the code was issued for.
func (n *Notifier) DeliverCode(ctx context.Context, address string, purpose domain.OtpPurpose, code string) error {
	subject, body := composeMessage(purpose, code)
	msg := buildMessage(n.cfg.From, address, subject, body)

	if err := n.send(ctx, address, msg); err != nil {
		n.log.Error("code delivery failed",
			zap.String("recipient", logger.MaskEmail(address)),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		return fmt.Errorf("deliver code to %s: %w", logger.MaskEmail(address), err)
	}

	n.log.Info("code delivered",
		zap.String("recipient", logger.MaskEmail(address)),
		zap.String("purpose", string(purpose)),
	)

	return nil
}

func composeMessage(purpose domain.OtpPurpose, code string) (string, string) {
	switch purpose {
	case domain.OtpPurposeResetPassword:
		return "Password reset code",
			fmt.Sprintf("Your password reset code is %s. It expires in 5 minutes. If you did not request a reset, ignore this message.", code)
	default:
		return "Confirm your registration",
			fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	}
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func (n *Notifier) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}

	if n.cfg.Port == 465 {
		conn = tls.Client(conn, &tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12})
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if n.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsCfg := &tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}
			if err := client.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if n.cfg.Username != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}

	return client.Quit()
}
