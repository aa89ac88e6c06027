package receipt

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"checkout-be/internal/logger"
	"checkout-be/internal/order"

	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type deliverFunc func(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type smtpSender struct {
	cfg     SMTPConfig
	auth    smtp.Auth
	deliver deliverFunc
}

// NewSMTPSender mails receipts through the configured relay.
func NewSMTPSender(cfg SMTPConfig) order.ReceiptSender {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &smtpSender{
		cfg:     cfg,
		auth:    auth,
		deliver: deliverSMTP,
	}
}

func (s *smtpSender) SendPurchaseReceipt(ctx context.Context, o *order.Order) error {
	to := recipient(o)
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "receipt"),
		zap.String("order_id", o.ID),
	)

	if to == "" {
		return ErrNoRecipient
	}

	msg, err := buildMessage(s.cfg.From, to, o)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.deliver(ctx, addr, s.auth, s.cfg.From, []string{to}, msg); err != nil {
		log.Error("smtp delivery failed", zap.String("addr", addr), zap.Error(err))
		return fmt.Errorf("send receipt: %w", err)
	}

	log.Info("receipt mailed")
	return nil
}

// deliverSMTP is smtp.SendMail with the dial and the whole session bounded
// by ctx.
func deliverSMTP(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

type logSender struct{}

// NewLogSender records receipts in the log instead of mailing them. Used
// when no SMTP relay is configured.
func NewLogSender() order.ReceiptSender {
	return logSender{}
}

func (logSender) SendPurchaseReceipt(ctx context.Context, o *order.Order) error {
	to := recipient(o)
	if to == "" {
		return ErrNoRecipient
	}

	logger.FromCtx(ctx).Info("purchase receipt (not mailed, smtp disabled)",
		zap.String("order_id", o.ID),
		zap.String("to", to),
		zap.String("total", o.TotalPrice.StringFixed(2)),
		zap.String("currency", o.Currency),
	)
	return nil
}
