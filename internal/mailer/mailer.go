// Package mailer delivers invoice PDFs over SMTP.
package mailer

import (
	"context"
	"fmt"
	"io"

	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/render"
	"gopkg.in/gomail.v2"
)

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer renders an invoice and mails it to the issuing business.
type SMTPMailer struct {
	sender   Sender
	from     string
	fromName string
	metrics  *metrics.Metrics
	logger   *logging.LoggerV2
}

// NewSMTPMailer creates a mailer backed by a gomail dialer.
func NewSMTPMailer(cfg config.SMTPConfig, m *metrics.Metrics, logger *logging.LoggerV2) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewSMTPMailerWithSender(dialer, cfg, m, logger)
}

func NewSMTPMailerWithSender(sender Sender, cfg config.SMTPConfig, m *metrics.Metrics, logger *logging.LoggerV2) *SMTPMailer {
	return &SMTPMailer{
		sender:   sender,
		from:     cfg.From,
		fromName: cfg.FromName,
		metrics:  m,
		logger:   logger,
	}
}

// SendInvoice renders inv to PDF and sends it to inv.BusinessEmail.
func (s *SMTPMailer) SendInvoice(ctx context.Context, inv *models.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if inv.BusinessEmail == "" {
		return fmt.Errorf("invoice %s has no business email", inv.InvoiceNumber)
	}

	pdf, err := render.PDF(inv)
	if err != nil {
		return err
	}

	msg := s.BuildMessage(inv, pdf)
	err = s.sender.DialAndSend(msg)
	s.metrics.EmailSent(err)
	if err != nil {
		s.logger.Error("Failed to send invoice email", logging.Fields{
			"invoice_number": inv.InvoiceNumber,
			"error":          err.Error(),
		})
		return fmt.Errorf("send invoice %s: %w", inv.InvoiceNumber, err)
	}

	s.logger.Info("Invoice email sent", logging.Fields{
		"invoice_number": inv.InvoiceNumber,
		"user_id":        inv.UserID,
	})
	return nil
}

// BuildMessage assembles the email for inv with pdf attached.
func (s *SMTPMailer) BuildMessage(inv *models.Invoice, pdf []byte) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", inv.BusinessEmail, inv.BusinessName)
	m.SetHeader("Subject", fmt.Sprintf("Invoice %s for %s", inv.InvoiceNumber, inv.CustomerName))

	rows := render.ChargeRows(inv)
	total := rows[len(rows)-1]
	m.SetBody("text/plain", fmt.Sprintf(
		"Invoice %s dated %s\n%s to %s for %s\n%s: %s %s\n\n%s\n",
		inv.InvoiceNumber, render.FormatDate(inv.InvoiceDate),
		inv.FromLocation, inv.ToLocation, inv.CustomerName,
		total.Label, render.CurrencySymbol, total.Amount,
		render.ThankYou,
	))

	m.Attach(inv.FileName(),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}),
	)
	return m
}

// MockMailer records delivered invoices.
type MockMailer struct {
	Sent []*models.Invoice
	Err  error
}

func (m *MockMailer) SendInvoice(ctx context.Context, inv *models.Invoice) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, inv)
	return nil
}
