package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/username/catcost/backend/src/config"
	"github.com/username/catcost/backend/src/logger"
	"github.com/username/catcost/backend/src/models"
)

func NewEmailService() EmailService {
	if config.Cfg == nil {
		logger.L.Error("Configuration (config.Cfg) is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return &MockEmailService{}
	}
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
}

func (s *MailgunEmailService) SendQuoteEmail(toEmail, projectName string, breakdown *models.CostBreakdown) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := fmt.Sprintf("Translation quote for %s", projectName)

	message := s.mg.NewMessage(from, subject, quotePlainText(projectName, breakdown), toEmail)
	message.SetHtml(quoteHTML(projectName, breakdown))
	message.AddTag("quote")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send quote email via Mailgun", "error", err, "to", toEmail, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.L.Info("Quote email sent successfully via Mailgun", "to", toEmail, "id", id, "project", projectName)
	return nil
}

type MockEmailService struct{}

func (m *MockEmailService) SendQuoteEmail(toEmail, projectName string, breakdown *models.CostBreakdown) error {
	logger.L.Info("MockEmailService: Would send quote email.",
		"to", toEmail, "project", projectName,
		"total", breakdown.FinalTotal.String(), "currency", breakdown.Currency)
	return nil
}

func quotePlainText(projectName string, b *models.CostBreakdown) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Quote for %s\n\n", projectName)
	for _, line := range b.Lines {
		fmt.Fprintf(&sb, "%-20s %8d words x %s = %s %s\n",
			line.Category, line.Words, line.RatePerWord.String(), line.Subtotal.String(), b.Currency)
	}
	fmt.Fprintf(&sb, "\nTotal words: %d\n", b.TotalWords)
	if b.MinimumFeeApplied {
		fmt.Fprintf(&sb, "Subtotal: %s %s\nMinimum fee applied: %s %s\n",
			b.RawTotal.String(), b.Currency, b.MinimumFee.String(), b.Currency)
	}
	fmt.Fprintf(&sb, "Total: %s %s\n", b.FinalTotal.String(), b.Currency)
	return sb.String()
}

func quoteHTML(projectName string, b *models.CostBreakdown) string {
	var rows strings.Builder
	for _, line := range b.Lines {
		fmt.Fprintf(&rows, `<tr><td style="padding: 4px 12px;">%s</td><td style="padding: 4px 12px; text-align: right;">%d</td><td style="padding: 4px 12px; text-align: right;">%s</td><td style="padding: 4px 12px; text-align: right;">%s</td></tr>`,
			line.Category, line.Words, line.RatePerWord.String(), line.Subtotal.String())
	}

	feeNote := ""
	if b.MinimumFeeApplied {
		feeNote = fmt.Sprintf(`<p>The line total of %s %s is below the agreed minimum fee, so the minimum fee of %s %s applies.</p>`,
			b.RawTotal.String(), b.Currency, b.MinimumFee.String(), b.Currency)
	}

	return fmt.Sprintf(`
	<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6;">
			<p>Quote for <strong>%s</strong></p>
			<table style="border-collapse: collapse;">
				<tr><th style="padding: 4px 12px; text-align: left;">Category</th><th style="padding: 4px 12px;">Words</th><th style="padding: 4px 12px;">Rate</th><th style="padding: 4px 12px;">Subtotal</th></tr>
				%s
			</table>
			%s
			<p><strong>Total: %s %s</strong> (%d words)</p>
		</body>
	</html>`, projectName, rows.String(), feeNote, b.FinalTotal.String(), b.Currency, b.TotalWords)
}
