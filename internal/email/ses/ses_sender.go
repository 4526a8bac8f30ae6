package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

// sesAPI is the subset of the SES v2 client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client      sesAPI
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(ctx context.Context, region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return newSender(sesv2.NewFromConfig(cfg), fromAddress, fromName), nil
}

func newSender(client sesAPI, fromAddress, fromName string) *sesSender {
	return &sesSender{client: client, fromAddress: fromAddress, fromName: fromName}
}

func (s *sesSender) SendInvoiceNotification(ctx context.Context, toEmail, toName string, inv *domain.Invoice) error {
	subject := fmt.Sprintf("Invoice for %s: %s %.2f due %s",
		inv.BillingPeriod, inv.Currency, inv.TotalAmount, inv.DueDate.Format("02 Jan 2006"))
	htmlBody := buildInvoiceHTML(toName, inv)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nYour solar power invoice for %s is ready.\n\nEnergy billed: %.2f kWh at %.4f/kWh\nBase amount: %.2f\nTax: %.2f\nLate penalty: %.2f\nTotal due: %s %.2f\nDue date: %s\n\nInvoice reference: %s\n",
		toName, inv.BillingPeriod, inv.BillableKWh, inv.TariffRateApplied,
		inv.BaseAmount, inv.TaxAmount, inv.PenaltyAmount, inv.Currency, inv.TotalAmount,
		inv.DueDate.Format("02 Jan 2006"), inv.ID)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildInvoiceHTML(name string, inv *domain.Invoice) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Your invoice for %s</h2>
  <p>Hi %s,</p>
  <table style="width: 100%%; border-collapse: collapse;">
    <tr><td>Energy billed</td><td style="text-align: right;">%.2f kWh</td></tr>
    <tr><td>Rate applied</td><td style="text-align: right;">%.4f / kWh</td></tr>
    <tr><td>Base amount</td><td style="text-align: right;">%.2f</td></tr>
    <tr><td>Tax</td><td style="text-align: right;">%.2f</td></tr>
    <tr><td>Late penalty</td><td style="text-align: right;">%.2f</td></tr>
    <tr style="font-weight: bold;"><td>Total due</td><td style="text-align: right;">%s %.2f</td></tr>
  </table>
  <p>Please pay by <strong>%s</strong>.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Invoice reference %s</p>
</body>
</html>`,
		html.EscapeString(inv.BillingPeriod), html.EscapeString(name),
		inv.BillableKWh, inv.TariffRateApplied, inv.BaseAmount, inv.TaxAmount, inv.PenaltyAmount,
		html.EscapeString(inv.Currency), inv.TotalAmount,
		inv.DueDate.Format("02 Jan 2006"), inv.ID)
}
