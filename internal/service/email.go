package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"equiprent-backend/internal/logger"
)

type sendgridEmailService struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

func NewSendgridEmailService(apiKey, fromName, fromEmail string) EmailService {
	return &sendgridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *sendgridEmailService) send(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send email: sendgrid returned status %d", resp.StatusCode)
	}
	logger.Debug("Sent email", "to", toEmail, "subject", subject)
	return nil
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func (s *sendgridEmailService) SendRentalCreated(ctx context.Context, email, name, equipmentName string, totalCents int64, endDate time.Time) error {
	body := fmt.Sprintf("Hi %s,\n\nYour rental of %s is confirmed for %s. It is due back on %s.\n\nThanks,\nEquipRent",
		name, equipmentName, dollars(totalCents), endDate.Format("January 2, 2006"))
	return s.send(ctx, email, name, "Rental confirmed", body)
}

func (s *sendgridEmailService) SendRentalReturned(ctx context.Context, email, name, equipmentName string, totalCents, lateFeeCents, damageFeeCents int64) error {
	body := fmt.Sprintf("Hi %s,\n\nWe received %s back. Total charged: %s.", name, equipmentName, dollars(totalCents))
	if lateFeeCents > 0 {
		body += fmt.Sprintf("\nLate fee: %s.", dollars(lateFeeCents))
	}
	if damageFeeCents > 0 {
		body += fmt.Sprintf("\nDamage fee: %s.", dollars(damageFeeCents))
	}
	body += "\n\nThanks,\nEquipRent"
	return s.send(ctx, email, name, "Return received", body)
}

func (s *sendgridEmailService) SendRentalOverdue(ctx context.Context, email, name, equipmentName string, lateFeeCents int64) error {
	body := fmt.Sprintf("Hi %s,\n\nYour rental of %s is overdue. Late fees of %s have accrued so far; please return it as soon as possible.\n\nThanks,\nEquipRent",
		name, equipmentName, dollars(lateFeeCents))
	return s.send(ctx, email, name, "Rental overdue", body)
}

func (s *sendgridEmailService) SendRentalCancelled(ctx context.Context, email, name, equipmentName string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour rental of %s has been cancelled. Any payment made will be refunded to the original method.\n\nThanks,\nEquipRent",
		name, equipmentName)
	return s.send(ctx, email, name, "Rental cancelled", body)
}

func (s *sendgridEmailService) SendReservationCreated(ctx context.Context, email, name, equipmentName string, start, end time.Time) error {
	body := fmt.Sprintf("Hi %s,\n\nYour reservation of %s is in place from %s to %s.\n\nThanks,\nEquipRent",
		name, equipmentName, start.Format("January 2, 2006"), end.Format("January 2, 2006"))
	return s.send(ctx, email, name, "Reservation created", body)
}

func (s *sendgridEmailService) SendReservationConfirmed(ctx context.Context, email, name, equipmentName string, start time.Time) error {
	body := fmt.Sprintf("Hi %s,\n\nYour reservation of %s is confirmed. Pickup opens %s.\n\nThanks,\nEquipRent",
		name, equipmentName, start.Format("January 2, 2006"))
	return s.send(ctx, email, name, "Reservation confirmed", body)
}

func (s *sendgridEmailService) SendReservationCancelled(ctx context.Context, email, name, equipmentName, reason string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour reservation of %s has been cancelled.", name, equipmentName)
	if reason != "" {
		body += fmt.Sprintf("\nReason: %s.", reason)
	}
	body += "\n\nThanks,\nEquipRent"
	return s.send(ctx, email, name, "Reservation cancelled", body)
}

func (s *sendgridEmailService) SendReservationExpired(ctx context.Context, email, name, equipmentName string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour reservation of %s expired without pickup and has been released. Any hold on your card has been cancelled.\n\nThanks,\nEquipRent",
		name, equipmentName)
	return s.send(ctx, email, name, "Reservation expired", body)
}

func (s *sendgridEmailService) SendPaymentFailed(ctx context.Context, email, name, reason string) error {
	body := fmt.Sprintf("Hi %s,\n\nWe could not process your payment: %s.\nPlease check your card details and try again.\n\nThanks,\nEquipRent",
		name, reason)
	return s.send(ctx, email, name, "Payment failed", body)
}

// NopEmailService satisfies EmailService without sending anything. Used
// in tests and when no API key is configured.
type NopEmailService struct{}

func (NopEmailService) SendRentalCreated(context.Context, string, string, string, int64, time.Time) error {
	return nil
}
func (NopEmailService) SendRentalReturned(context.Context, string, string, string, int64, int64, int64) error {
	return nil
}
func (NopEmailService) SendRentalOverdue(context.Context, string, string, string, int64) error {
	return nil
}
func (NopEmailService) SendRentalCancelled(context.Context, string, string, string) error {
	return nil
}
func (NopEmailService) SendReservationCreated(context.Context, string, string, string, time.Time, time.Time) error {
	return nil
}
func (NopEmailService) SendReservationConfirmed(context.Context, string, string, string, time.Time) error {
	return nil
}
func (NopEmailService) SendReservationCancelled(context.Context, string, string, string, string) error {
	return nil
}
func (NopEmailService) SendReservationExpired(context.Context, string, string, string) error {
	return nil
}
func (NopEmailService) SendPaymentFailed(context.Context, string, string, string) error {
	return nil
}
