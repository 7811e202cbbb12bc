package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"parkeasy/internal/db"
	"parkeasy/internal/entities"
)

//go:embed templates/booking_email.html
var templatesFS embed.FS

var bookingEmailTmpl = template.Must(template.ParseFS(templatesFS, "templates/booking_email.html"))

type AccountGetter interface {
	GetByID(ctx context.Context, id string) (*db.Account, error)
}

// SenderService turns booking events into e-mail and SMS. A nil sender
// disables that channel.
type SenderService struct {
	Accounts AccountGetter
	Mail     EmailSender
	SMS      SMSSender
	loc      *time.Location
	log      *slog.Logger
}

func NewSenderService(accounts AccountGetter, mailer EmailSender, sms SMSSender, loc *time.Location, log *slog.Logger) *SenderService {
	return &SenderService{Accounts: accounts, Mail: mailer, SMS: sms, loc: loc, log: log}
}

func (s *SenderService) BookingConfirmed(ctx context.Context, b db.Booking) {
	account, ok := s.account(ctx, b)
	if !ok {
		return
	}
	data := s.emailData(account, b, "confirmed")
	subject := fmt.Sprintf("Your ParkEasy booking is confirmed - Entry code: %s", b.EntryCode)
	s.sendEmail(ctx, account, subject, data)

	if s.SMS != nil && account.Phone != "" {
		body := fmt.Sprintf("ParkEasy: booking at %s confirmed. Entry code %s. From %s.",
			b.ParkingSpotName, b.EntryCode, b.BookedAt.In(s.loc).Format("02/01 15:04"))
		if err := s.SMS.SendSMS(ctx, account.Phone, body); err != nil {
			s.log.Warn("booking sms failed", "booking_id", b.ID, "error", err)
		}
	}
}

func (s *SenderService) BookingEnded(ctx context.Context, b db.Booking) {
	account, ok := s.account(ctx, b)
	if !ok {
		return
	}
	data := s.emailData(account, b, b.Status)
	data.EntryCode = ""
	subject := fmt.Sprintf("Your ParkEasy booking at %s is %s", b.ParkingSpotName, b.Status)
	s.sendEmail(ctx, account, subject, data)
}

func (s *SenderService) account(ctx context.Context, b db.Booking) (*db.Account, bool) {
	if s.Mail == nil && s.SMS == nil {
		return nil, false
	}
	account, err := s.Accounts.GetByID(ctx, b.UserID)
	if err != nil {
		s.log.Warn("notification skipped, account lookup failed", "booking_id", b.ID, "error", err)
		return nil, false
	}
	return account, true
}

func (s *SenderService) emailData(a *db.Account, b db.Booking, status string) entities.BookingEmailData {
	return entities.BookingEmailData{
		UserName:           a.Name,
		EntryCode:          b.EntryCode,
		SpotName:           b.ParkingSpotName,
		Location:           b.Location,
		BookedSpots:        b.BookedSpots,
		VehicleType:        b.VehicleType,
		StartTimeFormatted: b.BookedAt.In(s.loc).Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   b.BookedUntil.In(s.loc).Format("02 Jan 2006 15:04 MST"),
		TotalAmount:        b.TotalAmount,
		Status:             status,
		CurrentYear:        time.Now().In(s.loc).Year(),
	}
}

func (s *SenderService) sendEmail(ctx context.Context, a *db.Account, subject string, data entities.BookingEmailData) {
	if s.Mail == nil {
		return
	}
	plain := fmt.Sprintf("Hello %s,\n\nYour booking at %s (%s) is %s.\n", data.UserName, data.SpotName, data.Location, data.Status)
	if data.EntryCode != "" {
		plain += fmt.Sprintf("Entry code: %s\n", data.EntryCode)
	}
	plain += fmt.Sprintf("From: %s\nUntil: %s\nTotal: %.2f\n\nParkEasy", data.StartTimeFormatted, data.EndTimeFormatted, data.TotalAmount)

	var html bytes.Buffer
	if err := bookingEmailTmpl.Execute(&html, data); err != nil {
		s.log.Error("render booking email", "error", err)
	}
	if err := s.Mail.SendEmail(ctx, a.Email, a.Name, subject, plain, html.String()); err != nil {
		s.log.Warn("booking email failed", "to", a.Email, "error", err)
	}
}
