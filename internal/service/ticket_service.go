package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"parkeasy/internal/db"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const ticketPrefix = "PARKEASY"

// TicketService renders entry-code QR codes and booking receipts.
type TicketService struct {
	Accounts AccountGetter
	secret   []byte
	loc      *time.Location
}

func NewTicketService(accounts AccountGetter, secret string, loc *time.Location) *TicketService {
	return &TicketService{Accounts: accounts, secret: []byte(secret), loc: loc}
}

func (s *TicketService) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Payload is PARKEASY|bookingID|entryCode|signature.
func (s *TicketService) Payload(b db.Booking) string {
	data := fmt.Sprintf("%s|%s|%s", ticketPrefix, b.ID, b.EntryCode)
	return data + "|" + s.sign(data)
}

// VerifyPayload checks a scanned payload and returns its booking id and entry code.
func (s *TicketService) VerifyPayload(payload string) (string, string, bool) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 || parts[0] != ticketPrefix {
		return "", "", false
	}
	data := strings.Join(parts[:3], "|")
	if !hmac.Equal([]byte(parts[3]), []byte(s.sign(data))) {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func (s *TicketService) QRCode(b db.Booking) ([]byte, error) {
	png, err := qrcode.Encode(s.Payload(b), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// Receipt renders a one-page PDF with the booking details and its QR code.
func (s *TicketService) Receipt(ctx context.Context, b db.Booking) ([]byte, error) {
	qrPNG, err := s.QRCode(b)
	if err != nil {
		return nil, err
	}
	holder := "-"
	if account, err := s.Accounts.GetByID(ctx, b.UserID); err == nil {
		holder = fmt.Sprintf("%s (%s)", account.Name, account.UserID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "ParkEasy booking receipt")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		fmt.Sprintf("Booking: %s", b.ID),
		fmt.Sprintf("Name: %s", holder),
		fmt.Sprintf("Spot: %s, %s", b.ParkingSpotName, b.Location),
		fmt.Sprintf("Spots booked: %d (%s)", b.BookedSpots, b.VehicleType),
		fmt.Sprintf("From: %s", b.BookedAt.In(s.loc).Format("02 Jan 2006 15:04 MST")),
		fmt.Sprintf("Until: %s", b.BookedUntil.In(s.loc).Format("02 Jan 2006 15:04 MST")),
		fmt.Sprintf("Rate: INR %.2f per hour", b.PricePerHour),
		fmt.Sprintf("Total: INR %.2f", b.TotalAmount),
		fmt.Sprintf("Status: %s, payment %s", b.Status, b.PaymentStatus),
	}
	for _, line := range lines {
		pdf.Cell(0, 10, line)
		pdf.Ln(8)
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Entry code: %s", b.EntryCode))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
