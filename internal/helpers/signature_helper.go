package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/farhanadi/ticketbook/internal/models"
)

// BookingQRData renders the payload embedded in a booking's QR code:
// booking:<id>;ticket:<id>;signature:<hmac>. The signature covers the
// booking, ticket and owner ids so a scanned code can be verified offline.
func BookingQRData(booking *models.Booking, secretKey string) string {
	signature := BookingSignature(booking, secretKey)
	return fmt.Sprintf("booking:%d;ticket:%d;signature:%s", booking.ID, booking.TicketID, signature)
}

func BookingSignature(booking *models.Booking, secretKey string) string {
	data := fmt.Sprintf("%d:%d:%d", booking.ID, booking.TicketID, booking.UserID)
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateBookingQRData checks a scanned payload against the booking it
// claims to represent.
func ValidateBookingQRData(booking *models.Booking, qrData, secretKey string) bool {
	parts := strings.Split(qrData, ";")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "signature:") {
		return false
	}
	signature := strings.TrimPrefix(parts[2], "signature:")
	expected := BookingSignature(booking, secretKey)
	return hmac.Equal([]byte(expected), []byte(signature))
}
