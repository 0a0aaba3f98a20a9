package booking

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/farhanadi/ticketbook/internal/models"
	"github.com/farhanadi/ticketbook/internal/monitoring"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrTicketBooked    = errors.New("ticket is already booked")
	ErrBookingNotFound = errors.New("booking not found")
)

// Claim books the ticket for the user. The booking insert and the ticket
// flip commit together or not at all; of two racing claims on the same
// ticket exactly one succeeds, the other gets ErrTicketBooked.
func Claim(db *gorm.DB, userID, ticketID uint) (*models.Booking, error) {
	var booking models.Booking

	err := db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.First(&ticket, ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if ticket.IsBooked {
			return ErrTicketBooked
		}

		booking = models.Booking{
			UserID:   userID,
			TicketID: ticketID,
			BookedAt: time.Now().UTC(),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		// Conditional update is the race guard: a concurrent claim that
		// committed after our read leaves zero rows to flip here, and the
		// rollback discards our booking.
		res := tx.Model(&models.Ticket{}).
			Where("id = ? AND is_booked = ?", ticketID, false).
			Updates(map[string]interface{}{"is_booked": true, "booking_id": booking.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Zero rows means a rival transaction either claimed the
			// ticket or deleted it; tell the caller which.
			var remaining int64
			if err := tx.Model(&models.Ticket{}).Where("id = ?", ticketID).Count(&remaining).Error; err != nil {
				return err
			}
			if remaining == 0 {
				return ErrTicketNotFound
			}
			return ErrTicketBooked
		}
		return nil
	})

	switch {
	case err == nil:
		monitoring.TrackBookingOperation("claim", "success")
		return &booking, nil
	case errors.Is(err, ErrTicketBooked):
		monitoring.TrackBookingOperation("claim", "conflict")
		return nil, err
	case errors.Is(err, ErrTicketNotFound):
		monitoring.TrackBookingOperation("claim", "not_found")
		return nil, err
	default:
		monitoring.TrackBookingOperation("claim", "error")
		return nil, err
	}
}

// Release cancels the user's booking and frees its ticket in one
// transaction. Ownership is folded into the lookup, so a foreign booking
// id is indistinguishable from a missing one.
func Release(db *gorm.DB, userID, bookingID uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		// The ticket may have been deleted out from under the booking by
		// an older schema; clearing zero rows is fine.
		res := tx.Model(&models.Ticket{}).
			Where("id = ?", booking.TicketID).
			Updates(map[string]interface{}{"is_booked": false, "booking_id": nil})
		if res.Error != nil {
			return res.Error
		}

		return tx.Delete(&booking).Error
	})

	switch {
	case err == nil:
		monitoring.TrackBookingOperation("release", "success")
	case errors.Is(err, ErrBookingNotFound):
		monitoring.TrackBookingOperation("release", "not_found")
	default:
		monitoring.TrackBookingOperation("release", "error")
	}
	return err
}

// ListForUser returns the user's live bookings in insertion order. The
// result is never nil, so an empty ledger serializes as an empty list.
func ListForUser(db *gorm.DB, userID uint) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	if err := db.Where("user_id = ?", userID).Order("id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}
