package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// A ticket belongs to exactly one event. BookingID is the back-reference
// to the booking currently holding it; nil while the ticket is free.
type Ticket struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EventID   uint            `gorm:"not null;index" json:"event_id"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Seat      *string         `gorm:"size:32" json:"seat"`
	IsBooked  bool            `gorm:"not null;default:false" json:"is_booked"`
	BookingID *uint           `gorm:"index" json:"booking_id,omitempty"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}
