package models

import (
	"time"
)

type Booking struct {
	ID       uint      `gorm:"primaryKey" json:"booking_id"`
	UserID   uint      `gorm:"not null;index" json:"-"`
	TicketID uint      `gorm:"not null;index" json:"ticket_id"`
	BookedAt time.Time `gorm:"not null" json:"booked_at"`
}
