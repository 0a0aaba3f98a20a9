package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/farhanadi/ticketbook/internal/booking"
	"github.com/farhanadi/ticketbook/internal/helpers"
	"github.com/farhanadi/ticketbook/internal/middleware"
	"github.com/farhanadi/ticketbook/internal/models"
)

type BookingRequest struct {
	TicketID uint `json:"ticket_id" binding:"required"`
}

func ListBookings(c *gin.Context) {
	userID, exists := middleware.CurrentUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	bookings, err := booking.ListForUser(gormDB, userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving bookings.")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func CreateBooking(c *gin.Context) {
	userID, exists := middleware.CurrentUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "ticket_id is required.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	result, err := booking.Claim(gormDB, userID, req.TicketID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrTicketNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket does not exist.")
		case errors.Is(err, booking.ErrTicketBooked):
			helpers.RespondWithError(c, http.StatusConflict, "Ticket is already booked.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create booking.")
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

func CancelBooking(c *gin.Context) {
	userID, exists := middleware.CurrentUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	bookingID, ok := parseIDParam(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	if err := booking.Release(gormDB, userID, bookingID); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel booking.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled."})
}

// BookingQR renders a signed QR code for a booking the caller owns,
// suitable for offline verification at the venue.
func BookingQR(c *gin.Context) {
	userID, exists := middleware.CurrentUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	bookingID, ok := parseIDParam(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var b models.Booking
	if err := gormDB.Where("id = ? AND user_id = ?", bookingID, userID).First(&b).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	qrData := helpers.BookingQRData(&b, os.Getenv("JWT_SECRET"))
	qrImage, err := qrcode.Encode(qrData, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
