package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farhanadi/ticketbook/internal/helpers"
	"github.com/farhanadi/ticketbook/internal/middleware"
	"github.com/farhanadi/ticketbook/internal/models"
)

type TicketRequest struct {
	EventID uint            `json:"event_id" binding:"required"`
	Price   decimal.Decimal `json:"price" binding:"required"`
	Seat    *string         `json:"seat"`
}

type UpdateTicketRequest struct {
	Price *decimal.Decimal `json:"price"`
	Seat  *string          `json:"seat"`
}

func ListTickets(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	tickets := make([]models.Ticket, 0)
	if err := gormDB.Order("id ASC").Find(&tickets).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func CreateTicket(c *gin.Context) {
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "event_id and price are required.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.First(&event, req.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event does not exist.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error verifying event.")
		return
	}

	ticket := models.Ticket{
		EventID: event.ID,
		Price:   req.Price,
		Seat:    req.Seat,
	}

	if err := gormDB.Create(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create ticket.")
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

func GetTicket(c *gin.Context) {
	ticketID, ok := parseIDParam(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var ticket models.Ticket
	if err := gormDB.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func UpdateTicket(c *gin.Context) {
	ticketID, ok := parseIDParam(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var ticket models.Ticket
	if err := gormDB.First(&ticket, ticketID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	if req.Price != nil {
		ticket.Price = *req.Price
	}
	if req.Seat != nil {
		ticket.Seat = req.Seat
	}

	if err := gormDB.Save(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update ticket.")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func DeleteTicket(c *gin.Context) {
	ticketID, ok := parseIDParam(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	// A booked ticket is pinned by its booking; cancel the booking first.
	// The conditional delete keeps the check and the removal in one
	// statement so a concurrent claim cannot slip in between them.
	res := gormDB.Where("id = ? AND is_booked = ?", ticketID, false).Delete(&models.Ticket{})
	if res.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete ticket.")
		return
	}
	if res.RowsAffected == 0 {
		var ticket models.Ticket
		if err := gormDB.First(&ticket, ticketID).Error; err != nil {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusConflict, "Ticket is currently booked and cannot be deleted.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted."})
}
