package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farhanadi/ticketbook/internal/helpers"
	"github.com/farhanadi/ticketbook/internal/middleware"
	"github.com/farhanadi/ticketbook/internal/models"
)

var errEventHasBookings = errors.New("event has booked tickets")

type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Description *string   `json:"description"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Date        *time.Time `json:"date"`
	Description *string    `json:"description"`
}

func ListEvents(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	eventCache := middleware.GetEventCache(c)
	if eventCache != nil {
		if events, ok := eventCache.GetEvents(c.Request.Context()); ok {
			c.JSON(http.StatusOK, events)
			return
		}
	}

	events := make([]models.Event, 0)
	if err := gormDB.Order("id ASC").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	if eventCache != nil {
		eventCache.SetEvents(c.Request.Context(), events)
	}

	c.JSON(http.StatusOK, events)
}

func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Title and date are required.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	event := models.Event{
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	if eventCache := middleware.GetEventCache(c); eventCache != nil {
		eventCache.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusCreated, event)
}

func GetEvent(c *gin.Context) {
	eventID, ok := parseIDParam(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, event)
}

func UpdateEvent(c *gin.Context) {
	eventID, ok := parseIDParam(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.First(&event, eventID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Description != nil {
		event.Description = req.Description
	}

	if err := gormDB.Save(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	if eventCache := middleware.GetEventCache(c); eventCache != nil {
		eventCache.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusOK, event)
}

func DeleteEvent(c *gin.Context) {
	eventID, ok := parseIDParam(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.First(&event, eventID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	// The booked-ticket check and the cascade share one transaction so a
	// concurrent claim cannot slip in between them.
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		var bookedCount int64
		if err := tx.Model(&models.Ticket{}).
			Where("event_id = ? AND is_booked = ?", eventID, true).
			Count(&bookedCount).Error; err != nil {
			return err
		}
		if bookedCount > 0 {
			return errEventHasBookings
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		if errors.Is(err, errEventHasBookings) {
			helpers.RespondWithError(c, http.StatusConflict, "Event has booked tickets and cannot be deleted.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	if eventCache := middleware.GetEventCache(c); eventCache != nil {
		eventCache.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted."})
}
